// Package models defines the core domain models for behalf.
//
// # Models
//
//   - User: a Telegram user known to the bot
//   - Band: a pair of users tracking shared expenses together
//   - Transaction: a single halved expense credited to one band member
//
// # Design Principles
//
// 1. **Avoid circular references**: User carries a BandID string instead of
// a pointer to the band; band membership is derived from the users table.
// 2. **Immutability where it matters**: a Transaction is never updated after
// creation, history is append-only.
// 3. **Derived balance**: the account balance is never stored, it is always
// computed from the transaction set so the two members' views stay in sync.
package models
