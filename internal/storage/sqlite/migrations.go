package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: The bands table must be created BEFORE users and transactions
// due to the foreign key constraints.
const schema = `
CREATE TABLE IF NOT EXISTS bands (
    id TEXT PRIMARY KEY,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    chat_id INTEGER NOT NULL UNIQUE,
    name TEXT NOT NULL,
    band_id TEXT,
    band_joined_at INTEGER,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (band_id) REFERENCES bands(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    band_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    amount REAL NOT NULL,
    comment TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    FOREIGN KEY (band_id) REFERENCES bands(id) ON DELETE CASCADE,
    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_users_band_id ON users(band_id);
CREATE INDEX IF NOT EXISTS idx_transactions_band_id ON transactions(band_id);
CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(band_id, created_at);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
