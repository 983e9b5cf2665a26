package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/mapletax/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateFilingsTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		user_agent TEXT,
		client_ip TEXT,
		is_blocked BOOLEAN DEFAULT FALSE,
		expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS filings (
		id TEXT NOT NULL,
		user_id INTEGER NOT NULL,
		tax_year INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'not_started',
		confirmation_number TEXT,
		data TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id),
		UNIQUE(user_id, tax_year)
	);

	CREATE TABLE IF NOT EXISTS submissions (
		confirmation_number TEXT PRIMARY KEY,
		request TEXT NOT NULL,
		status TEXT NOT NULL,
		submitted_at TIMESTAMP,
		last_updated TIMESTAMP
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// migrateFilingsTable adds columns introduced after the first release to an
// existing filings table.
func migrateFilingsTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='filings'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			if logger.L != nil {
				logger.L.Info("'filings' table does not exist, no migration needed as table will be created.")
			} else {
				stdlog.Println("'filings' table does not exist, no migration needed as table will be created.")
			}
			return
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'filings' table", "error", err)
		} else {
			stdlog.Printf("Error checking for 'filings' table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(filings)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'filings'", "error", err)
		} else {
			stdlog.Printf("Error querying table schema for 'filings': %v", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'filings'", "error", err)
			} else {
				stdlog.Printf("Error scanning column info for 'filings': %v", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'filings'", "error", err)
		} else {
			stdlog.Printf("Error iterating over column info for 'filings': %v", err)
		}
		return
	}

	if _, ok := columnExists["confirmation_number"]; !ok {
		_, err := DB.Exec("ALTER TABLE filings ADD COLUMN confirmation_number TEXT")
		if err != nil {
			logger.L.Error("Error adding 'confirmation_number' column to 'filings' table", "error", err)
		} else {
			logger.L.Info("Added 'confirmation_number' column to 'filings' table")
		}
	}
	if _, ok := columnExists["status"]; !ok {
		_, err := DB.Exec("ALTER TABLE filings ADD COLUMN status TEXT NOT NULL DEFAULT 'not_started'")
		if err != nil {
			logger.L.Error("Error adding 'status' column to 'filings' table", "error", err)
		} else {
			logger.L.Info("Added 'status' column to 'filings' table")
		}
	}
}
