package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: the foreign_keys pragma is per-connection, and a pooled
	// :memory: DSN would otherwise hand each connection its own empty database.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed demo users and catalog books if the DB is empty (idempotent; safe on every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}
	if err := seedCatalog(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  birth_date TEXT,
  role TEXT NOT NULL DEFAULT 'USER' CHECK (role IN ('USER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE CASCADE,
  remember INTEGER NOT NULL DEFAULT 0,
  expires_at TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Books
CREATE TABLE IF NOT EXISTS books(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  author TEXT NOT NULL,
  price NUMERIC NOT NULL CHECK (price >= 0),
  category_name TEXT NOT NULL DEFAULT '',
  img_url TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'AVAILABLE' CHECK (status IN ('AVAILABLE','RENTED')),
  owner_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_books_title    ON books(LOWER(title));
CREATE INDEX IF NOT EXISTS idx_books_author   ON books(LOWER(author));
CREATE INDEX IF NOT EXISTS idx_books_category ON books(category_name);
CREATE INDEX IF NOT EXISTS idx_books_status   ON books(status);
CREATE INDEX IF NOT EXISTS idx_books_owner    ON books(owner_id);

-- Carts (one per user)
CREATE TABLE IF NOT EXISTS carts(
  id TEXT PRIMARY KEY,
  user_id TEXT UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS cart_items(
  cart_id TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
  created_at TEXT,
  PRIMARY KEY (cart_id, book_id)
);

-- Rentals
CREATE TABLE IF NOT EXISTS rentals(
  id TEXT PRIMARY KEY,
  book_id TEXT NOT NULL REFERENCES books(id) ON DELETE RESTRICT,
  renter_id TEXT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
  start_date TEXT NOT NULL,
  end_date TEXT NOT NULL,
  return_date TEXT,
  duration INTEGER NOT NULL CHECK (duration BETWEEN 1 AND 365),
  status TEXT NOT NULL DEFAULT 'ACTIVE' CHECK (status IN ('ACTIVE','COMPLETED','CANCELLED')),
  comment TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_rentals_renter ON rentals(renter_id);
CREATE INDEX IF NOT EXISTS idx_rentals_status ON rentals(status);
-- At most one ACTIVE rental per book, enforced by the database itself.
CREATE UNIQUE INDEX IF NOT EXISTS idx_rentals_active_book ON rentals(book_id) WHERE status = 'ACTIVE';

-- Messages
CREATE TABLE IF NOT EXISTS messages(
  id TEXT PRIMARY KEY,
  sender_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  receiver_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  content TEXT NOT NULL,
  is_read INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_messages_receiver ON messages(receiver_id, is_read);
CREATE INDEX IF NOT EXISTS idx_messages_pair     ON messages(sender_id, receiver_id);
`
	_, err := db.Exec(schema)
	return err
}

// seedUsers ensures two USERs and one ADMIN exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, First, Last, Role, Hash string
	}
	mk := func(id, email, first, last, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Email: email, First: first, Last: last, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u-alice", "alice@bookineo.test", "Alice", "Martin", "USER", "Passw0rd!"),
		mk("u-bob", "bob@bookineo.test", "Bob", "Durand", "USER", "Passw0rd!"),
		mk("u-admin", "admin@bookineo.test", "Admin", "Bookineo", "ADMIN", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,password_hash,first_name,last_name,role)
			VALUES(?,?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Hash, x.First, x.Last, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// seedCatalog inserts a few ownerless catalog books on first start.
func seedCatalog(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM books`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo catalog books")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO books(id,title,author,price,category_name,status) VALUES
	  ('b-dune','Dune','Frank Herbert',9.50,'Science-Fiction','AVAILABLE'),
	  ('b-1984','1984','George Orwell',7.00,'Fiction','AVAILABLE'),
	  ('b-germinal','Germinal','Emile Zola',6.50,'Classique','AVAILABLE'),
	  ('b-sapiens','Sapiens','Yuval Noah Harari',12.00,'Histoire','AVAILABLE')`)
	return tx.Commit()
}
