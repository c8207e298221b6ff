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
	// One writer connection: sqlite serializes writes anyway, and the pool
	// must not fan out for :memory: databases.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	if err := seedUsers(db); err != nil {
		return nil, err
	}
	if err := seedListings(db); err != nil {
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
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  trust_score INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Listings
CREATE TABLE IF NOT EXISTS listings(
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
  title TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL,
  price NUMERIC NOT NULL CHECK (price > 0),
  images_json TEXT NOT NULL,
  attrs_json TEXT,
  items_json TEXT,
  status TEXT NOT NULL DEFAULT 'draft'
    CHECK (status IN ('draft','pending_review','active','pending_sale','sold','removed')),
  verification TEXT NOT NULL DEFAULT 'pending'
    CHECK (verification IN ('pending','verified','rejected')),
  popularity INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_listings_seller     ON listings(seller_id);
CREATE INDEX IF NOT EXISTS idx_listings_category   ON listings(category);
CREATE INDEX IF NOT EXISTS idx_listings_status     ON listings(status, verification);
CREATE INDEX IF NOT EXISTS idx_listings_title      ON listings(LOWER(title));
CREATE INDEX IF NOT EXISTS idx_listings_created_at ON listings(created_at);

-- Transactions
CREATE TABLE IF NOT EXISTS transactions(
  id TEXT PRIMARY KEY,
  buyer_id   TEXT NOT NULL REFERENCES users(id),
  seller_id  TEXT NOT NULL REFERENCES users(id),
  listing_id TEXT NOT NULL REFERENCES listings(id),
  amount NUMERIC NOT NULL CHECK (amount > 0),
  status TEXT NOT NULL DEFAULT 'pending'
    CHECK (status IN ('pending','escrow_held','delivered','completed','cancelled','disputed')),
  escrow_status TEXT NOT NULL DEFAULT 'holding'
    CHECK (escrow_status IN ('holding','released','refunded')),
  created_at TEXT NOT NULL,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_txn_buyer   ON transactions(buyer_id);
CREATE INDEX IF NOT EXISTS idx_txn_seller  ON transactions(seller_id);
CREATE INDEX IF NOT EXISTS idx_txn_listing ON transactions(listing_id);
-- Backstop for the one-open-transaction-per-listing invariant; the status
-- CAS on listings is the primary guard.
CREATE UNIQUE INDEX IF NOT EXISTS idx_txn_open_listing ON transactions(listing_id)
  WHERE status NOT IN ('completed','cancelled','disputed');

-- Append-only state machine trail
CREATE TABLE IF NOT EXISTS transaction_audit(
  id TEXT PRIMARY KEY,
  txn_id TEXT NOT NULL REFERENCES transactions(id),
  actor_id TEXT NOT NULL,
  from_status TEXT NOT NULL,
  to_status TEXT NOT NULL,
  escrow_from TEXT NOT NULL,
  escrow_to TEXT NOT NULL,
  at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_txn ON transaction_audit(txn_id);

-- Watchlists (saved listings per session)
CREATE TABLE IF NOT EXISTS watchlists(
  id TEXT PRIMARY KEY,
  session_id TEXT UNIQUE NOT NULL,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS watchlist_items(
  watchlist_id TEXT NOT NULL REFERENCES watchlists(id) ON DELETE CASCADE,
  listing_id   TEXT NOT NULL REFERENCES listings(id) ON DELETE RESTRICT,
  created_at   TEXT,
  PRIMARY KEY (watchlist_id, listing_id)
);
`
	_, err := db.Exec(schema)
	return err
}

// seedUsers ensures demo accounts exist (idempotent; safe to run every start).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
		Trust                       int
	}
	mk := func(id, email, name, role, raw string, trust int) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h), Trust: trust}
	}

	users := []u{
		mk("u-protrader", "protrader@bloxmarket.test", "ProTrader123", "USER", "Passw0rd!", 98),
		mk("u-mm2master", "mm2master@bloxmarket.test", "MM2Master", "USER", "Passw0rd!", 100),
		mk("u-buyer", "buyer@bloxmarket.test", "PetCollector", "USER", "Passw0rd!", 80),
		mk("u-admin", "admin@bloxmarket.test", "Admin", "ADMIN", "Passw0rd!", 100),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role,trust_score)
			VALUES(?,?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role, x.Trust); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// seedListings inserts a few verified demo listings if none exist.
func seedListings(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM listings`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo listings")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO listings
	  (id,seller_id,title,description,category,price,images_json,attrs_json,items_json,status,verification,popularity,created_at) VALUES
	  ('acc_seed_dragon','u-protrader','Mega Neon Shadow Dragon + Rare Pets',
	   'Premium account with some of the rarest pets in the game.',
	   'Adopt Me!',299.99,'["/media/listings/acc_seed_dragon/main.jpg"]',
	   '{"level":180,"robux":500000,"premium":true}',
	   '["Mega Neon Shadow Dragon","Neon Frost Dragon","500k+ AMC","20+ Legendary Pets"]',
	   'active','verified',98,'2025-08-01T10:00:00Z'),
	  ('acc_seed_godly','u-mm2master','Complete Godly Collection',
	   'Every godly knife plus chromas, ready to trade.',
	   'Murder Mystery 2',149.99,'["/media/listings/acc_seed_godly/main.jpg"]',
	   '{"level":95,"robux":12000,"premium":false}',
	   '["Chroma Luger","Chroma Shark","Elderwood Scythe","15+ Godly Knives"]',
	   'active','verified',100,'2025-08-10T12:30:00Z'),
	  ('acc_seed_mansion','u-protrader','Luxury Mansion + 10M Cash',
	   'Five-story mansion with every gamepass unlocked.',
	   'Bloxburg',89.99,'["/media/listings/acc_seed_mansion/main.jpg"]',
	   '{"level":52,"robux":0,"premium":true}',
	   '["5-Story Mansion","10M+ Cash","All Gamepasses","Premium Plot"]',
	   'active','verified',95,'2025-08-15T09:15:00Z')`)

	return tx.Commit()
}
