package repos

import (
	"time"

	"github.com/jmoiron/sqlx"

	"bloxmarket/internal/domain"
)

type WatchlistRepo struct{ db *sqlx.DB }

func NewWatchlistRepo(db *sqlx.DB) *WatchlistRepo { return &WatchlistRepo{db: db} }

type WatchRow struct {
	ListingID string  `db:"listing_id"`
	Title     string  `db:"title"`
	Category  string  `db:"category"`
	Price     float64 `db:"price"`
	Status    string  `db:"status"`
}

func (r *WatchlistRepo) Ensure(sessionID string) (string, error) {
	var id string
	if err := r.db.Get(&id, `SELECT id FROM watchlists WHERE session_id = ?`, sessionID); err == nil {
		return id, nil
	}
	_, err := r.db.Exec(`INSERT INTO watchlists(id,session_id,updated_at) VALUES(?,?,?)`,
		sessionID, sessionID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

func (r *WatchlistRepo) Add(watchlistID, listingID string) error {
	var n int
	if err := r.db.Get(&n, `SELECT COUNT(*) FROM listings WHERE id = ?`, listingID); err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	_, err := r.db.Exec(`
		INSERT INTO watchlist_items(watchlist_id,listing_id,created_at)
		VALUES(?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(watchlist_id,listing_id) DO NOTHING
	`, watchlistID, listingID)
	return err
}

func (r *WatchlistRepo) Remove(watchlistID, listingID string) error {
	_, err := r.db.Exec(`DELETE FROM watchlist_items WHERE watchlist_id=? AND listing_id=?`, watchlistID, listingID)
	return err
}

func (r *WatchlistRepo) List(watchlistID string) ([]WatchRow, error) {
	var rows []WatchRow
	err := r.db.Select(&rows, `
	  SELECT wi.listing_id, l.title, l.category, l.price, l.status
	  FROM watchlist_items wi JOIN listings l ON l.id = wi.listing_id
	  WHERE wi.watchlist_id = ?
	  ORDER BY wi.created_at DESC
	`, watchlistID)
	return rows, err
}
