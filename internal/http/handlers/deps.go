package handlers

import (
	"github.com/jmoiron/sqlx"

	"bloxmarket/internal/blob"
	"bloxmarket/internal/config"
	"bloxmarket/internal/repos"
	"bloxmarket/internal/services"
)

type Deps struct {
	AuthHandler        *AuthHandler
	ListingHandler     *ListingHandler
	SearchHandler      *SearchHandler
	CartHandler        *CartHandler
	TransactionHandler *TransactionHandler
	WatchlistHandler   *WatchlistHandler
	MediaHandler       *MediaHandler
	AdminHandler       *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	listingRepo := repos.NewListingRepo(db)
	txnRepo := repos.NewTransactionRepo(db)
	watchRepo := repos.NewWatchlistRepo(db)

	listingSvc := services.NewListingService(listingRepo)
	cartSvc := services.NewCartService(listingRepo)
	txnSvc := services.NewTransactionService(listingRepo, txnRepo)
	watchSvc := services.NewWatchlistService(watchRepo)

	blobs := blob.NewFSStore(cfg.MediaDir)

	return &Deps{
		AuthHandler:        &AuthHandler{Auth: auth},
		ListingHandler:     &ListingHandler{Listings: listingSvc, Auth: auth},
		SearchHandler:      &SearchHandler{Listings: listingSvc},
		CartHandler:        &CartHandler{Cart: cartSvc},
		TransactionHandler: &TransactionHandler{Txns: txnSvc},
		WatchlistHandler:   &WatchlistHandler{Watch: watchSvc},
		MediaHandler:       &MediaHandler{Blobs: blobs},
		AdminHandler:       &AdminHandler{Listings: listingRepo},
	}
}
