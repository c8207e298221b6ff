package services

import "bloxmarket/internal/repos"

type WatchlistService struct {
	Repo *repos.WatchlistRepo
}

func NewWatchlistService(r *repos.WatchlistRepo) *WatchlistService { return &WatchlistService{Repo: r} }

func (s *WatchlistService) Save(sessionID, listingID string) error {
	id, err := s.Repo.Ensure(sessionID)
	if err != nil {
		return err
	}
	return s.Repo.Add(id, listingID)
}

func (s *WatchlistService) Unsave(sessionID, listingID string) error {
	id, err := s.Repo.Ensure(sessionID)
	if err != nil {
		return err
	}
	return s.Repo.Remove(id, listingID)
}

func (s *WatchlistService) List(sessionID string) ([]repos.WatchRow, error) {
	id, err := s.Repo.Ensure(sessionID)
	if err != nil {
		return nil, err
	}
	return s.Repo.List(id)
}
