package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"bloxmarket/internal/domain"
	"bloxmarket/internal/repos"
)

var ErrBadCreds = errors.New("invalid email or password")

// AuthService is the identity provider boundary: the rest of the core only
// asks it who the current actor is and trusts the answer.
type AuthService struct {
	Users *repos.UserRepo
}

func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}

// CurrentActor returns the authenticated actor id, or "" for anonymous.
func (s *AuthService) CurrentActor(sid string) string {
	if sid == "" {
		return ""
	}
	u, err := s.Users.SessionUser(sid)
	if err != nil || u == nil {
		return ""
	}
	return u.ID
}
