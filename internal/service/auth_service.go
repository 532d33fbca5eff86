package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/atelier-booking/internal/auth"
	"github.com/iliyamo/atelier-booking/internal/model"
	"github.com/iliyamo/atelier-booking/internal/repository"
)

// AuthService exchanges admin credentials for an access token.
type AuthService struct {
	Profiles  *repository.ProfileRepo
	Secret    string
	AccessTTL int // minutes
}

func NewAuthService(profiles *repository.ProfileRepo, secret string, ttlMin int) *AuthService {
	if profiles == nil || secret == "" {
		panic("auth service: profiles and secret are required")
	}
	return &AuthService{Profiles: profiles, Secret: secret, AccessTTL: ttlMin}
}

// Login checks the password against the stored bcrypt hash.  Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (auth.AccessToken, model.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return auth.AccessToken{}, model.Profile{}, invalid("missing required fields", "email", "password")
	}
	p, err := s.Profiles.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return auth.AccessToken{}, model.Profile{}, ErrInvalidCredentials
	}
	if err != nil {
		return auth.AccessToken{}, model.Profile{}, err
	}
	if !auth.VerifyPassword(p.PasswordHash, password) {
		return auth.AccessToken{}, model.Profile{}, ErrInvalidCredentials
	}
	tok, err := auth.NewAccessToken(s.Secret, p.ID, p.Role, s.AccessTTL)
	if err != nil {
		return auth.AccessToken{}, model.Profile{}, err
	}
	p.PasswordHash = ""
	return tok, p, nil
}
