package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/turnstile/internal/domain"
	"github.com/aussiebroadwan/turnstile/internal/store"
	"github.com/aussiebroadwan/turnstile/pkg/cryptox"
	"github.com/aussiebroadwan/turnstile/pkg/slogx"
	"github.com/oklog/ulid/v2"
	"github.com/pquerna/otp/totp"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrMFACodeRequired    = errors.New("mfa_code_required")
)

// UserService owns credential verification and account mutations. Token
// minting lives in TokenService; this one only answers "is this really the
// user" questions.
type UserService struct {
	Store store.Store
}

// Login verifies username/password (and the TOTP code when the account has
// one enrolled) and returns the user. Every failure path collapses into
// ErrInvalidCredentials so responses don't leak which part was wrong, except
// the missing-code case which the handler surfaces so clients know to prompt
// for a code.
func (s *UserService) Login(ctx context.Context, username, password, totpCode string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a hash anyway so a missing user costs the same as a
			// wrong password.
			_ = cryptox.VerifyPassword(password, dummyHash)
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		l.Info("login password verification failed", slog.String("username", username))
		return domain.User{}, ErrInvalidCredentials
	}

	if user.MFAEnabled() {
		if totpCode == "" {
			return domain.User{}, ErrMFACodeRequired
		}
		if !totp.Validate(totpCode, user.TOTPSecret) {
			l.Info("login totp verification failed", slog.String("username", username))
			return domain.User{}, ErrInvalidCredentials
		}
	}

	return user, nil
}

// ChangePassword rehashes and stores a new password for the authenticated
// identity. The boundary guards this with the freshness gate; a token minted
// through the refresh flow is not proof enough for a credential change.
func (s *UserService) ChangePassword(ctx context.Context, username, newPassword string) error {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash)
}

// Bootstrap creates the initial account when the store is empty, so a fresh
// deployment has something to log in with.
func (s *UserService) Bootstrap(ctx context.Context, username, password string) error {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty || username == "" || password == "" {
		return nil
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}

	err = s.Store.Users().CreateUser(ctx, domain.User{
		ID:           ulid.Make().String(),
		Username:     username,
		PasswordHash: hash,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil
	}
	return err
}

// dummyHash is a throwaway argon2id hash used to equalise timing when the
// username doesn't exist.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=2$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
