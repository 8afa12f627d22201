// Package auth handles local accounts: bcrypt password hashes and a signed
// login token kept in the user's data directory.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/verte-zerg/tiertype/internal/model"
	"github.com/verte-zerg/tiertype/internal/store"
)

var (
	// ErrUnauthorized is returned for bad credentials or an invalid token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput is returned when a username or password is missing.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotLoggedIn is returned when no login token is present.
	ErrNotLoggedIn = errors.New("not logged in")
)

const (
	// DefaultTokenTTL is how long a login stays valid.
	DefaultTokenTTL = 30 * 24 * time.Hour
	// DefaultBcryptCost is the hashing cost used when none is configured.
	DefaultBcryptCost = bcrypt.DefaultCost
)

// Options configures a Service.
type Options struct {
	Secret     []byte
	BcryptCost int
	TokenTTL   time.Duration
	TokenPath  string
}

// Service handles registration, login and the current login token.
type Service struct {
	store      *store.Store
	secret     []byte
	bcryptCost int
	ttl        time.Duration
	tokenPath  string
	now        func() time.Time
}

// NewService creates a Service. Zero cost and TTL fall back to defaults.
func NewService(st *store.Store, opts Options) *Service {
	cost := opts.BcryptCost
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Service{
		store:      st,
		secret:     opts.Secret,
		bcryptCost: cost,
		ttl:        ttl,
		tokenPath:  opts.TokenPath,
		now:        time.Now,
	}
}

// Register creates a new account. The username is trimmed; both fields are
// required.
func (s *Service) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials, records a new token and writes it to the
// token file, replacing any previous login.
func (s *Service) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := writeTokenFile(s.tokenPath, token); err != nil {
		return nil, err
	}
	return user, nil
}

// Current returns the logged-in user.
func (s *Service) Current(ctx context.Context) (*model.User, error) {
	claims, err := s.readClaims(ctx)
	if err != nil {
		return nil, err
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return nil, ErrUnauthorized
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Logout revokes the current token and removes the token file. A token that
// no longer validates is still removed.
func (s *Service) Logout(ctx context.Context) error {
	claims, err := s.readClaims(ctx)
	switch {
	case errors.Is(err, ErrNotLoggedIn):
		return err
	case err == nil:
		if jti, ok := claims["jti"].(string); ok {
			if rerr := s.store.RevokeToken(ctx, jti); rerr != nil && !errors.Is(rerr, store.ErrNotFound) {
				return fmt.Errorf("revoke token: %w", rerr)
			}
		}
	case !errors.Is(err, ErrUnauthorized):
		return err
	}
	if err := os.Remove(s.tokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

func (s *Service) issueToken(ctx context.Context, user *model.User) (string, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	jti := uuid.NewString()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatInt(user.ID, 10),
		"username": user.Username,
		"jti":      jti,
		"iat":      now.Unix(),
		"exp":      expires.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	if err := s.store.RecordToken(ctx, jti, user.ID, now, expires); err != nil {
		return "", err
	}
	return signed, nil
}

func (s *Service) readClaims(ctx context.Context) (jwt.MapClaims, error) {
	raw, err := os.ReadFile(s.tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}
	tokenString := strings.TrimSpace(string(raw))
	if tokenString == "" {
		return nil, ErrNotLoggedIn
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrUnauthorized
	}
	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return nil, ErrUnauthorized
	}
	active, err := s.store.TokenActive(ctx, jti)
	if err != nil {
		return nil, fmt.Errorf("check token: %w", err)
	}
	if !active {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

func writeTokenFile(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}
