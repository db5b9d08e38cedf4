package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alx-polly/backend/internal/entity"
	"github.com/alx-polly/backend/internal/lib/jwt"
	"github.com/alx-polly/backend/internal/repo"
	jwtGo "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
)

type UserStorage interface {
	SaveUser(ctx context.Context, id, email string, passHash []byte) error
	UserByEmail(ctx context.Context, email string) (entity.User, error)
}

type ProfileStorage interface {
	UpsertProfile(ctx context.Context, profile entity.Profile) error
}

type TokenStorage interface {
	SaveToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	IsRefreshTokenValid(ctx context.Context, userID, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, userID, token string) error
	DeleteExpiredTokens(ctx context.Context, before time.Time) (int64, error)
}

// Auth issues and validates HS256 access/refresh token pairs and owns the
// users/profiles/refresh_tokens rows. It has an explicit lifecycle: Start
// launches the expired-token janitor, Stop halts it.
type Auth struct {
	log           *slog.Logger
	users         UserStorage
	profiles      ProfileStorage
	tokens        TokenStorage
	secret        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	sweepInterval time.Duration

	stop chan struct{}
	done chan struct{}
}

func New(
	log *slog.Logger,
	users UserStorage,
	profiles ProfileStorage,
	tokens TokenStorage,
	secret string,
	accessTTL, refreshTTL, sweepInterval time.Duration,
) *Auth {
	return &Auth{
		log:           log,
		users:         users,
		profiles:      profiles,
		tokens:        tokens,
		secret:        secret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		sweepInterval: sweepInterval,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start launches the refresh-token janitor goroutine.
func (a *Auth) Start() {
	go func() {
		defer close(a.done)
		ticker := time.NewTicker(a.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				n, err := a.tokens.DeleteExpiredTokens(ctx, time.Now())
				cancel()
				if err != nil {
					a.log.Warn("token sweep failed", slog.String("error", err.Error()))
					continue
				}
				if n > 0 {
					a.log.Debug("expired refresh tokens removed", slog.Int64("count", n))
				}
			case <-a.stop:
				return
			}
		}
	}()
}

// Stop halts the janitor and waits for it to exit.
func (a *Auth) Stop() {
	close(a.stop)
	<-a.done
}

// Register creates an auth identity plus its profile row and returns the new
// user id.
func (a *Auth) Register(ctx context.Context, email, password, displayName string) (string, error) {
	const op = "auth.Register"

	log := a.log.With(slog.String("op", op))
	log.Info("registering user")

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	id := uuid.NewString()
	if err := a.users.SaveUser(ctx, id, email, passHash); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExists) {
			log.Warn("user already exists")
			return "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		log.Error("failed to save user", slog.String("error", err.Error()))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	profile := entity.Profile{ID: id, Email: email, DisplayName: displayName}
	if err := a.profiles.UpsertProfile(ctx, profile); err != nil {
		log.Error("failed to upsert profile", slog.String("error", err.Error()))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered")
	return id, nil
}

// Login checks the credentials and returns a token pair plus the user id.
func (a *Auth) Login(ctx context.Context, email, password string) (string, string, string, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))
	log.Info("attempting login")

	user, err := a.users.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			log.Warn("user not found")
			return "", "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		log.Error("failed to get user", slog.String("error", err.Error()))
		return "", "", "", fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		log.Info("invalid credentials")
		return "", "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := jwt.NewTokenPair(user, a.secret, a.accessTTL, a.refreshTTL)
	if err != nil {
		log.Error("failed to generate token pair", slog.String("error", err.Error()))
		return "", "", "", fmt.Errorf("%s: %w", op, err)
	}

	if err := a.tokens.SaveToken(ctx, user.ID, pair.RefreshToken, time.Now().Add(a.refreshTTL)); err != nil {
		log.Error("failed to store refresh token", slog.String("error", err.Error()))
		return "", "", "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("logged in")
	return pair.AccessToken, pair.RefreshToken, user.ID, nil
}

// RefreshTokens rotates a refresh token: the presented token must parse, be of
// refresh type and still exist in storage; it is deleted and a new pair issued.
func (a *Auth) RefreshTokens(ctx context.Context, refreshToken string) (string, string, error) {
	const op = "auth.RefreshTokens"

	log := a.log.With(slog.String("op", op))
	log.Info("refreshing tokens")

	claims, err := a.parseClaims(refreshToken, "refresh")
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	email, ok := claims["email"].(string)
	if !ok {
		return "", "", fmt.Errorf("%s: %w: email claim missing", op, ErrInvalidToken)
	}

	user, err := a.users.UserByEmail(ctx, email)
	if err != nil {
		log.Warn("user lookup failed", slog.String("error", err.Error()))
		return "", "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	valid, err := a.tokens.IsRefreshTokenValid(ctx, user.ID, refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	if !valid {
		return "", "", fmt.Errorf("%s: %w: refresh token unknown or expired", op, ErrInvalidToken)
	}

	if err := a.tokens.DeleteRefreshToken(ctx, user.ID, refreshToken); err != nil {
		log.Warn("failed to delete refresh token", slog.String("error", err.Error()))
	}

	pair, err := jwt.NewTokenPair(user, a.secret, a.accessTTL, a.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	if err := a.tokens.SaveToken(ctx, user.ID, pair.RefreshToken, time.Now().Add(a.refreshTTL)); err != nil {
		log.Error("failed to store refresh token", slog.String("error", err.Error()))
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("tokens refreshed")
	return pair.AccessToken, pair.RefreshToken, nil
}

// Logout invalidates the presented refresh token.
func (a *Auth) Logout(ctx context.Context, refreshToken string) error {
	const op = "auth.Logout"

	log := a.log.With(slog.String("op", op))
	log.Info("logout")

	claims, err := a.parseClaims(refreshToken, "refresh")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	email, ok := claims["email"].(string)
	if !ok {
		return fmt.Errorf("%s: %w: email claim missing", op, ErrInvalidToken)
	}

	user, err := a.users.UserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if err := a.tokens.DeleteRefreshToken(ctx, user.ID, refreshToken); err != nil {
		if errors.Is(err, repo.ErrTokenNotFound) {
			return fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("logged out")
	return nil
}

// ValidateToken checks an access token and returns the user id and email from
// its claims.
func (a *Auth) ValidateToken(ctx context.Context, accessToken string) (string, string, error) {
	const op = "auth.ValidateToken"

	claims, err := a.parseClaims(accessToken, "access")
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	uid, ok := claims["uid"].(string)
	if !ok {
		return "", "", fmt.Errorf("%s: %w: uid claim missing", op, ErrInvalidToken)
	}

	email, ok := claims["email"].(string)
	if !ok {
		return "", "", fmt.Errorf("%s: %w: email claim missing", op, ErrInvalidToken)
	}

	return uid, email, nil
}

func (a *Auth) parseClaims(tokenString, wantTyp string) (jwtGo.MapClaims, error) {
	token, err := jwtGo.ParseWithClaims(tokenString, jwtGo.MapClaims{}, func(token *jwtGo.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwtGo.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(a.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwtGo.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid claims", ErrInvalidToken)
	}

	if typ, ok := claims["typ"].(string); !ok || typ != wantTyp {
		return nil, fmt.Errorf("%w: expected %s token, got %v", ErrInvalidToken, wantTyp, claims["typ"])
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: exp claim missing", ErrInvalidToken)
	}
	if time.Unix(int64(exp), 0).Before(time.Now()) {
		return nil, fmt.Errorf("%w: token expired", ErrInvalidToken)
	}

	return claims, nil
}
