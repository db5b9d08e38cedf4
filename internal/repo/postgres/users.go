package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alx-polly/backend/internal/entity"
	"github.com/alx-polly/backend/internal/repo"
	"github.com/lib/pq"
)

func (s *Storage) SaveUser(ctx context.Context, id, email string, passHash []byte) error {
	const op = "repo.postgres.SaveUser"

	query := `INSERT INTO users (id, email, pass_hash) VALUES ($1, $2, $3)`

	_, err := s.db.ExecContext(ctx, query, id, email, passHash)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%s: %w", op, repo.ErrUserAlreadyExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) UserByEmail(ctx context.Context, email string) (entity.User, error) {
	const op = "repo.postgres.UserByEmail"

	query := `SELECT id, email, pass_hash, created_at FROM users WHERE email = $1`

	var user entity.User
	err := s.db.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Email, &user.PassHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.User{}, fmt.Errorf("%s: %w", op, repo.ErrUserNotFound)
		}
		return entity.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UpsertProfile keeps the profile row in step with the auth identity; polls
// reference profiles, so the row must exist before the first poll insert.
func (s *Storage) UpsertProfile(ctx context.Context, profile entity.Profile) error {
	const op = "repo.postgres.UpsertProfile"

	query := `INSERT INTO profiles (id, email, display_name) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), profiles.display_name)`

	if _, err := s.db.ExecContext(ctx, query, profile.ID, profile.Email, profile.DisplayName); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) ProfileByID(ctx context.Context, id string) (entity.Profile, error) {
	const op = "repo.postgres.ProfileByID"

	query := `SELECT id, email, display_name, created_at FROM profiles WHERE id = $1`

	var profile entity.Profile
	err := s.db.QueryRowContext(ctx, query, id).Scan(&profile.ID, &profile.Email, &profile.DisplayName, &profile.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Profile{}, fmt.Errorf("%s: %w", op, repo.ErrProfileNotFound)
		}
		return entity.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	return profile, nil
}

func (s *Storage) SaveToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	const op = "repo.postgres.SaveToken"

	query := `INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)`

	if _, err := s.db.ExecContext(ctx, query, userID, token, expiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) IsRefreshTokenValid(ctx context.Context, userID, token string) (bool, error) {
	const op = "repo.postgres.IsRefreshTokenValid"

	query := `SELECT EXISTS(
		SELECT 1 FROM refresh_tokens
		WHERE token = $1 AND user_id = $2 AND expires_at > NOW()
	)`

	var valid bool
	if err := s.db.QueryRowContext(ctx, query, token, userID).Scan(&valid); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return valid, nil
}

func (s *Storage) DeleteRefreshToken(ctx context.Context, userID, token string) error {
	const op = "repo.postgres.DeleteRefreshToken"

	query := `DELETE FROM refresh_tokens WHERE token = $1 AND user_id = $2`

	res, err := s.db.ExecContext(ctx, query, token, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, repo.ErrTokenNotFound)
	}

	return nil
}

// DeleteExpiredTokens is run by the auth service janitor.
func (s *Storage) DeleteExpiredTokens(ctx context.Context, before time.Time) (int64, error) {
	const op = "repo.postgres.DeleteExpiredTokens"

	query := `DELETE FROM refresh_tokens WHERE expires_at <= $1`

	res, err := s.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}
