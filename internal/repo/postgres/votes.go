package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/alx-polly/backend/internal/entity"
	"github.com/alx-polly/backend/internal/repo"
	"github.com/lib/pq"
)

func (s *Storage) SaveVote(ctx context.Context, vote entity.Vote) error {
	const op = "repo.postgres.SaveVote"

	query := `INSERT INTO votes (id, poll_id, option_id, user_id, voter_ip) VALUES ($1, $2, $3, $4, $5)`

	_, err := s.db.ExecContext(ctx, query, vote.ID, vote.PollID, vote.OptionID, vote.UserID, vote.VoterIP)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%s: %w", op, repo.ErrVoteAlreadyExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteVotesByUser(ctx context.Context, pollID, userID string) error {
	const op = "repo.postgres.DeleteVotesByUser"

	query := `DELETE FROM votes WHERE poll_id = $1 AND user_id = $2`

	if _, err := s.db.ExecContext(ctx, query, pollID, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteVotesByIP(ctx context.Context, pollID, voterIP string) error {
	const op = "repo.postgres.DeleteVotesByIP"

	query := `DELETE FROM votes WHERE poll_id = $1 AND user_id IS NULL AND voter_ip = $2`

	if _, err := s.db.ExecContext(ctx, query, pollID, voterIP); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// VotesByUser returns the option ids the given user has voted for on a poll.
func (s *Storage) VotesByUser(ctx context.Context, pollID, userID string) ([]string, error) {
	const op = "repo.postgres.VotesByUser"

	query := `SELECT option_id FROM votes WHERE poll_id = $1 AND user_id = $2 ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, pollID, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var optionIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		optionIDs = append(optionIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return optionIDs, nil
}

// CanVote calls the can_vote_on_poll eligibility function. userID is nil for
// anonymous voters, who are identified by IP instead.
func (s *Storage) CanVote(ctx context.Context, pollID string, userID *string, voterIP string) (bool, error) {
	const op = "repo.postgres.CanVote"

	query := `SELECT can_vote_on_poll($1, $2, $3)`

	var allowed bool
	if err := s.db.QueryRowContext(ctx, query, pollID, userID, voterIP).Scan(&allowed); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return allowed, nil
}
