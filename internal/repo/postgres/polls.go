package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alx-polly/backend/internal/entity"
	"github.com/alx-polly/backend/internal/repo"
	"github.com/lib/pq"
)

func (s *Storage) SavePoll(ctx context.Context, poll entity.Poll) error {
	const op = "repo.postgres.SavePoll"

	query := `INSERT INTO polls (id, title, description, creator_id, is_public, is_active, allow_multiple, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query,
		poll.ID, poll.Title, poll.Description, poll.CreatorID,
		poll.IsPublic, poll.IsActive, poll.AllowMultiple, poll.EndDate)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) SaveOptions(ctx context.Context, options []entity.Option) error {
	const op = "repo.postgres.SaveOptions"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	query := `INSERT INTO poll_options (id, poll_id, text, order_index) VALUES ($1, $2, $3, $4)`
	for _, opt := range options {
		if _, err := tx.ExecContext(ctx, query, opt.ID, opt.PollID, opt.Text, opt.OrderIndex); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) GetPollByID(ctx context.Context, id string) (entity.Poll, error) {
	const op = "repo.postgres.GetPollByID"

	query := `SELECT id, title, description, creator_id, is_public, is_active, allow_multiple, end_date, created_at
		FROM polls WHERE id = $1`

	var poll entity.Poll
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&poll.ID, &poll.Title, &poll.Description, &poll.CreatorID,
		&poll.IsPublic, &poll.IsActive, &poll.AllowMultiple, &poll.EndDate, &poll.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Poll{}, fmt.Errorf("%s: %w", op, repo.ErrPollNotFound)
		}
		return entity.Poll{}, fmt.Errorf("%s: %w", op, err)
	}

	return poll, nil
}

func (s *Storage) ListPublicPolls(ctx context.Context) ([]entity.PollSummary, error) {
	const op = "repo.postgres.ListPublicPolls"

	query := `SELECT p.id, p.title, p.description, p.creator_id, p.is_public, p.is_active, p.allow_multiple,
			p.end_date, p.created_at, COALESCE(ps.total_votes, 0)
		FROM polls p
		LEFT JOIN poll_stats ps ON ps.poll_id = p.id
		WHERE p.is_public AND p.is_active
		ORDER BY p.created_at DESC`

	return s.scanPollSummaries(ctx, op, query)
}

func (s *Storage) ListPollsByCreator(ctx context.Context, creatorID string) ([]entity.PollSummary, error) {
	const op = "repo.postgres.ListPollsByCreator"

	query := `SELECT p.id, p.title, p.description, p.creator_id, p.is_public, p.is_active, p.allow_multiple,
			p.end_date, p.created_at, COALESCE(ps.total_votes, 0)
		FROM polls p
		LEFT JOIN poll_stats ps ON ps.poll_id = p.id
		WHERE p.creator_id = $1
		ORDER BY p.created_at DESC`

	return s.scanPollSummaries(ctx, op, query, creatorID)
}

func (s *Storage) scanPollSummaries(ctx context.Context, op, query string, args ...any) ([]entity.PollSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var polls []entity.PollSummary
	for rows.Next() {
		var p entity.PollSummary
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.CreatorID, &p.IsPublic, &p.IsActive,
			&p.AllowMultiple, &p.EndDate, &p.CreatedAt, &p.TotalVotes); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		polls = append(polls, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return polls, nil
}

func (s *Storage) GetPollOptions(ctx context.Context, pollID string) ([]entity.Option, error) {
	const op = "repo.postgres.GetPollOptions"

	query := `SELECT id, poll_id, text, order_index FROM poll_options WHERE poll_id = $1 ORDER BY order_index`

	rows, err := s.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var options []entity.Option
	for rows.Next() {
		var opt entity.Option
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Text, &opt.OrderIndex); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		options = append(options, opt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return options, nil
}

// GetOptionResults reads the poll_results view: options with their vote
// counts and distinct signed-in voter ids.
func (s *Storage) GetOptionResults(ctx context.Context, pollID string) ([]entity.OptionResult, error) {
	const op = "repo.postgres.GetOptionResults"

	query := `SELECT id, poll_id, text, order_index, vote_count, voter_ids
		FROM poll_results WHERE poll_id = $1 ORDER BY order_index`

	rows, err := s.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var results []entity.OptionResult
	for rows.Next() {
		var res entity.OptionResult
		if err := rows.Scan(&res.ID, &res.PollID, &res.Text, &res.OrderIndex,
			&res.VoteCount, pq.Array(&res.VoterIDs)); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return results, nil
}

func (s *Storage) SetPollActive(ctx context.Context, id string, active bool) error {
	const op = "repo.postgres.SetPollActive"

	query := `UPDATE polls SET is_active = $1 WHERE id = $2`

	res, err := s.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, repo.ErrPollNotFound)
	}

	return nil
}

func (s *Storage) DeletePoll(ctx context.Context, id string) error {
	const op = "repo.postgres.DeletePoll"

	query := `DELETE FROM polls WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, repo.ErrPollNotFound)
	}

	return nil
}
