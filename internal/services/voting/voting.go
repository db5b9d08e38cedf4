package voting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alx-polly/backend/internal/entity"
	"github.com/alx-polly/backend/internal/notify"
	"github.com/alx-polly/backend/internal/repo"
	"github.com/alx-polly/backend/internal/results"
	"github.com/google/uuid"
)

// ErrVoteNotAllowed covers every eligibility rejection: closed or expired
// poll, the can_vote_on_poll check saying no, or a duplicate vote.
var ErrVoteNotAllowed = errors.New("voting not allowed")

type PollStorage interface {
	GetPollByID(ctx context.Context, id string) (entity.Poll, error)
	GetPollOptions(ctx context.Context, pollID string) ([]entity.Option, error)
	GetOptionResults(ctx context.Context, pollID string) ([]entity.OptionResult, error)
}

type VoteStorage interface {
	SaveVote(ctx context.Context, vote entity.Vote) error
	DeleteVotesByUser(ctx context.Context, pollID, userID string) error
	DeleteVotesByIP(ctx context.Context, pollID, voterIP string) error
	VotesByUser(ctx context.Context, pollID, userID string) ([]string, error)
	CanVote(ctx context.Context, pollID string, userID *string, voterIP string) (bool, error)
}

type Service struct {
	log    *slog.Logger
	polls  PollStorage
	votes  VoteStorage
	broker *notify.Broker
	cache  *results.Cache
	now    func() time.Time
}

func NewService(log *slog.Logger, polls PollStorage, votes VoteStorage, broker *notify.Broker, cache *results.Cache) *Service {
	return &Service{
		log:    log,
		polls:  polls,
		votes:  votes,
		broker: broker,
		cache:  cache,
		now:    time.Now,
	}
}

// SubmitVote records a vote. Single-selection polls replace the voter's
// previous choice (delete then insert); multiple-selection polls accumulate.
// Anonymous voters are identified by IP. On success the refreshed poll
// payload is published to streaming subscribers.
func (s *Service) SubmitVote(ctx context.Context, pollID, optionID string, userID *string, voterIP string) error {
	const op = "voting.SubmitVote"

	log := s.log.With(slog.String("op", op), slog.String("pollID", pollID))

	poll, err := s.polls.GetPollByID(ctx, pollID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !poll.IsActive {
		return fmt.Errorf("%s: poll is closed: %w", op, ErrVoteNotAllowed)
	}
	if poll.EndDate != nil && s.now().After(*poll.EndDate) {
		return fmt.Errorf("%s: poll has ended: %w", op, ErrVoteNotAllowed)
	}

	options, err := s.polls.GetPollOptions(ctx, pollID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !containsOption(options, optionID) {
		return fmt.Errorf("%s: %w", op, repo.ErrOptionNotFound)
	}

	allowed, err := s.votes.CanVote(ctx, pollID, userID, voterIP)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !allowed {
		return fmt.Errorf("%s: %w", op, ErrVoteNotAllowed)
	}

	// Replace mode for single-selection polls. Not atomic with the insert
	// below; a concurrent resubmission from the same voter can race.
	if !poll.AllowMultiple {
		if userID != nil {
			err = s.votes.DeleteVotesByUser(ctx, pollID, *userID)
		} else {
			err = s.votes.DeleteVotesByIP(ctx, pollID, voterIP)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	vote := entity.Vote{
		ID:        uuid.NewString(),
		PollID:    pollID,
		OptionID:  optionID,
		UserID:    userID,
		VoterIP:   &voterIP,
		CreatedAt: s.now(),
	}
	if err := s.votes.SaveVote(ctx, vote); err != nil {
		if errors.Is(err, repo.ErrVoteAlreadyExists) {
			return fmt.Errorf("%s: %w", op, ErrVoteNotAllowed)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.cache.Invalidate(pollID)

	update, err := s.Snapshot(ctx, pollID)
	if err != nil {
		// The vote is in; a failed snapshot only costs subscribers one update.
		log.Warn("failed to build update payload", slog.String("error", err.Error()))
		return nil
	}
	s.broker.Publish(pollID, update)

	log.Info("vote recorded", slog.String("optionID", optionID))
	return nil
}

// Snapshot assembles the full poll payload: poll, option results and
// aggregate stats (memoized briefly by the stats cache).
func (s *Service) Snapshot(ctx context.Context, pollID string) (notify.PollUpdate, error) {
	const op = "voting.Snapshot"

	poll, err := s.polls.GetPollByID(ctx, pollID)
	if err != nil {
		return notify.PollUpdate{}, fmt.Errorf("%s: %w", op, err)
	}

	optionResults, err := s.polls.GetOptionResults(ctx, pollID)
	if err != nil {
		return notify.PollUpdate{}, fmt.Errorf("%s: %w", op, err)
	}

	stats := s.cache.Get(pollID, func() results.Stats {
		return results.Compute(optionResults)
	})

	return notify.PollUpdate{Poll: poll, Options: optionResults, Stats: stats}, nil
}

// VotesByUser lists the option ids the user has chosen on a poll.
func (s *Service) VotesByUser(ctx context.Context, pollID, userID string) ([]string, error) {
	const op = "voting.VotesByUser"

	if _, err := s.polls.GetPollByID(ctx, pollID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	optionIDs, err := s.votes.VotesByUser(ctx, pollID, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return optionIDs, nil
}

func containsOption(options []entity.Option, optionID string) bool {
	for _, opt := range options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}
