package polls

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alx-polly/backend/internal/entity"
	"github.com/google/uuid"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotOwner   = errors.New("not the poll owner")
)

const (
	titleMinLen  = 3
	titleMaxLen  = 200
	minOptions   = 2
	maxOptions   = 10
	optionMaxLen = 100
)

// CreateOutcome tags how far the two-step poll+options write got.
type CreateOutcome int

const (
	// OutcomeNone: nothing was written.
	OutcomeNone CreateOutcome = iota
	// OutcomeCreated: poll and options both written.
	OutcomeCreated
	// OutcomeCompensated: options failed, the poll row was rolled back.
	OutcomeCompensated
	// OutcomeOrphaned: options failed and the compensating delete failed too,
	// leaving a poll row with no options.
	OutcomeOrphaned
)

type PollStorage interface {
	SavePoll(ctx context.Context, poll entity.Poll) error
	SaveOptions(ctx context.Context, options []entity.Option) error
	GetPollByID(ctx context.Context, id string) (entity.Poll, error)
	ListPublicPolls(ctx context.Context) ([]entity.PollSummary, error)
	ListPollsByCreator(ctx context.Context, creatorID string) ([]entity.PollSummary, error)
	SetPollActive(ctx context.Context, id string, active bool) error
	DeletePoll(ctx context.Context, id string) error
}

type ProfileStorage interface {
	UpsertProfile(ctx context.Context, profile entity.Profile) error
}

type NewPoll struct {
	Title         string
	Description   string
	Options       []string
	AllowMultiple bool
	IsPublic      bool
	EndDate       *time.Time
}

type Service struct {
	log      *slog.Logger
	polls    PollStorage
	profiles ProfileStorage
	now      func() time.Time
}

func NewService(log *slog.Logger, polls PollStorage, profiles ProfileStorage) *Service {
	return &Service{
		log:      log,
		polls:    polls,
		profiles: profiles,
		now:      time.Now,
	}
}

// CreatePoll validates the input, makes sure the creator's profile row exists,
// then performs the poll+options writes as a saga: if the options insert
// fails, the poll row is deleted to compensate. The outcome tag reports
// whether compensation succeeded, so a partial failure is never silent.
func (s *Service) CreatePoll(ctx context.Context, creator entity.Profile, input NewPoll) (string, CreateOutcome, error) {
	const op = "polls.CreatePoll"

	log := s.log.With(slog.String("op", op), slog.String("creatorID", creator.ID))

	if err := validate(input); err != nil {
		return "", OutcomeNone, err
	}

	if err := s.profiles.UpsertProfile(ctx, creator); err != nil {
		log.Error("failed to upsert profile", slog.String("error", err.Error()))
		return "", OutcomeNone, fmt.Errorf("%s: %w", op, err)
	}

	poll := entity.Poll{
		ID:            uuid.NewString(),
		Title:         strings.TrimSpace(input.Title),
		Description:   strings.TrimSpace(input.Description),
		CreatorID:     creator.ID,
		IsPublic:      input.IsPublic,
		IsActive:      true,
		AllowMultiple: input.AllowMultiple,
		EndDate:       input.EndDate,
		CreatedAt:     s.now(),
	}

	if err := s.polls.SavePoll(ctx, poll); err != nil {
		log.Error("failed to save poll", slog.String("error", err.Error()))
		return "", OutcomeNone, fmt.Errorf("%s: %w", op, err)
	}

	options := make([]entity.Option, 0, len(input.Options))
	for i, text := range input.Options {
		options = append(options, entity.Option{
			ID:         uuid.NewString(),
			PollID:     poll.ID,
			Text:       strings.TrimSpace(text),
			OrderIndex: i,
		})
	}

	if err := s.polls.SaveOptions(ctx, options); err != nil {
		log.Error("failed to save options", slog.String("pollID", poll.ID), slog.String("error", err.Error()))

		if delErr := s.polls.DeletePoll(ctx, poll.ID); delErr != nil {
			log.Error("compensating delete failed, poll orphaned",
				slog.String("pollID", poll.ID), slog.String("error", delErr.Error()))
			return "", OutcomeOrphaned, fmt.Errorf("%s: %w", op, err)
		}
		return "", OutcomeCompensated, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("poll created", slog.String("pollID", poll.ID))
	return poll.ID, OutcomeCreated, nil
}

// ListPolls returns the creator's polls when creatorID is set, otherwise the
// public active listing.
func (s *Service) ListPolls(ctx context.Context, creatorID string) ([]entity.PollSummary, error) {
	const op = "polls.ListPolls"

	var (
		polls []entity.PollSummary
		err   error
	)
	if creatorID != "" {
		polls, err = s.polls.ListPollsByCreator(ctx, creatorID)
	} else {
		polls, err = s.polls.ListPublicPolls(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return polls, nil
}

func (s *Service) GetPoll(ctx context.Context, id string) (entity.Poll, error) {
	const op = "polls.GetPoll"

	poll, err := s.polls.GetPollByID(ctx, id)
	if err != nil {
		return entity.Poll{}, fmt.Errorf("%s: %w", op, err)
	}

	return poll, nil
}

// ClosePoll flips the active flag off. Owner only.
func (s *Service) ClosePoll(ctx context.Context, id, userID string) error {
	const op = "polls.ClosePoll"

	if err := s.requireOwner(ctx, id, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.polls.SetPollActive(ctx, id, false); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("poll closed", slog.String("op", op), slog.String("pollID", id))
	return nil
}

// DeletePoll removes a poll. Owner only; options and votes cascade at the
// database level.
func (s *Service) DeletePoll(ctx context.Context, id, userID string) error {
	const op = "polls.DeletePoll"

	if err := s.requireOwner(ctx, id, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.polls.DeletePoll(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("poll deleted", slog.String("op", op), slog.String("pollID", id))
	return nil
}

func (s *Service) requireOwner(ctx context.Context, pollID, userID string) error {
	poll, err := s.polls.GetPollByID(ctx, pollID)
	if err != nil {
		return err
	}
	if poll.CreatorID != userID {
		return ErrNotOwner
	}
	return nil
}

func validate(input NewPoll) error {
	title := strings.TrimSpace(input.Title)
	if n := utf8.RuneCountInString(title); n < titleMinLen || n > titleMaxLen {
		return fmt.Errorf("%w: title must be %d-%d characters", ErrValidation, titleMinLen, titleMaxLen)
	}

	if n := len(input.Options); n < minOptions || n > maxOptions {
		return fmt.Errorf("%w: polls need %d-%d options", ErrValidation, minOptions, maxOptions)
	}

	seen := make(map[string]struct{}, len(input.Options))
	for _, text := range input.Options {
		text = strings.TrimSpace(text)
		if text == "" {
			return fmt.Errorf("%w: option text must not be empty", ErrValidation)
		}
		if utf8.RuneCountInString(text) > optionMaxLen {
			return fmt.Errorf("%w: option text must be at most %d characters", ErrValidation, optionMaxLen)
		}
		key := strings.ToLower(text)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate option %q", ErrValidation, text)
		}
		seen[key] = struct{}{}
	}

	return nil
}
