package polls

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/alx-polly/backend/internal/entity"
	"github.com/alx-polly/backend/internal/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePollStorage struct {
	polls          map[string]entity.Poll
	savedOptions   []entity.Option
	deleted        []string
	savePollErr    error
	saveOptionsErr error
	deleteErr      error
}

func newFakePollStorage() *fakePollStorage {
	return &fakePollStorage{polls: make(map[string]entity.Poll)}
}

func (f *fakePollStorage) SavePoll(_ context.Context, poll entity.Poll) error {
	if f.savePollErr != nil {
		return f.savePollErr
	}
	f.polls[poll.ID] = poll
	return nil
}

func (f *fakePollStorage) SaveOptions(_ context.Context, options []entity.Option) error {
	if f.saveOptionsErr != nil {
		return f.saveOptionsErr
	}
	f.savedOptions = append(f.savedOptions, options...)
	return nil
}

func (f *fakePollStorage) GetPollByID(_ context.Context, id string) (entity.Poll, error) {
	poll, ok := f.polls[id]
	if !ok {
		return entity.Poll{}, repo.ErrPollNotFound
	}
	return poll, nil
}

func (f *fakePollStorage) ListPublicPolls(_ context.Context) ([]entity.PollSummary, error) {
	var list []entity.PollSummary
	for _, poll := range f.polls {
		if poll.IsPublic && poll.IsActive {
			list = append(list, entity.PollSummary{Poll: poll})
		}
	}
	return list, nil
}

func (f *fakePollStorage) ListPollsByCreator(_ context.Context, creatorID string) ([]entity.PollSummary, error) {
	var list []entity.PollSummary
	for _, poll := range f.polls {
		if poll.CreatorID == creatorID {
			list = append(list, entity.PollSummary{Poll: poll})
		}
	}
	return list, nil
}

func (f *fakePollStorage) SetPollActive(_ context.Context, id string, active bool) error {
	poll, ok := f.polls[id]
	if !ok {
		return repo.ErrPollNotFound
	}
	poll.IsActive = active
	f.polls[id] = poll
	return nil
}

func (f *fakePollStorage) DeletePoll(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	delete(f.polls, id)
	return nil
}

type fakeProfileStorage struct {
	upserted []entity.Profile
	err      error
}

func (f *fakeProfileStorage) UpsertProfile(_ context.Context, profile entity.Profile) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, profile)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validInput() NewPoll {
	return NewPoll{
		Title:    "Favorite language?",
		Options:  []string{"Go", "Rust"},
		IsPublic: true,
	}
}

func TestCreatePoll_Success(t *testing.T) {
	storage := newFakePollStorage()
	profiles := &fakeProfileStorage{}
	service := NewService(discardLogger(), storage, profiles)

	creator := entity.Profile{ID: "user-1", Email: "u@example.com"}

	input := validInput()
	input.Options = []string{"Go", "Rust", "Zig"}

	pollID, outcome, err := service.CreatePoll(context.Background(), creator, input)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)
	require.NotEmpty(t, pollID)

	poll := storage.polls[pollID]
	assert.Equal(t, "Favorite language?", poll.Title)
	assert.Equal(t, "user-1", poll.CreatorID)
	assert.True(t, poll.IsActive)

	require.Len(t, storage.savedOptions, 3)
	for i, opt := range storage.savedOptions {
		assert.Equal(t, pollID, opt.PollID)
		assert.Equal(t, i, opt.OrderIndex)
	}

	require.Len(t, profiles.upserted, 1)
	assert.Equal(t, "user-1", profiles.upserted[0].ID)
}

func TestCreatePoll_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*NewPoll)
		wantErr bool
	}{
		{name: "valid", mutate: func(p *NewPoll) {}, wantErr: false},
		{name: "title length 2", mutate: func(p *NewPoll) { p.Title = "ab" }, wantErr: true},
		{name: "title length 3", mutate: func(p *NewPoll) { p.Title = "abc" }, wantErr: false},
		{name: "title length 201", mutate: func(p *NewPoll) { p.Title = strings.Repeat("x", 201) }, wantErr: true},
		{name: "title length 200", mutate: func(p *NewPoll) { p.Title = strings.Repeat("x", 200) }, wantErr: false},
		{name: "one option", mutate: func(p *NewPoll) { p.Options = []string{"only"} }, wantErr: true},
		{name: "eleven options", mutate: func(p *NewPoll) {
			p.Options = nil
			for i := 0; i < 11; i++ {
				p.Options = append(p.Options, strings.Repeat("o", i+1))
			}
		}, wantErr: true},
		{name: "ten options", mutate: func(p *NewPoll) {
			p.Options = nil
			for i := 0; i < 10; i++ {
				p.Options = append(p.Options, strings.Repeat("o", i+1))
			}
		}, wantErr: false},
		{name: "duplicate options case-insensitive", mutate: func(p *NewPoll) { p.Options = []string{"Yes", "yes"} }, wantErr: true},
		{name: "option text 101 chars", mutate: func(p *NewPoll) { p.Options = []string{strings.Repeat("x", 101), "b"} }, wantErr: true},
		{name: "option text 100 chars", mutate: func(p *NewPoll) { p.Options = []string{strings.Repeat("x", 100), "b"} }, wantErr: false},
		{name: "empty option text", mutate: func(p *NewPoll) { p.Options = []string{"", "b"} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := newFakePollStorage()
			service := NewService(discardLogger(), storage, &fakeProfileStorage{})

			input := validInput()
			tt.mutate(&input)

			_, outcome, err := service.CreatePoll(context.Background(), entity.Profile{ID: "user-1"}, input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrValidation)
				assert.Equal(t, OutcomeNone, outcome)
				// rejected before any write
				assert.Empty(t, storage.polls)
				assert.Empty(t, storage.savedOptions)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCreatePoll_OptionsFailureCompensated(t *testing.T) {
	storage := newFakePollStorage()
	storage.saveOptionsErr = errors.New("insert failed")
	service := NewService(discardLogger(), storage, &fakeProfileStorage{})

	_, outcome, err := service.CreatePoll(context.Background(), entity.Profile{ID: "user-1"}, validInput())

	require.Error(t, err)
	assert.Equal(t, OutcomeCompensated, outcome)
	require.Len(t, storage.deleted, 1)
	assert.Empty(t, storage.polls)
}

func TestCreatePoll_CompensationFailureOrphans(t *testing.T) {
	storage := newFakePollStorage()
	storage.saveOptionsErr = errors.New("insert failed")
	storage.deleteErr = errors.New("delete failed")
	service := NewService(discardLogger(), storage, &fakeProfileStorage{})

	_, outcome, err := service.CreatePoll(context.Background(), entity.Profile{ID: "user-1"}, validInput())

	require.Error(t, err)
	assert.Equal(t, OutcomeOrphaned, outcome)
	// the poll row is left behind
	assert.Len(t, storage.polls, 1)
}

func TestDeletePoll_NotOwner(t *testing.T) {
	storage := newFakePollStorage()
	storage.polls["poll-1"] = entity.Poll{ID: "poll-1", CreatorID: "owner"}
	service := NewService(discardLogger(), storage, &fakeProfileStorage{})

	err := service.DeletePoll(context.Background(), "poll-1", "intruder")

	require.ErrorIs(t, err, ErrNotOwner)
	assert.Empty(t, storage.deleted)
	assert.Contains(t, storage.polls, "poll-1")
}

func TestDeletePoll_Owner(t *testing.T) {
	storage := newFakePollStorage()
	storage.polls["poll-1"] = entity.Poll{ID: "poll-1", CreatorID: "owner"}
	service := NewService(discardLogger(), storage, &fakeProfileStorage{})

	err := service.DeletePoll(context.Background(), "poll-1", "owner")

	require.NoError(t, err)
	assert.Equal(t, []string{"poll-1"}, storage.deleted)
}

func TestDeletePoll_Missing(t *testing.T) {
	service := NewService(discardLogger(), newFakePollStorage(), &fakeProfileStorage{})

	err := service.DeletePoll(context.Background(), "nope", "owner")

	require.ErrorIs(t, err, repo.ErrPollNotFound)
}

func TestClosePoll(t *testing.T) {
	storage := newFakePollStorage()
	storage.polls["poll-1"] = entity.Poll{ID: "poll-1", CreatorID: "owner", IsActive: true}
	service := NewService(discardLogger(), storage, &fakeProfileStorage{})

	require.NoError(t, service.ClosePoll(context.Background(), "poll-1", "owner"))
	assert.False(t, storage.polls["poll-1"].IsActive)

	err := service.ClosePoll(context.Background(), "poll-1", "intruder")
	require.ErrorIs(t, err, ErrNotOwner)
}

func TestListPolls(t *testing.T) {
	storage := newFakePollStorage()
	storage.polls["p1"] = entity.Poll{ID: "p1", CreatorID: "alice", IsPublic: true, IsActive: true}
	storage.polls["p2"] = entity.Poll{ID: "p2", CreatorID: "bob", IsPublic: false, IsActive: true}
	service := NewService(discardLogger(), storage, &fakeProfileStorage{})

	public, err := service.ListPolls(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "p1", public[0].ID)

	bobs, err := service.ListPolls(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	assert.Equal(t, "p2", bobs[0].ID)
}
