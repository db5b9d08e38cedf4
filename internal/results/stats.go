package results

import (
	"math"

	"github.com/alx-polly/backend/internal/entity"
)

// Stats is a single-pass aggregation over a poll's option results.
type Stats struct {
	TotalVotes       int            `json:"totalVotes"`
	UniqueVoters     int            `json:"uniqueVoters"`
	MaxVotes         int            `json:"maxVotes"`
	WinningOptionIDs []string       `json:"winningOptionIds"`
	Percentages      map[string]int `json:"percentages"`
}

// Compute tallies totals, the winning set and per-option percentages.
// Percentages are round(count/total*100) and may not sum to exactly 100.
// The winning set holds every option tied at the maximum count and is empty
// when no votes have been cast.
func Compute(options []entity.OptionResult) Stats {
	stats := Stats{Percentages: make(map[string]int, len(options))}

	voters := make(map[string]struct{})
	for _, opt := range options {
		stats.TotalVotes += opt.VoteCount
		if opt.VoteCount > stats.MaxVotes {
			stats.MaxVotes = opt.VoteCount
		}
		for _, voterID := range opt.VoterIDs {
			voters[voterID] = struct{}{}
		}
	}
	stats.UniqueVoters = len(voters)

	for _, opt := range options {
		if stats.TotalVotes > 0 {
			stats.Percentages[opt.ID] = int(math.Round(float64(opt.VoteCount) / float64(stats.TotalVotes) * 100))
		} else {
			stats.Percentages[opt.ID] = 0
		}
		if stats.MaxVotes > 0 && opt.VoteCount == stats.MaxVotes {
			stats.WinningOptionIDs = append(stats.WinningOptionIDs, opt.ID)
		}
	}

	return stats
}

// Lookup indexes option results by id so repeated reads don't rescan the slice.
type Lookup struct {
	counts map[string]int
	voters map[string]map[string]struct{}
}

func NewLookup(options []entity.OptionResult) *Lookup {
	l := &Lookup{
		counts: make(map[string]int, len(options)),
		voters: make(map[string]map[string]struct{}, len(options)),
	}
	for _, opt := range options {
		l.counts[opt.ID] = opt.VoteCount
		set := make(map[string]struct{}, len(opt.VoterIDs))
		for _, voterID := range opt.VoterIDs {
			set[voterID] = struct{}{}
		}
		l.voters[opt.ID] = set
	}
	return l
}

func (l *Lookup) Count(optionID string) int {
	return l.counts[optionID]
}

func (l *Lookup) HasVoted(optionID, voterID string) bool {
	_, ok := l.voters[optionID][voterID]
	return ok
}

func (l *Lookup) Total() int {
	total := 0
	for _, count := range l.counts {
		total += count
	}
	return total
}

func (l *Lookup) UniqueVoters() int {
	union := make(map[string]struct{})
	for _, set := range l.voters {
		for voterID := range set {
			union[voterID] = struct{}{}
		}
	}
	return len(union)
}
