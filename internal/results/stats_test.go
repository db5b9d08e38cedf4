package results

import (
	"testing"
	"time"

	"github.com/alx-polly/backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func option(id string, count int, voters ...string) entity.OptionResult {
	return entity.OptionResult{
		Option:    entity.Option{ID: id},
		VoteCount: count,
		VoterIDs:  voters,
	}
}

func TestCompute_Example(t *testing.T) {
	// A:3 B:3 C:2 — percentages round to 38/38/25 (sums to 101, allowed
	// rounding slack), winners are the tied A and B.
	options := []entity.OptionResult{
		option("A", 3, "u1", "u2", "u3"),
		option("B", 3, "u1", "u4", "u5"),
		option("C", 2, "u6", "u7"),
	}

	stats := Compute(options)

	assert.Equal(t, 8, stats.TotalVotes)
	assert.Equal(t, 7, stats.UniqueVoters)
	assert.Equal(t, 3, stats.MaxVotes)
	assert.ElementsMatch(t, []string{"A", "B"}, stats.WinningOptionIDs)
	assert.Equal(t, map[string]int{"A": 38, "B": 38, "C": 25}, stats.Percentages)
}

func TestCompute_NoVotes(t *testing.T) {
	options := []entity.OptionResult{
		option("A", 0),
		option("B", 0),
	}

	stats := Compute(options)

	assert.Equal(t, 0, stats.TotalVotes)
	assert.Equal(t, 0, stats.UniqueVoters)
	assert.Equal(t, 0, stats.MaxVotes)
	assert.Empty(t, stats.WinningOptionIDs)
	assert.Equal(t, map[string]int{"A": 0, "B": 0}, stats.Percentages)
}

func TestCompute_SingleWinner(t *testing.T) {
	options := []entity.OptionResult{
		option("A", 5, "u1"),
		option("B", 1, "u2"),
	}

	stats := Compute(options)

	assert.Equal(t, []string{"A"}, stats.WinningOptionIDs)
	assert.Equal(t, 83, stats.Percentages["A"])
	assert.Equal(t, 17, stats.Percentages["B"])
}

func TestCompute_NoOptions(t *testing.T) {
	stats := Compute(nil)

	assert.Equal(t, 0, stats.TotalVotes)
	assert.Empty(t, stats.WinningOptionIDs)
	assert.Empty(t, stats.Percentages)
}

func TestLookup(t *testing.T) {
	options := []entity.OptionResult{
		option("A", 3, "u1", "u2", "u3"),
		option("B", 2, "u1", "u4"),
	}

	l := NewLookup(options)

	assert.Equal(t, 3, l.Count("A"))
	assert.Equal(t, 2, l.Count("B"))
	assert.Equal(t, 0, l.Count("missing"))
	assert.True(t, l.HasVoted("A", "u1"))
	assert.False(t, l.HasVoted("A", "u4"))
	assert.Equal(t, 5, l.Total())
	assert.Equal(t, 4, l.UniqueVoters())
}

func TestCache_MemoizesWithinTTL(t *testing.T) {
	cache := NewCache(time.Second)

	current := time.Unix(1000, 0)
	cache.now = func() time.Time { return current }

	calls := 0
	compute := func() Stats {
		calls++
		return Stats{TotalVotes: calls}
	}

	first := cache.Get("poll-1", compute)
	second := cache.Get("poll-1", compute)
	require.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	// past the TTL the entry is stale and recomputed
	current = current.Add(2 * time.Second)
	third := cache.Get("poll-1", compute)
	require.Equal(t, 2, calls)
	assert.Equal(t, 2, third.TotalVotes)
}

func TestCache_Invalidate(t *testing.T) {
	cache := NewCache(time.Minute)

	calls := 0
	compute := func() Stats {
		calls++
		return Stats{TotalVotes: calls}
	}

	cache.Get("poll-1", compute)
	cache.Invalidate("poll-1")
	cache.Get("poll-1", compute)

	assert.Equal(t, 2, calls)
}

func TestCache_PerPollEntries(t *testing.T) {
	cache := NewCache(time.Minute)

	a := cache.Get("poll-a", func() Stats { return Stats{TotalVotes: 1} })
	b := cache.Get("poll-b", func() Stats { return Stats{TotalVotes: 2} })

	assert.Equal(t, 1, a.TotalVotes)
	assert.Equal(t, 2, b.TotalVotes)
}
