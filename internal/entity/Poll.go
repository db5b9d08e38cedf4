package entity

import "time"

type Poll struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	CreatorID     string     `json:"creatorId"`
	IsPublic      bool       `json:"isPublic"`
	IsActive      bool       `json:"isActive"`
	AllowMultiple bool       `json:"allowMultipleSelections"`
	EndDate       *time.Time `json:"endDate,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type Option struct {
	ID         string `json:"id"`
	PollID     string `json:"pollId"`
	Text       string `json:"text"`
	OrderIndex int    `json:"orderIndex"`
}

// OptionResult is one row of the poll_results view: an option together with
// its vote count and the ids of signed-in users who voted for it.
type OptionResult struct {
	Option
	VoteCount int      `json:"voteCount"`
	VoterIDs  []string `json:"voterIds,omitempty"`
}

// PollSummary is a poll joined with poll_stats, used by the listing endpoint.
type PollSummary struct {
	Poll
	TotalVotes int `json:"totalVotes"`
}
