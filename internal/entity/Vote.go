package entity

import "time"

type Vote struct {
	ID        string    `json:"id"`
	PollID    string    `json:"pollId"`
	OptionID  string    `json:"optionId"`
	UserID    *string   `json:"userId,omitempty"`
	VoterIP   *string   `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}
