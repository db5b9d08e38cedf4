package entity

import "time"

type User struct {
	ID        string
	Email     string
	PassHash  []byte
	CreatedAt time.Time
}
