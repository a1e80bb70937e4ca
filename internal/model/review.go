package model

import "time"

// MaxCommentLength is the longest review comment accepted, counted in
// characters after Unicode normalization.
const MaxCommentLength = 500

// Review is an append-only rating one party of a completed reservation
// leaves for the other party.
type Review struct {
	ID        string    `json:"id"`
	BookingID uint64    `json:"booking_id"`
	Reviewer  string    `json:"reviewer"`
	Target    string    `json:"target"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
