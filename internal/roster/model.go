package roster

import "time"

// ParticipantKind distinguishes registered users from ad-hoc guests
type ParticipantKind string

const (
	KindUser  ParticipantKind = "user"
	KindGuest ParticipantKind = "guest"
)

// Valid reports whether the kind is one of the two known values
func (k ParticipantKind) Valid() bool {
	return k == KindUser || k == KindGuest
}

// ParticipantRef identifies a participant on either side of a split.
// User and guest ids live in different tables, so the kind is part of the
// identity. The struct is comparable and safe to use as a map key.
type ParticipantRef struct {
	Kind ParticipantKind `json:"kind"`
	ID   int64           `json:"id"`
}

// Participant is a member or guest of a group, as supplied by the roster
type Participant struct {
	ParticipantRef
	Name string `json:"name"`
}

// Group represents a group of people splitting expenses together
type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
}

// Guest is a non-member participant attached to a single group
type Guest struct {
	ID        int64     `json:"id"`
	GroupID   int64     `json:"group_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
