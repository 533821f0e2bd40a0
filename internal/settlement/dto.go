package settlement

import (
	"github.com/jharmon/splittab/internal/roster"
)

// ParticipantRefRequest identifies a user or guest in request payloads
type ParticipantRefRequest struct {
	Kind string `json:"kind" validate:"required,oneof=user guest"`
	ID   int64  `json:"id" validate:"required,min=1"`
}

// ToRef converts the request form to a domain reference
func (p ParticipantRefRequest) ToRef() roster.ParticipantRef {
	return roster.ParticipantRef{Kind: roster.ParticipantKind(p.Kind), ID: p.ID}
}

// SettleUpRequest asks to clear or reinstate all debt with one counterparty
type SettleUpRequest struct {
	Other ParticipantRefRequest `json:"other" validate:"required"`
}
