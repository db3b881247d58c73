package types

import (
	"github.com/google/uuid"

	"github.com/sajidkarim/messmate-backend/pkg/enums"
)

// Actor is the caller-supplied identity context. The core never
// authenticates; it only authorizes against the role carried here.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

// Valid reports whether the actor carries a usable identity.
func (a Actor) Valid() bool {
	return a.UserID != uuid.Nil && a.Role.IsValid()
}

// IsSelf reports whether the actor is operating on their own records.
func (a Actor) IsSelf(userID uuid.UUID) bool {
	return a.UserID == userID
}
