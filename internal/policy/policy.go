// Package policy maps roles to the operations they may perform on portal
// records. Every mutating and scoped-read handler consults CanPerform so
// authorization rules live in one place.
package policy

import (
	"github.com/google/uuid"

	"UniTrack-backend/internal/model"
)

// Operation identifies one guarded action on a record.
type Operation int

const (
	// ApplicationRead reads a single application.
	ApplicationRead Operation = iota
	// ApplicationCreate creates an application for the caller.
	ApplicationCreate
	// ApplicationUpdate merges partial fields, including status changes.
	ApplicationUpdate
	// ApplicationDelete hard-deletes an application.
	ApplicationDelete
	// ApplicationAddNote appends an agent note.
	ApplicationAddNote
	// ScholarshipManage creates, updates or deletes catalog entries.
	ScholarshipManage
	// ScholarshipAppRead reads a single scholarship application.
	ScholarshipAppRead
	// ScholarshipAppCreate creates a scholarship application for the caller.
	ScholarshipAppCreate
	// ScholarshipAppUpdate replaces fields of a scholarship application.
	ScholarshipAppUpdate
	// ScholarshipAppDelete deletes a scholarship application.
	ScholarshipAppDelete
)

// CanPerform reports whether a caller with the given role may perform op on
// a record owned by ownerID. For create operations ownerID is the id the
// record will be created under.
func CanPerform(role string, op Operation, ownerID, callerID uuid.UUID) bool {
	switch role {
	case model.RoleStudent:
		switch op {
		case ApplicationRead, ApplicationCreate, ApplicationUpdate, ApplicationDelete,
			ScholarshipAppRead, ScholarshipAppCreate, ScholarshipAppUpdate, ScholarshipAppDelete:
			return ownerID == callerID
		}
		return false

	case model.RoleAgent:
		switch op {
		case ApplicationRead, ApplicationAddNote:
			return true
		}
		return false

	case model.RoleAdmin:
		switch op {
		case ApplicationRead, ApplicationUpdate, ApplicationDelete, ScholarshipManage:
			return true
		}
		return false
	}

	return false
}
