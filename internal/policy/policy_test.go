package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"UniTrack-backend/internal/model"
)

func TestCanPerform(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	cases := []struct {
		name    string
		role    string
		op      Operation
		ownerID uuid.UUID
		caller  uuid.UUID
		want    bool
	}{
		{"student reads own application", model.RoleStudent, ApplicationRead, owner, owner, true},
		{"student reads someone else's application", model.RoleStudent, ApplicationRead, owner, other, false},
		{"student updates own application", model.RoleStudent, ApplicationUpdate, owner, owner, true},
		{"student deletes someone else's application", model.RoleStudent, ApplicationDelete, owner, other, false},
		{"student cannot add notes", model.RoleStudent, ApplicationAddNote, owner, owner, false},
		{"student cannot manage scholarships", model.RoleStudent, ScholarshipManage, owner, owner, false},
		{"student updates own scholarship application", model.RoleStudent, ScholarshipAppUpdate, owner, owner, true},
		{"student updates other's scholarship application", model.RoleStudent, ScholarshipAppUpdate, owner, other, false},

		{"agent reads any application", model.RoleAgent, ApplicationRead, owner, other, true},
		{"agent notes any application", model.RoleAgent, ApplicationAddNote, owner, other, true},
		{"agent cannot update applications", model.RoleAgent, ApplicationUpdate, owner, other, false},
		{"agent cannot delete applications", model.RoleAgent, ApplicationDelete, owner, other, false},
		{"agent cannot manage scholarships", model.RoleAgent, ScholarshipManage, owner, other, false},

		{"admin reads any application", model.RoleAdmin, ApplicationRead, owner, other, true},
		{"admin updates any application", model.RoleAdmin, ApplicationUpdate, owner, other, true},
		{"admin deletes any application", model.RoleAdmin, ApplicationDelete, owner, other, true},
		{"admin manages scholarships", model.RoleAdmin, ScholarshipManage, owner, other, true},
		{"admin cannot add agent notes", model.RoleAdmin, ApplicationAddNote, owner, other, false},
		{"admin cannot create student applications", model.RoleAdmin, ApplicationCreate, owner, other, false},

		{"unknown role denied", "visitor", ApplicationRead, owner, owner, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanPerform(tc.role, tc.op, tc.ownerID, tc.caller))
		})
	}
}
