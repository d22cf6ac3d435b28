// Package model contain gorm model for recording data to database
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Closed set of application statuses. Any status may move to any other
// status; there is no transition graph.
var (
	StatusPending            = "Pending"
	StatusUnderReview        = "Under Review"
	StatusDocumentsPending   = "Documents Pending"
	StatusInterviewScheduled = "Interview Scheduled"
	StatusAccepted           = "Accepted"
	StatusRejected           = "Rejected"

	// ApplicationStatuses lists every status an application may hold.
	ApplicationStatuses = []string{
		StatusPending,
		StatusUnderReview,
		StatusDocumentsPending,
		StatusInterviewScheduled,
		StatusAccepted,
		StatusRejected,
	}
)

// Icon categories are rendering hints attached to timeline events,
// not status values.
var (
	IconSubmit   = "submit"
	IconVerify   = "verify"
	IconReview   = "review"
	IconReject   = "reject"
	IconCalendar = "calendar"

	// TimelineIcons lists every icon category a timeline event may carry.
	TimelineIcons = []string{IconSubmit, IconVerify, IconReview, IconReject, IconCalendar}
)

// DateLayout is the date stamp format used for submittedDate, lastUpdated
// and timeline event dates.
const DateLayout = "2006-01-02"

// DateStamp formats t as a portal date stamp.
func DateStamp(t time.Time) string {
	return t.Format(DateLayout)
}

// IsValidStatus reports whether s belongs to the closed application
// status set.
func IsValidStatus(s string) bool {
	for _, v := range ApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsValidIcon reports whether s belongs to the closed icon category set.
func IsValidIcon(s string) bool {
	for _, v := range TimelineIcons {
		if v == s {
			return true
		}
	}
	return false
}

// DeriveIcon maps a status description to its icon category. Any text
// containing "reject" maps to the reject category, everything else to review.
func DeriveIcon(status string) string {
	if strings.Contains(strings.ToLower(status), "reject") {
		return IconReject
	}
	return IconReview
}

// TimelineEvent is one entry of an application timeline. Events are
// immutable once appended.
type TimelineEvent struct {
	Date    string `json:"date"`
	Status  string `json:"status"`
	Icon    string `json:"icon"`
	Comment string `json:"comment,omitempty"`
}

// NewStatusEvent builds the single timeline event recording a status change.
func NewStatusEvent(newStatus string, date time.Time) TimelineEvent {
	return TimelineEvent{
		Date:   DateStamp(date),
		Status: fmt.Sprintf("Status updated to %s", newStatus),
		Icon:   DeriveIcon(newStatus),
	}
}

// NewNoteEvent builds the timeline event recording an agent note.
func NewNoteEvent(note string, date string) TimelineEvent {
	return TimelineEvent{
		Date:    date,
		Status:  "Agent Note Added",
		Icon:    IconReview,
		Comment: note,
	}
}

// AgentNote is a remark an agent attached to an application. Immutable once
// created; AgentID references the authoring user.
type AgentNote struct {
	Note    string    `json:"note"`
	Date    string    `json:"date"`
	AgentID uuid.UUID `json:"agent"`
}

// Timeline is a jsonb-backed, append-only event log.
type Timeline []TimelineEvent

// Value implements driver.Valuer so gorm stores the timeline as jsonb.
func (t Timeline) Value() (driver.Value, error) {
	if t == nil {
		t = Timeline{}
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner for reading the jsonb column back.
func (t *Timeline) Scan(src interface{}) error {
	return scanJSON(t, src)
}

// AgentNotes is a jsonb-backed, append-only note list.
type AgentNotes []AgentNote

// Value implements driver.Valuer so gorm stores the notes as jsonb.
func (n AgentNotes) Value() (driver.Value, error) {
	if n == nil {
		n = AgentNotes{}
	}
	return json.Marshal(n)
}

// Scan implements sql.Scanner for reading the jsonb column back.
func (n *AgentNotes) Scan(src interface{}) error {
	return scanJSON(n, src)
}

func scanJSON(dst interface{}, src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}

// Application represents one college application tracked by a student.
type Application struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	University string    `gorm:"type:text;not null" json:"university"`
	Program    string    `gorm:"type:text;not null" json:"program"`
	Status     string    `gorm:"type:text;not null;default:'Pending'" json:"status"`
	Progress   int       `gorm:"not null;default:0;check:progress >= 0 AND progress <= 100" json:"progress"`

	SubmittedDate string `gorm:"type:text" json:"submittedDate"`
	LastUpdated   string `gorm:"type:text" json:"lastUpdated"`

	Timeline   Timeline   `gorm:"type:jsonb;not null;default:'[]'" json:"timeline"`
	AgentNotes AgentNotes `gorm:"type:jsonb;not null;default:'[]'" json:"agentNotes"`

	// StudentID references User.ID (uuid)
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	Student   User      `gorm:"foreignKey:StudentID;references:ID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
