package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidStatus(t *testing.T) {
	for _, s := range ApplicationStatuses {
		assert.True(t, IsValidStatus(s), s)
	}

	assert.False(t, IsValidStatus("Waitlisted"))
	assert.False(t, IsValidStatus("pending")) // enum is case-sensitive
	assert.False(t, IsValidStatus(""))
}

func TestDeriveIcon(t *testing.T) {
	assert.Equal(t, IconReject, DeriveIcon("Rejected"))
	assert.Equal(t, IconReject, DeriveIcon("Rejected - incomplete docs"))
	assert.Equal(t, IconReject, DeriveIcon("REJECTED"))
	assert.Equal(t, IconReview, DeriveIcon("Accepted"))
	assert.Equal(t, IconReview, DeriveIcon("Under Review"))
	assert.Equal(t, IconReview, DeriveIcon("Interview Scheduled"))
}

func TestNewStatusEvent(t *testing.T) {
	now := time.Now()

	event := NewStatusEvent(StatusAccepted, now)
	assert.Equal(t, "Status updated to Accepted", event.Status)
	assert.Equal(t, IconReview, event.Icon)
	assert.Equal(t, DateStamp(now), event.Date)
	assert.Empty(t, event.Comment)

	event = NewStatusEvent(StatusRejected, now)
	assert.Equal(t, IconReject, event.Icon)
}

func TestNewNoteEvent(t *testing.T) {
	event := NewNoteEvent("Missing transcript", "2026-08-28")
	assert.Equal(t, "Agent Note Added", event.Status)
	assert.Equal(t, IconReview, event.Icon)
	assert.Equal(t, "Missing transcript", event.Comment)
	assert.Equal(t, "2026-08-28", event.Date)
}

func TestTimelineScanValue(t *testing.T) {
	timeline := Timeline{
		{Date: "2026-08-01", Status: "Application Submitted", Icon: IconSubmit},
		{Date: "2026-08-10", Status: "Status updated to Under Review", Icon: IconReview},
	}

	raw, err := timeline.Value()
	assert.NoError(t, err)

	var decoded Timeline
	assert.NoError(t, decoded.Scan(raw))
	assert.Equal(t, timeline, decoded)

	// nil timeline stores as an empty jsonb array, not null
	var empty Timeline
	raw, err = empty.Value()
	assert.NoError(t, err)
	assert.Equal(t, "[]", string(raw.([]byte)))
}
