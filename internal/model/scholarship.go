package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Scholarship catalog enums.
var (
	ScholarshipTypes    = []string{"Merit-based", "Need-based", "Research", "Athletic", "Other"}
	ScholarshipStatuses = []string{"Open", "Closed", "In Review"}

	// ScholarshipAppStatuses is the closed status set for per-student
	// scholarship applications.
	ScholarshipAppStatuses = []string{
		"Draft", "Submitted", "In Review", "Documents Pending", "Accepted", "Rejected",
	}

	// DocumentStatuses is the closed status set for required documents.
	DocumentStatuses = []string{"Pending", "Submitted", "In Progress", "Rejected"}
)

// IsValidScholarshipAppStatus reports whether s is a valid scholarship
// application status.
func IsValidScholarshipAppStatus(s string) bool {
	for _, v := range ScholarshipAppStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsValidDocumentStatus reports whether s is a valid document status.
func IsValidDocumentStatus(s string) bool {
	for _, v := range DocumentStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ScholarshipRequirements describes eligibility criteria for a scholarship.
type ScholarshipRequirements struct {
	GPA       string         `gorm:"type:text" json:"gpa"`
	Major     pq.StringArray `gorm:"type:text[]" json:"major"`
	Residency string         `gorm:"type:text" json:"residency"`
	Level     string         `gorm:"type:text" json:"level"`
}

// Scholarship is one admin-managed catalog entry.
type Scholarship struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name       string    `gorm:"type:text;not null" json:"name"`
	University string    `gorm:"type:text;not null" json:"university"`
	Amount     float64   `gorm:"not null" json:"amount"`
	Type       string    `gorm:"type:text;not null" json:"type"`
	Deadline   time.Time `gorm:"type:timestamp" json:"deadline"`
	Status     string    `gorm:"type:text;not null;default:'Open'" json:"status"`

	Requirements ScholarshipRequirements `gorm:"embedded;embeddedPrefix:req_" json:"requirements"`

	Description string `gorm:"type:text" json:"description"`
	Featured    bool   `gorm:"not null;default:false" json:"featured"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Document is one required document of a scholarship application. Each
// document is independently mutable.
type Document struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	URL    string `json:"url"`
}

// DocumentList is a jsonb-backed document collection.
type DocumentList []Document

// Value implements driver.Valuer so gorm stores the documents as jsonb.
func (d DocumentList) Value() (driver.Value, error) {
	if d == nil {
		d = DocumentList{}
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for reading the jsonb column back.
func (d *DocumentList) Scan(src interface{}) error {
	return scanJSON(d, src)
}

// ScholarshipApplication tracks one student's application to a scholarship.
type ScholarshipApplication struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`

	// ScholarshipID references Scholarship.ID (uuid)
	ScholarshipID uuid.UUID   `gorm:"type:uuid;not null;index" json:"scholarship_id"`
	Scholarship   Scholarship `gorm:"foreignKey:ScholarshipID;references:ID" json:"scholarship"`

	// StudentID references User.ID (uuid)
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	Student   User      `gorm:"foreignKey:StudentID;references:ID" json:"-"`

	Status          string       `gorm:"type:text;not null;default:'Draft'" json:"status"`
	Progress        int          `gorm:"not null;default:0;check:progress >= 0 AND progress <= 100" json:"progress"`
	ApplicationDate time.Time    `gorm:"type:timestamp;default:CURRENT_TIMESTAMP" json:"applicationDate"`
	Documents       DocumentList `gorm:"type:jsonb;not null;default:'[]'" json:"documents"`
	NextStep        string       `gorm:"type:text" json:"nextStep"`
	Notes           string       `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
