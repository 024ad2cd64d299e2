// Package person defines the local directory records that agents are synced
// into, the user accounts linked to them, and the store that persists both.
package person

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Status is the publication status of a person record
type Status string

const (
	// StatusPublish marks a live record
	StatusPublish Status = "publish"

	// StatusDraft marks a soft-deleted record
	StatusDraft Status = "draft"
)

// Person is a local directory record mirrored from a remote agent
type Person struct {
	ID      uuid.UUID
	Title   string
	Content string
	Status  Status
	Fields  Fields

	// RoleTerm is the role taxonomy term assigned from the agent role
	RoleTerm string

	// LinkedUserID is the user account linked to this person, if any
	LinkedUserID string

	// AgentID and AgentUUID record which remote agent produced the record
	AgentID   string
	AgentUUID string

	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Fields holds the structured profile attributes of a person
type Fields struct {
	Email         string
	Phone         string
	JobTitle      string
	NMLS          string
	LicenseNumber string
	Biography     string
	Specialties   []string
	Languages     []string
	HeadshotID    *uuid.UUID
}

// MergeNonEmpty overwrites the receiver's fields with every non-empty value
// from src. Empty source values never clear an existing value.
func (f *Fields) MergeNonEmpty(src Fields) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&f.Email, src.Email)
	setString(&f.Phone, src.Phone)
	setString(&f.JobTitle, src.JobTitle)
	setString(&f.NMLS, src.NMLS)
	setString(&f.LicenseNumber, src.LicenseNumber)
	setString(&f.Biography, src.Biography)

	if len(src.Specialties) > 0 {
		f.Specialties = append([]string(nil), src.Specialties...)
	}
	if len(src.Languages) > 0 {
		f.Languages = append([]string(nil), src.Languages...)
	}
	if src.HeadshotID != nil {
		id := *src.HeadshotID
		f.HeadshotID = &id
	}
}

// Clone returns a deep copy of the person
func (p *Person) Clone() *Person {
	if p == nil {
		return nil
	}
	c := *p
	c.Fields.Specialties = append([]string(nil), p.Fields.Specialties...)
	c.Fields.Languages = append([]string(nil), p.Fields.Languages...)
	if p.Fields.HeadshotID != nil {
		id := *p.Fields.HeadshotID
		c.Fields.HeadshotID = &id
	}
	if p.DeletedAt != nil {
		t := *p.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

// User is a local user account that may be linked to a person
type User struct {
	ID             string
	Email          string
	LinkedPersonID *uuid.UUID
}

// Stats summarises the directory for the status endpoint
type Stats struct {
	// TotalPeople counts published people
	TotalPeople int

	// LinkedUsers counts people linked to a user account
	LinkedUsers int
}

// NormalizeEmail returns the form used to match emails: trimmed, NFC and
// lowercased
func NormalizeEmail(email string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(email)))
}
