package frs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// RoleLoanOfficer is the agent role mirrored into the local directory
const RoleLoanOfficer = "loan_officer"

// Agent is a remote agent record as returned by the FRS API
type Agent struct {
	ID            ID         `json:"id"`
	UUID          string     `json:"uuid,omitempty"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name,omitempty"`
	LastName      string     `json:"last_name,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	JobTitle      string     `json:"job_title,omitempty"`
	NMLSNumber    string     `json:"nmls_number,omitempty"`
	LicenseNumber string     `json:"license_number,omitempty"`
	Biography     string     `json:"biography,omitempty"`
	Specialties   StringList `json:"specialties_lo,omitempty"`
	Languages     StringList `json:"languages,omitempty"`
	HeadshotURL   string     `json:"headshot_url,omitempty"`
	Role          string     `json:"role,omitempty"`
}

// IsLoanOfficer reports whether the agent has the loan officer role
func (a *Agent) IsLoanOfficer() bool {
	return a.Role == RoleLoanOfficer
}

// ID is a remote identifier. The API emits it as a number or a string.
type ID string

// UnmarshalJSON accepts a JSON string, number or null
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("id must be a string or number: %w", err)
		}
		*id = ID(n.String())
	}
	return nil
}

func (id ID) String() string {
	return string(id)
}

// StringList is a list of strings that the API sends either as a JSON
// array or as a single comma-separated string. Items are kept as sent;
// trimming happens when the list is mapped.
type StringList []string

// UnmarshalJSON accepts an array of scalars, a comma-separated string or null
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*l = nil
			return nil
		}
		*l = strings.Split(s, ",")
		return nil
	}

	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("expected a list or a comma-separated string: %w", err)
	}
	out := make(StringList, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case nil:
		case string:
			out = append(out, v)
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	*l = out
	return nil
}

// AgentPage is one page of the agent listing
type AgentPage struct {
	Agents []Agent

	// Invalid counts entries that could not be decoded into an Agent
	Invalid int
}

// WebhookRegistration is the body sent when registering a webhook
type WebhookRegistration struct {
	Name   string   `json:"name"`
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Active bool     `json:"active"`
}

// WebhookCredentials is returned by a successful registration. Either field may be empty.
type WebhookCredentials struct {
	WebhookID string
	Secret    string
}
