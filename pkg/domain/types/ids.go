package types

import (
	"regexp"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var idPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// TenantID identifies a portfolio site. The empty TenantID addresses
// the shared global scope used for fallback personality templates.
type TenantID string

// GlobalTenant is the tenant-less scope for shared resources
const GlobalTenant TenantID = ""

// IsGlobal reports whether the ID addresses the shared global scope
func (t TenantID) IsGlobal() bool {
	return t == GlobalTenant
}

// Validate checks if the TenantID is valid. The global tenant is not a
// valid ID for entities that require a concrete tenant.
func (t TenantID) Validate() error {
	if t == "" {
		return goerr.New("tenant ID cannot be empty")
	}
	if !idPattern.MatchString(string(t)) {
		return goerr.New("tenant ID must be lowercase alphanumeric with hyphens", goerr.V("id", t))
	}
	return nil
}

// String returns the string representation of TenantID
func (t TenantID) String() string {
	return string(t)
}

// EntryID represents a unique identifier for a knowledge entry
type EntryID string

// NewEntryID generates a new random EntryID
func NewEntryID() EntryID {
	return EntryID(uuid.New().String())
}

// Validate checks if the EntryID is valid
func (e EntryID) Validate() error {
	if e == "" {
		return goerr.New("entry ID cannot be empty")
	}
	return nil
}

// String returns the string representation of EntryID
func (e EntryID) String() string {
	return string(e)
}

// TemplateID represents a unique identifier for a personality template
type TemplateID string

// NewTemplateID generates a new random TemplateID
func NewTemplateID() TemplateID {
	return TemplateID(uuid.New().String())
}

// Validate checks if the TemplateID is valid
func (t TemplateID) Validate() error {
	if t == "" {
		return goerr.New("template ID cannot be empty")
	}
	return nil
}

// String returns the string representation of TemplateID
func (t TemplateID) String() string {
	return string(t)
}
