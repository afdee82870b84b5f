package types

import "github.com/m-mizutani/goerr/v2"

// EntryKind classifies a knowledge entry
type EntryKind string

const (
	// EntryKindProject describes one portfolio project
	EntryKindProject EntryKind = "project"

	// EntryKindMeta describes the site owner themselves
	EntryKindMeta EntryKind = "meta"

	// EntryKindIndex is an overview entry listing what the site covers
	EntryKindIndex EntryKind = "index"

	// EntryKindDocs is long-form documentation
	EntryKindDocs EntryKind = "docs"

	// EntryKindCustom is operator-defined content
	EntryKindCustom EntryKind = "custom"
)

// FallbackKinds are the kinds served when no keyword tag matches a
// question, so the assistant can still answer from overview material.
var FallbackKinds = []EntryKind{EntryKindMeta, EntryKindIndex}

// AllEntryKinds returns all valid entry kinds
func AllEntryKinds() []EntryKind {
	return []EntryKind{
		EntryKindProject,
		EntryKindMeta,
		EntryKindIndex,
		EntryKindDocs,
		EntryKindCustom,
	}
}

// IsValid checks if the entry kind is valid
func (k EntryKind) IsValid() bool {
	switch k {
	case EntryKindProject,
		EntryKindMeta,
		EntryKindIndex,
		EntryKindDocs,
		EntryKindCustom:
		return true
	default:
		return false
	}
}

// Validate returns an error for an unknown entry kind
func (k EntryKind) Validate() error {
	if !k.IsValid() {
		return goerr.New("invalid entry kind", goerr.V("kind", string(k)))
	}
	return nil
}

// String returns the string representation of the entry kind
func (k EntryKind) String() string {
	return string(k)
}
