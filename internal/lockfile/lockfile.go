// Package lockfile parses component lockfiles.
//
// Two JSON shapes are accepted: a flat array of entries, or a canonical
// object with an informational schema_version and a components array.
// Entries are either bare reference strings or objects carrying any of
// reference/ref/digest/name; unknown keys are ignored.
package lockfile

import (
	"encoding/json"
	"fmt"
)

// Entry is one resolved lockfile element. Reference may be empty when the
// source object carried neither reference, ref, nor digest; callers treat
// that as invalid input.
type Entry struct {
	Reference string
	Digest    string
}

type element struct {
	Reference string `json:"reference"`
	Ref       string `json:"ref"`
	Digest    string `json:"digest"`
	Name      string `json:"name"`

	bare string
}

func (e *element) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.bare = s
		return nil
	}

	type object element

	var obj object
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	*e = element(obj)

	return nil
}

func (e *element) entry() Entry {
	if e.bare != "" {
		return Entry{Reference: e.bare}
	}

	reference := e.Reference
	if reference == "" {
		reference = e.Ref
	}

	if reference == "" {
		reference = e.Digest
	}

	return Entry{Reference: reference, Digest: e.Digest}
}

type document struct {
	SchemaVersion uint64    `json:"schema_version"`
	Components    []element `json:"components"`
}

// Parse reads a lockfile document, trying the flat array shape first and
// falling back to the canonical wrapper. Failure of both shapes surfaces
// the wrapper's JSON error.
func Parse(data []byte) ([]Entry, error) {
	var flat []element
	if err := json.Unmarshal(data, &flat); err == nil {
		return toEntries(flat), nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse lockfile: %w", err)
	}

	return toEntries(doc.Components), nil
}

func toEntries(elements []element) []Entry {
	entries := make([]Entry, 0, len(elements))
	for i := range elements {
		entries = append(entries, elements[i].entry())
	}

	return entries
}
