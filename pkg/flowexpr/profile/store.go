// Package profile persists per-expression tiering profiles.
//
// A profile records how often an expression ran in each tier, how many
// times a compiled form was installed or discarded, and whether one is
// installed now. Stores are keyed by expression ID.
package profile

import (
	"errors"
	"time"
)

// Store persists profiles.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a profile, overwriting any profile with the same ID.
	Save(p *Profile) error

	// Load retrieves a profile.
	// Returns ErrNotFound if no profile has the ID.
	Load(id string) (*Profile, error)

	// List returns metadata for every stored profile, ordered by ID.
	// Returns an empty slice (not error) if the store is empty.
	List() ([]Info, error)

	// Delete removes a profile.
	// Returns nil if the profile doesn't exist.
	Delete(id string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info provides metadata without decoding the full profile.
type Info struct {
	ID        string
	Source    string
	Timestamp time.Time
	Size      int64
}

// Sentinel errors for profile operations.
var (
	// ErrNotFound indicates a profile doesn't exist.
	ErrNotFound = errors.New("profile not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("profile store closed")

	// ErrInvalidProfile indicates a nil profile or one without an ID.
	ErrInvalidProfile = errors.New("invalid profile")
)

func validate(p *Profile) error {
	if p == nil || p.ID == "" {
		return ErrInvalidProfile
	}
	return nil
}
