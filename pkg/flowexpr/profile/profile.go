package profile

import (
	"encoding/json"
	"time"
)

// Version is the current profile format version.
const Version = 1

// Profile is a snapshot of one expression handle's tiering history.
// Profiles are diagnostics; loading one never changes how an expression runs.
type Profile struct {
	Version   int       `json:"version"`
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`

	// Counters
	Evaluations     int64 `json:"evaluations"`
	InterpretedRuns int64 `json:"interpreted_runs"`
	CompiledRuns    int64 `json:"compiled_runs"`
	Compilations    int64 `json:"compilations"`
	Invalidations   int64 `json:"invalidations"`
	FailedAttempts  int64 `json:"failed_attempts"`

	// Compiled is true while a compiled form is installed.
	Compiled bool `json:"compiled"`
	// Descriptor is the root node's exit descriptor at snapshot time.
	Descriptor string `json:"descriptor,omitempty"`
}

// New creates a profile for the expression with the given ID and source.
func New(id, source string) *Profile {
	return &Profile{
		Version:   Version,
		ID:        id,
		Source:    source,
		Timestamp: time.Now().UTC(),
	}
}

// Marshal serializes a profile to JSON.
func (p *Profile) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// Unmarshal deserializes a profile from JSON.
func Unmarshal(data []byte) (*Profile, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
