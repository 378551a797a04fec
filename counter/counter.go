// Package counter supply the named hit counter store and its persistence
package counter

import (
	"errors"
	"fmt"
)

// Errors returned by Store
var (
	// ErrConflict the counter already exists
	ErrConflict = errors.New("counter exists")
	// ErrNotFound the counter does not exist
	ErrNotFound = errors.New("counter not found")
	// ErrInvalidName the counter name is rejected by the name validator
	ErrInvalidName = errors.New("invalid counter name")
	// ErrOverflow the counter is at its max value
	ErrOverflow = errors.New("counter overflow")
	// ErrMalformed the persisted snapshot can't be decoded
	ErrMalformed = errors.New("malformed snapshot")
)

// Counter is a named counter and its current value
type Counter struct {
	Name  string `json:"name"`
	Value int64  `json:"counter"`
}

// Snapshot is the whole store, name to value
type Snapshot map[string]int64

// Validate rejects negative values
func (s Snapshot) Validate() error {
	for name, v := range s {
		if v < 0 {
			return fmt.Errorf("%w: counter %q has negative value %d", ErrMalformed, name, v)
		}
		if name == "" {
			return fmt.Errorf("%w: empty counter name", ErrMalformed)
		}
	}
	return nil
}

// Persist the snapshot of counters to a persist storage
type Persist interface {
	// Load the snapshot, a missing snapshot is an empty one
	Load() (Snapshot, error)

	// Save replace the persisted snapshot with s
	Save(s Snapshot) error

	// Clear remove the persisted snapshot
	Clear() error
}

// PersistError is a failure of the persist storage
type PersistError struct {
	Op     string
	Target string
	Err    error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s %s fail,err:%v", e.Op, e.Target, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// NopPersist keeps nothing, the store lives only in memory
type NopPersist struct{}

// Load implements Persist.Load
func (NopPersist) Load() (Snapshot, error) {
	return Snapshot{}, nil
}

// Save implements Persist.Save
func (NopPersist) Save(Snapshot) error {
	return nil
}

// Clear implements Persist.Clear
func (NopPersist) Clear() error {
	return nil
}
