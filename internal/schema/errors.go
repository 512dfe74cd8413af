package schema

import (
	"errors"
	"fmt"
)

// ErrNewerSchema is returned when the ledger was written by a newer build.
var ErrNewerSchema = errors.New("ledger schema is newer than this build supports")

// StructuralMigrationError means an upgrade step could not be applied. The ledger is left
// at Version-1 and must not be used.
type StructuralMigrationError struct {
	Version int
	Step    string
	Err     error
}

func (e *StructuralMigrationError) Error() string {
	return fmt.Sprintf("schema upgrade to %d (%s) failed: %v", e.Version, e.Step, e.Err)
}

func (e *StructuralMigrationError) Unwrap() error {
	return e.Err
}

// DataRepairAnomaly describes a best-effort repair that failed or found unexpected data.
// It is reported, never returned.
type DataRepairAnomaly struct {
	Version int
	Repair  string
	Err     error
}

func (e *DataRepairAnomaly) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("data repair %s at %d", e.Repair, e.Version)
	}
	return fmt.Sprintf("data repair %s at %d: %v", e.Repair, e.Version, e.Err)
}

func (e *DataRepairAnomaly) Unwrap() error {
	return e.Err
}
