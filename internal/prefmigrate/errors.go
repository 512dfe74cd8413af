package prefmigrate

import "fmt"

// SettingsAnomaly describes a legacy value that could not be migrated. The key is dropped
// and the anomaly reported; it is never returned to the caller.
type SettingsAnomaly struct {
	Version int
	Key     string
	Reason  string
	Err     error
}

func (e *SettingsAnomaly) Error() string {
	msg := fmt.Sprintf("settings step %d: %s: %s", e.Version, e.Key, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SettingsAnomaly) Unwrap() error {
	return e.Err
}
