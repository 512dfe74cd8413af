package constants

const (
	// BaselineVersion is the schema version created by the embedded baseline migration.
	BaselineVersion = 116
	// SchemaVersion is the structural version of the ledger this build expects.
	SchemaVersion = 123

	// AppVersion is the version code that gates settings migration steps.
	AppVersion = 570
)
