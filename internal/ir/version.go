package ir

// Version constants for persisted records.
const (
	// IRVersion is the record schema version.
	IRVersion = "1"

	// EngineVersion is the choice engine version.
	EngineVersion = "0.1.0"
)
