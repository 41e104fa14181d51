// Package config loads and validates run configuration.
//
// A run is configured by an optional CUE file checked against the embedded
// #Run schema, then overridden by command-line flags. The merged Run is
// validated once, before the first attempt; every problem is reported as a
// LoadError so the CLI can map it to a command error.
package config
