package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSequence = "choicegen/sequence/v1"
	DomainRun      = "choicegen/run/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SequenceHash computes the content address of a decision sequence.
// Two attempts that made the same decisions hash identically regardless of
// which provider produced them.
func SequenceHash(decisions []Decision) (string, error) {
	canonical, err := MarshalCanonical(decisions)
	if err != nil {
		return "", fmt.Errorf("SequenceHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSequence, canonical), nil
}

// SignatureHash hashes a rendered signature string such as "0_1_1".
func SignatureHash(signature string) string {
	return hashWithDomain(DomainSequence, []byte(signature))
}

// RunConfigHash computes the content address of a run configuration.
func RunConfigHash(cfg map[string]any) (string, error) {
	canonical, err := MarshalCanonical(cfg)
	if err != nil {
		return "", fmt.Errorf("RunConfigHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRun, canonical), nil
}

// MustRunConfigHash is like RunConfigHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustRunConfigHash(cfg map[string]any) string {
	h, err := RunConfigHash(cfg)
	if err != nil {
		panic(err)
	}
	return h
}
