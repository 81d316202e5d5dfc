package guide

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// FingerprintSchema versions the fingerprint layout. Bump it whenever
// script derivation or the canonical encoding changes, so stale cached
// audio is implicitly orphaned instead of replayed with wrong text.
const FingerprintSchema = "v1"

// SequenceDigest hashes the full exercise sequence: identifiers,
// names, rep counts and all durations, in order. Any edit to any
// exercise changes the digest and therefore every sequence-bound
// fingerprint.
func SequenceDigest(exercises []Exercise) string {
	h := sha256.New()
	for _, e := range exercises {
		fmt.Fprintf(h, "%s\x1f%s\x1f%d\x1f%d\x1f%d\x1f%d\x1e",
			e.ID, e.Name, e.Reps,
			e.RepDuration.Milliseconds(),
			e.PrepTime.Milliseconds(),
			e.CoolingTime.Milliseconds())
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// Fingerprint computes the content address of a cue's cached audio.
// Identical fingerprints imply identical script text.
func Fingerprint(spec CueSpec, exercises []Exercise) string {
	canonical := strings.Join([]string{
		FingerprintSchema,
		string(spec.Kind),
		spec.ID,
		SequenceDigest(exercises),
		spec.sortedParams(),
	}, "|")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
