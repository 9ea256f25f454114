// Package fingerprint computes the deterministic content-identity digest used
// for exact-duplicate detection across harvest cycles.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// separator sits between link and title so that ("ab","c") and ("a","bc")
// cannot collide.
const separator = "|"

// Compute returns SHA-256(link + "|" + title) as a 64-character lowercase hex
// string. It is pure and stable across process restarts: no salt, no time
// component. Hash collisions are treated as true duplicates by design.
func Compute(link, title string) string {
	sum := sha256.Sum256([]byte(link + separator + title))
	return hex.EncodeToString(sum[:])
}
