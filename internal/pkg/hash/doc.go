// Package hash provides one-way hashing for credential secrets.
//
// Stored credentials keep only the encoded hash. Verification recomputes the
// hash from the candidate secret and compares in constant time, so a mismatch
// and a malformed stored value are indistinguishable to callers.
package hash
