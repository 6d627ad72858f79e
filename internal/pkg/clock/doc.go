// Package clock provides a tiny time abstraction.
//
// Token issuance and verification read time through Clocker so expiry
// boundaries can be tested with a Frozen clock instead of sleeping.
package clock
