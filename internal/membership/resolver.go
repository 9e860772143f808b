// Package membership resolves product-group membership against the
// external contract store. The registry core only sees the
// freshness.MembershipResolver interface; every implementation here must
// distinguish "group has zero contracts" (empty result) from "lookup
// failed" (error wrapping ErrUnavailable).
package membership

import "errors"

// ErrUnavailable marks a membership lookup that failed or timed out.
// Callers must never treat it as an empty group.
var ErrUnavailable = errors.New("membership resolver unavailable")
