// Package detect decides which event kinds a fetched value triggers.
//
// Every function is pure: it takes the cached value (nil when absent) and the
// freshly fetched value and reports the transition. Equality is computed by
// the hand-written routines in equal.go so that mapping order never matters
// and sequence order always does.
package detect
