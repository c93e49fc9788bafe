// Package golike implements the JobProvider contract against the Golike
// gateway API.
//
// The wire contract is observed, not guaranteed: claim success is detected by
// substring-matching the natural-language result message, kept for
// compatibility with the live API. Unmatched schemas are logged so the mapping
// can be widened later.
package golike
