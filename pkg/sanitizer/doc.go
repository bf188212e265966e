// Package sanitizer provides input normalization for request data.
//
// All normalization functions are idempotent - applying them multiple times
// produces the same result. Functions handle invalid input gracefully,
// typically by returning empty strings rather than errors.
//
// Normalization includes:
//   - Strings: Collapse whitespace, trim leading/trailing spaces
//   - Identifiers: Trim and lowercase hex object IDs
//   - Actors: Trim, used as-is for audit attribution
package sanitizer
