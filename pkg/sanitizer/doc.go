// Package sanitizer normalizes free-form input before validation and lookup.
//
// All functions are idempotent and never fail: invalid input comes back as
// an empty string, which the validators then reject.
package sanitizer
