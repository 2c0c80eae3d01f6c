// Package errs defines the application's error taxonomy. Each error
// type pairs a sentinel (for errors.Is classification) with a struct
// carrying the offending parameter and an optional cause.
package errs
