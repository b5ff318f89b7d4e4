// Package repository holds the MySQL-backed stores: the catalog, the
// full-text search procedures, seat snapshots and editorial metadata, the
// crosslisting relation and subjects.  Missing rows are not errors unless
// a method says otherwise; ErrNotFound marks the cases where they are.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a single-row lookup yields nothing.
// Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// placeholders returns "?,?,...,?" with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
