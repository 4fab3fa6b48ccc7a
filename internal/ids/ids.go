// Package ids issues record identifiers. ULIDs sort by creation time, so
// prefix listings over the store come back in insertion order.
package ids

import "github.com/oklog/ulid/v2"

// New returns a lexicographically sortable identifier.
func New() string {
	return ulid.Make().String()
}
