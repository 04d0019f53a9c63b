// Package importer parses bookmark files for bulk import and defines
// the flat entry format shared with export.
package importer

import (
	"encoding/json"
	"io"
	"time"
)

// Entry is one bookmark in the flat interchange format. Export writes a
// JSON array of these; import accepts the same array back (or a
// Netscape HTML file reduced to title/url entries).
type Entry struct {
	Title             string    `json:"title"`
	URL               string    `json:"url"`
	Slug              string    `json:"slug"`
	ForwardingEnabled bool      `json:"forwarding_enabled"`
	Pinned            bool      `json:"pinned"`
	CreatedAt         time.Time `json:"created_at"`
}

// ParseJSON decodes a flat JSON bookmark array.
func ParseJSON(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}
