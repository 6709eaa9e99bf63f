package media

import "strings"

// Metadata is the resolved record returned for each surviving candidate.
// Every field is always serialized; unknown values are empty strings.
type Metadata struct {
	Title       string `json:"title"`
	Type        Kind   `json:"type"`
	Author      string `json:"author"`
	Year        string `json:"year"`
	Description string `json:"description"`
}

// Normalized trims every field. Callers decide how to handle an empty title.
func (m Metadata) Normalized() Metadata {
	return Metadata{
		Title:       strings.TrimSpace(m.Title),
		Type:        Kind(strings.TrimSpace(string(m.Type))),
		Author:      strings.TrimSpace(m.Author),
		Year:        strings.TrimSpace(m.Year),
		Description: strings.TrimSpace(m.Description),
	}
}
