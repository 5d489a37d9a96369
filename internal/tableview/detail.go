package tableview

import "strings"

// Section is one heading inside a details row. Paragraphs are separated by
// a stronger break than the lines within them.
type Section struct {
	Heading    string
	Paragraphs [][]string
}

// DetailRows holds the two synthesized rows for one record: the sectioned
// details row and the full-content row. Both start hidden.
type DetailRows struct {
	ID          int64
	Sections    []Section
	FullContent string
}

// BuildDetailRows synthesizes the hidden detail rows for a table row.
// An attribute that is empty or equals its placeholder contributes no
// section, so a record with nothing to expand yields zero sections.
func BuildDetailRows(r Row) DetailRows {
	d := DetailRows{
		ID:          r.ID,
		FullContent: r.FullContent,
	}

	if s, ok := attachmentSection(r.Attachments); ok {
		d.Sections = append(d.Sections, s)
	}
	if s, ok := embedSection(r.Embeds); ok {
		d.Sections = append(d.Sections, s)
	}
	if s, ok := editSection(r.EditHistory); ok {
		d.Sections = append(d.Sections, s)
	}

	return d
}

// attachmentSection splits the packed value on ", ", one entry per line.
func attachmentSection(value string) (Section, bool) {
	if value == "" || value == NoAttachments {
		return Section{}, false
	}

	entries := strings.Split(value, AttachmentSeparator)
	paragraphs := make([][]string, 0, len(entries))
	for _, e := range entries {
		paragraphs = append(paragraphs, []string{e})
	}
	return Section{Heading: "Attachments", Paragraphs: paragraphs}, true
}

// embedSection splits on " || " into paragraphs first, then each paragraph
// on " | " into lines. The outer separator must be processed before the
// inner one so it produces the stronger break.
func embedSection(value string) (Section, bool) {
	if value == "" || value == NoEmbeds {
		return Section{}, false
	}

	outer := strings.Split(value, OuterSeparator)
	paragraphs := make([][]string, 0, len(outer))
	for _, p := range outer {
		paragraphs = append(paragraphs, strings.Split(p, InnerSeparator))
	}
	return Section{Heading: "Embeds", Paragraphs: paragraphs}, true
}

// editSection splits the packed value on " || ", one entry per line.
func editSection(value string) (Section, bool) {
	if value == "" || value == NoEdits {
		return Section{}, false
	}

	entries := strings.Split(value, OuterSeparator)
	paragraphs := make([][]string, 0, len(entries))
	for _, e := range entries {
		paragraphs = append(paragraphs, []string{e})
	}
	return Section{Heading: "Edit history", Paragraphs: paragraphs}, true
}
