// Package tableview builds the expandable message table: it packs message
// relations into delimited row attributes, synthesizes the hidden detail
// rows for each record, and tracks per-record visibility state.
package tableview

import (
	"fmt"
	"strings"

	"github.com/guildlog/guildlog-backend/internal/models"
)

// Delimiters used to pack multi-valued fields into single row attributes.
// The detail-row builder splits on the same strings, so they must stay in
// sync with BuildDetailRows.
const (
	AttachmentSeparator = ", "
	OuterSeparator      = " || "
	InnerSeparator      = " | "
)

// Placeholder strings signalling an attribute has nothing to render.
const (
	NoAttachments = "No attachments"
	NoEmbeds      = "No embeds"
	NoEdits       = "No edits"
)

// Row is one rendered table row: a stable record identifier plus the four
// packed string attributes the detail-row builder consumes.
type Row struct {
	ID          int64
	ChannelName string
	AuthorName  string
	CreatedAt   string
	Deleted     bool
	Preview     string

	Attachments string
	Embeds      string
	EditHistory string
	FullContent string
}

// BuildRow packs a message and its loaded relations into a table row.
func BuildRow(m *models.Message) Row {
	return Row{
		ID:          m.ID,
		ChannelName: m.ChannelName,
		AuthorName:  m.AuthorName,
		CreatedAt:   m.CreatedAt.Format("2006-01-02 15:04:05"),
		Deleted:     m.Deleted,
		Preview:     preview(m.Content, 80),
		Attachments: PackAttachments(m.Attachments),
		Embeds:      PackEmbeds(m.Embeds),
		EditHistory: PackEdits(m.Edits),
		FullContent: m.Content,
	}
}

// PackAttachments joins attachment filenames with ", ", or returns the
// placeholder when there are none.
func PackAttachments(attachments []models.Attachment) string {
	if len(attachments) == 0 {
		return NoAttachments
	}

	names := make([]string, 0, len(attachments))
	for _, a := range attachments {
		name := a.Filename
		if name == "" {
			name = a.URL
		}
		names = append(names, name)
	}
	return strings.Join(names, AttachmentSeparator)
}

// PackEmbeds packs each embed's parts with " | " and joins embeds with
// " || ", or returns the placeholder when there are none.
func PackEmbeds(embeds []models.Embed) string {
	if len(embeds) == 0 {
		return NoEmbeds
	}

	packed := make([]string, 0, len(embeds))
	for _, e := range embeds {
		parts := make([]string, 0, 2+len(e.Fields))
		if e.Title != "" {
			parts = append(parts, e.Title)
		}
		if e.Description != "" {
			parts = append(parts, e.Description)
		}
		for _, f := range e.Fields {
			parts = append(parts, fmt.Sprintf("%s: %s", f.Name, f.Value))
		}
		if len(parts) == 0 {
			if e.URL != "" {
				parts = append(parts, e.URL)
			} else {
				parts = append(parts, e.Type)
			}
		}
		packed = append(packed, strings.Join(parts, InnerSeparator))
	}
	return strings.Join(packed, OuterSeparator)
}

// PackEdits joins prior content values with " || " in edit order, or
// returns the placeholder when the message was never edited.
func PackEdits(edits []models.MessageEdit) string {
	if len(edits) == 0 {
		return NoEdits
	}

	entries := make([]string, 0, len(edits))
	for _, e := range edits {
		entries = append(entries, e.OldContent)
	}
	return strings.Join(entries, OuterSeparator)
}

func preview(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "…"
}
