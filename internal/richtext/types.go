// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package richtext

import "strings"

// Block types understood by the serializer.
const (
	TypeHeading1     = "heading1"
	TypeHeading2     = "heading2"
	TypeHeading3     = "heading3"
	TypeHeading4     = "heading4"
	TypeHeading5     = "heading5"
	TypeHeading6     = "heading6"
	TypeParagraph    = "paragraph"
	TypePreformatted = "preformatted"
	TypeListItem     = "list-item"
	TypeOListItem    = "o-list-item"
	TypeImage        = "image"
	TypeEmbed        = "embed"
)

// Span types.
const (
	SpanStrong    = "strong"
	SpanEm        = "em"
	SpanHyperlink = "hyperlink"
	SpanLabel     = "label"
)

// Link types used by hyperlinks and image links.
const (
	LinkWeb      = "Web"
	LinkDocument = "Document"
	LinkMedia    = "Media"
)

// Blocks is an ordered rich text field.
type Blocks []Block

// Block is one structured text node. A block without a type carries a
// Markdown segment in Text.
type Block struct {
	Type   string  `json:"type,omitempty"`
	Text   string  `json:"text"`
	Spans  []Span  `json:"spans,omitempty"`
	URL    string  `json:"url,omitempty"`
	Alt    *string `json:"alt,omitempty"`
	LinkTo *Link   `json:"linkTo,omitempty"`
	OEmbed *OEmbed `json:"oembed,omitempty"`
}

// Span marks a range of a block's text. Start and End are UTF-16 offsets.
type Span struct {
	Start int       `json:"start"`
	End   int       `json:"end"`
	Type  string    `json:"type"`
	Data  *SpanData `json:"data,omitempty"`
}

// SpanData holds hyperlink targets and label names. Both share the
// "data" key in the wire format.
type SpanData struct {
	Link
	Label string `json:"label,omitempty"`
}

// Link points at a web URL, a repository document or a media asset.
type Link struct {
	LinkType string `json:"link_type,omitempty"`
	URL      string `json:"url,omitempty"`
	Target   string `json:"target,omitempty"`
	ID       string `json:"id,omitempty"`
	UID      string `json:"uid,omitempty"`
	Type     string `json:"type,omitempty"`
}

// OEmbed is the provider payload of an embed block.
type OEmbed struct {
	Type         string `json:"type"`
	EmbedURL     string `json:"embed_url"`
	ProviderName string `json:"provider_name"`
	Title        string `json:"title,omitempty"`
	HTML         string `json:"html"`
}

// Words counts whitespace-separated words across all text blocks.
func (bs Blocks) Words() int {
	n := 0
	for _, b := range bs {
		n += len(strings.Fields(b.Text))
	}
	return n
}
