// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package richtext serializes Prismic structured text into HTML.
//
// Text is always escaped and spans are emitted well nested, even when they
// overlap in the source. Embed blocks carry provider HTML that is written
// as-is; callers that do not trust the repository should configure a
// Sanitizer, which then sees the complete output.
package richtext

import (
	"html"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"unicode/utf16"

	"spacetraveling/internal/markdown"
)

// LinkResolver maps a link to a repository document onto a site path.
type LinkResolver func(Link) string

// Sanitizer cleans serialized HTML. *bluemonday.Policy satisfies it.
type Sanitizer interface {
	Sanitize(string) string
}

// PostLinkResolver sends document links to the post detail route.
func PostLinkResolver(l Link) string {
	if l.UID == "" {
		return "/"
	}
	return "/post/" + url.PathEscape(l.UID)
}

// Serializer converts rich text blocks to HTML.
type Serializer struct {
	resolve   LinkResolver
	sanitizer Sanitizer
}

// New creates a Serializer. A nil resolver uses PostLinkResolver; a nil
// sanitizer leaves output untouched.
func New(resolve LinkResolver, sanitizer Sanitizer) *Serializer {
	if resolve == nil {
		resolve = PostLinkResolver
	}
	return &Serializer{resolve: resolve, sanitizer: sanitizer}
}

// AsHTML renders blocks in order. Empty input yields "".
func (s *Serializer) AsHTML(blocks Blocks) string {
	if len(blocks) == 0 {
		return ""
	}

	var b strings.Builder
	for i := 0; i < len(blocks); {
		blk := blocks[i]
		if blk.Type == TypeListItem || blk.Type == TypeOListItem {
			tag := "ul"
			if blk.Type == TypeOListItem {
				tag = "ol"
			}
			b.WriteString("<" + tag + ">")
			for i < len(blocks) && blocks[i].Type == blk.Type {
				b.WriteString("<li>")
				s.writeInline(&b, blocks[i])
				b.WriteString("</li>")
				i++
			}
			b.WriteString("</" + tag + ">")
			continue
		}
		s.writeBlock(&b, blk)
		i++
	}

	out := b.String()
	if s.sanitizer != nil {
		out = s.sanitizer.Sanitize(out)
	}
	return out
}

func (s *Serializer) writeBlock(b *strings.Builder, blk Block) {
	switch blk.Type {
	case TypeHeading1, TypeHeading2, TypeHeading3, TypeHeading4, TypeHeading5, TypeHeading6:
		tag := "h" + blk.Type[len(blk.Type)-1:]
		b.WriteString("<" + tag + ">")
		s.writeInline(b, blk)
		b.WriteString("</" + tag + ">")
	case TypeParagraph:
		b.WriteString("<p>")
		s.writeInline(b, blk)
		b.WriteString("</p>")
	case TypePreformatted:
		b.WriteString("<pre>")
		s.writeInline(b, blk)
		b.WriteString("</pre>")
	case TypeImage:
		s.writeImage(b, blk)
	case TypeEmbed:
		s.writeEmbed(b, blk)
	case "":
		if strings.TrimSpace(blk.Text) == "" {
			return
		}
		rendered, err := markdown.ToHTML(blk.Text)
		if err != nil {
			slog.Warn("markdown segment failed, rendering as text", "error", err)
			b.WriteString("<p>" + escapeText(blk.Text) + "</p>")
			return
		}
		b.WriteString(rendered)
	default:
		slog.Debug("skipping unknown rich text block", "type", blk.Type)
	}
}

func (s *Serializer) writeImage(b *strings.Builder, blk Block) {
	if blk.URL == "" {
		return
	}
	alt := ""
	if blk.Alt != nil {
		alt = *blk.Alt
	}
	img := `<img src="` + attr(safeURL(blk.URL)) + `" alt="` + attr(alt) + `" />`

	b.WriteString(`<p class="block-img">`)
	if blk.LinkTo != nil {
		if href := s.href(*blk.LinkTo); href != "" {
			b.WriteString(s.openAnchor(*blk.LinkTo, href) + img + "</a>")
			b.WriteString("</p>")
			return
		}
	}
	b.WriteString(img)
	b.WriteString("</p>")
}

func (s *Serializer) writeEmbed(b *strings.Builder, blk Block) {
	if blk.OEmbed == nil {
		return
	}
	e := blk.OEmbed
	b.WriteString(`<div data-oembed="` + attr(e.EmbedURL) +
		`" data-oembed-type="` + attr(e.Type) +
		`" data-oembed-provider="` + attr(e.ProviderName) + `">`)
	b.WriteString(e.HTML)
	b.WriteString("</div>")
}

// writeInline emits a block's text with its spans applied. Text is split at
// every span boundary; for each segment the currently open tags are compared
// with the spans covering it, closing and reopening only what differs.
func (s *Serializer) writeInline(b *strings.Builder, blk Block) {
	units := utf16.Encode([]rune(blk.Text))
	n := len(units)

	type indexed struct {
		Span
		idx int
	}
	var spans []indexed
	for i, sp := range blk.Spans {
		if !knownSpan(sp.Type) {
			continue
		}
		if sp.Start < 0 {
			sp.Start = 0
		}
		if sp.End > n {
			sp.End = n
		}
		if sp.Start >= sp.End {
			continue
		}
		spans = append(spans, indexed{Span: sp, idx: i})
	}
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End > spans[j].End
	})

	bounds := []int{0, n}
	for _, sp := range spans {
		bounds = append(bounds, sp.Start, sp.End)
	}
	sort.Ints(bounds)

	var open []indexed
	for i := 0; i+1 < len(bounds); i++ {
		from, to := bounds[i], bounds[i+1]
		if from == to {
			continue
		}

		var active []indexed
		for _, sp := range spans {
			if sp.Start <= from && sp.End >= to {
				active = append(active, sp)
			}
		}

		keep := 0
		for keep < len(open) && keep < len(active) && open[keep].idx == active[keep].idx {
			keep++
		}
		for j := len(open) - 1; j >= keep; j-- {
			b.WriteString(closeTag(open[j].Type))
		}
		open = open[:keep]
		for _, sp := range active[keep:] {
			b.WriteString(s.openTag(sp.Span))
			open = append(open, sp)
		}

		b.WriteString(escapeText(string(utf16.Decode(units[from:to]))))
	}
	for j := len(open) - 1; j >= 0; j-- {
		b.WriteString(closeTag(open[j].Type))
	}
}

func knownSpan(t string) bool {
	switch t {
	case SpanStrong, SpanEm, SpanHyperlink, SpanLabel:
		return true
	}
	return false
}

func (s *Serializer) openTag(sp Span) string {
	switch sp.Type {
	case SpanStrong:
		return "<strong>"
	case SpanEm:
		return "<em>"
	case SpanLabel:
		label := ""
		if sp.Data != nil {
			label = sp.Data.Label
		}
		return `<span class="` + attr(label) + `">`
	case SpanHyperlink:
		if sp.Data == nil {
			return `<a href="#">`
		}
		href := s.href(sp.Data.Link)
		if href == "" {
			href = "#"
		}
		return s.openAnchor(sp.Data.Link, href)
	}
	return ""
}

func closeTag(spanType string) string {
	switch spanType {
	case SpanStrong:
		return "</strong>"
	case SpanEm:
		return "</em>"
	case SpanLabel:
		return "</span>"
	case SpanHyperlink:
		return "</a>"
	}
	return ""
}

func (s *Serializer) openAnchor(l Link, href string) string {
	tag := `<a href="` + attr(href) + `"`
	if l.Target != "" {
		tag += ` target="` + attr(l.Target) + `" rel="noopener noreferrer"`
	}
	return tag + ">"
}

// href resolves a link to a URL, or "" when it cannot be resolved.
func (s *Serializer) href(l Link) string {
	if l.LinkType == LinkDocument {
		return s.resolve(l)
	}
	if l.URL == "" {
		return ""
	}
	return safeURL(l.URL)
}

// safeURL drops schemes that can execute script.
func safeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "#"
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto", "tel":
		return u.String()
	}
	return "#"
}

func escapeText(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br />")
}

func attr(s string) string {
	return html.EscapeString(s)
}
