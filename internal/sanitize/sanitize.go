// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package sanitize defines the HTML policy applied to post bodies before
// they are written into pages unescaped.
package sanitize

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var (
	headingID  = regexp.MustCompile(`^[a-z0-9_-]+$`)
	className  = regexp.MustCompile(`^[A-Za-z0-9_ -]+$`)
	linkTarget = regexp.MustCompile(`^_blank$`)
	iframeSrc  = regexp.MustCompile(`^https://`)
)

// Policy returns the policy for rich text output: user-generated-content
// defaults plus what the serializer emits (labels, image blocks, oEmbed
// wrappers, https iframes and syntax-highlighting colors).
func Policy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	p.AllowAttrs("class").Matching(className).OnElements("p", "span", "pre", "code", "div")
	p.AllowAttrs("id").Matching(headingID).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("target").Matching(linkTarget).OnElements("a")
	p.AllowAttrs("data-oembed", "data-oembed-type", "data-oembed-provider").OnElements("div")

	p.AllowElements("iframe")
	p.AllowAttrs("src").Matching(iframeSrc).OnElements("iframe")
	p.AllowAttrs("width", "height").Matching(bluemonday.Number).OnElements("iframe")
	p.AllowAttrs("title", "allow", "frameborder", "allowfullscreen").OnElements("iframe")

	p.AllowStyles("color", "background-color", "font-weight", "font-style", "text-decoration").Globally()

	return p
}
