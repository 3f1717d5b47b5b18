// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render turns view records into the site's HTML: full pages
// paired with the base layout, and the htmx fragment appended by the
// load-more button.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"spacetraveling/internal/models"
	"spacetraveling/internal/richtext"
)

//go:embed templates/*.html
var templatesFS embed.FS

// SiteName is appended to every page title.
const SiteName = "Spacetraveling"

// LoadMorePath is the route serving further listing pages.
const LoadMorePath = "/posts/more"

// fragments render without the base layout.
var fragments = map[string]bool{
	"posts_more": true,
}

// Renderer executes the embedded templates.
type Renderer struct {
	templates map[string]*template.Template
	rich      *richtext.Serializer
}

// LoadMore is the state of the load-more control.
type LoadMore struct {
	NextPage string
	// OOB marks the control for an out-of-band swap when rendered inside
	// a fragment.
	OOB bool
}

// HasMore reports whether the control is shown.
func (l LoadMore) HasMore() bool { return l.NextPage != "" }

// URL is the fragment URL for the next page.
func (l LoadMore) URL() string {
	return LoadMorePath + "?" + url.Values{"page": {l.NextPage}}.Encode()
}

// Section is one content block ready for the template.
type Section struct {
	Heading string
	HTML    template.HTML
}

type homeData struct {
	Title string
	List  models.PostPagination
}

type postData struct {
	Title   string
	Post    *models.PostDetail
	Content []Section
}

type loadingData struct {
	Title   string
	Refresh int
}

type messageData struct {
	Title string
}

// New parses the embedded templates. lang is written to <html lang>.
func New(rich *richtext.Serializer, lang string) (*Renderer, error) {
	funcMap := template.FuncMap{
		"lang": func() string { return lang },
		"iso": func(t time.Time) string {
			return t.UTC().Format(time.RFC3339)
		},
		"loadMore": func(p models.PostPagination, oob bool) LoadMore {
			return LoadMore{NextPage: p.NextPage, OOB: oob}
		},
	}

	entries, err := templatesFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	rn := &Renderer{templates: make(map[string]*template.Template), rich: rich}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" || name == "partials.html" {
			continue
		}
		tmplName := name[:len(name)-len(".html")]

		var tmpl *template.Template
		if fragments[tmplName] {
			tmpl, err = template.New(name).Funcs(funcMap).ParseFS(
				templatesFS, "templates/partials.html", "templates/"+name,
			)
		} else {
			tmpl, err = template.New("base.html").Funcs(funcMap).ParseFS(
				templatesFS, "templates/base.html", "templates/partials.html", "templates/"+name,
			)
		}
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		rn.templates[tmplName] = tmpl
	}
	return rn, nil
}

// Home renders the listing page.
func (rn *Renderer) Home(list models.PostPagination) ([]byte, error) {
	return rn.execute("home", "base.html", homeData{Title: "Home | " + SiteName, List: list})
}

// Post renders a post page.
func (rn *Renderer) Post(p *models.PostDetail) ([]byte, error) {
	data := postData{
		Title:   p.Title + " | " + SiteName,
		Post:    p,
		Content: make([]Section, 0, len(p.Content)),
	}
	for _, block := range p.Content {
		data.Content = append(data.Content, rn.PostContent(block))
	}
	return rn.execute("post", "base.html", data)
}

// PostContent renders a block's rich text. An empty body yields a section
// with no HTML.
func (rn *Renderer) PostContent(block models.ContentBlock) Section {
	return Section{
		Heading: block.Heading,
		HTML:    template.HTML(rn.rich.AsHTML(block.Body)),
	}
}

// MorePosts renders the fragment appended to the listing by the load-more
// control: the new entries plus an out-of-band replacement of the control.
func (rn *Renderer) MorePosts(page models.PostPagination) ([]byte, error) {
	return rn.execute("posts_more", "fragment", page)
}

// Loading renders the placeholder shown while a post is generated. The
// page reloads itself after refresh.
func (rn *Renderer) Loading(refresh time.Duration) ([]byte, error) {
	secs := int(refresh.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return rn.execute("loading", "base.html", loadingData{Title: SiteName, Refresh: secs})
}

// NotFound renders the page for an unknown post.
func (rn *Renderer) NotFound() ([]byte, error) {
	return rn.execute("notfound", "base.html", messageData{Title: "Post não encontrado | " + SiteName})
}

// Error renders the page served when content cannot be loaded.
func (rn *Renderer) Error() ([]byte, error) {
	return rn.execute("error", "base.html", messageData{Title: SiteName})
}

func (rn *Renderer) execute(name, root string, data any) ([]byte, error) {
	tmpl, ok := rn.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, root, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
