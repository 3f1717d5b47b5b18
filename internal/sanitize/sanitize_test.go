// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicy(t *testing.T) {
	p := Policy()

	tests := []struct {
		name     string
		in       string
		contains []string
		absent   []string
	}{
		{
			name:     "script removed",
			in:       `<p>ok</p><script>alert(1)</script>`,
			contains: []string{"<p>ok</p>"},
			absent:   []string{"<script", "alert"},
		},
		{
			name:     "event handlers removed",
			in:       `<p onclick="x()">hi</p>`,
			contains: []string{"<p>hi</p>"},
			absent:   []string{"onclick"},
		},
		{
			name:     "label classes kept",
			in:       `<p>a <span class="highlight">b</span></p>`,
			contains: []string{`<span class="highlight">b</span>`},
		},
		{
			name:     "oembed wrapper kept",
			in:       `<div data-oembed="https://youtu.be/x" data-oembed-type="video" data-oembed-provider="YouTube"><iframe src="https://www.youtube.com/embed/x" width="480" height="270"></iframe></div>`,
			contains: []string{`data-oembed-provider="YouTube"`, `<iframe src="https://www.youtube.com/embed/x"`},
		},
		{
			name:   "insecure iframe dropped",
			in:     `<iframe src="http://evil.example/x"></iframe>`,
			absent: []string{"evil.example"},
		},
		{
			name:   "javascript links dropped",
			in:     `<a href="javascript:alert(1)">x</a>`,
			absent: []string{"javascript:"},
		},
		{
			name:     "heading ids kept",
			in:       `<h2 id="rumo-a-marte">Rumo</h2>`,
			contains: []string{`id="rumo-a-marte"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := p.Sanitize(tt.in)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, bad := range tt.absent {
				assert.NotContains(t, out, bad)
			}
		})
	}
}
