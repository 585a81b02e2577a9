package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  Buy milk ", "Buy milk"},
		{"<b>Bold</b> move", "Bold move"},
		{"<script>alert(1)</script>Rent", "Rent"},
		{"Tom & Jerry", "Tom & Jerry"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}

func TestHTML(t *testing.T) {
	assert.Equal(t, "<b>ok</b>", HTML("<b>ok</b>"))
	assert.Equal(t, "hi", HTML(`<span onclick="x()">hi</span>`))
	assert.NotContains(t, HTML(`<a href="javascript:alert(1)">x</a>`), "javascript")
	assert.Contains(t, HTML(`<a href="https://example.com">x</a>`), `href="https://example.com"`)
	assert.NotContains(t, HTML(`<img src="x" onerror="alert(1)">`), "onerror")
}
