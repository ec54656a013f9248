package service

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Cooker renders raw markdown into the sanitized HTML stored next to it.
type Cooker struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewCooker() *Cooker {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	return &Cooker{md: md, policy: bluemonday.UGCPolicy()}
}

func (c *Cooker) Cook(raw string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(raw), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return c.policy.Sanitize(buf.String()), nil
}
