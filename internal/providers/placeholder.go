package providers

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"ai-tools-backend/internal/models"
)

const placeholderPromptRunes = 80

// Placeholder synthesizes an SVG card carrying the prompt. It cannot fail.
type Placeholder struct{}

func (Placeholder) Name() string { return "svg-placeholder" }

func (p Placeholder) Finalize(req *models.GenerationRequest) *models.Artifact {
	return &models.Artifact{
		Data:     []byte(PlaceholderSVG(req.Prompt)),
		MimeKind: "image/svg+xml",
		Stage:    p.Name(),
	}
}

// escapeXML also replaces runes outside the XML Char range with U+FFFD.
func escapeXML(s string) string {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer cannot fail.
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// PlaceholderSVG truncates before escaping so an entity is never cut in half.
func PlaceholderSVG(prompt string) string {
	text := escapeXML(truncate(prompt, placeholderPromptRunes))

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="512" height="512">`)
	b.WriteString(`<defs><linearGradient id="grad" x1="0%" y1="0%" x2="100%" y2="100%">`)
	b.WriteString(`<stop offset="0%" style="stop-color:#e5e7eb;stop-opacity:1"/>`)
	b.WriteString(`<stop offset="100%" style="stop-color:#cbd5e1;stop-opacity:1"/>`)
	b.WriteString(`</linearGradient></defs>`)
	b.WriteString(`<rect width="512" height="512" fill="url(#grad)"/>`)
	b.WriteString(`<g fill="#475569" font-family="Arial, Helvetica, sans-serif" text-anchor="middle">`)
	b.WriteString(`<text x="256" y="230" font-size="22">Preview unavailable</text>`)
	fmt.Fprintf(&b, `<text x="256" y="270" font-size="16">Prompt: %s</text>`, text)
	b.WriteString(`</g></svg>`)
	return b.String()
}

// Effect names understood by artifact stores.
const (
	EffectBackgroundRemoval = "background_removal"
	EffectObjectRemoval     = "object_removal"
)

// Passthrough returns the uploaded image untouched and asks the artifact
// store to apply Effect on its side instead.
type Passthrough struct {
	Effect string
}

func (p Passthrough) Name() string { return "host-effect-" + p.Effect }

func (p Passthrough) Finalize(req *models.GenerationRequest) *models.Artifact {
	mime := req.PayloadMime
	if mime == "" {
		mime = "image/png"
	}
	return &models.Artifact{
		Data:     req.Payload,
		MimeKind: mime,
		Effect:   p.Effect,
		Stage:    p.Name(),
	}
}
