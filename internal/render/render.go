// Package render turns a state snapshot into an SVG document.
//
// Rendering is deterministic: the same snapshot always yields the same
// output bytes. Components are laid out top to bottom in creation order;
// the theme selects the palette. The renderer never consults anything
// but the snapshot it is handed.
package render

import (
	"fmt"
	"strings"

	"github.com/roach88/kuhul/internal/state"
)

const (
	canvasWidth = 640
	margin      = 24
	gap         = 16
	minHeight   = 120
)

type palette struct {
	background string
	surface    string
	accent     string
	text       string
	muted      string
}

var palettes = map[state.Theme]palette{
	state.ThemeDark: {
		background: "#0f172a",
		surface:    "#1e293b",
		accent:     "#38bdf8",
		text:       "#e2e8f0",
		muted:      "#94a3b8",
	},
	state.ThemeLight: {
		background: "#ffffff",
		surface:    "#f1f5f9",
		accent:     "#2563eb",
		text:       "#0f172a",
		muted:      "#64748b",
	},
}

func componentHeight(t state.ComponentType) int {
	switch t {
	case state.ComponentButton:
		return 48
	case state.ComponentCard:
		return 120
	case state.ComponentChatBubble:
		return 64
	default:
		return 48
	}
}

// label picks the visible text for a component: props.text, then
// props.label, then a per-type default.
func label(c state.Component) string {
	if s, ok := c.Props["text"].(string); ok && s != "" {
		return s
	}
	if s, ok := c.Props["label"].(string); ok && s != "" {
		return s
	}
	switch c.Type {
	case state.ComponentButton:
		return "Button"
	case state.ComponentCard:
		return "Card"
	case state.ComponentChatBubble:
		return "Chat bubble"
	default:
		return string(c.Type)
	}
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// SVG renders the snapshot as a complete SVG document.
func SVG(snap state.Snapshot) string {
	pal, ok := palettes[snap.Theme]
	if !ok {
		pal = palettes[state.DefaultTheme]
	}

	height := margin * 2
	for _, c := range snap.Components {
		height += componentHeight(c.Type) + gap
	}
	if len(snap.Components) > 0 {
		height -= gap
	}
	if height < minHeight {
		height = minHeight
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		canvasWidth, height, canvasWidth, height)
	b.WriteString("\n")
	fmt.Fprintf(&b, `  <rect x="0" y="0" width="%d" height="%d" fill="%s"/>`, canvasWidth, height, pal.background)
	b.WriteString("\n")

	if len(snap.Components) == 0 {
		fmt.Fprintf(&b, `  <text x="%d" y="%d" font-family="monospace" font-size="14" fill="%s">no components</text>`,
			margin, height/2, pal.muted)
		b.WriteString("\n")
	}

	y := margin
	for _, c := range snap.Components {
		h := componentHeight(c.Type)
		switch c.Type {
		case state.ComponentButton:
			fmt.Fprintf(&b, `  <rect x="%d" y="%d" width="160" height="%d" rx="8" fill="%s"/>`, margin, y, h, pal.accent)
			b.WriteString("\n")
			fmt.Fprintf(&b, `  <text x="%d" y="%d" font-family="monospace" font-size="14" fill="%s">%s</text>`,
				margin+16, y+h/2+5, pal.background, textEscaper.Replace(label(c)))
			b.WriteString("\n")
		case state.ComponentChatBubble:
			fmt.Fprintf(&b, `  <rect x="%d" y="%d" width="%d" height="%d" rx="16" fill="%s"/>`,
				margin, y, canvasWidth-2*margin, h, pal.surface)
			b.WriteString("\n")
			fmt.Fprintf(&b, `  <text x="%d" y="%d" font-family="monospace" font-size="14" fill="%s">%s</text>`,
				margin+20, y+h/2+5, pal.text, textEscaper.Replace(label(c)))
			b.WriteString("\n")
		default: // card and any foreign type replay let through
			fmt.Fprintf(&b, `  <rect x="%d" y="%d" width="%d" height="%d" rx="12" fill="%s" stroke="%s"/>`,
				margin, y, canvasWidth-2*margin, h, pal.surface, pal.muted)
			b.WriteString("\n")
			fmt.Fprintf(&b, `  <text x="%d" y="%d" font-family="monospace" font-size="16" fill="%s">%s</text>`,
				margin+20, y+28, pal.text, textEscaper.Replace(label(c)))
			b.WriteString("\n")
		}
		y += h + gap
	}

	b.WriteString("</svg>\n")
	return b.String()
}
