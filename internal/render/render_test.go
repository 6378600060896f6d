package render

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/roach88/kuhul/internal/state"
)

func TestSVG_EmptyState(t *testing.T) {
	out := SVG(state.Snapshot{Components: []state.Component{}, Theme: state.ThemeLight})

	g := goldie.New(t)
	g.Assert(t, "empty_light", []byte(out))
}

func TestSVG_LightButton(t *testing.T) {
	out := SVG(state.Snapshot{
		Components: []state.Component{
			{ID: "cmp_1", Type: state.ComponentButton, Props: map[string]any{"text": "OK"}},
		},
		Theme: state.ThemeLight,
	})

	g := goldie.New(t)
	g.Assert(t, "light_button", []byte(out))
}

func TestSVG_DarkMixedComponents(t *testing.T) {
	out := SVG(state.Snapshot{
		Components: []state.Component{
			{ID: "cmp_1", Type: state.ComponentButton, Props: map[string]any{"text": "Save & <exit>"}},
			{ID: "cmp_2", Type: state.ComponentChatBubble, Props: map[string]any{}},
			{ID: "cmp_3", Type: state.ComponentCard, Props: map[string]any{"label": "Hello"}},
		},
		Theme: state.ThemeDark,
	})

	g := goldie.New(t)
	g.Assert(t, "dark_mixed", []byte(out))
}

func TestSVG_Deterministic(t *testing.T) {
	snap := state.Snapshot{
		Components: []state.Component{
			{ID: "cmp_1", Type: state.ComponentCard, Props: map[string]any{"label": "A"}},
			{ID: "cmp_2", Type: state.ComponentButton, Props: map[string]any{"text": "B"}},
		},
		Theme: state.ThemeDark,
	}

	first := SVG(snap)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, SVG(snap))
	}
}

func TestSVG_UnknownThemeFallsBackToDefault(t *testing.T) {
	out := SVG(state.Snapshot{Components: []state.Component{}, Theme: state.Theme("sepia")})
	assert.Contains(t, out, `fill="#ffffff"`)
}

func TestSVG_LabelPrecedence(t *testing.T) {
	textWins := SVG(state.Snapshot{
		Components: []state.Component{
			{Type: state.ComponentButton, Props: map[string]any{"text": "T", "label": "L"}},
		},
		Theme: state.ThemeLight,
	})
	assert.Contains(t, textWins, ">T<")
	assert.NotContains(t, textWins, ">L<")

	labelNext := SVG(state.Snapshot{
		Components: []state.Component{
			{Type: state.ComponentButton, Props: map[string]any{"label": "L"}},
		},
		Theme: state.ThemeLight,
	})
	assert.Contains(t, labelNext, ">L<")

	fallback := SVG(state.Snapshot{
		Components: []state.Component{
			{Type: state.ComponentChatBubble, Props: map[string]any{}},
		},
		Theme: state.ThemeLight,
	})
	assert.Contains(t, fallback, ">Chat bubble<")
}

func TestSVG_HeightGrowsWithComponents(t *testing.T) {
	one := SVG(state.Snapshot{
		Components: []state.Component{{Type: state.ComponentCard, Props: map[string]any{}}},
		Theme:      state.ThemeLight,
	})
	two := SVG(state.Snapshot{
		Components: []state.Component{
			{Type: state.ComponentCard, Props: map[string]any{}},
			{Type: state.ComponentCard, Props: map[string]any{}},
		},
		Theme: state.ThemeLight,
	})

	assert.Contains(t, one, `height="168"`)
	assert.Contains(t, two, `height="304"`)
	assert.True(t, strings.Count(two, "<rect") > strings.Count(one, "<rect"))
}
