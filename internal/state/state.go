// Package state holds the in-memory projection of UI state.
//
// State is a dumb container: it stores components and the current theme
// exactly as given and performs no validation. The command engine owns
// both mutation points; replay rebuilds an equivalent State by folding
// state.changed events over New().
package state

// ComponentType enumerates the UI components the projection can hold.
type ComponentType string

const (
	// ComponentButton is a clickable button.
	ComponentButton ComponentType = "button"
	// ComponentCard is a content card.
	ComponentCard ComponentType = "card"
	// ComponentChatBubble is a chat message bubble.
	ComponentChatBubble ComponentType = "chat-bubble"
)

// ComponentTypes lists all recognized component types in declaration order.
var ComponentTypes = []ComponentType{ComponentButton, ComponentCard, ComponentChatBubble}

// Valid reports whether t is a recognized component type.
func (t ComponentType) Valid() bool {
	switch t {
	case ComponentButton, ComponentCard, ComponentChatBubble:
		return true
	}
	return false
}

// Theme enumerates the recognized theme names.
type Theme string

const (
	// ThemeDark is the dark palette.
	ThemeDark Theme = "dark"
	// ThemeLight is the light palette and the initial theme.
	ThemeLight Theme = "light"
)

// Themes lists all recognized themes in declaration order.
var Themes = []Theme{ThemeDark, ThemeLight}

// Valid reports whether t is a recognized theme.
func (t Theme) Valid() bool {
	return t == ThemeDark || t == ThemeLight
}

// DefaultTheme is the theme a fresh State starts with.
const DefaultTheme = ThemeLight

// Component is one component record in the projection.
type Component struct {
	ID    string         `json:"id"`
	Type  ComponentType  `json:"type"`
	Props map[string]any `json:"props"`
}

// Snapshot is the pure serialized form of a State, used both for
// rendering and for state.snapshot events.
type Snapshot struct {
	Components []Component `json:"components"`
	Theme      Theme       `json:"theme"`
}

// State is the mutable projection. Components keep creation order and are
// never reordered or deduplicated.
type State struct {
	components []Component
	theme      Theme
}

// New returns an empty State with the default theme.
func New() *State {
	return &State{theme: DefaultTheme}
}

// AppendComponent appends a component record in creation order.
func (s *State) AppendComponent(c Component) {
	s.components = append(s.components, c)
}

// SetTheme replaces the current theme name.
func (s *State) SetTheme(t Theme) {
	s.theme = t
}

// Theme returns the current theme name.
func (s *State) Theme() Theme {
	return s.theme
}

// Components returns the component records in creation order.
// The returned slice is a copy; mutating it does not affect the State.
func (s *State) Components() []Component {
	out := make([]Component, len(s.components))
	copy(out, s.components)
	return out
}

// Len returns the number of components.
func (s *State) Len() int {
	return len(s.components)
}

// Snapshot serializes the State. It is side-effect free and always
// returns a non-nil component slice so that empty states marshal as
// {"components":[],"theme":...}.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Components: s.Components(),
		Theme:      s.theme,
	}
}
