package promptgen

import (
	"encoding/json"
	"strings"
)

const maxTitleRunes = 50

// ProjectMetadata is the creative brief shared by every prompt in a project.
type ProjectMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Theme       string `json:"theme"`
}

// TruncateTitle keeps names within 50 characters: longer input becomes its
// first 47 characters followed by "...".
func TruncateTitle(s string) string {
	r := []rune(s)
	if len(r) > maxTitleRunes {
		return string(r[:maxTitleRunes-3]) + "..."
	}
	return s
}

// FallbackMetadata derives a brief directly from the user's idea.
func FallbackMetadata(input string) ProjectMetadata {
	return ProjectMetadata{
		Title:       TruncateTitle(input),
		Description: DefaultProjectDescription(input),
		Theme:       "Create atmospheric ASMR content based on: " + input,
	}
}

func DefaultProjectDescription(input string) string {
	return "ASMR project: " + input
}

// ParseProjectMetadata decodes the model's reply. When the reply is not a JSON
// object with all three fields, the brief is synthesized from input and the
// second return value is false.
func ParseProjectMetadata(raw, input string) (ProjectMetadata, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(StripCodeFences(raw)), &obj); err != nil || obj == nil {
		return FallbackMetadata(input), false
	}

	title, ok := textField(obj, "title")
	if !ok {
		return FallbackMetadata(input), false
	}
	description, ok := textField(obj, "description")
	if !ok {
		return FallbackMetadata(input), false
	}
	theme, ok := textField(obj, "theme")
	if !ok {
		return FallbackMetadata(input), false
	}
	return ProjectMetadata{Title: title, Description: description, Theme: theme}, true
}

// Normalize trims every field and reports whether the brief is usable.
func (m *ProjectMetadata) Normalize() bool {
	if m == nil {
		return false
	}
	m.Title = strings.TrimSpace(m.Title)
	m.Description = strings.TrimSpace(m.Description)
	m.Theme = strings.TrimSpace(m.Theme)
	return m.Title != "" || m.Description != "" || m.Theme != ""
}
