// Package promptgen builds the language-model instructions used by the
// enhancement endpoints and turns the model's free-text replies into
// well-formed prompt lists and project metadata.
package promptgen

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// FallbackTitle is the title given to the single synthetic item produced when
// nothing usable can be parsed out of a model reply.
const FallbackTitle = "Enhanced Prompt"

// PromptItem is one cinematic prompt variation.
type PromptItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ParseTier records which step of ParsePromptList produced the result.
type ParseTier int

const (
	TierDirect ParseTier = iota
	TierExtracted
	TierFallback
)

func (t ParseTier) String() string {
	switch t {
	case TierDirect:
		return "direct"
	case TierExtracted:
		return "extracted"
	case TierFallback:
		return "fallback"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

var (
	leadingJSONFence = regexp.MustCompile("^```json\\s*")
	leadingFence     = regexp.MustCompile("^```\\s*")
	trailingFence    = regexp.MustCompile("\\s*```$")

	// first "[ {" through the last "} ]" in the text
	bracketedArray = regexp.MustCompile(`\[\s*\{[\s\S]*\}\s*\]`)
)

// StripCodeFences trims the reply and removes a leading ```json or ``` marker
// together with a trailing ``` marker.
func StripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = trailingFence.ReplaceAllString(leadingJSONFence.ReplaceAllString(s, ""), "")
	case strings.HasPrefix(s, "```"):
		s = trailingFence.ReplaceAllString(leadingFence.ReplaceAllString(s, ""), "")
	}
	return s
}

// ParsePromptList never fails: it always returns at least one item whose title
// and description are non-empty, falling back through
//
//	fence strip + direct parse -> regex-extracted array -> raw text as one item
//
// The returned tier tells the caller which step succeeded.
func ParsePromptList(raw string) ([]PromptItem, ParseTier) {
	trimmed := strings.TrimSpace(raw)

	if items, ok := decodeItems(StripCodeFences(trimmed)); ok {
		return items, TierDirect
	}

	if span := bracketedArray.FindString(trimmed); span != "" {
		if items, ok := decodeItems(span); ok {
			return items, TierExtracted
		}
	}

	return []PromptItem{{Title: FallbackTitle, Description: trimmed}}, TierFallback
}

// decodeItems parses a JSON array and keeps only objects carrying a truthy
// title and description whose trimmed text is not empty.
func decodeItems(s string) ([]PromptItem, bool) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil || len(raw) == 0 {
		return nil, false
	}

	items := make([]PromptItem, 0, len(raw))
	for _, elem := range raw {
		var obj map[string]interface{}
		if err := json.Unmarshal(elem, &obj); err != nil || obj == nil {
			continue
		}
		title, ok := textField(obj, "title")
		if !ok {
			continue
		}
		description, ok := textField(obj, "description")
		if !ok {
			continue
		}
		items = append(items, PromptItem{Title: title, Description: description})
	}
	if len(items) == 0 {
		return nil, false
	}
	return items, true
}

func textField(obj map[string]interface{}, key string) (string, bool) {
	v, present := obj[key]
	if !present || !truthy(v) {
		return "", false
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case float64, bool:
		s = fmt.Sprint(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		s = string(b)
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// truthy mirrors the loose check applied to model output: null, false, 0 and
// "" are rejected, everything else is kept.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}
