package ai

import (
	"encoding/json"
	"errors"
	"strings"

	"knowledge-hub-be/pkg/llm"
)

const (
	MaxCategoryLength = 50

	classificationSystemPrompt = `You classify personal knowledge notes.
Analyze the text and provide a category and a list of tags.
Output JSON format only: {"category": "CategoryName", "tags": ["tag1", "tag2"]}`
)

var ErrMalformedClassification = errors.New("malformed classification output")

// BuildClassificationPrompt returns the chat messages for one note. text must already be truncated.
func BuildClassificationPrompt(text string) []llm.Message {
	return []llm.Message{
		{Role: "system", Content: classificationSystemPrompt},
		{Role: "user", Content: "Text: " + text},
	}
}

// rawClassification tolerates tags sent as a single comma separated string.
type rawClassification struct {
	Category *string        `json:"category"`
	Tags     flexibleTagSet `json:"tags"`
}

type flexibleTagSet []string

func (f *flexibleTagSet) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	*f = strings.Split(joined, ",")
	return nil
}

// ParseClassification scans raw for balanced {...} objects and returns the first one that
// decodes into a classification with a non-blank category. Prose and code fences around
// the object are ignored, including stray braces in the prose.
func ParseClassification(raw string) (*Classification, error) {
	for start := strings.IndexByte(raw, '{'); start >= 0; {
		// an unbalanced brace in the prose must not hide a well-formed object after it
		if end := matchingBrace(raw, start); end >= 0 {
			if c, ok := decodeClassification(raw[start : end+1]); ok {
				return c, nil
			}
		}
		next := strings.IndexByte(raw[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, ErrMalformedClassification
}

func decodeClassification(payload string) (*Classification, bool) {
	var rc rawClassification
	if err := json.Unmarshal([]byte(payload), &rc); err != nil {
		return nil, false
	}
	if rc.Category == nil || strings.TrimSpace(*rc.Category) == "" {
		return nil, false
	}

	category := strings.TrimSpace(*rc.Category)
	if runes := []rune(category); len(runes) > MaxCategoryLength {
		category = strings.TrimSpace(string(runes[:MaxCategoryLength]))
	}
	return &Classification{Category: category, Tags: []string(rc.Tags)}, true
}

// matchingBrace returns the index of the brace closing the one at open, skipping braces
// inside JSON strings, or -1.
func matchingBrace(s string, open int) int {
	depth := 0
	inString := false
	escaped := false
	for i := open; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
