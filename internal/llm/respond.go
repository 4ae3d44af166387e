package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Models wrap JSON replies in prose or code fences often enough that the
// first balanced-looking object is extracted by pattern before parsing; a
// whole-body parse is the fallback.
var reJSONObject = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSONObject returns the first JSON-object-looking span of text, or
// the whole trimmed text when no braces are found.
func ExtractJSONObject(text string) []byte {
	if m := reJSONObject.FindString(text); m != "" {
		return []byte(m)
	}
	return []byte(strings.TrimSpace(text))
}

// DecodeAligned parses an aligner reply. The reply must be a JSON object
// carrying both expected keys, each mapping container numbers to record
// lists; anything else is an error and the caller applies its fallback.
func DecodeAligned(text string) (*AlignedContainers, error) {
	raw := ExtractJSONObject(text)
	if err := ValidateAlignedShape(raw); err != nil {
		return nil, err
	}
	var out AlignedContainers
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode aligned containers: %w", err)
	}
	if out.Invoice == nil || out.Declaration == nil {
		return nil, fmt.Errorf("aligned containers: missing side")
	}
	return &out, nil
}
