package notes

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// ParseList decodes a JSON-array column. Empty, null, malformed or non-array
// values yield an empty list. Scalar elements are kept in their text form.
func ParseList(text *string) []string {
	v := decode(text)
	arr, ok := v.([]any)
	if !ok {
		return []string{}
	}
	return stringsOf(arr)
}

// ParseObject decodes a JSON-object column. Anything that is not an object
// yields an empty map.
func ParseObject(text *string) map[string]any {
	v := decode(text)
	obj, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return obj
}

func decode(text *string) any {
	if text == nil {
		return nil
	}
	s := strings.TrimSpace(*text)
	if s == "" {
		return nil
	}

	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		log.Printf("Failed to parse JSON field: %v", err)
		return nil
	}
	return v
}

func stringsOf(arr []any) []string {
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		switch x := item.(type) {
		case nil:
			continue
		case string:
			out = append(out, x)
		case float64, bool:
			out = append(out, fmt.Sprint(x))
		}
	}
	return out
}
