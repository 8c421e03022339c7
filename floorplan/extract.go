package floorplan

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseResponse turns the model's free-text reply into a Result.
//
// The whole text is parsed as JSON first. If that fails, the span from the
// first '{' to the last '}' is parsed instead. Multiple independent objects
// in one reply are therefore treated as one span and usually fail.
// Keys other than the two feature lists are dropped.
func ParseResponse(text string) (*Result, error) {
	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		jsonStr, err := extractJSONObject(text)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
			return nil, fmt.Errorf("%w: failed to parse response JSON: %v", ErrMalformedResponse, err)
		}
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON object, got %s", ErrInvalidShape, jsonKind(raw))
	}

	interiorValue, ok := obj[InteriorFeaturesKey]
	if !ok || interiorValue == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingRequiredField, InteriorFeaturesKey)
	}
	interior, err := stringList(InteriorFeaturesKey, interiorValue)
	if err != nil {
		return nil, err
	}

	result := &Result{Interior: interior}

	if exteriorValue, ok := obj[ExteriorFeaturesKey]; ok && exteriorValue != nil {
		exterior, err := stringList(ExteriorFeaturesKey, exteriorValue)
		if err != nil {
			return nil, err
		}
		result.Exterior = exterior
	}

	return result, nil
}

// extractJSONObject returns the text between the first '{' and the last '}'
// inclusive.
func extractJSONObject(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("%w: no JSON object found in response", ErrMalformedResponse)
	}
	return text[start : end+1], nil
}

func stringList(key string, value any) ([]string, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be a list of strings, got %s", ErrInvalidShape, key, jsonKind(value))
	}

	list := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %q item %d must be a string, got %s", ErrInvalidShape, key, i, jsonKind(item))
		}
		list = append(list, s)
	}
	return list, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
