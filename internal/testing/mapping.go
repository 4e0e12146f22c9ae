package testing

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/imamik/esprov/internal/platform/elastic"
)

// mapDocument checks source against props and returns props extended with
// dynamic mappings for unmapped fields.
func mapDocument(op string, props elastic.Properties, source map[string]any) (elastic.Properties, error) {
	out := slices.Clone(props)

	for _, name := range slices.Sorted(maps.Keys(source)) {
		value := source[name]
		if value == nil {
			continue
		}

		i := slices.IndexFunc(out, func(p elastic.Property) bool { return p.Name == name })
		if i < 0 {
			m, ok := dynamicMapping(value)
			if !ok {
				continue
			}
			if obj, isObj := value.(map[string]any); isObj {
				sub, err := mapDocument(op, nil, obj)
				if err != nil {
					return nil, err
				}
				m.Properties = sub
			}
			out = append(out, elastic.Property{Name: name, Mapping: m})
			continue
		}

		prop := out[i]
		if obj, isObj := value.(map[string]any); isObj {
			if prop.Mapping.Type != "" && prop.Mapping.Type != "object" && prop.Mapping.Type != "nested" {
				return nil, parseError(op, name, prop.Mapping.Type, "tried to parse field as object, but found a concrete value")
			}
			sub, err := mapDocument(op, prop.Mapping.Properties, obj)
			if err != nil {
				return nil, err
			}
			prop.Mapping.Properties = sub
			out[i] = prop
			continue
		}
		if err := checkValue(op, name, prop.Mapping.Type, value); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// checkValue applies the coercion rules of a field type to a value.
func checkValue(op, field, typ string, value any) error {
	if arr, ok := value.([]any); ok {
		for _, v := range arr {
			if err := checkValue(op, field, typ, v); err != nil {
				return err
			}
		}
		return nil
	}

	switch {
	case elastic.IsNumeric(typ):
		if _, ok := toFloat(value); !ok {
			return parseError(op, field, typ, fmt.Sprintf("For input string: \"%v\"", value))
		}
	case typ == elastic.TypeBoolean:
		switch v := value.(type) {
		case bool:
		case string:
			if v != "true" && v != "false" && v != "" {
				return parseError(op, field, typ, fmt.Sprintf("Failed to parse value [%s] as only [true] or [false] are allowed.", v))
			}
		default:
			return parseError(op, field, typ, fmt.Sprintf("Failed to parse value [%v]", v))
		}
	}
	return nil
}

// dynamicMapping returns the mapping the cluster infers for an unmapped value.
func dynamicMapping(value any) (elastic.FieldMapping, bool) {
	switch v := value.(type) {
	case string:
		return elastic.FieldMapping{
			Type: elastic.TypeText,
			Fields: map[string]elastic.FieldMapping{
				"keyword": {Type: elastic.TypeKeyword, IgnoreAbove: 256},
			},
		}, true
	case float64:
		if v == math.Trunc(v) {
			return elastic.FieldMapping{Type: elastic.TypeLong}, true
		}
		return elastic.FieldMapping{Type: elastic.TypeFloat}, true
	case bool:
		return elastic.FieldMapping{Type: elastic.TypeBoolean}, true
	case map[string]any:
		return elastic.FieldMapping{}, true
	case []any:
		if len(v) == 0 {
			return elastic.FieldMapping{}, false
		}
		return dynamicMapping(v[0])
	}
	return elastic.FieldMapping{}, false
}

func parseError(op, field, typ, cause string) *elastic.APIError {
	reason := fmt.Sprintf("failed to parse field [%s] of type [%s]: %s", field, typ, cause)
	return ValidationError(op, "document_parsing_exception", reason)
}

// toFloat converts JSON numbers and numeric strings.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// fieldType resolves a dotted field path, including multi-field sub-fields
// such as "title.keyword", to its mapped type.
func fieldType(props elastic.Properties, path string) string {
	for i := len(path); i > 0; i-- {
		if i < len(path) && path[i] != '.' {
			continue
		}
		m, ok := props.Get(path[:i])
		if !ok {
			continue
		}
		if i == len(path) {
			return m.Type
		}
		rest := path[i+1:]
		if sub, ok := m.Fields[rest]; ok {
			return sub.Type
		}
		return fieldType(m.Properties, rest)
	}
	return ""
}
