package elastic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// FieldMapping describes one field of an index mapping.
type FieldMapping struct {
	Type        string                  `json:"type,omitempty"`
	Fields      map[string]FieldMapping `json:"fields,omitempty"`
	IgnoreAbove int                     `json:"ignore_above,omitempty"`
	Format      string                  `json:"format,omitempty"`
	Properties  Properties              `json:"properties,omitempty"`
}

// Property is a named field mapping.
type Property struct {
	Name    string
	Mapping FieldMapping
}

// Properties is an ordered list of field mappings. It encodes as a JSON
// object whose keys keep the slice order, so the body sent to the cluster
// lists fields the way the caller declared them.
type Properties []Property

// MarshalJSON implements json.Marshaler.
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	seen := make(map[string]struct{}, len(p))

	buf.WriteByte('{')
	for i, prop := range p {
		if _, dup := seen[prop.Name]; dup {
			return nil, fmt.Errorf("duplicate mapping property %q", prop.Name)
		}
		seen[prop.Name] = struct{}{}

		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(prop.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(prop.Mapping)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", prop.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, keeping document key order.
func (p *Properties) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("mapping properties: expected object, got %v", tok)
	}

	var out Properties
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("mapping properties: expected field name, got %v", tok)
		}
		var m FieldMapping
		if err := dec.Decode(&m); err != nil {
			return fmt.Errorf("property %q: %w", name, err)
		}
		out = append(out, Property{Name: name, Mapping: m})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*p = out
	return nil
}

// Get returns the mapping of a top-level field.
func (p Properties) Get(name string) (FieldMapping, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Mapping, true
		}
	}
	return FieldMapping{}, false
}

// Names returns the field names in order.
func (p Properties) Names() []string {
	names := make([]string, len(p))
	for i, prop := range p {
		names[i] = prop.Name
	}
	return names
}

// Sorted returns a copy ordered by field name. Live mappings come back from
// the cluster in alphabetical order, so comparisons use this form.
func (p Properties) Sorted() Properties {
	out := make(Properties, len(p))
	copy(out, p)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Field types with special meaning to the provisioner.
const (
	TypeText    = "text"
	TypeKeyword = "keyword"
	TypeInteger = "integer"
	TypeLong    = "long"
	TypeShort   = "short"
	TypeByte    = "byte"
	TypeFloat   = "float"
	TypeDouble  = "double"
	TypeBoolean = "boolean"
	TypeDate    = "date"
)

// IsNumeric reports whether t is a numeric field type.
func IsNumeric(t string) bool {
	switch t {
	case TypeInteger, TypeLong, TypeShort, TypeByte, TypeFloat, TypeDouble, "half_float", "scaled_float", "unsigned_long":
		return true
	}
	return false
}

// AggregatableName returns the field path usable in a terms aggregation:
// the field itself for keyword fields, its keyword sub-field for text fields
// that have one, and "" otherwise.
func AggregatableName(p Property) string {
	switch p.Mapping.Type {
	case TypeKeyword:
		return p.Name
	case TypeText:
		if m, ok := p.Mapping.Fields["keyword"]; ok && m.Type == TypeKeyword {
			return p.Name + ".keyword"
		}
		subs := make([]string, 0, len(p.Mapping.Fields))
		for sub := range p.Mapping.Fields {
			subs = append(subs, sub)
		}
		sort.Strings(subs)
		for _, sub := range subs {
			if p.Mapping.Fields[sub].Type == TypeKeyword {
				return p.Name + "." + sub
			}
		}
	}
	return ""
}
