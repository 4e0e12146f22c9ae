package testing

import (
	"slices"

	"github.com/imamik/esprov/internal/platform/elastic"
)

// MappingBuilder provides a fluent interface for constructing mappings.
// Each method returns a new builder (immutable) for chaining.
type MappingBuilder struct {
	props elastic.Properties
}

// NewMappingBuilder creates an empty MappingBuilder.
func NewMappingBuilder() *MappingBuilder {
	return &MappingBuilder{}
}

func (b *MappingBuilder) with(name string, m elastic.FieldMapping) *MappingBuilder {
	return &MappingBuilder{props: append(slices.Clone(b.props), elastic.Property{Name: name, Mapping: m})}
}

// Text adds a text field, optionally with a keyword sub-field.
func (b *MappingBuilder) Text(name string, keyword bool) *MappingBuilder {
	m := elastic.FieldMapping{Type: elastic.TypeText}
	if keyword {
		m.Fields = map[string]elastic.FieldMapping{"keyword": {Type: elastic.TypeKeyword, IgnoreAbove: 256}}
	}
	return b.with(name, m)
}

// Keyword adds a keyword field.
func (b *MappingBuilder) Keyword(name string) *MappingBuilder {
	return b.with(name, elastic.FieldMapping{Type: elastic.TypeKeyword})
}

// Integer adds an integer field.
func (b *MappingBuilder) Integer(name string) *MappingBuilder {
	return b.with(name, elastic.FieldMapping{Type: elastic.TypeInteger})
}

// Field adds a field of any type.
func (b *MappingBuilder) Field(name, typ string) *MappingBuilder {
	return b.with(name, elastic.FieldMapping{Type: typ})
}

// Build returns the mapping.
func (b *MappingBuilder) Build() elastic.Properties {
	return slices.Clone(b.props)
}

// Definition returns an index definition with the mapping.
func (b *MappingBuilder) Definition(shards, replicas int) elastic.IndexDefinition {
	return elastic.IndexDefinition{
		Settings: elastic.IndexSettings{NumberOfShards: shards, NumberOfReplicas: replicas},
		Mappings: elastic.IndexMappings{Properties: b.Build()},
	}
}
