package elastic

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperties_MarshalKeepsOrder(t *testing.T) {
	t.Parallel()

	props := Properties{
		{Name: "title", Mapping: FieldMapping{Type: TypeText, Fields: map[string]FieldMapping{"keyword": {Type: TypeKeyword, IgnoreAbove: 256}}}},
		{Name: "priority", Mapping: FieldMapping{Type: TypeInteger}},
		{Name: "author", Mapping: FieldMapping{Type: TypeKeyword}},
	}

	got, err := json.Marshal(props)
	require.NoError(t, err)
	assert.Equal(t,
		`{"title":{"type":"text","fields":{"keyword":{"type":"keyword","ignore_above":256}}},"priority":{"type":"integer"},"author":{"type":"keyword"}}`,
		string(got))
}

func TestProperties_MarshalRejectsDuplicates(t *testing.T) {
	t.Parallel()
	_, err := json.Marshal(Properties{{Name: "a", Mapping: FieldMapping{Type: TypeText}}, {Name: "a", Mapping: FieldMapping{Type: TypeKeyword}}})
	assert.ErrorContains(t, err, `duplicate mapping property "a"`)
}

func TestProperties_UnmarshalKeepsOrder(t *testing.T) {
	t.Parallel()

	var props Properties
	err := json.Unmarshal([]byte(`{"zeta":{"type":"keyword"},"alpha":{"type":"text"},"meta":{"properties":{"source":{"type":"keyword"}}}}`), &props)
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "meta"}, props.Names())
	meta, ok := props.Get("meta")
	require.True(t, ok)
	assert.Equal(t, []string{"source"}, meta.Properties.Names())
}

func TestProperties_UnmarshalNullAndInvalid(t *testing.T) {
	t.Parallel()

	var props Properties
	require.NoError(t, json.Unmarshal([]byte(`null`), &props))
	assert.Nil(t, props)

	assert.Error(t, json.Unmarshal([]byte(`["title"]`), &props))
}

func TestProperties_Sorted(t *testing.T) {
	t.Parallel()
	props := Properties{{Name: "b"}, {Name: "a"}}
	assert.Equal(t, []string{"a", "b"}, props.Sorted().Names())
	assert.Equal(t, []string{"b", "a"}, props.Names(), "Sorted must not reorder the receiver")
}

func TestAggregatableName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		prop Property
		want string
	}{
		{"keyword", Property{Name: "category", Mapping: FieldMapping{Type: TypeKeyword}}, "category"},
		{"text with keyword", Property{Name: "title", Mapping: FieldMapping{Type: TypeText, Fields: map[string]FieldMapping{"keyword": {Type: TypeKeyword}}}}, "title.keyword"},
		{"text with raw", Property{Name: "title", Mapping: FieldMapping{Type: TypeText, Fields: map[string]FieldMapping{"raw": {Type: TypeKeyword}}}}, "title.raw"},
		{"plain text", Property{Name: "body", Mapping: FieldMapping{Type: TypeText}}, ""},
		{"numeric", Property{Name: "priority", Mapping: FieldMapping{Type: TypeInteger}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, AggregatableName(tt.prop))
		})
	}
}

func TestIsNumeric(t *testing.T) {
	t.Parallel()
	for _, typ := range []string{TypeInteger, TypeLong, TypeFloat, TypeDouble, TypeShort, TypeByte} {
		assert.True(t, IsNumeric(typ), typ)
	}
	for _, typ := range []string{TypeText, TypeKeyword, TypeDate, TypeBoolean} {
		assert.False(t, IsNumeric(typ), typ)
	}
}
