package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardTemplate(t *testing.T) {
	tmpl := StandardTemplate()

	require.NotEmpty(t, tmpl.Fields)
	assert.Equal(t, "Standard PA Form", tmpl.Name)

	// names are unique and every descriptor belongs to a group
	seen := make(map[string]bool)
	for _, f := range tmpl.Fields {
		assert.False(t, seen[f.Name], "duplicate field name %q", f.Name)
		seen[f.Name] = true
		assert.NotEmpty(t, f.Group, "field %q has no group", f.Name)
		assert.NotEmpty(t, f.Description, "field %q has no description", f.Name)
	}

	// core vocabulary entries the matcher and prompts depend on
	for _, name := range []string{
		"patient_name", "patient_dob", "member_id", "provider_npi",
		"icd_10_codes", "cpt_codes", "medication_name", "urgency_level",
	} {
		_, ok := tmpl.Descriptor(name)
		assert.True(t, ok, "missing %q", name)
	}
}

func TestFieldNamesPreservesOrder(t *testing.T) {
	tmpl := Template{
		Name: "t",
		Fields: []FieldDescriptor{
			{Name: "b"}, {Name: "a"}, {Name: "c"},
		},
	}
	assert.Equal(t, []string{"b", "a", "c"}, tmpl.FieldNames())
}

func TestDescriptorMiss(t *testing.T) {
	_, ok := StandardTemplate().Descriptor("no_such_field")
	assert.False(t, ok)
}
