package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pa-autofill/internal/llm"
)

func TestNormalizeFieldName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Patient Name", "patient_name"},
		{"patient-name", "patient_name"},
		{"Patient_Name:", "patient_name"},
		{"  DOB  ", "dob"},
		{"ICD-10 Codes", "icd_10_codes"},
		{"Member ID #", "member_id"},
		{"A.B/C", "a_b_c"},
		{"___", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeFieldName(tt.in))
		})
	}
}

func extraction(fields ...llm.ExtractedField) *llm.ExtractionResult {
	return &llm.ExtractionResult{Fields: fields}
}

func TestMatchExactAndNormalized(t *testing.T) {
	res := extraction(
		llm.ExtractedField{Name: "patient_name", Value: "Jane Doe", Confidence: 0.9},
		llm.ExtractedField{Name: "member_id", Value: "M123", Confidence: 0.8},
	)
	formFields := []FormField{
		{Name: "patient_name", Type: "textfield"},
		{Name: "Member ID", Type: "textfield"},
	}

	filled := Match(formFields, res, 0.7)
	require.Len(t, filled, 2)

	assert.Equal(t, "Jane Doe", filled[0].Value)
	assert.Equal(t, StatusFilled, filled[0].Status)
	assert.Equal(t, "M123", filled[1].Value)
	assert.Equal(t, "member_id", filled[1].SourceName)
}

func TestMatchSynonyms(t *testing.T) {
	res := extraction(
		llm.ExtractedField{Name: "patient_name", Value: "Jane Doe", Confidence: 0.9},
		llm.ExtractedField{Name: "patient_dob", Value: "1980-01-01", Confidence: 0.85},
		llm.ExtractedField{Name: "provider_npi", Value: "1234567890", Confidence: 0.95},
	)
	formFields := []FormField{
		{Name: "Name", Type: "textfield"},
		{Name: "Date of Birth", Type: "datefield"},
		{Name: "NPI", Type: "textfield"},
	}

	filled := Match(formFields, res, 0.7)
	require.Len(t, filled, 3)
	assert.Equal(t, "patient_name", filled[0].SourceName)
	assert.Equal(t, "patient_dob", filled[1].SourceName)
	assert.Equal(t, "provider_npi", filled[2].SourceName)
}

func TestMatchThresholdFencepost(t *testing.T) {
	res := extraction(
		llm.ExtractedField{Name: "patient_name", Value: "Jane Doe", Confidence: 0.7},
		llm.ExtractedField{Name: "member_id", Value: "M123", Confidence: 0.69},
	)
	formFields := []FormField{
		{Name: "patient_name"},
		{Name: "member_id"},
	}

	filled := Match(formFields, res, 0.7)
	require.Len(t, filled, 2)

	// exactly at threshold counts as filled; just under is uncertain
	assert.Equal(t, StatusFilled, filled[0].Status)
	assert.Equal(t, StatusUncertain, filled[1].Status)
}

func TestMatchMissing(t *testing.T) {
	res := extraction(
		llm.ExtractedField{Name: "patient_name", Value: "Jane Doe", Confidence: 0.9},
	)
	filled := Match([]FormField{{Name: "Prior Hospitalizations"}}, res, 0.7)

	require.Len(t, filled, 1)
	assert.Equal(t, StatusMissing, filled[0].Status)
	assert.Empty(t, filled[0].Value)
}

func TestMatchSubstringDeterminism(t *testing.T) {
	res := extraction(
		llm.ExtractedField{Name: "provider_name", Value: "Dr. A", Confidence: 0.8},
		llm.ExtractedField{Name: "provider_npi", Value: "999", Confidence: 0.8},
	)
	// Both candidates contain "provider"; equal confidence, so the
	// lexicographically smaller extracted name must win every time.
	for i := 0; i < 10; i++ {
		filled := Match([]FormField{{Name: "provider"}}, res, 0.7)
		require.Len(t, filled, 1)
		assert.Equal(t, "provider_name", filled[0].SourceName)
	}
}

func TestMatchFormLabelScenario(t *testing.T) {
	res := extraction(
		llm.ExtractedField{Name: "patient_name", Value: "Jane Doe", Confidence: 0.9},
		llm.ExtractedField{Name: "patient_dob", Value: "01/02/1980", Confidence: 0.9},
	)
	filled := Match([]FormField{{Name: "Patient Name", Type: "textfield"}}, res, 0.7)

	require.Len(t, filled, 1)
	assert.Equal(t, "Patient Name", filled[0].FormField)
	assert.Equal(t, "Jane Doe", filled[0].Value)
	assert.Equal(t, StatusFilled, filled[0].Status)
}

func TestMatchPrefersExactOverSubstring(t *testing.T) {
	res := extraction(
		llm.ExtractedField{Name: "diagnosis", Value: "asthma", Confidence: 0.6},
		llm.ExtractedField{Name: "diagnosis_code", Value: "J45", Confidence: 0.99},
	)
	filled := Match([]FormField{{Name: "diagnosis"}}, res, 0.7)

	require.Len(t, filled, 1)
	// exact name beats a higher-confidence substring candidate
	assert.Equal(t, "diagnosis", filled[0].SourceName)
	assert.Equal(t, StatusUncertain, filled[0].Status)
}
