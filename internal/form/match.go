package form

import (
	"sort"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/pa-autofill/internal/llm"
)

// synonyms maps normalized form-field names to the canonical extraction
// vocabulary. Kept static and separate from the matcher so match decisions
// are unit-testable in isolation.
var synonyms = map[string]string{
	"name":           "patient_name",
	"patient":        "patient_name",
	"full_name":      "patient_name",
	"dob":            "patient_dob",
	"date_of_birth":  "patient_dob",
	"birth_date":     "patient_dob",
	"gender":         "patient_gender",
	"sex":            "patient_gender",
	"address":        "patient_address",
	"phone":          "patient_phone",
	"phone_number":   "patient_phone",
	"member":         "member_id",
	"member_number":  "member_id",
	"subscriber_id":  "member_id",
	"group":          "group_number",
	"insurance":      "insurance_id",
	"policy_number":  "insurance_id",
	"provider":       "provider_name",
	"physician":      "provider_name",
	"physician_name": "provider_name",
	"npi":            "provider_npi",
	"fax":            "provider_fax",
	"facility":       "facility_name",
	"dx":             "diagnosis",
	"dx_code":        "diagnosis_code",
	"icd":            "icd_10_codes",
	"icd_10":         "icd_10_codes",
	"icd10":          "icd_10_codes",
	"cpt":            "cpt_codes",
	"cpt_code":       "cpt_codes",
	"procedure":      "procedure_code",
	"medication":     "medication_name",
	"drug":           "medication_name",
	"drug_name":      "medication_name",
	"dose":           "medication_dose",
	"dosage":         "medication_dose",
	"frequency":      "medication_frequency",
	"quantity":       "quantity_requested",
	"qty":            "quantity_requested",
	"units":          "units_requested",
	"urgency":        "urgency_level",
	"priority":       "urgency_level",
	"referring":      "referring_provider",
	"ordering":       "ordering_provider",
	"admission":      "admission_date",
	"discharge":      "discharge_date",
}

// NormalizeFieldName lowercases, converts separators to underscores, and
// strips everything else, so "Patient Name", "patient-name" and
// "Patient_Name:" all normalize to "patient_name".
func NormalizeFieldName(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false
		case r == ' ' || r == '-' || r == '_' || r == '.' || r == '/':
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// Match maps each form field to its best-matching extracted field.
//
// Match order: exact name, then normalized name, then the synonym table,
// then substring containment between normalized names. Substring candidates
// tie-break by highest confidence, then lexicographic extracted name, so a
// given input always yields the same decision. Matches below threshold are
// uncertain; form fields with no candidate are missing.
func Match(formFields []FormField, result *llm.ExtractionResult, threshold float32) []FilledField {
	filled := make([]FilledField, 0, len(formFields))

	for _, ff := range formFields {
		ef, ok := findMatch(ff.Name, result)
		if !ok {
			filled = append(filled, FilledField{
				FormField: ff.Name,
				Status:    StatusMissing,
			})
			continue
		}

		status := StatusFilled
		if ef.Confidence < threshold {
			status = StatusUncertain
		}
		filled = append(filled, FilledField{
			FormField:  ff.Name,
			Value:      ef.Value,
			Confidence: ef.Confidence,
			Status:     status,
			SourceName: ef.Name,
		})
	}

	return filled
}

func findMatch(formName string, result *llm.ExtractionResult) (llm.ExtractedField, bool) {
	// exact
	if ef, ok := result.Field(formName); ok {
		return ef, true
	}

	norm := NormalizeFieldName(formName)
	if ef, ok := result.Field(norm); ok {
		return ef, true
	}

	// synonym table
	if canonical, ok := synonyms[norm]; ok {
		if ef, ok := result.Field(canonical); ok {
			return ef, true
		}
	}

	// substring containment, deterministic tie-break
	var candidates []llm.ExtractedField
	for _, ef := range result.Fields {
		en := NormalizeFieldName(ef.Name)
		if en == "" || norm == "" {
			continue
		}
		if strings.Contains(norm, en) || strings.Contains(en, norm) {
			candidates = append(candidates, ef)
		}
	}
	if len(candidates) == 0 {
		return llm.ExtractedField{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].Name < candidates[j].Name
	})
	return candidates[0], true
}
