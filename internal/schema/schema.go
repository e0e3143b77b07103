// Package schema defines the controlled vocabulary of fields the extraction
// engine asks for and the form filler writes back. The vocabulary is an
// explicit, versioned list of typed descriptors so that schema changes are
// compile-time visible instead of hidden in prompt templates.
package schema

// Version identifies the field vocabulary revision embedded in prompts and
// recorded on extraction results.
const Version = "pa-fields/v1"

// FieldGroup buckets related fields for reporting.
type FieldGroup string

const (
	GroupPatient        FieldGroup = "patient"
	GroupProvider       FieldGroup = "provider"
	GroupClinical       FieldGroup = "clinical"
	GroupMedication     FieldGroup = "medication"
	GroupService        FieldGroup = "service"
	GroupAdministrative FieldGroup = "administrative"
)

// FieldDescriptor describes one extractable field.
type FieldDescriptor struct {
	Name        string
	Description string
	Group       FieldGroup
}

// Template is a named, ordered set of field descriptors for one PA form family.
type Template struct {
	Name   string
	Fields []FieldDescriptor
}

// FieldNames returns the ordered field names.
func (t Template) FieldNames() []string {
	names := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Descriptor returns the descriptor for name, if present.
func (t Template) Descriptor(name string) (FieldDescriptor, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// StandardTemplate returns the standard PA form vocabulary.
func StandardTemplate() Template {
	return Template{
		Name: "Standard PA Form",
		Fields: []FieldDescriptor{
			{Name: "patient_name", Description: "Full name of the patient", Group: GroupPatient},
			{Name: "patient_dob", Description: "Patient's date of birth", Group: GroupPatient},
			{Name: "patient_gender", Description: "Patient's gender", Group: GroupPatient},
			{Name: "patient_address", Description: "Patient's home address", Group: GroupPatient},
			{Name: "patient_phone", Description: "Patient's phone number", Group: GroupPatient},
			{Name: "patient_id", Description: "Patient identifier assigned by the facility", Group: GroupPatient},
			{Name: "member_id", Description: "Insurance member ID number", Group: GroupPatient},
			{Name: "group_number", Description: "Insurance group number", Group: GroupPatient},
			{Name: "insurance_id", Description: "Insurance plan identifier", Group: GroupPatient},

			{Name: "provider_name", Description: "Name of the requesting provider", Group: GroupProvider},
			{Name: "provider_npi", Description: "National Provider Identifier", Group: GroupProvider},
			{Name: "provider_phone", Description: "Provider's phone number", Group: GroupProvider},
			{Name: "provider_fax", Description: "Provider's fax number", Group: GroupProvider},
			{Name: "provider_address", Description: "Provider's office address", Group: GroupProvider},
			{Name: "facility_name", Description: "Name of the treating facility", Group: GroupProvider},
			{Name: "facility_npi", Description: "Facility National Provider Identifier", Group: GroupProvider},

			{Name: "diagnosis", Description: "Primary diagnosis or condition", Group: GroupClinical},
			{Name: "diagnosis_code", Description: "ICD-10 diagnosis code", Group: GroupClinical},
			{Name: "icd_10_codes", Description: "All ICD-10 codes listed in the package", Group: GroupClinical},
			{Name: "procedure_code", Description: "CPT procedure code", Group: GroupClinical},
			{Name: "cpt_codes", Description: "All CPT codes listed in the package", Group: GroupClinical},
			{Name: "procedure_description", Description: "Description of the requested procedure", Group: GroupClinical},
			{Name: "medical_necessity", Description: "Explanation of why this treatment is medically necessary", Group: GroupClinical},
			{Name: "clinical_rationale", Description: "Clinical reasoning supporting the request", Group: GroupClinical},

			{Name: "medication_name", Description: "Requested medication name", Group: GroupMedication},
			{Name: "medication_dose", Description: "Medication dose", Group: GroupMedication},
			{Name: "medication_frequency", Description: "Medication frequency", Group: GroupMedication},
			{Name: "medication_duration", Description: "Medication duration", Group: GroupMedication},
			{Name: "quantity_requested", Description: "Quantity of medication requested", Group: GroupMedication},

			{Name: "service_type", Description: "Type of service requested", Group: GroupService},
			{Name: "service_date", Description: "Planned date of service", Group: GroupService},
			{Name: "service_location", Description: "Location where service will be rendered", Group: GroupService},
			{Name: "units_requested", Description: "Number of service units requested", Group: GroupService},
			{Name: "length_of_stay", Description: "Requested length of stay", Group: GroupService},

			{Name: "referring_provider", Description: "Referring provider name", Group: GroupAdministrative},
			{Name: "ordering_provider", Description: "Ordering provider name", Group: GroupAdministrative},
			{Name: "admission_date", Description: "Admission date if inpatient", Group: GroupAdministrative},
			{Name: "discharge_date", Description: "Discharge date if inpatient", Group: GroupAdministrative},
			{Name: "urgency_level", Description: "Urgency of the request (routine/urgent/emergent)", Group: GroupAdministrative},
			{Name: "previous_treatments", Description: "Prior treatments attempted", Group: GroupAdministrative},
		},
	}
}
