// Package form reads the PA form's fillable field schema, matches extracted
// values onto it, and writes the filled form back out. PDF AcroForm access
// goes through pdfcpu's form export/fill.
package form

// FillStatus classifies a form field after matching.
type FillStatus string

const (
	StatusFilled    FillStatus = "filled"
	StatusUncertain FillStatus = "uncertain"
	StatusMissing   FillStatus = "missing"
)

// FormField is one fillable slot defined by the PA form.
type FormField struct {
	Name string `json:"name"`
	Type string `json:"type"` // textfield | datefield | checkbox | combobox | listbox
}

// FilledField associates a form field with a matched extracted value.
type FilledField struct {
	FormField  string     `json:"form_field"`
	Value      string     `json:"value,omitempty"`
	Confidence float32    `json:"confidence"`
	Status     FillStatus `json:"status"`
	SourceName string     `json:"source_name,omitempty"` // extracted field that supplied the value
}
