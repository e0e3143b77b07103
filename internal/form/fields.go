package form

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/joseph-ayodele/pa-autofill/internal/common"
)

// exportDoc mirrors the subset of pdfcpu's form export JSON we read and
// write back for filling. The header block is round-tripped untouched.
type exportDoc struct {
	Header json.RawMessage `json:"pdfcpu,omitempty"`
	Forms  []exportForm    `json:"forms"`
}

type exportForm struct {
	TextFields  []textField  `json:"textfield,omitempty"`
	DateFields  []textField  `json:"datefield,omitempty"`
	CheckBoxes  []checkBox   `json:"checkbox,omitempty"`
	ComboBoxes  []choiceBox  `json:"combobox,omitempty"`
	ListBoxes   []multiBox   `json:"listbox,omitempty"`
	RadioGroups []radioGroup `json:"radiobuttongroup,omitempty"`
}

type textField struct {
	Pages     []int  `json:"pages,omitempty"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Default   string `json:"default,omitempty"`
	Value     string `json:"value"`
	Multiline bool   `json:"multiline,omitempty"`
	Locked    bool   `json:"locked,omitempty"`
}

type checkBox struct {
	Pages   []int  `json:"pages,omitempty"`
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Default bool   `json:"default,omitempty"`
	Value   bool   `json:"value"`
	Locked  bool   `json:"locked,omitempty"`
}

type choiceBox struct {
	Pages    []int    `json:"pages,omitempty"`
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name"`
	Options  []string `json:"options,omitempty"`
	Default  string   `json:"default,omitempty"`
	Value    string   `json:"value"`
	Editable bool     `json:"editable,omitempty"`
	Locked   bool     `json:"locked,omitempty"`
}

type multiBox struct {
	Pages    []int    `json:"pages,omitempty"`
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name"`
	Options  []string `json:"options,omitempty"`
	Defaults []string `json:"defaults,omitempty"`
	Values   []string `json:"values,omitempty"`
	Multi    bool     `json:"multi,omitempty"`
	Locked   bool     `json:"locked,omitempty"`
}

type radioGroup struct {
	Pages   []int    `json:"pages,omitempty"`
	ID      string   `json:"id,omitempty"`
	Name    string   `json:"name"`
	Options []string `json:"options,omitempty"`
	Default string   `json:"default,omitempty"`
	Value   string   `json:"value"`
	Locked  bool     `json:"locked,omitempty"`
}

// exportFormSchema dumps the PDF's AcroForm to pdfcpu's form JSON and parses
// it. A form with no fillable fields yields a FORM_SCHEMA_ERROR.
func exportFormSchema(pdfPath string) (*exportDoc, error) {
	tmpDir, err := os.MkdirTemp("", "pa-form-*")
	if err != nil {
		return nil, fmt.Errorf("mkdtemp: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	jsonPath := filepath.Join(tmpDir, "form.json")
	if err := api.ExportFormFile(pdfPath, jsonPath, nil); err != nil {
		return nil, common.NewFormSchemaError(fmt.Sprintf("no fillable form schema in %s", pdfPath), err)
	}

	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read form export: %w", err)
	}
	var doc exportDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, common.NewFormSchemaError(fmt.Sprintf("unparseable form export for %s", pdfPath), err)
	}
	if len(doc.fields()) == 0 {
		return nil, common.NewFormSchemaError(fmt.Sprintf("form %s has no fillable fields", pdfPath), nil)
	}
	return &doc, nil
}

// fields flattens the export into the FormField view used by the matcher.
func (d *exportDoc) fields() []FormField {
	var out []FormField
	for _, f := range d.Forms {
		for _, tf := range f.TextFields {
			out = append(out, FormField{Name: tf.Name, Type: "textfield"})
		}
		for _, df := range f.DateFields {
			out = append(out, FormField{Name: df.Name, Type: "datefield"})
		}
		for _, cb := range f.CheckBoxes {
			out = append(out, FormField{Name: cb.Name, Type: "checkbox"})
		}
		for _, cb := range f.ComboBoxes {
			out = append(out, FormField{Name: cb.Name, Type: "combobox"})
		}
		for _, lb := range f.ListBoxes {
			out = append(out, FormField{Name: lb.Name, Type: "listbox"})
		}
		for _, rg := range f.RadioGroups {
			out = append(out, FormField{Name: rg.Name, Type: "radiobuttongroup"})
		}
	}
	return out
}

// Fields returns the fillable field definitions of the PA form at pdfPath.
func Fields(pdfPath string) ([]FormField, error) {
	doc, err := exportFormSchema(pdfPath)
	if err != nil {
		return nil, err
	}
	return doc.fields(), nil
}
