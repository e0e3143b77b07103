// Package folders discovers patient folders under the input directory and
// validates that each contains the two required PDFs: the PA form and the
// referral package.
package folders

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PatientFolder is one discovered input folder.
type PatientFolder struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	PAFormPath   string `json:"pa_form_path,omitempty"`
	ReferralPath string `json:"referral_path,omitempty"`
	Ready        bool   `json:"ready"`
	Reason       string `json:"reason,omitempty"` // why the folder is not ready
}

// List returns all folders under inputDir in name order, each validated.
func List(inputDir string) ([]PatientFolder, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("read input dir %s: %w", inputDir, err)
	}

	var out []PatientFolder
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, Inspect(filepath.Join(inputDir, e.Name())))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Find locates a single named folder under inputDir.
func Find(inputDir, name string) (PatientFolder, error) {
	path := filepath.Join(inputDir, name)
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return PatientFolder{}, fmt.Errorf("folder %q not found in %s", name, inputDir)
	}
	return Inspect(path), nil
}

// Inspect checks one folder for the required files.
func Inspect(path string) PatientFolder {
	pf := PatientFolder{
		Name: filepath.Base(path),
		Path: path,
	}

	pf.PAFormPath = findFile(path, "pa.pdf", "pa")
	pf.ReferralPath = findFile(path, "referral_package.pdf", "referral")

	switch {
	case pf.PAFormPath == "" && pf.ReferralPath == "":
		pf.Reason = "missing PA form and referral package"
	case pf.PAFormPath == "":
		pf.Reason = "missing PA form (PA.pdf)"
	case pf.ReferralPath == "":
		pf.Reason = "missing referral package (referral_package.pdf)"
	default:
		pf.Ready = true
	}
	return pf
}

// findFile returns the path of a file matching exactName (case-insensitive),
// falling back to the first PDF whose name starts with prefix. Candidates are
// scanned in sorted order so the choice is stable.
func findFile(dir, exactName, prefix string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, n := range names {
		if strings.EqualFold(n, exactName) {
			return filepath.Join(dir, n)
		}
	}
	for _, n := range names {
		low := strings.ToLower(n)
		if strings.HasPrefix(low, prefix) && strings.HasSuffix(low, ".pdf") {
			return filepath.Join(dir, n)
		}
	}
	return ""
}
