package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

var spreadsheetExtensions = map[string]struct{}{
	".xlsx": {},
	".xls":  {},
}

// CheckSourceFile rejects files the parser would refuse, before any upload.
func CheckSourceFile(f SourceFile) error {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return fmt.Errorf("%w: file name is empty", ErrInvalidInput)
	}
	if _, ok := spreadsheetExtensions[strings.ToLower(filepath.Ext(name))]; !ok {
		return fmt.Errorf("%w: only Excel files (.xlsx, .xls) are allowed, got %q", ErrInvalidInput, name)
	}
	return nil
}

// ScenarioNameFromFile derives a scenario name from an uploaded file name:
// its base name with the extension stripped.
func ScenarioNameFromFile(name string) string {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	return strings.TrimSuffix(base, filepath.Ext(base))
}
