// Package schemas embeds the JSON Schemas that classifier JSON output is validated against.
package schemas

import "embed"

// Schema file names
const (
	Extraction       = "extraction.schema.json"
	ManualExtraction = "manual_extraction.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Read returns the raw contents of an embedded schema.
func Read(name string) ([]byte, error) {
	return files.ReadFile(name)
}

// Names lists the embedded schema files.
func Names() []string {
	return []string{Extraction, ManualExtraction}
}
