package types

// ArtifactVersion records one generated document attached to a posting.
// The documents themselves are produced outside this module.
type ArtifactVersion struct {
	PDFPath   string              `json:"pdf_path" validate:"required"`
	TextPath  string              `json:"text_path"`
	VersionID string              `json:"version_id" validate:"required"`
	CreatedAt string              `json:"created_at"`
	Bullets   map[string][]string `json:"bullets,omitempty"`
}
