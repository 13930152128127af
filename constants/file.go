package constants

import "strings"

// Formats understood by the document-to-text stage.
const (
	PDF  = "PDF"
	DOCX = "DOCX"
	TXT  = "TXT"
)

// DefaultExtensions is the document-type filter used for discovery when none is configured.
var DefaultExtensions = []string{"pdf"}

var extFormats = map[string]string{
	"pdf":  PDF,
	"docx": DOCX,
	"txt":  TXT,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// MapExtToFormat returns the converter format for an extension, or "" if unsupported.
func MapExtToFormat(ext string) string {
	return extFormats[NormalizeExt(ext)]
}

// ExtensionSet builds a lookup set from a list of extensions, falling back to DefaultExtensions.
func ExtensionSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		if n := NormalizeExt(e); n != "" {
			set[n] = struct{}{}
		}
	}
	if len(set) == 0 {
		for _, e := range DefaultExtensions {
			set[e] = struct{}{}
		}
	}
	return set
}
