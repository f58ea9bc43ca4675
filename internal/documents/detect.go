package documents

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

var extensionTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
}

// DetectContentType combines the extension with a sniff of the first bytes.
// When the two disagree the sniffed type wins, so a renamed executable never
// passes as a PDF.
func DetectContentType(name string, head []byte) string {
	byExt := extensionTypes[strings.ToLower(filepath.Ext(name))]
	sniffed := http.DetectContentType(head)
	if i := strings.Index(sniffed, ";"); i >= 0 {
		sniffed = sniffed[:i]
	}

	switch {
	case byExt == "":
		return sniffed
	case sniffed == byExt:
		return byExt
	case sniffed == "application/zip" && strings.HasPrefix(byExt, "application/vnd.openxmlformats"):
		return byExt
	case sniffed == "application/octet-stream" && byExt == "application/msword":
		return byExt
	default:
		return sniffed
	}
}

// CleanName reduces a client-supplied file name to its base name.
func CleanName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	base := path.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}
