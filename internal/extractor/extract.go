package extractor

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for artifacts we cannot extract
// text from. Callers surface this distinctly instead of treating the
// document as empty.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Format identifies an uploaded artifact's file format.
type Format string

const (
	FormatTXT  Format = "txt"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// DetectFormat resolves the format from the filename extension, falling
// back to the reported content type.
func DetectFormat(filename, contentType string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return FormatTXT, nil
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	}

	switch contentType {
	case "text/plain":
		return FormatTXT, nil
	case "application/pdf":
		return FormatPDF, nil
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.openxmlformats-officedocument.wordprocessingml":
		return FormatDOCX, nil
	}

	return "", ErrUnsupportedFormat
}

// ExtractText converts an artifact of the given format to plain text.
func ExtractText(data []byte, format Format) (string, error) {
	switch format {
	case FormatTXT:
		return ExtractTXT(data)
	case FormatPDF:
		return ExtractPDF(data)
	case FormatDOCX:
		return ExtractDOCX(data)
	}
	return "", ErrUnsupportedFormat
}
