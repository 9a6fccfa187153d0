// Package upload validates candidate files before they are sent and tracks
// the progress of uploads in flight.
package upload

import (
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

// MaxBytes is the hard upload cap; configuration may lower it, never raise it.
const MaxBytes int64 = 10 << 20

// Accepted content types.
const (
	TypePDF  = "application/pdf"
	TypeDOC  = "application/msword"
	TypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	TypePNG  = "image/png"
	TypeJPEG = "image/jpeg"
)

// allowedTypes is the MIME allow-list.
var allowedTypes = map[string]struct{}{
	TypePDF:  {},
	TypeDOC:  {},
	TypeDOCX: {},
	TypePNG:  {},
	TypeJPEG: {},
}

// extensionTypes resolves a content type when the caller supplies none.
var extensionTypes = map[string]string{
	".pdf":  TypePDF,
	".doc":  TypeDOC,
	".docx": TypeDOCX,
	".png":  TypePNG,
	".jpg":  TypeJPEG,
	".jpeg": TypeJPEG,
}

// FileInfo is what validation looks at.
type FileInfo struct {
	Name        string
	Size        int64
	ContentType string
}

// File is a validated-or-not file ready for a multipart body.
type File struct {
	FileInfo
	Body io.Reader
}

// TypeFor returns the content type of f, falling back to its extension.
func TypeFor(f FileInfo) string {
	ct := strings.ToLower(strings.TrimSpace(f.ContentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct != "" {
		return ct
	}
	return extensionTypes[strings.ToLower(filepath.Ext(f.Name))]
}

// Limit returns the effective cap for a configured maximum.
func Limit(maxBytes int64) int64 {
	if maxBytes <= 0 || maxBytes > MaxBytes {
		return MaxBytes
	}
	return maxBytes
}

// Validate checks size and type. It returns a *ValidationError.
func Validate(f FileInfo, maxBytes int64) error {
	limit := Limit(maxBytes)
	if f.Size <= 0 {
		return &ValidationError{File: f.Name, Reason: ReasonEmpty, Message: "File is empty"}
	}
	if f.Size > limit {
		msg := "File size must be less than 10MB"
		if limit != MaxBytes {
			msg = "File size must be less than " + humanBytes(limit)
		}
		return &ValidationError{File: f.Name, Reason: ReasonSize, Message: msg}
	}
	if _, ok := allowedTypes[TypeFor(f)]; !ok {
		return &ValidationError{File: f.Name, Reason: ReasonType, Message: "Only PDF, DOC, DOCX, PNG, and JPG files are allowed"}
	}
	return nil
}

func humanBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return strconv.FormatInt(n>>20, 10) + "MB"
	case n >= 1<<10:
		return strconv.FormatInt(n>>10, 10) + "KB"
	default:
		return strconv.FormatInt(n, 10) + "B"
	}
}
