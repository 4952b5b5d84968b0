// Package media builds multipart upload bodies for product images, avatars,
// review photos and settings media.
package media

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultType is used when neither the picker, the extension nor the content
// identifies the file.
const DefaultType = "image/jpeg"

// File is a platform file handle: either a local path (the native picker's
// {uri, name, type}) or an in-memory payload (a browser File).
type File struct {
	Name string
	Type string
	Path string
	Data []byte
}

// FromPath describes a file on disk. A file:// prefix is accepted.
func FromPath(path string) File {
	trimmed := strings.TrimPrefix(strings.TrimSpace(path), "file://")
	return File{Name: filepath.Base(trimmed), Path: trimmed}
}

// FromBytes describes an in-memory file.
func FromBytes(name, contentType string, data []byte) File {
	return File{Name: name, Type: contentType, Data: data}
}

var whitespace = regexp.MustCompile(`\s+`)

// SanitizeName replaces whitespace runs with underscores. Empty names become
// "upload" plus an extension matching the content type.
func SanitizeName(name string) string {
	cleaned := whitespace.ReplaceAllString(strings.TrimSpace(name), "_")
	if cleaned == "" || cleaned == "." {
		return "upload"
	}
	return cleaned
}

// FileName returns the sanitized name sent in the Content-Disposition header.
func (f File) FileName() string {
	name := SanitizeName(f.Name)
	if name == "upload" {
		if exts, _ := mime.ExtensionsByType(f.ContentType()); len(exts) > 0 {
			return name + exts[0]
		}
	}
	return name
}

// ContentType resolves the MIME type: the supplied type, then the extension,
// then a content sniff restricted to image and video types, then DefaultType.
func (f File) ContentType() string {
	if t := strings.TrimSpace(f.Type); t != "" {
		return t
	}
	if ext := strings.ToLower(filepath.Ext(f.Name)); ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	if t := f.sniff(); t != "" {
		return t
	}
	return DefaultType
}

func (f File) sniff() string {
	var detected *mimetype.MIME
	switch {
	case len(f.Data) > 0:
		detected = mimetype.Detect(f.Data)
	case f.Path != "":
		d, err := mimetype.DetectFile(f.Path)
		if err != nil {
			return ""
		}
		detected = d
	default:
		return ""
	}
	t := detected.String()
	if strings.HasPrefix(t, "image/") || strings.HasPrefix(t, "video/") {
		return t
	}
	return ""
}

func (f File) open() (io.ReadCloser, error) {
	if f.Data != nil {
		return io.NopCloser(bytes.NewReader(f.Data)), nil
	}
	if f.Path == "" {
		return nil, fmt.Errorf("file %q has neither path nor data", f.Name)
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Path, err)
	}
	return file, nil
}
