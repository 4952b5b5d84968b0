package media

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Field names the backend binds uploads to. They differ per endpoint.
const (
	FieldImageFile = "imageFile" // categories, user avatar
	FieldImages    = "Images"    // products, reviews (repeated)
	FieldFile      = "file"      // settings media
)

type textField struct {
	key   string
	value string
}

type filePart struct {
	field string
	file  File
}

// Form collects text fields and files for one multipart request. It is not
// safe for concurrent use and must be closed after the request completes.
type Form struct {
	fields  []textField
	files   []filePart
	closers []io.Closer
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// Set appends a text field. Repeated keys are sent repeatedly.
func (f *Form) Set(key, value string) *Form {
	f.fields = append(f.fields, textField{key: key, value: value})
	return f
}

// SetInt appends an integer text field.
func (f *Form) SetInt(key string, value int) *Form {
	return f.Set(key, strconv.Itoa(value))
}

// SetOptional appends key only when value is not blank.
func (f *Form) SetOptional(key, value string) *Form {
	if strings.TrimSpace(value) == "" {
		return f
	}
	return f.Set(key, value)
}

// Add attaches files under field.
func (f *Form) Add(field string, files ...File) *Form {
	for _, file := range files {
		f.files = append(f.files, filePart{field: field, file: file})
	}
	return f
}

// Fields returns the text fields as a multi-map.
func (f *Form) Fields() map[string][]string {
	out := make(map[string][]string, len(f.fields))
	for _, tf := range f.fields {
		out[tf.key] = append(out[tf.key], tf.value)
	}
	return out
}

// FileCount reports how many files are attached.
func (f *Form) FileCount() int {
	return len(f.files)
}

// Apply writes the form onto req as multipart/form-data. The Content-Type
// header, including the boundary, is left to the transport.
func (f *Form) Apply(req *resty.Request) error {
	for _, tf := range f.fields {
		req.SetMultipartField(tf.key, "", "", strings.NewReader(tf.value))
	}
	for _, part := range f.files {
		reader, err := part.file.open()
		if err != nil {
			_ = f.Close()
			return err
		}
		f.closers = append(f.closers, reader)
		req.SetMultipartField(part.field, part.file.FileName(), part.file.ContentType(), reader)
	}
	return nil
}

// Close releases file handles opened by Apply.
func (f *Form) Close() error {
	var errs []error
	for _, c := range f.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	f.closers = nil
	return errors.Join(errs...)
}
