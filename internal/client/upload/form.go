package upload

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"

	"github.com/dmitrijs2005/arkadconsole/internal/cryptox"
)

// Form assembles a multipart/form-data body. The first error sticks and is
// reported by Encode.
type Form struct {
	buf bytes.Buffer
	w   *multipart.Writer
	err error
}

func NewForm() *Form {
	f := &Form{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

// Field adds a text part.
func (f *Form) Field(name, value string) *Form {
	if f.err == nil {
		f.err = f.w.WriteField(name, value)
	}
	return f
}

// Envelope adds the iv and ciphertext parts of env.
func (f *Form) Envelope(env cryptox.Envelope) *Form {
	return f.Field("iv", env.IV).Field("ciphertext", env.Ciphertext)
}

// File adds a file part carrying file's own name and MIME type.
func (f *Form) File(field string, file File) *Form {
	if f.err != nil {
		return f
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     field,
		"filename": file.Name,
	}))
	ct := file.MIMEType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := f.w.CreatePart(h)
	if err != nil {
		f.err = err
		return f
	}
	_, f.err = part.Write(file.Data)
	return f
}

// Files adds every file under the same field name.
func (f *Form) Files(field string, files []File) *Form {
	for _, file := range files {
		f.File(field, file)
	}
	return f
}

// Encode closes the form and returns its content type and body.
func (f *Form) Encode() (string, io.Reader, error) {
	if f.err != nil {
		return "", nil, fmt.Errorf("build form: %w", f.err)
	}
	if err := f.w.Close(); err != nil {
		return "", nil, fmt.Errorf("build form: %w", err)
	}
	return f.w.FormDataContentType(), &f.buf, nil
}
