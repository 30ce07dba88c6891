// Package report renders tabular PDF exports: an optional organization logo,
// a title, the export date and a bordered table.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/dmitrijs2005/arkadconsole/internal/filex"
)

var ErrUnsupportedLogo = errors.New("unsupported logo format")

const (
	lineHeight = 5.0
	cellPad    = 1.5
	fontFamily = "Helvetica"
	logoWidth  = 30.0
	dateLayout = "2006-01-02"
)

// Table is one report: a header block followed by rows of text cells.
// Rows shorter than Columns are padded with empty cells.
type Table struct {
	Title   string
	Date    time.Time
	Columns []string
	Rows    [][]string
	// Summary lines are printed after the table.
	Summary []string
}

// Renderer lays tables out on A4 pages. Tables with more than five columns
// use landscape orientation.
type Renderer struct {
	logo     []byte
	logoType string
	compress bool
}

// New loads the logo at logoPath. An empty path renders reports without a
// logo.
func New(logoPath string) (*Renderer, error) {
	r := &Renderer{compress: true}
	if logoPath == "" {
		return r, nil
	}

	typ, err := imageType(logoPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(logoPath)
	if err != nil {
		return nil, fmt.Errorf("read logo: %w", err)
	}
	r.logo, r.logoType = data, typ
	return r, nil
}

func imageType(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return "PNG", nil
	case ".jpg", ".jpeg":
		return "JPG", nil
	case ".gif":
		return "GIF", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLogo, ext)
	}
}

// Write renders t as a PDF document into w.
func (r *Renderer) Write(w io.Writer, t Table) error {
	if len(t.Columns) == 0 {
		return errors.New("report has no columns")
	}

	orientation := "P"
	if len(t.Columns) > 5 {
		orientation = "L"
	}

	pdf := fpdf.New(orientation, "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetTitle(t.Title, true)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	r.header(pdf, tr, t)

	widths := columnWidths(pdf, tr, t)
	tableHeader(pdf, tr, t.Columns, widths)

	_, pageH := pdf.GetPageSize()
	left, _, _, bottom := pdf.GetMargins()
	if bottom <= 0 {
		bottom = 15
	}

	for _, row := range t.Rows {
		cells := make([][][]byte, len(widths))
		lines := 1
		for i, w := range widths {
			var txt string
			if i < len(row) {
				txt = tr(row[i])
			}
			cells[i] = pdf.SplitLines([]byte(txt), w-2*cellPad)
			lines = max(lines, len(cells[i]))
		}
		h := float64(lines) * lineHeight

		if pdf.GetY()+h > pageH-bottom {
			pdf.AddPage()
			tableHeader(pdf, tr, t.Columns, widths)
		}

		x, y := left, pdf.GetY()
		for i, w := range widths {
			pdf.Rect(x, y, w, h, "D")
			pdf.SetXY(x+cellPad, y)
			for _, ln := range cells[i] {
				pdf.CellFormat(w-2*cellPad, lineHeight, string(ln), "", 2, "L", false, 0, "")
			}
			x += w
		}
		pdf.SetXY(left, y+h)
	}

	if len(t.Summary) > 0 {
		pdf.Ln(lineHeight)
		pdf.SetFont(fontFamily, "B", 10)
		for _, s := range t.Summary {
			pdf.CellFormat(0, lineHeight+1, tr(s), "", 1, "L", false, 0, "")
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render %q: %w", t.Title, err)
	}
	return pdf.Output(w)
}

func (r *Renderer) header(pdf *fpdf.Fpdf, tr func(string) string, t Table) {
	left, top, _, _ := pdf.GetMargins()

	if len(r.logo) > 0 {
		opts := fpdf.ImageOptions{ImageType: r.logoType, ReadDpi: true}
		info := pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(r.logo))
		if info != nil {
			h := logoWidth * info.Height() / info.Width()
			pdf.ImageOptions("logo", left, top, logoWidth, h, false, opts, 0, "")
			pdf.SetY(top + h + 4)
		}
	}

	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(0, 9, tr(t.Title), "", 1, "C", false, 0, "")

	date := t.Date
	if date.IsZero() {
		date = time.Now()
	}
	pdf.SetFont(fontFamily, "", 10)
	pdf.CellFormat(0, 6, "Date: "+date.Format(dateLayout), "", 1, "C", false, 0, "")
	pdf.Ln(4)
}

func tableHeader(pdf *fpdf.Fpdf, tr func(string) string, cols []string, widths []float64) {
	pdf.SetFont(fontFamily, "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, c := range cols {
		pdf.CellFormat(widths[i], lineHeight+2, tr(c), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont(fontFamily, "", 9)
}

// columnWidths shares the printable width between columns in proportion to
// their widest cell, with a floor so short columns stay readable.
func columnWidths(pdf *fpdf.Fpdf, tr func(string) string, t Table) []float64 {
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	avail := pageW - left - right

	pdf.SetFont(fontFamily, "B", 9)
	want := make([]float64, len(t.Columns))
	for i, c := range t.Columns {
		want[i] = pdf.GetStringWidth(tr(c))
	}
	pdf.SetFont(fontFamily, "", 9)
	for _, row := range t.Rows {
		for i := range min(len(row), len(want)) {
			want[i] = max(want[i], pdf.GetStringWidth(tr(row[i])))
		}
	}

	floor := avail / float64(len(want)) / 2
	var sum float64
	for i := range want {
		want[i] = max(want[i]+2*cellPad, floor)
		sum += want[i]
	}
	for i := range want {
		want[i] = want[i] / sum * avail
	}
	return want
}

// Save renders t into dir/name, creating dir when needed, and returns the
// written path.
func (r *Renderer) Save(dir, name string, t Table) (string, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := r.Write(&buf, t); err != nil {
		return "", err
	}

	path := filepath.Join(abs, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o640); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
