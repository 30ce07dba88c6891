package report

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/arkadconsole/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 6, 14, 9, 0, 0, 0, time.UTC)

func writeLogo(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := range 20 {
		for x := range 40 {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x * 6), B: 40, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "logo.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func plain(t *testing.T, logo string) *Renderer {
	t.Helper()
	r, err := New(logo)
	require.NoError(t, err)
	r.compress = false
	return r
}

func TestWrite_HeaderAndRows(t *testing.T) {
	r := plain(t, "")
	tbl := Volunteers("Fun Run", []models.Volunteer{
		{FullName: "Jane Doe", PhoneNumber: "254700000001", Email: "jane@example.org", Location: "Nairobi"},
	}, day)

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, tbl))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "%PDF-"))
	assert.Contains(t, out, "Fun Run Volunteers")
	assert.Contains(t, out, "Date: 2024-06-14")
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "Nairobi")
}

func TestWrite_WithLogo(t *testing.T) {
	r := plain(t, writeLogo(t))

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, Partners(nil, day)))
	assert.Contains(t, buf.String(), "/Subtype /Image")
}

func TestWrite_ManyRowsBreakPages(t *testing.T) {
	r := plain(t, "")
	var ps []models.Partner
	for range 120 {
		ps = append(ps, models.Partner{
			OrganizationName:     "Helping Hands",
			ReasonForPartnership: strings.Repeat("long reason ", 12),
		})
	}

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, Partners(ps, day)))
	assert.Greater(t, strings.Count(buf.String(), "/Type /Page\n"), 1)
}

func TestWrite_NoColumns(t *testing.T) {
	r := plain(t, "")
	require.Error(t, r.Write(&bytes.Buffer{}, Table{Title: "x"}))
}

func TestNew_Logo(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "logo.bmp"))
	require.ErrorIs(t, err, ErrUnsupportedLogo)

	_, err = New(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
}

func TestSave(t *testing.T) {
	r := plain(t, "")
	dir := filepath.Join(t.TempDir(), "exports")

	path, err := r.Save(dir, PartnersFileName, Partners(nil, day))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Partnership_Requests.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestTables(t *testing.T) {
	assert.Equal(t, "Fun_Run_Volunteers.pdf", VolunteersFileName("Fun Run"))
	assert.Equal(t, "All_Volunteers.pdf", VolunteersFileName(""))
	assert.Equal(t, "Donations_2024-05-01_2024-05-31.pdf", DonationsFileName("2024-05-01", "2024-05-31"))

	p := Partners([]models.Partner{{OrganizationName: "Org", OrganizationType: "NGO", ReasonForPartnership: "Trees"}}, day)
	assert.Len(t, p.Columns, 7)
	assert.Equal(t, []string{"Org", "", "", "", "", "NGO", "Trees"}, p.Rows[0])

	d := Donations(models.DonationRange{StartDate: "2024-05-01", EndDate: "2024-05-31"}, []models.Donation{
		{FullName: "A", Amount: 100, CreatedAt: day},
		{FullName: "B", Amount: 50.5},
	}, day)
	assert.Equal(t, "2024-06-14", d.Rows[0][4])
	assert.Equal(t, "", d.Rows[1][4])
	assert.Equal(t, []string{"Donations: 2", "Total: KES 150.50"}, d.Summary)
}
