package certificates

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/agriportal/agriportal-backend/pkg/config"
	"github.com/agriportal/agriportal-backend/pkg/db/models"
	"github.com/agriportal/agriportal-backend/pkg/metrics"
)

const fontFamily = "Helvetica"

var filenameSanitizer = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Certificate is a rendered registration certificate.
type Certificate struct {
	Number   string
	Filename string
	PDF      []byte
	Layout   Layout
}

// Renderer produces a certificate for a registration.
type Renderer interface {
	Render(reg models.Registration) (*Certificate, error)
}

// Generator renders certificates to PDF with fpdf.
type Generator struct {
	inst          Institution
	prefix        string
	validityYears int
	compress      bool
	now           func() time.Time
	metrics       *metrics.PipelineMetrics
	draw          func(pdf *fpdf.Fpdf, tr func(string) string, l Layout)
}

// Option customizes a Generator.
type Option func(*Generator)

// WithCompression toggles PDF stream compression. Disabling it keeps page
// text searchable in the raw bytes.
func WithCompression(enabled bool) Option {
	return func(g *Generator) { g.compress = enabled }
}

// WithClock overrides the time source used when a record has no registration date.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithMetrics records render durations.
func WithMetrics(m *metrics.PipelineMetrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// NewGenerator builds a Generator from the certificate configuration.
func NewGenerator(cfg config.CertificateConfig, opts ...Option) *Generator {
	g := &Generator{
		inst: Institution{
			Country:    cfg.Country,
			Department: cfg.Department,
			Authority:  cfg.Authority,
			Office:     cfg.Office,
			Signatory:  cfg.Signatory,
		},
		prefix:        cfg.NumberPrefix,
		validityYears: cfg.ValidityYears,
		compress:      true,
		now:           time.Now,
		draw:          draw,
	}
	if g.validityYears <= 0 {
		g.validityYears = 1
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NumberFor derives the certificate number assigned on approval. The full
// registration id is embedded so numbers stay unique across registrations.
func NumberFor(prefix string, id uuid.UUID, issued time.Time) string {
	hex := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	if prefix == "" {
		return fmt.Sprintf("%d-%s", issued.Year(), hex)
	}
	return fmt.Sprintf("%s-%d-%s", prefix, issued.Year(), hex)
}

// ValidUntil returns the expiry for a certificate issued at issued.
func (g *Generator) ValidUntil(issued time.Time) time.Time {
	return issued.AddDate(g.validityYears, 0, 0)
}

// Number returns the certificate number the generator would print for reg.
func (g *Generator) Number(reg models.Registration, issued time.Time) string {
	if reg.CertificateNumber != nil && *reg.CertificateNumber != "" {
		return *reg.CertificateNumber
	}
	return NumberFor(g.prefix, reg.ID, issued)
}

// Render lays out and draws the certificate for reg. A panic while drawing is
// returned as an error.
func (g *Generator) Render(reg models.Registration) (cert *Certificate, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			cert, err = nil, fmt.Errorf("rendering certificate pdf: panic: %v", r)
		}
		g.metrics.ObserveRender(time.Since(start), err)
	}()

	issue := g.issueFor(reg)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(g.compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetTitle("Certificate of Registration "+issue.Number, true)
	pdf.SetAuthor(g.inst.Authority, true)
	pdf.SetCreator("agriportal", false)
	pdf.SetCreationDate(issue.IssuedAt)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	layout := BuildLayout(reg, g.inst, issue, &pdfMeasurer{pdf: pdf, tr: tr})

	g.draw(pdf, tr, layout)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering certificate pdf: %w", err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("rendering certificate pdf: empty output")
	}

	return &Certificate{
		Number:   issue.Number,
		Filename: Filename(issue.Number),
		PDF:      buf.Bytes(),
		Layout:   layout,
	}, nil
}

// Filename returns the attachment name for a certificate number.
func Filename(number string) string {
	safe := strings.Trim(filenameSanitizer.ReplaceAllString(number, "_"), "_")
	if safe == "" {
		safe = "registration"
	}
	return "certificate-" + safe + ".pdf"
}

func (g *Generator) issueFor(reg models.Registration) Issue {
	issued := g.now().UTC()
	if reg.RegistrationDate != nil && !reg.RegistrationDate.IsZero() {
		issued = reg.RegistrationDate.UTC()
	}
	validUntil := g.ValidUntil(issued)
	if reg.ValidUntil != nil && !reg.ValidUntil.IsZero() {
		validUntil = reg.ValidUntil.UTC()
	}
	return Issue{
		Number:     g.Number(reg, issued),
		IssuedAt:   issued,
		ValidUntil: validUntil,
	}
}

func draw(pdf *fpdf.Fpdf, tr func(string) string, l Layout) {
	// border
	pdf.SetDrawColor(34, 97, 52)
	pdf.SetLineWidth(1.2)
	pdf.Rect(10, 10, PageWidth-20, PageHeight-20, "D")
	pdf.SetLineWidth(0.4)
	pdf.Rect(13, 13, PageWidth-26, PageHeight-26, "D")

	pdf.SetTextColor(20, 20, 20)
	for _, t := range l.Header {
		drawText(pdf, tr, t)
	}

	pdf.SetTextColor(34, 97, 52)
	drawText(pdf, tr, l.Title)
	pdf.SetTextColor(20, 20, 20)
	drawText(pdf, tr, l.Preamble)

	for _, bar := range l.Bars {
		pdf.SetFillColor(226, 240, 217)
		pdf.SetDrawColor(34, 97, 52)
		pdf.SetLineWidth(0.3)
		pdf.Rect(bar.X, bar.Y, bar.W, bar.H, "FD")
		pdf.SetFont(fontFamily, StyleBold, bar.FontSize)
		pdf.SetXY(bar.X+barPadding, bar.Y)
		pdf.CellFormat(bar.W-2*barPadding, bar.H, tr(bar.Value), "", 0, AlignCenter, false, 0, "")

		pdf.SetFont(fontFamily, StyleItalic, 8)
		pdf.SetXY(bar.X, bar.CaptionY()-3)
		pdf.CellFormat(bar.W, 4, tr(bar.Caption), "", 0, AlignCenter, false, 0, "")
	}

	for _, t := range l.Paragraph {
		drawText(pdf, tr, t)
	}
	for _, t := range l.Number {
		drawText(pdf, tr, t)
	}

	if len(l.Signature) > 0 {
		sig := l.Signature[0]
		pdf.SetDrawColor(20, 20, 20)
		pdf.Line(sig.X, sig.Y-1, sig.X+sig.Width, sig.Y-1)
	}
	for _, t := range l.Signature {
		drawText(pdf, tr, t)
	}

	pdf.SetTextColor(90, 90, 90)
	drawText(pdf, tr, l.Footer)
}

func drawText(pdf *fpdf.Fpdf, tr func(string) string, t Text) {
	pdf.SetFont(fontFamily, t.Style, t.Size)
	pdf.SetXY(t.X, t.Y)
	pdf.CellFormat(t.Width, lineHeight(t.Size), tr(t.Value), "", 0, t.Align, false, 0, "")
}

// lineHeight converts a point size into a cell height in millimetres.
func lineHeight(size float64) float64 {
	return size * 0.3528 * 1.3
}

type pdfMeasurer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (m *pdfMeasurer) Width(text, style string, size float64) float64 {
	m.pdf.SetFont(fontFamily, style, size)
	return m.pdf.GetStringWidth(m.tr(text))
}

// NewMeasurer returns a Measurer backed by the same core-font metrics the
// renderer uses.
func NewMeasurer() Measurer {
	pdf := fpdf.New("P", "mm", "A4", "")
	return &pdfMeasurer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}
