package certificates

import (
	"fmt"
	"strings"
	"time"

	"github.com/agriportal/agriportal-backend/pkg/db/models"
)

// Page geometry in millimetres (A4 portrait).
const (
	PageWidth  = 210.0
	PageHeight = 297.0

	marginX      = 25.0
	contentWidth = PageWidth - 2*marginX

	barHeight      = 10.0
	barSpacing     = 22.0
	barTop         = 84.0
	barPadding     = 3.0
	barFontSize    = 12.0
	barMinFontSize = 8.0
	captionGap     = 4.0

	paragraphTop      = barTop + 4*barSpacing + 4.0
	paragraphFontSize = 11.0
	paragraphLeading  = 6.0

	numberBlockTop = 232.0
	footerTop      = 282.0
)

// Placeholder is printed in a fill bar whose source field is empty.
const Placeholder = "Not specified in application"

const ellipsis = "..."

// Font styles understood by the renderer.
const (
	StyleRegular = ""
	StyleBold    = "B"
	StyleItalic  = "I"
)

// Align values mirror fpdf's alignment strings.
const (
	AlignLeft   = "L"
	AlignCenter = "C"
	AlignRight  = "R"
)

// Measurer reports the rendered width of text in millimetres.
type Measurer interface {
	Width(text, style string, size float64) float64
}

// Text is a single positioned line.
type Text struct {
	Value string
	X, Y  float64
	Width float64
	Style string
	Size  float64
	Align string
}

// FillBar is a shaded box holding one piece of applicant data with a caption beneath it.
type FillBar struct {
	Value     string
	Caption   string
	X, Y      float64
	W, H      float64
	FontSize  float64
	Truncated bool
}

// Layout is the complete, renderer-independent description of one certificate page.
type Layout struct {
	Header    []Text
	Title     Text
	Preamble  Text
	Bars      []FillBar
	Paragraph []Text
	Number    []Text
	Signature []Text
	Footer    Text
	// Overflow is set when the paragraph runs into the number block.
	Overflow bool
}

// Institution carries the issuing authority's printed identity.
type Institution struct {
	Country    string
	Department string
	Authority  string
	Office     string
	Signatory  string
}

// Issue holds the per-certificate values assigned at approval time.
type Issue struct {
	Number     string
	IssuedAt   time.Time
	ValidUntil time.Time
}

// BuildLayout positions every element of the certificate for reg. It never
// fails; empty optional fields fall back to Placeholder.
func BuildLayout(reg models.Registration, inst Institution, issue Issue, m Measurer) Layout {
	var l Layout

	l.Header = []Text{
		centered(inst.Country, 20, StyleRegular, 11),
		centered(inst.Department, 26, StyleRegular, 11),
		centered(strings.ToUpper(inst.Authority), 33, StyleBold, 14),
		centered(inst.Office, 39, StyleRegular, 10),
	}
	l.Title = centered("CERTIFICATE OF REGISTRATION", 60, StyleBold, 24)
	l.Preamble = centered("This is to certify that", 74, StyleItalic, 12)

	values := []struct{ value, caption string }{
		{valueOr(reg.BusinessName), "Name of Company / Business"},
		{valueOr(reg.OfficeAddress), "Office Address"},
		{valueOr(deref(reg.NatureOfBusiness)), "Nature of Business"},
		{valueOr(deref(reg.ToolsAndEquipment)), "Tools and Equipment"},
	}
	for i, v := range values {
		l.Bars = append(l.Bars, fitBar(v.value, v.caption, barTop+float64(i)*barSpacing, m))
	}

	body := fmt.Sprintf(
		"has been duly registered with the %s and is hereby authorized to engage in the business "+
			"activity stated above using the declared tools and equipment, subject to the laws, rules "+
			"and regulations governing the coconut industry. This certificate is valid until %s unless "+
			"sooner revoked or cancelled for cause, and shall be displayed conspicuously at the place of business.",
		strings.ToUpper(inst.Authority), formatDate(issue.ValidUntil),
	)
	measure := func(s string) float64 { return m.Width(s, StyleRegular, paragraphFontSize) }
	y := paragraphTop
	for _, line := range WrapText(body, contentWidth, measure) {
		l.Paragraph = append(l.Paragraph, Text{
			Value: line, X: marginX, Y: y, Width: contentWidth,
			Style: StyleRegular, Size: paragraphFontSize, Align: AlignLeft,
		})
		y += paragraphLeading
	}
	l.Overflow = y > numberBlockTop

	l.Number = []Text{
		left(fmt.Sprintf("Certificate No.: %s", issue.Number), numberBlockTop, StyleBold, 11),
		left(fmt.Sprintf("Date Issued: %s", formatDate(issue.IssuedAt)), numberBlockTop+7, StyleRegular, 11),
		left(fmt.Sprintf("Valid Until: %s", formatDate(issue.ValidUntil)), numberBlockTop+14, StyleRegular, 11),
	}
	sigX := PageWidth - marginX - 70
	l.Signature = []Text{
		{Value: strings.ToUpper(inst.Signatory), X: sigX, Y: numberBlockTop + 14, Width: 70, Style: StyleBold, Size: 11, Align: AlignCenter},
		{Value: "Authorized Signatory", X: sigX, Y: numberBlockTop + 20, Width: 70, Style: StyleItalic, Size: 9, Align: AlignCenter},
	}
	l.Footer = centered(
		"This certificate is not valid without the official seal. Any alteration or erasure renders it void.",
		footerTop, StyleItalic, 8,
	)
	return l
}

// fitBar shrinks the value's font until it fits inside the bar and truncates
// with an ellipsis when even the minimum size overflows.
func fitBar(value, caption string, y float64, m Measurer) FillBar {
	bar := FillBar{
		Value: value, Caption: caption,
		X: marginX, Y: y, W: contentWidth, H: barHeight,
		FontSize: barFontSize,
	}
	inner := contentWidth - 2*barPadding
	for bar.FontSize > barMinFontSize && m.Width(value, StyleBold, bar.FontSize) > inner {
		bar.FontSize--
	}
	if m.Width(value, StyleBold, bar.FontSize) <= inner {
		return bar
	}
	runes := []rune(value)
	for len(runes) > 0 && m.Width(string(runes)+ellipsis, StyleBold, bar.FontSize) > inner {
		runes = runes[:len(runes)-1]
	}
	bar.Value = strings.TrimSpace(string(runes)) + ellipsis
	bar.Truncated = true
	return bar
}

// CaptionY is the baseline of the caption printed under a bar.
func (b FillBar) CaptionY() float64 {
	return b.Y + b.H + captionGap
}

func centered(value string, y float64, style string, size float64) Text {
	return Text{Value: value, X: 0, Y: y, Width: PageWidth, Style: style, Size: size, Align: AlignCenter}
}

func left(value string, y float64, style string, size float64) Text {
	return Text{Value: value, X: marginX, Y: y, Width: contentWidth / 2, Style: style, Size: size, Align: AlignLeft}
}

func valueOr(v string) string {
	if strings.TrimSpace(v) == "" {
		return Placeholder
	}
	return strings.TrimSpace(v)
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Format("January 2, 2006")
}
