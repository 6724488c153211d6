package report

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/disease-predictor/internal/domain"
)

// ContentTypePDF is the media type of rendered documents
const ContentTypePDF = "application/pdf"

// ErrNotDocumented is returned for domains without a document layout
var ErrNotDocumented = errors.New("domain has no document layout")

// docLayout holds the per-domain texts of a document
type docLayout struct {
	title    string
	footer   string
	filename string
}

var layouts = map[domain.Domain]docLayout{
	domain.DomainDiabetes: {
		title:    "Diabetes Prediction Report",
		footer:   "This report was generated using an AI-based prediction model. Consult a physician for clinical advice.",
		filename: "diabetes_detailed_report.pdf",
	},
	domain.DomainHeart: {
		title:    "Heart Disease Prediction Report",
		footer:   "This AI-based report should be reviewed by a medical professional.",
		filename: "heart_disease_report.pdf",
	},
}

// Documented reports whether a domain's results can be rendered to a document
func Documented(d domain.Domain) bool {
	_, ok := layouts[d]
	return ok
}

// Page geometry in points, measured up from the bottom of a letter page.
const (
	pageHeight = 792.0
	marginX    = 50.0
	indentX    = 60.0
	titleY     = 770.0
	dateY      = 750.0
	resultY    = 720.0
	summaryY   = 690.0
	firstLineY = 670.0
	lineHeight = 15.0
	headingGap = 10.0
	sectionGap = 30.0
	footerY    = 50.0

	// lowest baseline a body line may use before the footer band
	bodyFloor = footerY + lineHeight
)

const fontFamily = "Helvetica"

type fontSpec struct {
	style string
	size  float64
}

var (
	fontTitle   = fontSpec{"B", 18}
	fontDate    = fontSpec{"", 12}
	fontResult  = fontSpec{"B", 14}
	fontHeading = fontSpec{"B", 12}
	fontBody    = fontSpec{"", 11}
	fontFooter  = fontSpec{"I", 9}
)

// placedLine is one string at a fixed position on a zero-based page
type placedLine struct {
	page int
	x, y float64
	font fontSpec
	text string
}

// layoutLines positions every line of a report. Body lines that would run
// into the footer band continue at the top of a new page.
func layoutLines(l docLayout, r *domain.Report) []placedLine {
	var lines []placedLine
	page := 0
	add := func(x, y float64, f fontSpec, text string) {
		lines = append(lines, placedLine{page: page, x: x, y: y, font: f, text: text})
	}

	add(marginX, titleY, fontTitle, l.title)
	add(marginX, dateY, fontDate, "Date: "+r.GeneratedAt.Format("2006-01-02 15:04:05"))
	add(marginX, resultY, fontResult, "Prediction Result: "+ResultLine(r.Result))
	add(marginX, summaryY, fontHeading, "Patient Input Summary:")

	y := firstLineY
	item := func(text string) {
		if y < bodyFloor {
			page++
			y = titleY
		}
		add(indentX, y, fontBody, text)
		y -= lineHeight
	}
	heading := func(text string) {
		if y-sectionGap < bodyFloor {
			page++
			y = titleY + headingGap
		}
		add(marginX, y-headingGap, fontHeading, text)
		y -= sectionGap
	}

	spec, _ := domain.SpecFor(r.Result.Domain)
	for _, field := range spec.Fields {
		if value, ok := r.Input[field.Name]; ok {
			item(fmt.Sprintf("%s: %s", field.Label, value))
		}
	}

	heading("Risk Factor Highlights:")
	for _, f := range r.Flags {
		item(fmt.Sprintf("%s (%s): %s", f.Factor, strconv.FormatFloat(f.Value, 'f', -1, 64), f.Classification))
	}

	heading("Recommendations:")
	for _, rec := range r.Recommendations {
		item(rec)
	}

	return lines
}

// PDFRenderer renders reports as letter-size PDF documents. Output is
// deterministic for a given report: the document dates are pinned to the
// report timestamp.
type PDFRenderer struct{}

// NewPDFRenderer creates a new PDF renderer
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render implements domain.DocumentRenderer
func (p *PDFRenderer) Render(r *domain.Report) (*domain.Document, error) {
	l, ok := layouts[r.Result.Domain]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotDocumented, r.Result.Domain)
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		SizeStr:        "Letter",
	})
	pdf.SetCreationDate(r.GeneratedAt)
	pdf.SetModificationDate(r.GeneratedAt)
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	page := -1
	for _, line := range layoutLines(l, r) {
		for page < line.page {
			pdf.AddPage()
			pdf.SetFont(fontFamily, fontFooter.style, fontFooter.size)
			pdf.Text(marginX, pageHeight-footerY, tr(l.footer))
			page++
		}
		pdf.SetFont(fontFamily, line.font.style, line.font.size)
		pdf.Text(line.x, pageHeight-line.y, tr(line.text))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering %s report: %w", r.Result.Domain, err)
	}

	return &domain.Document{
		Filename:    l.filename,
		ContentType: ContentTypePDF,
		Data:        buf.Bytes(),
	}, nil
}
