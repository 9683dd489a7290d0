package extract

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// indentTolerance is how far, in points, a numbered row may start right of
// the page's text column before it is rendered as indented.
const indentTolerance = 6.0

// extractPDF emits one line per text row, top to bottom, with pages separated
// by a form feed. Pages whose rows cannot be read fall back to plain text.
func extractPDF(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	var buf strings.Builder
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\f")
		}
		rows, err := page.GetTextByRow()
		if err != nil || len(rows) == 0 {
			text, err := page.GetPlainText(nil)
			if err != nil {
				return "", fmt.Errorf("extract page %d: %w", i, err)
			}
			buf.WriteString(text)
			continue
		}
		contents := make([]pdf.TextHorizontal, len(rows))
		for j, row := range rows {
			contents[j] = row.Content
		}
		buf.WriteString(strings.Join(layoutPage(contents), "\n"))
	}
	return buf.String(), nil
}

// textRow is a row split into its margin line number and the text after it.
type textRow struct {
	number string
	textX  float64
	text   string
}

// layoutPage renders rows the way the transcript text layer prints them:
// line number, four spaces, text. Numbered rows that start right of the
// page's text column get two extra spaces of indentation.
func layoutPage(rows []pdf.TextHorizontal) []string {
	parsed := make([]textRow, len(rows))
	column := math.Inf(1)
	for i, content := range rows {
		parsed[i] = splitRow(content)
		if parsed[i].number != "" && parsed[i].textX < column {
			column = parsed[i].textX
		}
	}
	lines := make([]string, 0, len(parsed))
	for _, r := range parsed {
		switch {
		case r.number == "":
			lines = append(lines, r.text)
		case r.textX > column+indentTolerance:
			lines = append(lines, r.number+"      "+r.text)
		default:
			lines = append(lines, r.number+"    "+r.text)
		}
	}
	return lines
}

// splitRow separates a leading run of digits from the rest of the row when
// a visible gap follows it. A row of digits alone is left as text.
func splitRow(content pdf.TextHorizontal) textRow {
	row := append(pdf.TextHorizontal(nil), content...)
	sort.Stable(row)
	var visible []int
	for i, t := range row {
		if strings.TrimSpace(t.S) != "" {
			visible = append(visible, i)
		}
	}
	if len(visible) == 0 {
		return textRow{text: joinGlyphs(row)}
	}

	n := 0
	end := row[visible[0]].X
	for n < len(visible) && isDigits(row[visible[n]].S) {
		g := row[visible[n]]
		if n > 0 && g.X-end > gapWidth(g) {
			break
		}
		end = g.X + g.W
		n++
	}
	if n == 0 || n == len(visible) || row[visible[n]].X-end <= gapWidth(row[visible[n]]) {
		return textRow{textX: row[visible[0]].X, text: joinGlyphs(row)}
	}
	var number strings.Builder
	for _, i := range visible[:n] {
		number.WriteString(strings.TrimSpace(row[i].S))
	}
	first := visible[n]
	return textRow{
		number: number.String(),
		textX:  row[first].X,
		text:   strings.TrimSpace(joinGlyphs(row[first:])),
	}
}

func joinGlyphs(content pdf.TextHorizontal) string {
	var b strings.Builder
	for _, t := range content {
		b.WriteString(t.S)
	}
	return b.String()
}

// gapWidth is the horizontal distance that separates the line number from
// the text: half the font size, or two points when the size is unknown.
func gapWidth(t pdf.Text) float64 {
	if t.FontSize <= 0 {
		return 2
	}
	return t.FontSize / 2
}

func isDigits(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
