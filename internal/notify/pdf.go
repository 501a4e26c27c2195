package notify

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

const (
	pdfLinesPerPage = 48
	pdfFontSize     = 10
	pdfLeading      = 14
	pdfMarginLeft   = 50
	pdfMarginTop    = 780
)

// WritePDF renders the feed as a simple paginated PDF document: a title
// line followed by one TYPE: message line per notification, in feed order.
func WritePDF(w io.Writer, feed Feed) error {
	lines := []string{"Notifications Report", ""}
	for _, n := range feed.Notifications {
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(n.Type), n.Message))
	}

	pages := [][]string{}
	for start := 0; start < len(lines); start += pdfLinesPerPage {
		end := start + pdfLinesPerPage
		if end > len(lines) {
			end = len(lines)
		}
		pages = append(pages, lines[start:end])
	}
	if len(pages) == 0 {
		pages = append(pages, []string{})
	}

	// Object layout: 1 catalog, 2 page tree, 3 font, then a page and a
	// content stream object per page.
	var buf bytes.Buffer
	offsets := []int{0} // object 0 is the free-list head
	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets)-1, body)
	}

	buf.WriteString("%PDF-1.4\n")

	pageRefs := make([]string, 0, len(pages))
	for i := range pages {
		pageRefs = append(pageRefs, fmt.Sprintf("%d 0 R", 4+2*i))
	}

	writeObj("<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(pageRefs, " "), len(pages)))
	writeObj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	for i, page := range pages {
		contentRef := 5 + 2*i
		writeObj(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			contentRef))

		var content strings.Builder
		fmt.Fprintf(&content, "BT\n/F1 %d Tf\n%d TL\n%d %d Td\n", pdfFontSize, pdfLeading, pdfMarginLeft, pdfMarginTop)
		for j, line := range page {
			if j > 0 {
				content.WriteString("T*\n")
			}
			fmt.Fprintf(&content, "(%s) Tj\n", escapePDFText(line))
		}
		content.WriteString("ET")
		writeObj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()))
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets))
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets[1:] {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets), xrefStart)

	_, err := w.Write(buf.Bytes())
	return err
}

func escapePDFText(s string) string {
	r := strings.NewReplacer("\\", "\\\\", "(", "\\(", ")", "\\)")
	return r.Replace(s)
}
