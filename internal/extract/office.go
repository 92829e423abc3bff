package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	contentTypesPart = "[Content_Types].xml"
	docxDefaultPart  = "word/document.xml"
	odfContentPart   = "content.xml"
	docxMainType     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

var (
	// Run text in WordprocessingML and DrawingML.
	wordText  = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)
	drawText  = regexp.MustCompile(`<a:t(?:\s[^>]*)?>([^<]*)</a:t>`)
	slidePart = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

	// One alternative per element so opening and closing tags agree.
	odfText = regexp.MustCompile(
		`<text:p(?:\s[^>]*)?>([^<]*)</text:p>` +
			`|<text:h(?:\s[^>]*)?>([^<]*)</text:h>` +
			`|<text:span(?:\s[^>]*)?>([^<]*)</text:span>`)

	overridePart = regexp.MustCompile(`<Override\s[^>]*>`)
	partNameAttr = regexp.MustCompile(`PartName="([^"]+)"`)
)

func openZip(content []byte, format string) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("extract %s: not a zip: %w", format, err)
	}
	return zr, nil
}

func readPart(zr *zip.Reader, name string) ([]byte, bool, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, true, err
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		return data, true, err
	}
	return nil, false, nil
}

// joinMatches joins the first non-empty capture group of every match with spaces.
func joinMatches(re *regexp.Regexp, xml []byte, b *strings.Builder) {
	for _, m := range re.FindAllSubmatch(xml, -1) {
		for _, group := range m[1:] {
			text := strings.TrimSpace(string(group))
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(text)
			break
		}
	}
}

// docxMainPart finds the main document part declared in [Content_Types].xml, whatever the
// attribute order.
func docxMainPart(zr *zip.Reader) string {
	data, ok, err := readPart(zr, contentTypesPart)
	if !ok || err != nil {
		return docxDefaultPart
	}
	for _, override := range overridePart.FindAll(data, -1) {
		if !bytes.Contains(override, []byte(`ContentType="`+docxMainType+`"`)) {
			continue
		}
		if m := partNameAttr.FindSubmatch(override); m != nil {
			return strings.TrimPrefix(string(m[1]), "/")
		}
	}
	return docxDefaultPart
}

func extractDOCX(content []byte) (string, error) {
	zr, err := openZip(content, "DOCX")
	if err != nil {
		return "", err
	}
	part := docxMainPart(zr)
	data, ok, err := readPart(zr, part)
	if !ok {
		return "", fmt.Errorf("extract DOCX: %s not found", part)
	}
	if err != nil {
		return "", fmt.Errorf("extract DOCX: read %s: %w", part, err)
	}
	var b strings.Builder
	joinMatches(wordText, data, &b)
	return b.String(), nil
}

// extractPPTX reads slides in slide-number order.
func extractPPTX(content []byte) (string, error) {
	zr, err := openZip(content, "PPTX")
	if err != nil {
		return "", err
	}
	type slide struct {
		n    int
		name string
	}
	var slides []slide
	for _, f := range zr.File {
		if m := slidePart.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			slides = append(slides, slide{n: n, name: f.Name})
		}
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	var b strings.Builder
	for _, s := range slides {
		data, _, err := readPart(zr, s.name)
		if err != nil {
			return "", fmt.Errorf("extract PPTX: read %s: %w", s.name, err)
		}
		joinMatches(drawText, data, &b)
	}
	return b.String(), nil
}

// extractOpenDocument handles presentations and spreadsheets, whose text lives in
// content.xml.
func extractOpenDocument(content []byte) (string, error) {
	zr, err := openZip(content, "OpenDocument")
	if err != nil {
		return "", err
	}
	data, ok, err := readPart(zr, odfContentPart)
	if !ok {
		return "", fmt.Errorf("extract OpenDocument: %s not found", odfContentPart)
	}
	if err != nil {
		return "", fmt.Errorf("extract OpenDocument: read %s: %w", odfContentPart, err)
	}
	var b strings.Builder
	joinMatches(odfText, data, &b)
	return b.String(), nil
}
