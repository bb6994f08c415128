package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrUnsupportedFile = errors.New("unsupported file")

// SupportedDocument reports whether the filename has an extension the
// extractor understands.
func SupportedDocument(filename string) bool {
	switch docExt(filename) {
	case "txt", "pdf", "doc", "docx":
		return true
	}
	return false
}

// ExtractDocument returns the plain text of an uploaded document.
func ExtractDocument(filename string, data []byte) (string, error) {
	switch docExt(filename) {
	case "txt":
		return strings.ToValidUTF8(string(data), ""), nil
	case "pdf":
		return extractPDF(data)
	case "doc", "docx":
		return extractDocx(data)
	default:
		return "", ErrUnsupportedFile
	}
}

func docExt(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// extractPDF joins the text of every page; unreadable pages are skipped.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		// the pdf reader panics on some malformed files
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf: %w", err)
	}
	chunks := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			chunks = append(chunks, "")
			continue
		}
		t, perr := p.GetPlainText(nil)
		if perr != nil {
			t = ""
		}
		chunks = append(chunks, t)
	}
	return strings.Join(chunks, "\n"), nil
}

var (
	docxHeaderPart = regexp.MustCompile(`^word/header[0-9]*\.xml$`)
	docxFooterPart = regexp.MustCompile(`^word/footer[0-9]*\.xml$`)
)

// extractDocx returns header text, then the body, then footer text. Headers
// and footers keep their archive order.
func extractDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx: %w", err)
	}
	var body *zip.File
	var headers, footers []*zip.File
	for _, f := range zr.File {
		switch {
		case f.Name == "word/document.xml":
			body = f
		case docxHeaderPart.MatchString(f.Name):
			headers = append(headers, f)
		case docxFooterPart.MatchString(f.Name):
			footers = append(footers, f)
		}
	}
	if body == nil {
		return "", fmt.Errorf("docx: word/document.xml not found")
	}

	var b strings.Builder
	for _, f := range append(append(headers, body), footers...) {
		if err := docxPartText(f, &b); err != nil {
			return "", fmt.Errorf("docx %s: %w", f.Name, err)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// docxPartText appends the text of one WordprocessingML part: w:t runs are
// text, w:tab is a tab, and each paragraph ends with a newline.
func docxPartText(f *zip.File, b *strings.Builder) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteString("\t")
			case "br", "cr":
				b.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
}
