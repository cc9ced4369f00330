package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ErrUnsupportedFormat is returned by FileLayer for documents it cannot read.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// FileLayer reads the text layer of PDF and DOCX files.
// Libraries used: github.com/ledongthuc/pdf (PDF); DOCX is read as OOXML.
type FileLayer struct{}

// Open detects the document format and returns a page reader for it.
func (FileLayer) Open(path string) (PageReader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	switch detectFormat(data, path) {
	case mimePDF:
		return openPDF(data)
	case mimeDOCX:
		text, err := extractDOCX(data)
		if err != nil {
			return nil, err
		}
		return staticPages{text}, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

func openPDF(data []byte) (pr PageReader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pr, err = nil, fmt.Errorf("open pdf: %v", rec)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &pdfPages{reader: r}, nil
}

type pdfPages struct {
	reader *pdf.Reader
}

func (p *pdfPages) NumPage() int {
	return p.reader.NumPage()
}

// PageText recovers from parser panics so one malformed page stays isolated.
func (p *pdfPages) PageText(i int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("page %d: %v", i, rec)
		}
	}()
	page := p.reader.Page(i)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

func (p *pdfPages) Close() error { return nil }

// staticPages serves already-extracted text, one string per page.
type staticPages []string

func (s staticPages) NumPage() int { return len(s) }

func (s staticPages) PageText(i int) (string, error) {
	if i < 1 || i > len(s) {
		return "", fmt.Errorf("page %d out of range", i)
	}
	return s[i-1], nil
}

func (staticPages) Close() error { return nil }

func detectFormat(data []byte, fileName string) string {
	sniffed := strings.ToLower(strings.TrimSpace(strings.Split(http.DetectContentType(data), ";")[0]))
	switch sniffed {
	case mimePDF:
		return mimePDF
	case "application/zip":
		if mapped := mapOOXMLFromZip(data); mapped != "" {
			return mapped
		}
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDOCX
	default:
		return sniffed
	}
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return stripDocxXML(string(raw)), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && buf.Len() > 0 {
				buf.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func mapOOXMLFromZip(data []byte) string {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return mimeDOCX
		}
	}
	return ""
}
