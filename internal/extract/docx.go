package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// extractDOCX pulls paragraph text out of the OOXML main document part.
// DOCX is a zip container; word/document.xml holds w:p paragraphs whose w:t
// runs carry the visible text. Paragraphs become lines, w:br/w:tab become
// line breaks and tabs, everything else is skipped.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Format: FormatDOCX, Message: "not a valid DOCX container", Cause: err}
	}

	var docXML io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return "", &ExtractionError{Format: FormatDOCX, Message: "failed to open document part", Cause: err}
			}
			break
		}
	}
	if docXML == nil {
		return "", &ExtractionError{Format: FormatDOCX, Message: "missing word/document.xml"}
	}
	defer func() { _ = docXML.Close() }()

	text, err := decodeDocumentXML(docXML)
	if err != nil {
		return "", &ExtractionError{Format: FormatDOCX, Message: "failed to parse document XML", Cause: err}
	}
	return text, nil
}

// decodeDocumentXML streams the OOXML body and emits plain text
func decodeDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "br":
				sb.WriteString("\n")
			case "tab":
				sb.WriteString("\t")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}
