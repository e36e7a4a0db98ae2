package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_CollapsesWhitespacePreservesLines(t *testing.T) {
	input := "Senior   Engineer\t\tResume\r\n\r\n\r\n\r\nExperience:\n  5   years"
	got := Normalize(input)

	assert.Equal(t, "Senior Engineer Resume\n\nExperience:\n5 years", got)
}

func TestNormalize_StripsControlCharacters(t *testing.T) {
	input := "Hello\x00World\x07\nSecond\x1bLine"
	got := Normalize(input)

	assert.Equal(t, "HelloWorld\nSecondLine", got)
}

func TestNormalize_EmptyInput(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("   \n\t\n  "))
}

func TestHash_DeterministicOverNormalizedText(t *testing.T) {
	a := Hash("some resume text")
	b := Hash("some resume text")
	c := Hash("different text")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64) // hex-encoded sha256
}

func TestDetect_MagicBytesWinOverExtension(t *testing.T) {
	// A PDF renamed to .txt still detects as PDF
	pdfBytes := []byte("%PDF-1.4\n1 0 obj\n<< >>\nendobj\n")
	assert.Equal(t, FormatPDF, Detect(pdfBytes, ".txt"))
}

func TestDetect_TextFormats(t *testing.T) {
	assert.Equal(t, FormatHTML, Detect([]byte("<!DOCTYPE html><html><body>hi</body></html>"), ""))
	assert.Equal(t, FormatPlain, Detect([]byte("just some plain text content"), ".txt"))
	assert.Equal(t, FormatTabular, Detect([]byte("name,email,phone\na,b,c"), ".csv"))
}

func TestExtract_PlainText(t *testing.T) {
	result, err := Extract([]byte("Responsible for leading the team.\n\nBSc Computer Science"), ".txt")
	require.NoError(t, err)

	assert.Equal(t, FormatPlain, result.Format)
	assert.Contains(t, result.Text, "Responsible for leading the team.")
	assert.NotEmpty(t, result.Hash)
}

func TestExtract_HTMLBlocksBecomeLines(t *testing.T) {
	html := `<html><head><style>p{color:red}</style></head><body>
		<h1>Senior Engineer</h1>
		<p>We are hiring.</p>
		<script>alert("x")</script>
		<ul><li>Go</li><li>Postgres</li></ul>
	</body></html>`

	result, err := Extract([]byte(html), ".html")
	require.NoError(t, err)

	assert.Contains(t, result.Text, "Senior Engineer")
	assert.Contains(t, result.Text, "We are hiring.")
	assert.NotContains(t, result.Text, "alert")
	assert.NotContains(t, result.Text, "color:red")
	// list items land on separate lines
	lines := strings.Split(result.Text, "\n")
	assert.Contains(t, lines, "Go")
	assert.Contains(t, lines, "Postgres")
}

func TestExtract_Tabular(t *testing.T) {
	csvData := []byte("name,role,skill\nJane Doe,Engineer,Go\nJohn Roe,Manager,SQL\n")

	result, err := Extract(csvData, ".csv")
	require.NoError(t, err)

	assert.Equal(t, FormatTabular, result.Format)
	assert.Contains(t, result.Text, "Jane Doe Engineer Go")
	assert.Contains(t, result.Text, "John Roe Manager SQL")
}

func TestExtract_DOCX(t *testing.T) {
	data := buildDOCX(t, []string{"Jane Doe", "5 years experience as engineer"})

	result, err := Extract(data, ".docx")
	require.NoError(t, err)

	assert.Equal(t, FormatDOCX, result.Format)
	assert.Contains(t, result.Text, "Jane Doe")
	assert.Contains(t, result.Text, "5 years experience as engineer")
}

func TestExtract_CorruptPDFReturnsTypedError(t *testing.T) {
	corrupt := []byte("%PDF-1.4\ngarbage that is not a valid xref table")

	_, err := Extract(corrupt, ".pdf")
	require.Error(t, err)

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, FormatPDF, extractionErr.Format)
}

func TestExtract_EmptyContent(t *testing.T) {
	_, err := Extract(nil, "")
	require.Error(t, err)

	var extractionErr *ExtractionError
	assert.ErrorAs(t, err, &extractionErr)
}

func TestExtract_IdenticalBytesProduceIdenticalHash(t *testing.T) {
	content := []byte("The exact same resume text, fetched twice.")

	first, err := Extract(content, ".txt")
	require.NoError(t, err)
	second, err := Extract(content, ".txt")
	require.NoError(t, err)

	assert.Equal(t, first.Hash, second.Hash)
}

func TestHashOnly_EmptyAfterNormalization(t *testing.T) {
	_, err := HashOnly("  \x00 \n ")
	require.Error(t, err)
}

func TestDecodeDocumentXML_BreaksAndTabs(t *testing.T) {
	xml := `<?xml version="1.0"?>
		<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
		<w:body>
		<w:p><w:r><w:t>First</w:t><w:br/><w:t>Second</w:t></w:r></w:p>
		<w:p><w:r><w:t>Col1</w:t><w:tab/><w:t>Col2</w:t></w:r></w:p>
		</w:body></w:document>`

	text, err := decodeDocumentXML(strings.NewReader(xml))
	require.NoError(t, err)

	assert.Contains(t, text, "First\nSecond")
	assert.Contains(t, text, "Col1\tCol2")
}

// buildDOCX assembles a minimal OOXML container with one paragraph per line
func buildDOCX(t *testing.T, paragraphs []string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	contentTypes, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`))
	require.NoError(t, err)

	var body strings.Builder
	body.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString("<w:p><w:r><w:t>")
		body.WriteString(p)
		body.WriteString("</w:t></w:r></w:p>")
	}
	body.WriteString(`</w:body></w:document>`)

	doc, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = doc.Write([]byte(body.String()))
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	return buf.Bytes()
}
