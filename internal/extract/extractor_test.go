package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExtractBytes_Plain(t *testing.T) {
	e := NewExtractor()
	tests := []struct {
		name    string
		content []byte
		ext     string
		want    string
	}{
		{"txt", []byte("Hello world\nLine 2"), ".txt", "Hello world\nLine 2"},
		{"markdown utf8", []byte("caf\xc3\xa9"), ".md", "café"},
		{"invalid utf8", []byte("hello\x80world"), ".rst", "hello\uFFFDworld"},
		{"bom", []byte("\xef\xbb\xbfbom"), ".txt", "bom"},
		{"no extension", []byte("plain"), "", "plain"},
		{"upper-case extension", []byte("shout"), ".TXT", "shout"},
		{"unknown text extension", []byte("package main"), ".go", "package main"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.ExtractBytes(tt.content, tt.ext)
			if err != nil {
				t.Fatalf("ExtractBytes: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractBytes_UnknownBinary(t *testing.T) {
	e := NewExtractor()
	_, err := e.ExtractBytes([]byte{0x89, 'P', 'N', 'G', 0, 0, 0, 0x0d}, ".png")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractBytes_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Title")
	f.SetCellValue("Sheet1", "A3", "Value 1")
	f.SetCellValue("Sheet1", "B3", "Value 2")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := NewExtractor().ExtractBytes(buf.Bytes(), ".xlsx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Title\nValue 1\tValue 2" {
		t.Errorf("got %q", got)
	}
}

func writeZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

const docxBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p w:rsidR="00A1"><w:r><w:t xml:space="preserve">First </w:t></w:r><w:r><w:t>paragraph</w:t></w:r></w:p>
<w:p><w:r><w:t>Second</w:t><w:tab/><w:t>tabbed</w:t></w:r></w:p>
<w:p></w:p>
</w:body></w:document>`

func TestExtractBytes_DOCX(t *testing.T) {
	content := writeZip(t, map[string]string{"word/document.xml": docxBody})
	got, err := NewExtractor().ExtractBytes(content, ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "First paragraph\nSecond\ttabbed" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_DOCXContentTypes(t *testing.T) {
	for _, attrs := range []string{
		`PartName="/word/document2.xml" ContentType="` + docxMainType + `"`,
		`ContentType="` + docxMainType + `" PartName="/word/document2.xml"`,
	} {
		types := `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Override ` + attrs + `/></Types>`
		content := writeZip(t, map[string]string{
			"[Content_Types].xml": types,
			"word/document2.xml":  docxBody,
		})
		got, err := NewExtractor().ExtractBytes(content, ".docx")
		if err != nil {
			t.Fatalf("ExtractBytes: %v", err)
		}
		if !strings.HasPrefix(got, "First paragraph") {
			t.Errorf("got %q", got)
		}
	}
}

func TestExtractBytes_DOCXErrors(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractBytes([]byte("not a zip"), ".docx"); err == nil {
		t.Error("expected error for non-zip content")
	}
	content := writeZip(t, map[string]string{"other.xml": "<x/>"})
	if _, err := e.ExtractBytes(content, ".docx"); err == nil {
		t.Error("expected error when the document part is missing")
	}
}

func TestExtractBytes_PDFInvalid(t *testing.T) {
	if _, err := NewExtractor().ExtractBytes([]byte("%PDF-garbage"), ".pdf"); err == nil {
		t.Error("expected error for malformed PDF")
	}
}

func TestExtract_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.md")
	if err := os.WriteFile(path, []byte("File content"), 0600); err != nil {
		t.Fatal(err)
	}
	got, err := NewExtractor().Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "File content" {
		t.Errorf("got %q", got)
	}

	if _, err := NewExtractor().Extract(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := NewExtractor().Extract(dir); err == nil {
		t.Error("expected error for directory")
	}
}

func TestExtract_TooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.txt")
	if err := os.WriteFile(path, bytes.Repeat([]byte("a"), 100), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewExtractor(WithMaxBytes(10)).Extract(path); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
	if _, err := NewExtractor(WithMaxBytes(0)).Extract(path); err != nil {
		t.Errorf("limit 0 should disable the check: %v", err)
	}
}

func TestSupported(t *testing.T) {
	for _, ext := range []string{".pdf", ".DOCX", ".xlsx", ".md"} {
		if !Supported(ext) {
			t.Errorf("Supported(%q) = false", ext)
		}
	}
	for _, ext := range []string{".pptx", ".png", ""} {
		if Supported(ext) {
			t.Errorf("Supported(%q) = true", ext)
		}
	}
}

func TestParagraphs(t *testing.T) {
	text := "first line\nstill first\r\n\r\n  \nsecond\n\n\nthird  \n"
	want := []string{"first line\nstill first", "second", "third"}
	if got := Paragraphs(text); !reflect.DeepEqual(got, want) {
		t.Errorf("Paragraphs = %q, want %q", got, want)
	}
	if got := Paragraphs("   \n\n"); len(got) != 0 {
		t.Errorf("blank text should yield no paragraphs, got %q", got)
	}
}

func TestLooksLikeText(t *testing.T) {
	long := strings.Repeat("a", 8191) + "é" // rune split at the sniff boundary
	if !looksLikeText([]byte(long)) {
		t.Error("split rune at the boundary should still count as text")
	}
	if looksLikeText([]byte("a\x00b")) {
		t.Error("NUL bytes mean binary")
	}
	if looksLikeText([]byte("\xff\xfe")) {
		t.Error("invalid UTF-8 means binary")
	}
}
