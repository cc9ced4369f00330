package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
)

type fakeLayer struct {
	pages   []string
	failing map[int]bool
	openErr error
}

func (f fakeLayer) Open(string) (PageReader, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return &fakePages{layer: f}, nil
}

type fakePages struct {
	layer fakeLayer
}

func (p *fakePages) NumPage() int { return len(p.layer.pages) }

func (p *fakePages) PageText(i int) (string, error) {
	if p.layer.failing[i] {
		return "", errors.New("broken page")
	}
	return p.layer.pages[i-1], nil
}

func (p *fakePages) Close() error { return nil }

type fakeRasterizer struct {
	pages int
	err   error
	calls int
}

func (f *fakeRasterizer) Render(_ context.Context, _ string, outDir string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	images := make([]string, 0, f.pages)
	for i := 1; i <= f.pages; i++ {
		images = append(images, filepath.Join(outDir, "page-"+strconv.Itoa(i)+".png"))
	}
	return images, nil
}

type fakeRecognizer struct {
	texts map[string]string
	fail  map[string]bool
	calls int
}

func (f *fakeRecognizer) Recognize(_ context.Context, imagePath string) (string, error) {
	f.calls++
	name := filepath.Base(imagePath)
	if f.fail[name] {
		return "", errors.New("ocr failed")
	}
	return f.texts[name], nil
}

func noPageCount(string) (int, error) { return 0, errors.New("not a pdf") }

func TestNativeTextSkipsOCR(t *testing.T) {
	raster := &fakeRasterizer{pages: 1}
	recog := &fakeRecognizer{}
	engine := New(fakeLayer{pages: []string{"  first page\n", "second page  "}}, raster, recog,
		WithScratchDir(t.TempDir()), WithPageCounter(noPageCount))

	got := engine.Extract(context.Background(), "doc.pdf")
	if got.Text != "first page\nsecond page" {
		t.Fatalf("unexpected text %q", got.Text)
	}
	if got.Pages != 2 || got.Method != MethodNative {
		t.Fatalf("unexpected result %+v", got)
	}
	if raster.calls != 0 || recog.calls != 0 {
		t.Fatalf("OCR should not run when the text layer has content")
	}
}

func TestWhitespaceOnlyFallsBackToOCR(t *testing.T) {
	raster := &fakeRasterizer{pages: 2}
	recog := &fakeRecognizer{texts: map[string]string{
		"page-1.png": "hello ",
		"page-2.png": "world\n",
	}}
	engine := New(fakeLayer{pages: []string{"  ", "\n"}}, raster, recog,
		WithScratchDir(t.TempDir()), WithPageCounter(noPageCount))

	got := engine.Extract(context.Background(), "scan.pdf")
	if got.Text != "hello world" || got.Method != MethodOCR || got.Pages != 2 {
		t.Fatalf("unexpected result %+v", got)
	}
	if raster.calls != 1 || recog.calls != 2 {
		t.Fatalf("expected one render and two recognitions, got %d/%d", raster.calls, recog.calls)
	}
}

func TestPageFailuresAreIsolated(t *testing.T) {
	engine := New(fakeLayer{
		pages:   []string{"alpha ", "broken", "gamma"},
		failing: map[int]bool{2: true},
	}, &fakeRasterizer{}, &fakeRecognizer{}, WithScratchDir(t.TempDir()), WithPageCounter(noPageCount))

	got := engine.Extract(context.Background(), "doc.pdf")
	if got.Text != "alpha gamma" {
		t.Fatalf("expected surviving pages, got %q", got.Text)
	}

	recog := &fakeRecognizer{
		texts: map[string]string{"page-1.png": "one ", "page-3.png": "three"},
		fail:  map[string]bool{"page-2.png": true},
	}
	engine = New(fakeLayer{openErr: errors.New("no text layer")}, &fakeRasterizer{pages: 3}, recog,
		WithScratchDir(t.TempDir()), WithPageCounter(noPageCount))
	got = engine.Extract(context.Background(), "scan.pdf")
	if got.Text != "one three" || got.Pages != 3 {
		t.Fatalf("unexpected OCR result %+v", got)
	}
}

func TestBothStagesFailingYieldsEmpty(t *testing.T) {
	engine := New(fakeLayer{openErr: errors.New("corrupt")}, &fakeRasterizer{err: errors.New("pdftoppm missing")}, &fakeRecognizer{},
		WithScratchDir(t.TempDir()), WithPageCounter(func(string) (int, error) { return 4, nil }))

	got := engine.Extract(context.Background(), "broken.pdf")
	if got.Text != "" || got.Method != MethodNone {
		t.Fatalf("expected empty result, got %+v", got)
	}
	if got.Pages != 4 {
		t.Fatalf("expected fallback page count, got %d", got.Pages)
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	recog := &fakeRecognizer{texts: map[string]string{"page-1.png": "hello world"}}
	engine := New(fakeLayer{pages: []string{""}}, &fakeRasterizer{pages: 1}, recog,
		WithScratchDir(t.TempDir()), WithPageCounter(noPageCount))

	first := engine.Extract(context.Background(), "report.pdf")
	second := engine.Extract(context.Background(), "report.pdf")
	if first != second {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
	if first.WordCount() != 2 || first.Pages != 1 {
		t.Fatalf("unexpected result %+v", first)
	}
}

func TestScratchDirIsRemoved(t *testing.T) {
	scratch := t.TempDir()
	engine := New(fakeLayer{pages: []string{""}}, &fakeRasterizer{pages: 1},
		&fakeRecognizer{texts: map[string]string{"page-1.png": "x"}},
		WithScratchDir(scratch), WithPageCounter(noPageCount))
	engine.Extract(context.Background(), "report.pdf")

	entries, err := os.ReadDir(scratch)
	if err != nil {
		t.Fatalf("read scratch: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected scratch dir cleaned up, found %d entries", len(entries))
	}
}

func TestFileLayerReadsDOCX(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	doc := `<w:document xmlns:w="x"><w:body><w:p><w:r><w:t>Hello</w:t></w:r></w:p><w:p><w:r><w:t>World</w:t></w:r></w:p></w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	path := filepath.Join(t.TempDir(), "notes.docx")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write docx: %v", err)
	}

	reader, err := FileLayer{}.Open(path)
	if err != nil {
		t.Fatalf("open docx: %v", err)
	}
	defer reader.Close()
	if reader.NumPage() != 1 {
		t.Fatalf("expected a single page, got %d", reader.NumPage())
	}
	text, err := reader.PageText(1)
	if err != nil || text != "Hello\nWorld" {
		t.Fatalf("PageText = %q, %v", text, err)
	}
}

func TestFileLayerRejectsPlainZip(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("notes.txt")
	w.Write([]byte("hello"))
	zw.Close()

	path := filepath.Join(t.TempDir(), "notes.zip")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write zip: %v", err)
	}
	if _, err := (FileLayer{}).Open(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSortPageImages(t *testing.T) {
	images := []string{"/x/page-10.png", "/x/page-2.png", "/x/page-1.png"}
	sortPageImages(images)
	want := []string{"/x/page-1.png", "/x/page-2.png", "/x/page-10.png"}
	for i := range want {
		if images[i] != want[i] {
			t.Fatalf("sortPageImages = %v", images)
		}
	}
}

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts unavailable")
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestPopplerAndTesseractCommands(t *testing.T) {
	binDir := filepath.Dir(writeScript(t, "pdftoppm", `touch "$5-2.png" "$5-1.png"`))
	raster := PopplerRasterizer{Dir: binDir, DPI: 150}

	outDir := t.TempDir()
	images, err := raster.Render(context.Background(), "in.pdf", outDir)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(images) != 2 || filepath.Base(images[0]) != "page-1.png" {
		t.Fatalf("unexpected images %v", images)
	}

	tess := TesseractRecognizer{Cmd: writeScript(t, "tesseract", `printf "text of %s" "$(basename "$1")"`), Language: "eng"}
	text, err := tess.Recognize(context.Background(), images[0])
	if err != nil || text != "text of page-1.png" {
		t.Fatalf("Recognize = %q, %v", text, err)
	}
}
