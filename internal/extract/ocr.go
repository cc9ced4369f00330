package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// PopplerRasterizer renders PDF pages to PNG with poppler's pdftoppm.
type PopplerRasterizer struct {
	// Dir holds the poppler binaries; empty means look them up on PATH.
	Dir string
	DPI int
}

// Render writes page-N.png files into outDir.
func (p PopplerRasterizer) Render(ctx context.Context, path, outDir string) ([]string, error) {
	bin := "pdftoppm"
	if p.Dir != "" {
		bin = filepath.Join(p.Dir, bin)
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 200
	}

	prefix := filepath.Join(outDir, "page")
	cmd := exec.CommandContext(ctx, bin, "-r", strconv.Itoa(dpi), "-png", path, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	images, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	sortPageImages(images)
	return images, nil
}

// sortPageImages orders page-N.png by N; pdftoppm's zero padding depends on
// the document's page count.
func sortPageImages(images []string) {
	pageNum := func(name string) int {
		base := strings.TrimSuffix(filepath.Base(name), ".png")
		idx := strings.LastIndex(base, "-")
		n, err := strconv.Atoi(base[idx+1:])
		if err != nil {
			return 0
		}
		return n
	}
	sort.SliceStable(images, func(i, j int) bool {
		return pageNum(images[i]) < pageNum(images[j])
	})
}

// TesseractRecognizer runs the tesseract CLI and reads the text from stdout.
type TesseractRecognizer struct {
	Cmd      string
	Language string
}

// Recognize returns the text tesseract finds in the image.
func (t TesseractRecognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	bin := t.Cmd
	if bin == "" {
		bin = "tesseract"
	}
	args := []string{imagePath, "stdout"}
	if t.Language != "" {
		args = append(args, "-l", t.Language)
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed: %w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
