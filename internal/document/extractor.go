// Package document turns a source PDF into per-page text, detected tables,
// and (for pages with little or no text) rendered page images suitable for
// vision model input. Text extraction and rasterization are delegated to the
// poppler tools behind a Runner seam; PDF validity is checked with pdfcpu.
package document

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/joseph-ayodele/pa-autofill/internal/common"
)

// Page is one page of extracted content. Image is nil unless the page fell
// below the text threshold and was rendered.
type Page struct {
	Number int
	Text   string
	Tables []Table
	Image  []byte // PNG
}

// DocumentContent is the extractor output for one PDF.
type DocumentContent struct {
	Path     string
	Pages    []Page
	Duration time.Duration
}

// Text returns the concatenated text of all pages.
func (c *DocumentContent) Text() string {
	parts := make([]string, 0, len(c.Pages))
	for _, p := range c.Pages {
		if strings.TrimSpace(p.Text) != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Images returns the rendered page images in page order.
func (c *DocumentContent) Images() [][]byte {
	var imgs [][]byte
	for _, p := range c.Pages {
		if len(p.Image) > 0 {
			imgs = append(imgs, p.Image)
		}
	}
	return imgs
}

// Config for the document extractor.
type Config struct {
	Pdftotext    string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm     string // binary name or absolute path; if empty -> "pdftoppm"
	DPI          int    // rasterization DPI, default 200
	MinTextChars int    // pages with less text than this get rendered, default 32
	MaxPages     int    // 0 = no limit on rendered pages
	RenderOff    bool   // skip rasterizing low-text pages (no vision consumer)
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = 32
	}
	return &Extractor{cfg: cfg, runner: newExecRunner(logger), logger: logger}
}

// WithRunner swaps the command runner. Test seam.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// Extract reads path and produces per-page content. Unreadable or invalid
// PDFs yield a DOCUMENT_READ_ERROR.
func (e *Extractor) Extract(ctx context.Context, path string) (*DocumentContent, error) {
	start := time.Now()
	e.logger.Debug("document.extract.start", "path", path)

	if _, err := os.Stat(path); err != nil {
		return nil, common.NewDocumentReadError(fmt.Sprintf("cannot stat %s", path), err)
	}
	if err := api.ValidateFile(path, nil); err != nil {
		return nil, common.NewDocumentReadError(fmt.Sprintf("not a valid PDF: %s", path), err)
	}

	text, err := e.pdfToText(ctx, path)
	if err != nil {
		return nil, common.NewDocumentReadError(fmt.Sprintf("text extraction failed: %s", path), err)
	}

	content := &DocumentContent{Path: path}
	var rendered int
	content.Pages, rendered = e.assemblePages(ctx, path, splitPages(text))

	content.Duration = time.Since(start)
	e.logger.Info("document.extract.ok",
		"path", path,
		"pages", len(content.Pages),
		"rendered", rendered,
		"text_len", len(text),
		"elapsed_ms", content.Duration.Milliseconds(),
	)
	return content, nil
}

// assemblePages builds per-page content from the split text, rendering
// low-text pages unless rendering is off or the page cap is reached.
func (e *Extractor) assemblePages(ctx context.Context, path string, pageTexts []string) ([]Page, int) {
	pages := make([]Page, 0, len(pageTexts))
	rendered := 0
	for i, pt := range pageTexts {
		page := Page{
			Number: i + 1,
			Text:   pt,
			Tables: DetectTables(pt),
		}
		if !e.cfg.RenderOff && len(strings.TrimSpace(pt)) < e.cfg.MinTextChars {
			if e.cfg.MaxPages > 0 && rendered >= e.cfg.MaxPages {
				e.logger.Warn("document.render.page_cap", "path", path, "page", page.Number, "max_pages", e.cfg.MaxPages)
			} else {
				img, rerr := e.renderPage(ctx, path, page.Number)
				if rerr != nil {
					e.logger.Warn("document.render.failed", "path", path, "page", page.Number, "error", rerr)
				} else {
					page.Image = img
					rendered++
				}
			}
		}
		pages = append(pages, page)
	}
	return pages, rendered
}

// splitPages splits pdftotext output on the form feed it emits between
// pages. A trailing form feed produces an empty final chunk, which is not a
// page.
func splitPages(text string) []string {
	pageTexts := strings.Split(text, "\f")
	if n := len(pageTexts); n > 1 && strings.TrimSpace(pageTexts[n-1]) == "" {
		pageTexts = pageTexts[:n-1]
	}
	return pageTexts
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// renderPage rasterizes a single page to PNG at the configured DPI.
func (e *Extractor) renderPage(ctx context.Context, path string, pageNum int) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "pa-render-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("document.render.tmp_cleanup_failed", "dir", tmpDir, "error", rmErr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -f N -l N -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm,
		"-f", fmt.Sprintf("%d", pageNum),
		"-l", fmt.Sprintf("%d", pageNum),
		"-r", fmt.Sprintf("%d", e.cfg.DPI),
		"-png", path, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no image for page %d", pageNum)
	}
	return os.ReadFile(matches[0])
}
