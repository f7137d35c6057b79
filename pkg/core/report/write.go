package report

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Paths are the files written for one run.
type Paths struct {
	Workbook string
	Markdown string
	HTML     string
	Score    string
}

// WriteAll writes the xlsx, Markdown and HTML check reports, and the score
// report JSON when a score is present, into dir.
func WriteAll(dir string, c *Check) (Paths, error) {
	var p Paths
	if err := os.MkdirAll(dir, 0755); err != nil {
		return p, fmt.Errorf("failed to create output dir %s: %w", dir, err)
	}
	names := FileNames(c.Company, c.Year)

	f, err := Workbook(c)
	if err != nil {
		return p, fmt.Errorf("failed to render check workbook: %w", err)
	}
	p.Workbook = filepath.Join(dir, names.Workbook)
	if err := f.SaveAs(p.Workbook); err != nil {
		f.Close()
		return p, fmt.Errorf("failed to save %s: %w", p.Workbook, err)
	}
	f.Close()

	md := Markdown(c)
	p.Markdown = filepath.Join(dir, names.Markdown)
	if err := os.WriteFile(p.Markdown, []byte(md), 0644); err != nil {
		return p, fmt.Errorf("failed to write %s: %w", p.Markdown, err)
	}

	html, err := HTML(c)
	if err != nil {
		log.Printf("[Report] HTML rendering failed, skipping: %v", err)
	} else {
		p.HTML = filepath.Join(dir, names.HTML)
		if err := os.WriteFile(p.HTML, []byte(html), 0644); err != nil {
			return p, fmt.Errorf("failed to write %s: %w", p.HTML, err)
		}
	}

	if c.Score != nil {
		data, err := c.Score.MarshalIndent()
		if err != nil {
			return p, fmt.Errorf("failed to marshal score report: %w", err)
		}
		p.Score = filepath.Join(dir, names.Score)
		if err := os.WriteFile(p.Score, data, 0644); err != nil {
			return p, fmt.Errorf("failed to write %s: %w", p.Score, err)
		}
	}
	return p, nil
}
