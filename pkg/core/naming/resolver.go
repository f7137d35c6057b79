package naming

import (
	"audit_workpaper/pkg/models"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Kind orders sources by how much their text can be trusted.
type Kind int

const (
	// DocumentText is text from the audit report itself (first PDF pages or
	// a pre-extracted text file).
	DocumentText Kind = iota
	// SpreadsheetText is free text in the header cells of a statement workbook.
	SpreadsheetText
	// Filename is a file or directory name.
	Filename
)

func (k Kind) String() string {
	switch k {
	case DocumentText:
		return "document"
	case SpreadsheetText:
		return "spreadsheet"
	case Filename:
		return "filename"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Source is one place a company name can come from. Either Text or Path is
// set; Path is read through the resolver's reader for the kind.
type Source struct {
	Label string
	Kind  Kind
	Text  string
	Path  string
}

// Reader turns a path into candidate text lines.
type Reader func(path string) ([]string, error)

// Resolver picks the company name from an ordered list of sources.
type Resolver struct {
	readers map[Kind]Reader
}

// NewResolver returns a resolver reading document text files line by line
// and spreadsheets through their top-left header block.
func NewResolver() *Resolver {
	return &Resolver{readers: map[Kind]Reader{
		DocumentText:    ReadTextFile,
		SpreadsheetText: ReadWorkbookHeader,
	}}
}

// WithReader replaces the reader for one source kind.
func (r *Resolver) WithReader(k Kind, fn Reader) *Resolver {
	r.readers[k] = fn
	return r
}

// Candidates extracts at most one name per source. Sources that are empty,
// missing on disk or unreadable yield no candidate.
func (r *Resolver) Candidates(sources []Source) []models.CompanyNameCandidate {
	var out []models.CompanyNameCandidate
	for _, src := range sources {
		name := r.extract(src)
		if name == "" {
			continue
		}
		out = append(out, models.CompanyNameCandidate{SourceLabel: src.Label, ExtractedName: name})
	}
	return out
}

func (r *Resolver) extract(src Source) string {
	if src.Kind == Filename {
		name := src.Text
		if name == "" {
			name = src.Path
		}
		return ExtractFromFilename(name)
	}
	if strings.TrimSpace(src.Text) != "" {
		return ExtractFromLines(strings.Split(src.Text, "\n"))
	}
	if src.Path == "" {
		return ""
	}
	read, ok := r.readers[src.Kind]
	if !ok {
		return ""
	}
	lines, err := read(src.Path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("[Naming] skipping %s source %s: %v", src.Kind, src.Label, err)
		}
		return ""
	}
	return ExtractFromLines(lines)
}

// Resolve returns the name from the highest-priority source that yields one,
// along with every candidate for diagnostics. Sources of the same kind keep
// their given order.
func (r *Resolver) Resolve(sources []Source) (string, []models.CompanyNameCandidate) {
	ordered := make([]Source, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Kind < ordered[j].Kind })

	candidates := r.Candidates(ordered)
	if len(candidates) == 0 {
		return "", nil
	}
	return candidates[0].ExtractedName, candidates
}

// ReadTextFile returns the lines of a text file.
func ReadTextFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return strings.Split(string(data), "\n"), nil
}

// headerBlock is the top-left area of a statement sheet where the
// preparer line usually sits.
const headerBlock = 5

// ReadWorkbookHeader returns the non-empty cells of the first sheet's
// top-left 5x5 block, row by row.
func ReadWorkbookHeader(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	var lines []string
	for row := 1; row <= headerBlock; row++ {
		for col := 1; col <= headerBlock; col++ {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			v, err := f.GetCellValue(sheet, cell)
			if err != nil || strings.TrimSpace(v) == "" {
				continue
			}
			lines = append(lines, v)
		}
	}
	return lines, nil
}
