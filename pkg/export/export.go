package export

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
)

const (
	// DefaultName is the base name of the archive and its data entry.
	DefaultName = "GuoRui_Report"

	// SummaryFileName is the plain text entry written to every archive.
	SummaryFileName = "summary.txt"

	FormatXLSX = "xlsx"
	FormatCSV  = "csv"

	archiveExt      = ".zip"
	timestampLayout = "2006-01-02 15:04:05"
	localeEN        = "en"
)

// ErrEmptyTable is returned when there is nothing to export.
var ErrEmptyTable = errors.New("export requires at least one column and one row")

// SheetWriter serializes a table into a spreadsheet document.
type SheetWriter interface {
	WriteSheet(t *Table) ([]byte, error)
}

// Exporter packages tables into zip archives. A nil Sheets writer always
// produces the CSV data entry.
type Exporter struct {
	Name   string
	Sheets SheetWriter
	Locale string
	Now    func() time.Time
}

// Bundle is a finished export archive held in memory.
type Bundle struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	DataFile    string    `json:"data_file" yaml:"dataFile"`
	Format      string    `json:"format" yaml:"format"`
	Rows        int       `json:"rows" yaml:"rows"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generatedAt"`
	Data        []byte    `json:"-" yaml:"-"`
}

// NewExporter creates an exporter writing xlsx when spreadsheet is set.
func NewExporter(name string, spreadsheet bool, locale string) *Exporter {
	e := &Exporter{
		Name:   name,
		Locale: locale,
		Now:    time.Now,
	}
	if spreadsheet {
		e.Sheets = &ExcelWriter{SheetName: sheetName(locale)}
	}
	return e
}

// Export builds the archive: one data entry (xlsx, or BOM prefixed CSV when
// the spreadsheet writer is missing or fails) plus the summary entry.
func (e *Exporter) Export(t *Table) (*Bundle, error) {
	if t == nil || len(t.Columns) == 0 || len(t.Rows) == 0 {
		return nil, ErrEmptyTable
	}

	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}

	data, format, err := e.serialize(t)
	if err != nil {
		return nil, fmt.Errorf("error serializing table: %w", err)
	}

	base := e.baseName()
	b := &Bundle{
		ID:          uuid.NewString(),
		Name:        base + archiveExt,
		DataFile:    base + "." + format,
		Format:      format,
		Rows:        t.Len(),
		GeneratedAt: now,
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if err := writeEntry(zw, b.DataFile, data, now); err != nil {
		return nil, err
	}

	if err := writeEntry(zw, SummaryFileName, []byte(e.summary(b)), now); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("error closing archive: %w", err)
	}

	b.Data = buf.Bytes()

	slog.Debug("export bundle created",
		"id", b.ID,
		"name", b.Name,
		"format", b.Format,
		"rows", b.Rows,
		"bytes", len(b.Data),
	)

	return b, nil
}

func (e *Exporter) serialize(t *Table) ([]byte, string, error) {
	if e.Sheets != nil {
		b, err := safeWriteSheet(e.Sheets, t)
		if err == nil && len(b) > 0 {
			return b, FormatXLSX, nil
		}
		slog.Debug("spreadsheet output unavailable, using csv", "error", err)
	}

	b, err := EncodeCSV(t)
	if err != nil {
		return nil, "", err
	}
	return b, FormatCSV, nil
}

func safeWriteSheet(w SheetWriter, t *Table) (b []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			b = nil
			err = fmt.Errorf("spreadsheet writer panic: %v", r)
		}
	}()
	return w.WriteSheet(t)
}

func (e *Exporter) baseName() string {
	name := strings.TrimSpace(e.Name)
	name = strings.TrimSuffix(name, archiveExt)
	if name == "" {
		return DefaultName
	}
	return name
}

func (e *Exporter) summary(b *Bundle) string {
	var sb strings.Builder
	if e.Locale == localeEN {
		fmt.Fprintf(&sb, "Generated: %s\n", b.GeneratedAt.Format(timestampLayout))
		fmt.Fprintf(&sb, "Records: %d\n", b.Rows)
		fmt.Fprintf(&sb, "Data file: %s\n", b.DataFile)
		fmt.Fprintf(&sb, "Report ID: %s\n", b.ID)
		return sb.String()
	}
	fmt.Fprintf(&sb, "生成时间: %s\n", b.GeneratedAt.Format(timestampLayout))
	fmt.Fprintf(&sb, "记录数: %d\n", b.Rows)
	fmt.Fprintf(&sb, "数据文件: %s\n", b.DataFile)
	fmt.Fprintf(&sb, "报告编号: %s\n", b.ID)
	return sb.String()
}

func writeEntry(zw *zip.Writer, name string, content []byte, modified time.Time) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("error creating archive entry %s: %w", name, err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("error writing archive entry %s: %w", name, err)
	}
	return nil
}

func sheetName(locale string) string {
	if locale == localeEN {
		return "Report"
	}
	return "分析报告"
}
