package export

import (
	"bytes"
	"fmt"
	"io"
	"path"

	"github.com/klauspost/compress/zip"
)

// Contents is the decoded view of an export archive.
type Contents struct {
	Entries  []string   `json:"entries" yaml:"entries"`
	DataFile string     `json:"data_file" yaml:"dataFile"`
	Format   string     `json:"format" yaml:"format"`
	Summary  string     `json:"summary" yaml:"summary"`
	Records  [][]string `json:"records" yaml:"records"`
}

// Inspect opens an archive produced by Export and decodes its entries.
func Inspect(data []byte) (*Contents, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("error opening archive: %w", err)
	}

	c := &Contents{
		Entries: make([]string, 0, len(zr.File)),
	}

	for _, f := range zr.File {
		c.Entries = append(c.Entries, f.Name)

		b, err := readEntry(f)
		if err != nil {
			return nil, err
		}

		if f.Name == SummaryFileName {
			c.Summary = string(b)
			continue
		}

		switch path.Ext(f.Name) {
		case "." + FormatCSV:
			c.Records, err = DecodeCSV(b)
			c.Format = FormatCSV
		case "." + FormatXLSX:
			c.Records, err = ReadSheet(b)
			c.Format = FormatXLSX
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("error decoding %s: %w", f.Name, err)
		}
		c.DataFile = f.Name
	}

	return c, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("error reading entry %s: %w", f.Name, err)
	}
	return b, nil
}
