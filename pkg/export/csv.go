package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// EncodeCSV writes the table as comma separated UTF-8 prefixed with a byte
// order mark so spreadsheet tools detect multi-byte text correctly.
func EncodeCSV(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	tw := transform.NewWriter(&buf, unicode.UTF8BOM.NewEncoder())

	w := csv.NewWriter(tw)
	if err := w.WriteAll(t.Records()); err != nil {
		return nil, fmt.Errorf("error writing csv: %w", err)
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("error encoding csv: %w", err)
	}

	return buf.Bytes(), nil
}

// DecodeCSV reads BOM prefixed (or plain) UTF-8 CSV back into records.
func DecodeCSV(b []byte) ([][]string, error) {
	tr := transform.NewReader(bytes.NewReader(b), unicode.UTF8BOM.NewDecoder())
	r := csv.NewReader(tr)

	list, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading csv: %w", err)
	}
	return list, nil
}
