// Package export writes the final district table to CSV files and
// database sinks.
package export

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sells-group/district-etl/internal/model"
)

// Encoding selects how the CSV bytes are encoded.
type Encoding string

const (
	// UTF8BOM is UTF-8 prefixed with a byte order mark, which spreadsheet
	// tools use to detect the encoding.
	UTF8BOM Encoding = "utf-8-sig"
	// UTF8 is plain UTF-8.
	UTF8 Encoding = "utf-8"
)

// ParseEncoding validates a configured encoding name.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(s) {
	case UTF8BOM, UTF8:
		return Encoding(s), nil
	case "":
		return UTF8BOM, nil
	}
	return "", eris.Errorf("export: unknown encoding %q", s)
}

// WriteCSV writes a header row and every table row in column order.
// Missing cells are empty.
func WriteCSV(w io.Writer, t *model.Table, enc Encoding) error {
	var out io.Writer = w
	var bom io.WriteCloser
	switch enc {
	case UTF8BOM:
		bom = transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
		out = bom
	case UTF8:
	default:
		return eris.Errorf("export: unknown encoding %q", enc)
	}

	cw := csv.NewWriter(out)
	if err := cw.Write(t.Columns); err != nil {
		return eris.Wrap(err, "export: write header")
	}

	record := make([]string, len(t.Columns))
	for _, r := range t.Rows {
		for i, c := range t.Columns {
			record[i] = r.Get(c).Str()
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush")
	}
	if bom != nil {
		return eris.Wrap(bom.Close(), "export: flush")
	}
	return nil
}

// WriteFile writes t to path, creating parent directories. The file is
// replaced on every call.
func WriteFile(path string, t *model.Table, enc Encoding) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "export: create directory for %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}

	if err := WriteCSV(f, t, enc); err != nil {
		f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}
