package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/district-etl/internal/model"
)

// Read loads the file at path into a Raw table. Files ending in .xlsx are read
// from their first sheet; anything else is parsed as comma-separated text with
// an optional leading byte-order mark. The first row is the header.
func Read(ctx context.Context, name, path string) (*model.Raw, error) {
	var (
		raw *model.Raw
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		raw, err = readXLSXFile(name, path)
	} else {
		raw, err = readCSVFile(ctx, name, path)
	}
	if err != nil {
		return nil, err
	}

	zap.L().Debug("source loaded",
		zap.String("source", name),
		zap.String("path", path),
		zap.Int("columns", len(raw.Header)),
		zap.Int("rows", len(raw.Records)),
	)
	return raw, nil
}

func readCSVFile(ctx context.Context, name, path string) (*model.Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: open %s", name)
	}
	defer f.Close() //nolint:errcheck

	headerCh := make(chan []string, 1)
	rowCh, errCh := StreamCSV(ctx, f, CSVOptions{
		HasHeader:  true,
		HeaderCh:   headerCh,
		LazyQuotes: true,
	})

	raw := &model.Raw{Source: name, Path: path}
	for row := range rowCh {
		raw.Records = append(raw.Records, row)
	}
	for err := range errCh {
		if err != nil {
			return nil, eris.Wrapf(err, "source: read %s", name)
		}
	}

	select {
	case header := <-headerCh:
		raw.Header = trimHeader(header)
	default:
		return nil, eris.Errorf("source: %s has no header row", name)
	}
	return raw, nil
}

func readXLSXFile(name, path string) (*model.Raw, error) {
	rows, err := ReadXLSX(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read %s", name)
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("source: %s has no header row", name)
	}
	return &model.Raw{
		Source:  name,
		Path:    path,
		Header:  trimHeader(rows[0]),
		Records: rows[1:],
	}, nil
}

func trimHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(h)
	}
	return out
}
