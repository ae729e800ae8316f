package file

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/cmlabs-hris/production-dashboard-go/internal/domain/production"
	"github.com/cmlabs-hris/production-dashboard-go/internal/pkg/storage"
)

type csvSourceImpl struct {
	storage storage.FileStorage
	path    string
}

// NewCSVSource reads a comma-separated production export with a header row
func NewCSVSource(fs storage.FileStorage, path string) production.RecordSource {
	return &csvSourceImpl{storage: fs, path: path}
}

func (s *csvSourceImpl) Name() string {
	return "csv:" + s.path
}

func (s *csvSourceImpl) Load(ctx context.Context) ([]production.Record, error) {
	rc, err := openDataset(ctx, s.storage, s.path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return parseCSV(ctx, rc)
}

func parseCSV(ctx context.Context, r io.Reader) ([]production.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", production.ErrMissingColumn)
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}
	parser := rowParser{index: index, parseDate: parseTextDate}

	records := make([]production.Record, 0)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", production.ErrMalformedRow, err)
		}
		if isBlankRow(row) {
			continue
		}

		line, _ := reader.FieldPos(0)
		rec, err := parser.parse(row, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)

		if len(records)%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}

	return records, nil
}

// openDataset maps a missing file to production.ErrDatasetNotFound
func openDataset(ctx context.Context, fs storage.FileStorage, path string) (io.ReadCloser, error) {
	rc, err := fs.Open(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, fmt.Errorf("%w: %s", production.ErrDatasetNotFound, path)
		}
		return nil, err
	}
	return rc, nil
}
