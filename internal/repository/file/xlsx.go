package file

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cmlabs-hris/production-dashboard-go/internal/domain/production"
	"github.com/cmlabs-hris/production-dashboard-go/internal/pkg/storage"
	"github.com/xuri/excelize/v2"
)

type xlsxSourceImpl struct {
	storage storage.FileStorage
	path    string
	sheet   string
}

// NewXLSXSource reads one worksheet of an Excel workbook. An empty sheet
// name selects the first sheet of the workbook.
func NewXLSXSource(fs storage.FileStorage, path, sheet string) production.RecordSource {
	return &xlsxSourceImpl{storage: fs, path: path, sheet: sheet}
}

func (s *xlsxSourceImpl) Name() string {
	if s.sheet == "" {
		return "xlsx:" + s.path
	}
	return "xlsx:" + s.path + "#" + s.sheet
}

func (s *xlsxSourceImpl) Load(ctx context.Context) ([]production.Record, error) {
	rc, err := openDataset(ctx, s.storage, s.path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	f, err := excelize.OpenReader(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := s.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", production.ErrMissingColumn)
		}
		sheet = sheets[0]
	}

	// Raw values keep date cells as serial numbers instead of locale-formatted text.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", production.ErrMissingColumn, sheet)
	}

	index, err := columnIndex(rows[0])
	if err != nil {
		return nil, err
	}
	parser := rowParser{index: index, parseDate: parseSheetDate}

	records := make([]production.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rec, err := parser.parse(row, i+2)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// parseSheetDate accepts text dates and Excel serial date numbers
func parseSheetDate(raw string) (time.Time, bool) {
	if t, ok := parseTextDate(raw); ok {
		return t, true
	}

	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return production.CivilDate(t), true
}
