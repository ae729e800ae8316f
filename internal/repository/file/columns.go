package file

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/production-dashboard-go/internal/domain/production"
	"github.com/cmlabs-hris/production-dashboard-go/internal/pkg/validator"
)

// Source column headers of the consolidated production export
const (
	ColumnDate             = "Data"
	ColumnFactory          = "Fabrica"
	ColumnTeam             = "Equipe"
	ColumnMachineName      = "NomeMaquina"
	ColumnOperatorID       = "ID_Operador"
	ColumnOperatorName     = "NomeOperador"
	ColumnQuantityProduced = "QuantidadeProduzida"
	ColumnQuantityDefects  = "QuantidadeDefeitos"
)

var requiredColumns = []string{
	ColumnDate,
	ColumnFactory,
	ColumnTeam,
	ColumnMachineName,
	ColumnOperatorID,
	ColumnOperatorName,
	ColumnQuantityProduced,
	ColumnQuantityDefects,
}

// columnIndex maps each required column to its position in header.
// Matching ignores case, surrounding blanks and a UTF-8 BOM; extra columns are allowed.
func columnIndex(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := positions[key]; !dup {
			positions[key] = i
		}
	}

	index := make(map[string]int, len(requiredColumns))
	var missing []string
	for _, col := range requiredColumns {
		i, ok := positions[strings.ToLower(col)]
		if !ok {
			missing = append(missing, col)
			continue
		}
		index[col] = i
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", production.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return index, nil
}

// dateParser converts a raw cell into a calendar date
type dateParser func(raw string) (time.Time, bool)

// parseTextDate accepts YYYY-MM-DD and timestamp forms; the time of day is dropped.
func parseTextDate(raw string) (time.Time, bool) {
	if t, ok := validator.IsValidDate(raw); ok {
		return t, true
	}
	if t, ok := validator.IsValidDateTime(raw); ok {
		return production.CivilDate(t), true
	}
	return time.Time{}, false
}

// rowParser turns positional cells into records for one file
type rowParser struct {
	index     map[string]int
	parseDate dateParser
}

func (p rowParser) parse(row []string, line int) (production.Record, error) {
	cell := func(col string) string {
		i := p.index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rawDate := cell(ColumnDate)
	date, ok := p.parseDate(rawDate)
	if !ok {
		return production.Record{}, fmt.Errorf("%w: line %d: invalid %s %q", production.ErrMalformedRow, line, ColumnDate, rawDate)
	}

	produced, err := parseQuantity(cell(ColumnQuantityProduced))
	if err != nil {
		return production.Record{}, fmt.Errorf("%w: line %d: %s: %v", production.ErrMalformedRow, line, ColumnQuantityProduced, err)
	}

	defects, err := parseQuantity(cell(ColumnQuantityDefects))
	if err != nil {
		return production.Record{}, fmt.Errorf("%w: line %d: %s: %v", production.ErrMalformedRow, line, ColumnQuantityDefects, err)
	}

	return production.Record{
		Date:             date,
		Factory:          cell(ColumnFactory),
		Team:             cell(ColumnTeam),
		MachineName:      cell(ColumnMachineName),
		OperatorID:       normalizeID(cell(ColumnOperatorID)),
		OperatorName:     cell(ColumnOperatorName),
		QuantityProduced: produced,
		QuantityDefects:  defects,
	}, nil
}

// parseQuantity reads a non-negative count. Whole floats such as "120.0" are
// accepted because spreadsheet exports often write counts that way.
func parseQuantity(raw string) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("empty value")
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("not a whole number: %q", raw)
		}
		n = int64(f)
	}

	if n < 0 {
		return 0, fmt.Errorf("negative value: %d", n)
	}
	return n, nil
}

// normalizeID makes "7" and "7.0" the same operator
func normalizeID(raw string) string {
	if !strings.Contains(raw, ".") {
		return raw
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatInt(int64(f), 10)
	}
	return raw
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
