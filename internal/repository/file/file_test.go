package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/production-dashboard-go/internal/domain/production"
	"github.com/cmlabs-hris/production-dashboard-go/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `Data,Fabrica,Equipe,NomeMaquina,ID_Operador,NomeOperador,QuantidadeProduzida,QuantidadeDefeitos
2024-01-01,F1,T1,M1,1,Ana,100,5
2024-01-01 00:00:00,F1,T1,M2,2.0,Bea,50.0,0
,,,,,,,
2024-01-02,F2,T2,M1,3,Caio,80,12
`

func newTestStorage(t *testing.T, files map[string][]byte) storage.FileStorage {
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), content, 0644))
	}
	fs, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	return fs
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ===== CSV =====

func TestCSVSource_Load(t *testing.T) {
	fs := newTestStorage(t, map[string][]byte{"dados.csv": []byte(sampleCSV)})
	src := NewCSVSource(fs, "dados.csv")

	records, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "csv:dados.csv", src.Name())
	assert.Equal(t, production.Record{
		Date:             date(2024, 1, 1),
		Factory:          "F1",
		Team:             "T1",
		MachineName:      "M1",
		OperatorID:       "1",
		OperatorName:     "Ana",
		QuantityProduced: 100,
		QuantityDefects:  5,
	}, records[0])

	assert.Equal(t, date(2024, 1, 1), records[1].Date)
	assert.Equal(t, "2", records[1].OperatorID)
	assert.Equal(t, int64(50), records[1].QuantityProduced)
	assert.Equal(t, "Caio", records[2].OperatorName)
}

func TestCSVSource_Load_ReorderedColumnsAndBOM(t *testing.T) {
	content := "\ufeffquantidadedefeitos, Data ,Fabrica,Equipe,NomeMaquina,ID_Operador,NomeOperador,QuantidadeProduzida,Extra\n" +
		"3,2024-02-10,F9,T9,M9,42,Rita,30,ignored\n"
	fs := newTestStorage(t, map[string][]byte{"x.csv": []byte(content)})

	records, err := NewCSVSource(fs, "x.csv").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(3), records[0].QuantityDefects)
	assert.Equal(t, int64(30), records[0].QuantityProduced)
	assert.Equal(t, date(2024, 2, 10), records[0].Date)
}

func TestCSVSource_Load_NotFound(t *testing.T) {
	fs := newTestStorage(t, nil)

	_, err := NewCSVSource(fs, "dados_consolidados.csv").Load(context.Background())
	assert.ErrorIs(t, err, production.ErrDatasetNotFound)
}

func TestCSVSource_Load_MissingColumn(t *testing.T) {
	content := "Data,Fabrica,Equipe,NomeMaquina,NomeOperador,QuantidadeProduzida\n2024-01-01,F1,T1,M1,Ana,1\n"
	fs := newTestStorage(t, map[string][]byte{"x.csv": []byte(content)})

	_, err := NewCSVSource(fs, "x.csv").Load(context.Background())
	require.ErrorIs(t, err, production.ErrMissingColumn)
	assert.Contains(t, err.Error(), ColumnOperatorID)
	assert.Contains(t, err.Error(), ColumnQuantityDefects)
}

func TestCSVSource_Load_EmptyFile(t *testing.T) {
	fs := newTestStorage(t, map[string][]byte{"x.csv": {}})

	_, err := NewCSVSource(fs, "x.csv").Load(context.Background())
	assert.ErrorIs(t, err, production.ErrMissingColumn)
}

func TestCSVSource_Load_HeaderOnly(t *testing.T) {
	header := strings.SplitN(sampleCSV, "\n", 2)[0] + "\n"
	fs := newTestStorage(t, map[string][]byte{"x.csv": []byte(header)})

	records, err := NewCSVSource(fs, "x.csv").Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCSVSource_Load_MalformedRows(t *testing.T) {
	header := strings.SplitN(sampleCSV, "\n", 2)[0]
	cases := map[string]string{
		"bad date":          "01/02/2024,F1,T1,M1,1,Ana,10,0",
		"negative produced": "2024-01-01,F1,T1,M1,1,Ana,-10,0",
		"fraction defects":  "2024-01-01,F1,T1,M1,1,Ana,10,0.5",
		"missing quantity":  "2024-01-01,F1,T1,M1,1,Ana,,0",
		"short row":         "2024-01-01,F1,T1",
	}

	for name, row := range cases {
		t.Run(name, func(t *testing.T) {
			fs := newTestStorage(t, map[string][]byte{"x.csv": []byte(header + "\n" + row + "\n")})

			_, err := NewCSVSource(fs, "x.csv").Load(context.Background())
			require.ErrorIs(t, err, production.ErrMalformedRow)
			assert.Contains(t, err.Error(), "line 2")
		})
	}
}

func TestCSVSource_Load_DefectsAboveProductionAccepted(t *testing.T) {
	header := strings.SplitN(sampleCSV, "\n", 2)[0]
	fs := newTestStorage(t, map[string][]byte{"x.csv": []byte(header + "\n2024-01-01,F1,T1,M1,1,Ana,10,20\n")})

	records, err := NewCSVSource(fs, "x.csv").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].HasDefectAnomaly())
}

// ===== XLSX =====

func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) []byte {
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func xlsxHeader() []interface{} {
	header := make([]interface{}, len(requiredColumns))
	for i, col := range requiredColumns {
		header[i] = col
	}
	return header
}

func TestXLSXSource_Load(t *testing.T) {
	book := writeWorkbook(t, "Sheet1", [][]interface{}{
		xlsxHeader(),
		{"2024-01-01", "F1", "T1", "M1", 1, "Ana", 100, 5},
		{45293, "F1", "T2", "M2", 2, "Bea", 50, 0},
		{},
	})
	fs := newTestStorage(t, map[string][]byte{"dados.xlsx": book})
	src := NewXLSXSource(fs, "dados.xlsx", "")

	records, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "xlsx:dados.xlsx", src.Name())
	assert.Equal(t, date(2024, 1, 1), records[0].Date)
	assert.Equal(t, int64(100), records[0].QuantityProduced)
	assert.Equal(t, date(2024, 1, 2), records[1].Date)
	assert.Equal(t, "2", records[1].OperatorID)
	assert.Equal(t, "T2", records[1].Team)
}

func TestXLSXSource_Load_NamedSheet(t *testing.T) {
	book := writeWorkbook(t, "Producao", [][]interface{}{
		xlsxHeader(),
		{"2024-03-05", "F7", "T1", "M1", 9, "Iris", 12, 1},
	})
	fs := newTestStorage(t, map[string][]byte{"book.xlsx": book})
	src := NewXLSXSource(fs, "book.xlsx", "Producao")

	records, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "xlsx:book.xlsx#Producao", src.Name())
	assert.Equal(t, "F7", records[0].Factory)
}

func TestXLSXSource_Load_MissingSheet(t *testing.T) {
	book := writeWorkbook(t, "Sheet1", [][]interface{}{xlsxHeader()})
	fs := newTestStorage(t, map[string][]byte{"book.xlsx": book})

	_, err := NewXLSXSource(fs, "book.xlsx", "Nope").Load(context.Background())
	assert.Error(t, err)
}

func TestXLSXSource_Load_NotFound(t *testing.T) {
	fs := newTestStorage(t, nil)

	_, err := NewXLSXSource(fs, "missing.xlsx", "").Load(context.Background())
	assert.ErrorIs(t, err, production.ErrDatasetNotFound)
}

// ===== HELPERS =====

func TestParseQuantity(t *testing.T) {
	valid := map[string]int64{"0": 0, "17": 17, "120.0": 120, "1e3": 1000}
	for raw, want := range valid {
		got, err := parseQuantity(raw)
		if assert.NoError(t, err, raw) {
			assert.Equal(t, want, got, raw)
		}
	}

	for _, raw := range []string{"", "-1", "1.5", "abc", "Inf"} {
		_, err := parseQuantity(raw)
		assert.Error(t, err, raw)
	}
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "7", normalizeID("7.0"))
	assert.Equal(t, "007", normalizeID("007"))
	assert.Equal(t, "OP-1", normalizeID("OP-1"))
	assert.Equal(t, "7.5", normalizeID("7.5"))
}
