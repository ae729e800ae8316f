package dataset

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/cmlabs-hris/production-dashboard-go/internal/domain/production"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	name    string
	records []production.Record
	delay   time.Duration
	err     error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Load(ctx context.Context) ([]production.Record, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func rec(factory string, produced, defects int64) production.Record {
	return production.Record{
		Date:             time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Factory:          factory,
		QuantityProduced: produced,
		QuantityDefects:  defects,
	}
}

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil)), &buf
}

func TestLoader_Load_MergesInSourceOrder(t *testing.T) {
	logger, _ := newTestLogger()
	slow := &stubSource{name: "slow", records: []production.Record{rec("A", 1, 0), rec("B", 2, 0)}, delay: 20 * time.Millisecond}
	fast := &stubSource{name: "fast", records: []production.Record{rec("C", 3, 0)}}

	records, err := NewLoader(logger, slow, fast).Load(context.Background())
	require.NoError(t, err)

	factories := make([]string, len(records))
	for i, r := range records {
		factories[i] = r.Factory
	}
	assert.Equal(t, []string{"A", "B", "C"}, factories)
}

func TestLoader_Load_FailingSource(t *testing.T) {
	logger, _ := newTestLogger()
	boom := errors.New("boom")
	ok := &stubSource{name: "ok", records: []production.Record{rec("A", 1, 0)}, delay: time.Second}
	bad := &stubSource{name: "csv:bad.csv", err: boom}

	started := time.Now()
	_, err := NewLoader(logger, ok, bad).Load(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "csv:bad.csv")
	assert.Less(t, time.Since(started), 900*time.Millisecond, "sibling loads should be canceled")
}

func TestLoader_Load_NoSources(t *testing.T) {
	_, err := NewLoader(nil).Load(context.Background())
	assert.ErrorIs(t, err, production.ErrDatasetNotFound)
}

func TestLoader_Load_WarnsOnDefectAnomalies(t *testing.T) {
	logger, buf := newTestLogger()
	src := &stubSource{name: "s", records: []production.Record{rec("A", 10, 20), rec("A", 10, 1)}}

	records, err := NewLoader(logger, src).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, int64(20), records[0].QuantityDefects, "anomalous rows are kept as-is")
	assert.Contains(t, buf.String(), "more defects than production")
	assert.Contains(t, buf.String(), `"rows":1`)
}
