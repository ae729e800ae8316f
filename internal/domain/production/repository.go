package production

import "context"

// RecordSource loads the full record collection from one backing store.
// Sources are read once at startup; the returned slice is owned by the caller.
type RecordSource interface {
	// Name identifies the source in logs, e.g. "csv:dados_consolidados.csv"
	Name() string

	// Load reads every record, in the order the store yields them
	Load(ctx context.Context) ([]Record, error)
}
