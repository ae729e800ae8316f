package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/production-dashboard-go/internal/domain/production"
	"github.com/cmlabs-hris/production-dashboard-go/internal/pkg/database"
)

// productionRepositoryImpl reads the dataset from a table shaped like the
// consolidated export:
//
//	production_records(id, date DATE, factory, team, machine_name,
//	                   operator_id, operator_name,
//	                   quantity_produced, quantity_defects)
type productionRepositoryImpl struct {
	db *database.DB
}

func NewProductionRepository(db *database.DB) production.RecordSource {
	return &productionRepositoryImpl{db: db}
}

func (r *productionRepositoryImpl) Name() string {
	return "postgres:production_records"
}

// Load returns every row ordered by id, which keeps tie-breaks stable across restarts
func (r *productionRepositoryImpl) Load(ctx context.Context) ([]production.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT 
			date,
			factory,
			team,
			machine_name,
			operator_id::text,
			operator_name,
			quantity_produced,
			quantity_defects
		FROM production_records
		ORDER BY id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query production records: %w", err)
	}
	defer rows.Close()

	records := make([]production.Record, 0)
	for rows.Next() {
		var rec production.Record
		if err := rows.Scan(
			&rec.Date,
			&rec.Factory,
			&rec.Team,
			&rec.MachineName,
			&rec.OperatorID,
			&rec.OperatorName,
			&rec.QuantityProduced,
			&rec.QuantityDefects,
		); err != nil {
			return nil, fmt.Errorf("failed to scan production record: %w", err)
		}
		rec.Date = production.CivilDate(rec.Date)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read production records: %w", err)
	}
	return records, nil
}
