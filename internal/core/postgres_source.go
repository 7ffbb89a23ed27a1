package core

import (
	"context"
	"fmt"
	"iter"
)

// PostgresSource reads catalog tables back from the destination.
type PostgresSource struct {
	db     DBTX
	schema string
}

// NewPostgresSource creates a row source over the destination schema.
func NewPostgresSource(db DBTX, schema string) *PostgresSource {
	return &PostgresSource{db: db, schema: schema}
}

// Count returns the number of rows in the destination table.
func (p *PostgresSource) Count(ctx context.Context, def TableDefinition) (int64, error) {
	var n int64
	if err := p.db.QueryRow(ctx, def.DestCountQuery(p.schema)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", def.DestIdentifier(p.schema), err)
	}
	return n, nil
}

// Rows streams the destination rows ordered by id.
func (p *PostgresSource) Rows(ctx context.Context, def TableDefinition) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		rows, err := p.db.Query(ctx, def.DestQuery(p.schema))
		if err != nil {
			yield(nil, fmt.Errorf("query %s: %w", def.DestIdentifier(p.schema), err))
			return
		}
		defer rows.Close()

		fields := rows.FieldDescriptions()
		for rows.Next() {
			vals, err := rows.Values()
			if err != nil {
				yield(nil, fmt.Errorf("read %s: %w", def.DestIdentifier(p.schema), err))
				return
			}
			row := make(Row, len(fields))
			for i, fd := range fields {
				row[fd.Name] = vals[i]
			}
			if !yield(row, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("read %s: %w", def.DestIdentifier(p.schema), err))
		}
	}
}
