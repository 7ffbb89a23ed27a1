package core

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for destination read operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// TxStarter opens destination transactions.
// Satisfied by *pgxpool.Pool and *pgx.Conn.
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// EntityKind names one of the migrated tables.
type EntityKind string

const (
	KindGenre          EntityKind = "genre"
	KindPerson         EntityKind = "person"
	KindFilmWork       EntityKind = "film_work"
	KindPersonFilmWork EntityKind = "person_film_work"
	KindGenreFilmWork  EntityKind = "genre_film_work"
)

// Kinds lists every entity the catalog must declare.
var Kinds = []EntityKind{
	KindGenre,
	KindPerson,
	KindFilmWork,
	KindPersonFilmWork,
	KindGenreFilmWork,
}

// FieldType selects how a raw source value is coerced.
type FieldType int

const (
	FieldUUID         FieldType = iota // 128-bit identifier, never null
	FieldText                          // non-null text
	FieldBlankText                     // text where NULL becomes ""
	FieldNullableText                  // text where NULL stays NULL
	FieldFloat                         // double precision, NULL becomes 0
	FieldDate                          // calendar date, NULL stays NULL
	FieldTimestamp                     // instant with time zone, NULL stays NULL
	FieldEnum                          // text passed through verbatim
)

func (t FieldType) String() string {
	switch t {
	case FieldUUID:
		return "uuid"
	case FieldText:
		return "text"
	case FieldBlankText:
		return "blank_text"
	case FieldNullableText:
		return "nullable_text"
	case FieldFloat:
		return "float"
	case FieldDate:
		return "date"
	case FieldTimestamp:
		return "timestamp"
	case FieldEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// FieldSpec declares one destination column.
type FieldSpec struct {
	Column       string    // Destination column name, also the key in a Row
	SourceColumn string    // Source column if it differs from Column
	Type         FieldType // Coercion applied by Transform
}

// source returns the column name in the source table.
func (f FieldSpec) source() string {
	if f.SourceColumn != "" {
		return f.SourceColumn
	}
	return f.Column
}

// Row is one raw row keyed by destination column name, holding store-native
// values (int64, float64, string, []byte, time.Time, [16]byte or nil).
type Row map[string]any

// Batch is a bounded slice of raw rows from one table.
type Batch struct {
	Index int
	Rows  []Row
}

// Record is a typed, canonical row ready for insertion.
// Values are ordered exactly like the owning table's Columns.
type Record interface {
	Key() uuid.UUID
	Values() []any
}

// RecordBatch is a transformed Batch.
type RecordBatch struct {
	Index   int
	Records []Record
}

// BuildFunc assembles a typed record from coerced fields.
type BuildFunc func(f Fields) Record

// TableDefinition contains everything needed to migrate and verify one table.
type TableDefinition struct {
	Kind        EntityKind
	Label       string // Display name: "Film works"
	Rank        int    // Dependency rank; lower ranks load first
	Order       int    // Tie-break inside a rank for sequential runs
	SourceTable string
	DestTable   string
	FieldSpecs  []FieldSpec
	Build       BuildFunc
}

// Columns returns the destination column names in record order.
func (t TableDefinition) Columns() []string {
	cols := make([]string, len(t.FieldSpecs))
	for i, spec := range t.FieldSpecs {
		cols[i] = spec.Column
	}
	return cols
}

// SourceQuery selects the table's columns from SQLite, aliased to destination
// names and ordered by identifier.
func (t TableDefinition) SourceQuery() string {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	cols := make([]string, len(t.FieldSpecs))
	for i, spec := range t.FieldSpecs {
		if src := spec.source(); src != spec.Column {
			cols[i] = sb.As(src, spec.Column)
		} else {
			cols[i] = spec.Column
		}
	}
	sb.Select(cols...)
	sb.From(t.SourceTable)
	// lowercase hex sorts like PostgreSQL's byte-wise uuid order
	sb.OrderBy("lower(id)")

	query, _ := sb.Build()
	return query
}

// SourceCountQuery counts the source rows.
func (t TableDefinition) SourceCountQuery() string {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(t.SourceTable)

	query, _ := sb.Build()
	return query
}

// DestIdentifier returns the quoted schema-qualified destination table.
func (t TableDefinition) DestIdentifier(schema string) string {
	if schema == "" {
		return pgx.Identifier{t.DestTable}.Sanitize()
	}
	return pgx.Identifier{schema, t.DestTable}.Sanitize()
}

// DestQuery selects the table's columns from PostgreSQL ordered by identifier.
func (t TableDefinition) DestQuery(schema string) string {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(t.Columns()...)
	sb.From(t.DestIdentifier(schema))
	sb.OrderBy("id")

	query, _ := sb.Build()
	return query
}

// DestCountQuery counts the destination rows.
func (t TableDefinition) DestCountQuery(schema string) string {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(t.DestIdentifier(schema))

	query, _ := sb.Build()
	return query
}

// String implements fmt.Stringer.
func (t TableDefinition) String() string {
	return string(t.Kind) + "(" + strings.Join(t.Columns(), ", ") + ")"
}
