package core

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Fields holds the coerced values of one row, keyed by destination column.
// Accessors return the zero value for a column of another type.
type Fields struct {
	values map[string]any
}

// UUID returns a FieldUUID column.
func (f Fields) UUID(col string) uuid.UUID {
	v, _ := f.values[col].(uuid.UUID)
	return v
}

// String returns a FieldText, FieldBlankText or FieldEnum column.
func (f Fields) String(col string) string {
	v, _ := f.values[col].(string)
	return v
}

// Text returns a FieldNullableText column.
func (f Fields) Text(col string) pgtype.Text {
	v, _ := f.values[col].(pgtype.Text)
	return v
}

// Float returns a FieldFloat column.
func (f Fields) Float(col string) float64 {
	v, _ := f.values[col].(float64)
	return v
}

// Date returns a FieldDate column.
func (f Fields) Date(col string) pgtype.Date {
	v, _ := f.values[col].(pgtype.Date)
	return v
}

// Timestamp returns a FieldTimestamp column.
func (f Fields) Timestamp(col string) pgtype.Timestamptz {
	v, _ := f.values[col].(pgtype.Timestamptz)
	return v
}

// Transform converts a raw row of the given kind into its typed record.
// It is pure and safe for concurrent use.
func Transform(kind EntityKind, row Row) (Record, error) {
	def, ok := Get(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, kind)
	}
	return def.Transform(row)
}

// Transform converts a raw row into the table's typed record. A value that
// cannot be coerced yields a *TransformError naming the column.
func (t TableDefinition) Transform(row Row) (Record, error) {
	values := make(map[string]any, len(t.FieldSpecs))
	for _, spec := range t.FieldSpecs {
		raw := row[spec.Column]
		v, err := coerce(spec.Type, raw)
		if err != nil {
			return nil, &TransformError{
				Table:  t.Kind,
				Batch:  -1,
				Column: spec.Column,
				Value:  raw,
				Row:    row,
				Err:    err,
			}
		}
		values[spec.Column] = v
	}
	return t.Build(Fields{values: values}), nil
}

// TransformBatch converts every row of a batch. With skipInvalid set, rows
// that fail are left out and returned as errors instead of aborting.
func (t TableDefinition) TransformBatch(batch Batch, skipInvalid bool) (RecordBatch, []*TransformError, error) {
	out := RecordBatch{Index: batch.Index, Records: make([]Record, 0, len(batch.Rows))}
	var skipped []*TransformError

	for _, row := range batch.Rows {
		rec, err := t.Transform(row)
		if err == nil {
			out.Records = append(out.Records, rec)
			continue
		}
		terr, ok := err.(*TransformError)
		if !ok {
			return out, skipped, err
		}
		terr.Batch = batch.Index
		if !skipInvalid {
			return out, skipped, terr
		}
		skipped = append(skipped, terr)
	}

	return out, skipped, nil
}

func coerce(t FieldType, v any) (any, error) {
	switch t {
	case FieldUUID:
		return ParseUUID(v)
	case FieldText, FieldEnum:
		s, ok, err := asString(v)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errNull
		}
		return s, nil
	case FieldBlankText:
		s, _, err := asString(v)
		return s, err
	case FieldNullableText:
		return ToPgText(v)
	case FieldFloat:
		return ToFloat(v)
	case FieldDate:
		return ToPgDate(v)
	case FieldTimestamp:
		return ToPgTimestamptz(v)
	default:
		return nil, fmt.Errorf("unknown field type %d", t)
	}
}
