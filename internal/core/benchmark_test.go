package core

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ============================================================================
// Conversion Function Benchmarks
// ============================================================================

// BenchmarkParseUUID benchmarks identifier parsing.
// Every row carries at least one identifier, link rows three.
func BenchmarkParseUUID(b *testing.B) {
	inputs := []any{
		"3d825f60-9fff-4dfe-b294-1a45fa1e115d",
		[]byte("3d825f60-9fff-4dfe-b294-1a45fa1e115d"),
		[16]byte(uuid.MustParse("3d825f60-9fff-4dfe-b294-1a45fa1e115d")),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, in := range inputs {
			_, _ = ParseUUID(in)
		}
	}
}

// BenchmarkToPgTimestamptz benchmarks the SQLite export timestamp layouts.
func BenchmarkToPgTimestamptz(b *testing.B) {
	inputs := []any{
		"2021-06-16 20:14:09.221855+00", // export layout, first match
		"2021-06-16T20:14:09.221855Z",   // RFC 3339
		"2021-06-16 20:14:09",           // no zone, late match
		time.Date(2021, 6, 16, 20, 14, 9, 0, time.UTC),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, in := range inputs {
			_, _ = ToPgTimestamptz(in)
		}
	}
}

// BenchmarkToFloat benchmarks rating conversion.
func BenchmarkToFloat(b *testing.B) {
	inputs := []any{8.6, int64(7), "6.5", nil}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, in := range inputs {
			_, _ = ToFloat(in)
		}
	}
}

// ============================================================================
// Comparison Benchmarks
// ============================================================================

// BenchmarkEqualValue benchmarks the per-column comparison used by CheckValues.
func BenchmarkEqualValue(b *testing.B) {
	ts := pgtype.Timestamptz{Time: time.Date(2021, 6, 16, 20, 14, 9, 0, time.UTC), Valid: true}
	id := ToPgUUID(uuid.New())
	pairs := [][2]any{
		{id, id},
		{"Star Wars", "Star Wars"},
		{8.6, 8.6},
		{ts, ts},
		{pgtype.Text{}, pgtype.Text{}},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, p := range pairs {
			equalValue(p[0], p[1])
		}
	}
}

// ============================================================================
// Transform Benchmarks
// ============================================================================

// BenchmarkTransform_FilmWork benchmarks the widest table end to end.
func BenchmarkTransform_FilmWork(b *testing.B) {
	def := TableDefinition{
		Kind: KindFilmWork,
		FieldSpecs: []FieldSpec{
			{Column: "id", Type: FieldUUID},
			{Column: "title", Type: FieldText},
			{Column: "description", Type: FieldBlankText},
			{Column: "creation_date", Type: FieldDate},
			{Column: "rating", Type: FieldFloat},
			{Column: "type", Type: FieldEnum},
			{Column: "created", Type: FieldTimestamp},
			{Column: "modified", Type: FieldTimestamp},
		},
		Build: func(f Fields) Record {
			return FilmWork{
				Identity:     Identity{ID: f.UUID("id")},
				Title:        f.String("title"),
				Description:  f.String("description"),
				CreationDate: f.Date("creation_date"),
				Rating:       f.Float("rating"),
				Type:         f.String("type"),
				Timestamps:   Timestamps{Created: f.Timestamp("created"), Modified: f.Timestamp("modified")},
			}
		},
	}
	row := Row{
		"id":            "3d825f60-9fff-4dfe-b294-1a45fa1e115d",
		"title":         "Star Wars",
		"description":   nil,
		"creation_date": "1977-05-25",
		"rating":        8.6,
		"type":          "movie",
		"created":       "2021-06-16 20:14:09.223404+00",
		"modified":      "2021-06-16 20:14:09.223418+00",
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := def.Transform(row); err != nil {
			b.Fatal(err)
		}
	}
}
