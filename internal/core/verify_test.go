package core_test

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/moviesync/internal/core"
	"github.com/JonMunkholm/moviesync/internal/core/coretest"
)

// fakeSource serves fixed rows per table, already ordered by id.
type fakeSource struct {
	rows   map[core.EntityKind][]core.Row
	counts map[core.EntityKind]int64
	err    error
}

func (f *fakeSource) Count(ctx context.Context, def core.TableDefinition) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if n, ok := f.counts[def.Kind]; ok {
		return n, nil
	}
	return int64(len(f.rows[def.Kind])), nil
}

func (f *fakeSource) Rows(ctx context.Context, def core.TableDefinition) iter.Seq2[core.Row, error] {
	return func(yield func(core.Row, error) bool) {
		if f.err != nil {
			yield(nil, f.err)
			return
		}
		for _, row := range f.rows[def.Kind] {
			if !yield(row, nil) {
				return
			}
		}
	}
}

var (
	idA = "10000000-0000-4000-8000-000000000000"
	idB = "20000000-0000-4000-8000-000000000000"
	idC = "30000000-0000-4000-8000-000000000000"
)

// sqliteGenre is a genre row as SQLite returns it.
func sqliteGenre(id, name string) core.Row {
	return core.Row{
		"id": id, "name": name, "description": nil,
		"created": "2021-06-16 20:14:09.309735+00", "modified": "2021-06-16 20:14:09.309751+00",
	}
}

// pgGenre is the same genre as pgx returns it from PostgreSQL.
func pgGenre(id, name string) core.Row {
	zone := time.FixedZone("CEST", 2*3600)
	return core.Row{
		"id": [16]byte(uuid.MustParse(id)), "name": name, "description": "",
		"created":  time.Date(2021, 6, 16, 22, 14, 9, 309735000, zone),
		"modified": time.Date(2021, 6, 16, 22, 14, 9, 309751000, zone),
	}
}

func genres(rows ...core.Row) *fakeSource {
	return &fakeSource{rows: map[core.EntityKind][]core.Row{core.KindGenre: rows}}
}

func TestCheckValues(t *testing.T) {
	tests := []struct {
		name      string
		src, dst  *fakeSource
		opts      core.VerifyOptions
		wantKinds []core.MismatchKind
		wantCols  []string
		compared  int64
	}{
		{
			name:     "identical after canonicalisation",
			src:      genres(sqliteGenre(idA, "Action"), sqliteGenre(idB, "Comedy")),
			dst:      genres(pgGenre(idA, "Action"), pgGenre(idB, "Comedy")),
			opts:     core.VerifyOptions{StopOnFirst: true},
			compared: 2,
		},
		{
			name:      "value differs",
			src:       genres(sqliteGenre(idA, "Action"), sqliteGenre(idB, "Comedy")),
			dst:       genres(pgGenre(idA, "Action"), pgGenre(idB, "Drama")),
			opts:      core.VerifyOptions{StopOnFirst: true},
			wantKinds: []core.MismatchKind{core.MismatchValue},
			wantCols:  []string{"name"},
			compared:  2,
		},
		{
			name:      "row missing in destination",
			src:       genres(sqliteGenre(idA, "Action"), sqliteGenre(idB, "Comedy"), sqliteGenre(idC, "Drama")),
			dst:       genres(pgGenre(idA, "Action"), pgGenre(idC, "Drama")),
			opts:      core.VerifyOptions{StopOnFirst: false},
			wantKinds: []core.MismatchKind{core.MismatchMissing},
			wantCols:  []string{"id"},
			compared:  2,
		},
		{
			name:      "extra row in destination",
			src:       genres(sqliteGenre(idA, "Action")),
			dst:       genres(pgGenre(idA, "Action"), pgGenre(idB, "Comedy")),
			opts:      core.VerifyOptions{StopOnFirst: false},
			wantKinds: []core.MismatchKind{core.MismatchMissing},
			wantCols:  []string{"id"},
			compared:  1,
		},
		{
			name:      "stop on first reports one",
			src:       genres(sqliteGenre(idA, "Action"), sqliteGenre(idB, "Comedy")),
			dst:       genres(pgGenre(idA, "Horror"), pgGenre(idB, "Drama")),
			opts:      core.VerifyOptions{StopOnFirst: true},
			wantKinds: []core.MismatchKind{core.MismatchValue},
			wantCols:  []string{"name"},
			compared:  1,
		},
		{
			name:      "collect all reports every difference",
			src:       genres(sqliteGenre(idA, "Action"), sqliteGenre(idB, "Comedy")),
			dst:       genres(pgGenre(idA, "Horror"), pgGenre(idB, "Drama")),
			opts:      core.VerifyOptions{StopOnFirst: false},
			wantKinds: []core.MismatchKind{core.MismatchValue, core.MismatchValue},
			wantCols:  []string{"name", "name"},
			compared:  2,
		},
		{
			name: "source row that does not transform",
			src: genres(
				func() core.Row { r := sqliteGenre(idA, "Action"); r["created"] = "garbage"; return r }(),
				sqliteGenre(idB, "Comedy"),
			),
			dst:       genres(pgGenre(idB, "Comedy")),
			opts:      core.VerifyOptions{StopOnFirst: false},
			wantKinds: []core.MismatchKind{core.MismatchInvalid},
			wantCols:  []string{"created"},
			compared:  1,
		},
		{
			name:      "empty stores",
			src:       &fakeSource{},
			dst:       &fakeSource{},
			opts:      core.VerifyOptions{StopOnFirst: true},
			compared:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := core.NewVerifier(tt.src, tt.dst, tt.opts)

			report, err := v.CheckValues(context.Background())
			require.NoError(t, err)

			var kinds []core.MismatchKind
			var cols []string
			for _, m := range report.Mismatches {
				assert.Equal(t, core.KindGenre, m.Table)
				kinds = append(kinds, m.Kind)
				cols = append(cols, m.Column)
			}
			assert.Equal(t, tt.wantKinds, kinds)
			assert.Equal(t, tt.wantCols, cols)
			assert.Equal(t, tt.compared, report.RowsCompared)
			assert.Equal(t, len(tt.wantKinds) == 0, report.OK())
		})
	}
}

func TestCheckValues_MismatchDetail(t *testing.T) {
	v := core.NewVerifier(
		genres(sqliteGenre(idA, "Action")),
		genres(pgGenre(idA, "Actoin")),
		core.VerifyOptions{StopOnFirst: true},
	)

	report, err := v.CheckValues(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Mismatches, 1)

	m := report.Mismatches[0]
	assert.Equal(t, idA, m.Key)
	assert.Equal(t, `"Action"`, m.Source)
	assert.Equal(t, `"Actoin"`, m.Destination)
	assert.ErrorIs(t, report.Err(), core.ErrVerificationFailed)
}

func TestCheckValues_StoreError(t *testing.T) {
	boom := errors.New("connection reset by peer")
	v := core.NewVerifier(genres(), &fakeSource{err: boom}, core.VerifyOptions{})

	_, err := v.CheckValues(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestCheckCounts(t *testing.T) {
	src := &fakeSource{counts: map[core.EntityKind]int64{
		core.KindGenre: 3, core.KindPerson: 2, core.KindFilmWork: 1,
		core.KindPersonFilmWork: 2, core.KindGenreFilmWork: 1,
	}}

	t.Run("equal", func(t *testing.T) {
		v := core.NewVerifier(src, src, core.VerifyOptions{})
		report, err := v.CheckCounts(context.Background())
		require.NoError(t, err)
		assert.True(t, report.OK())
		assert.NoError(t, report.Err())
		assert.Equal(t, 5, report.TablesChecked)
	})

	dst := &fakeSource{counts: map[core.EntityKind]int64{
		core.KindGenre: 2, core.KindPerson: 2, core.KindFilmWork: 1,
		core.KindPersonFilmWork: 1, core.KindGenreFilmWork: 1,
	}}

	t.Run("collects every table by default", func(t *testing.T) {
		v := core.NewVerifier(src, dst, core.VerifyOptions{})
		report, err := v.CheckCounts(context.Background())
		require.NoError(t, err)
		require.Len(t, report.Mismatches, 2)

		m := report.Mismatches[0]
		assert.Equal(t, core.KindGenre, m.Table)
		assert.Equal(t, core.MismatchCount, m.Kind)
		assert.Equal(t, "3", m.Source)
		assert.Equal(t, "2", m.Destination)
		assert.Equal(t, core.KindPersonFilmWork, report.Mismatches[1].Table)
	})

	t.Run("stop on first", func(t *testing.T) {
		v := core.NewVerifier(src, dst, core.VerifyOptions{CountsStopOnFirst: true})
		report, err := v.CheckCounts(context.Background())
		require.NoError(t, err)
		assert.Len(t, report.Mismatches, 1)
	})

	t.Run("store error aborts", func(t *testing.T) {
		v := core.NewVerifier(src, &fakeSource{err: errors.New("down")}, core.VerifyOptions{})
		_, err := v.CheckCounts(context.Background())
		assert.Error(t, err)
	})
}

func TestVerifier_SQLiteAgainstItself(t *testing.T) {
	path := coretest.NewSource(t, coretest.Scenario...)
	src := core.NewSQLiteSource(coretest.OpenSource(t, path))

	v := core.NewVerifier(src, src, core.VerifyOptions{StopOnFirst: true, TableTimeout: time.Minute})

	counts, err := v.CheckCounts(context.Background())
	require.NoError(t, err)
	assert.True(t, counts.OK())

	values, err := v.CheckValues(context.Background())
	require.NoError(t, err)
	assert.True(t, values.OK(), "%v", values.Mismatches)
	assert.Equal(t, int64(9), values.RowsCompared)
	assert.Equal(t, 5, values.TablesChecked)
}
