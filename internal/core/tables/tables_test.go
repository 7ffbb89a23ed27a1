package tables_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/moviesync/internal/core"
	_ "github.com/JonMunkholm/moviesync/internal/core/tables"
)

func TestCatalogIsValid(t *testing.T) {
	require.NoError(t, core.ValidateCatalog())
	assert.Equal(t, len(core.Kinds), core.TableCount())
}

func TestCatalogLoadOrder(t *testing.T) {
	var order []core.EntityKind
	for _, def := range core.Ordered() {
		order = append(order, def.Kind)
	}
	assert.Equal(t, []core.EntityKind{
		core.KindGenre,
		core.KindPerson,
		core.KindFilmWork,
		core.KindPersonFilmWork,
		core.KindGenreFilmWork,
	}, order)
}

func TestCatalogStages(t *testing.T) {
	var stages [][]core.EntityKind
	for _, stage := range core.Stages() {
		var kinds []core.EntityKind
		for _, def := range stage {
			kinds = append(kinds, def.Kind)
		}
		stages = append(stages, kinds)
	}

	assert.Equal(t, [][]core.EntityKind{
		{core.KindGenre, core.KindPerson},
		{core.KindFilmWork},
		{core.KindPersonFilmWork, core.KindGenreFilmWork},
	}, stages)
}

func TestCatalogColumns(t *testing.T) {
	tests := []struct {
		kind core.EntityKind
		want []string
	}{
		{core.KindGenre, []string{"id", "name", "description", "created", "modified"}},
		{core.KindPerson, []string{"id", "full_name", "created", "modified"}},
		{core.KindFilmWork, []string{"id", "title", "description", "creation_date", "rating", "type", "created", "modified"}},
		{core.KindPersonFilmWork, []string{"id", "film_work_id", "person_id", "role", "created"}},
		{core.KindGenreFilmWork, []string{"id", "film_work_id", "genre_id", "created"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			def, ok := core.Get(tt.kind)
			require.True(t, ok)
			assert.Equal(t, tt.want, def.Columns())
		})
	}
}

func TestCatalogQueries(t *testing.T) {
	def, ok := core.Get(core.KindPerson)
	require.True(t, ok)

	src := def.SourceQuery()
	assert.Contains(t, src, "created_at AS created")
	assert.Contains(t, src, "updated_at AS modified")
	assert.Contains(t, src, "FROM person")
	assert.True(t, strings.HasSuffix(src, "ORDER BY lower(id)"), src)

	dst := def.DestQuery("content")
	assert.Equal(t, `SELECT id, full_name, created, modified FROM "content"."person" ORDER BY id`, dst)
	assert.Equal(t, `SELECT COUNT(*) FROM "content"."person"`, def.DestCountQuery("content"))
	assert.Equal(t, `SELECT COUNT(*) FROM person`, def.SourceCountQuery())
}

func TestRegisterDuplicatePanics(t *testing.T) {
	def, ok := core.Get(core.KindGenre)
	require.True(t, ok)
	assert.Panics(t, func() { core.Register(def) })
}
