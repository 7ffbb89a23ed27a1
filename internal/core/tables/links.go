package tables

import "github.com/JonMunkholm/moviesync/internal/core"

// Link tables reference film_work and person/genre, so they load last.
func init() {
	registerPersonFilmWork()
	registerGenreFilmWork()
}

func registerPersonFilmWork() {
	core.Register(core.TableDefinition{
		Kind:        core.KindPersonFilmWork,
		Label:       "Film work persons",
		Rank:        3,
		Order:       4,
		SourceTable: "person_film_work",
		DestTable:   "person_film_work",
		FieldSpecs: []core.FieldSpec{
			idField,
			{Column: "film_work_id", Type: core.FieldUUID},
			{Column: "person_id", Type: core.FieldUUID},
			{Column: "role", Type: core.FieldNullableText},
			createdField,
		},
		Build: func(f core.Fields) core.Record {
			return core.PersonFilmWork{
				Identity:     core.Identity{ID: f.UUID("id")},
				FilmWorkID:   f.UUID("film_work_id"),
				PersonID:     f.UUID("person_id"),
				Role:         f.Text("role"),
				CreatedStamp: createdStamp(f),
			}
		},
	})
}

func registerGenreFilmWork() {
	core.Register(core.TableDefinition{
		Kind:        core.KindGenreFilmWork,
		Label:       "Film work genres",
		Rank:        3,
		Order:       5,
		SourceTable: "genre_film_work",
		DestTable:   "genre_film_work",
		FieldSpecs: []core.FieldSpec{
			idField,
			{Column: "film_work_id", Type: core.FieldUUID},
			{Column: "genre_id", Type: core.FieldUUID},
			createdField,
		},
		Build: func(f core.Fields) core.Record {
			return core.GenreFilmWork{
				Identity:     core.Identity{ID: f.UUID("id")},
				FilmWorkID:   f.UUID("film_work_id"),
				GenreID:      f.UUID("genre_id"),
				CreatedStamp: createdStamp(f),
			}
		},
	})
}
