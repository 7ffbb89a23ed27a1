package tables

import "github.com/JonMunkholm/moviesync/internal/core"

func init() {
	registerGenre()
	registerPerson()
	registerFilmWork()
}

func registerGenre() {
	core.Register(core.TableDefinition{
		Kind:        core.KindGenre,
		Label:       "Genres",
		Rank:        1,
		Order:       1,
		SourceTable: "genre",
		DestTable:   "genre",
		FieldSpecs: specs(
			[]core.FieldSpec{
				idField,
				{Column: "name", Type: core.FieldText},
				{Column: "description", Type: core.FieldBlankText},
			},
			timestampFields,
		),
		Build: func(f core.Fields) core.Record {
			return core.Genre{
				Identity:    core.Identity{ID: f.UUID("id")},
				Name:        f.String("name"),
				Description: f.String("description"),
				Timestamps:  timestamps(f),
			}
		},
	})
}

func registerPerson() {
	core.Register(core.TableDefinition{
		Kind:        core.KindPerson,
		Label:       "Persons",
		Rank:        1,
		Order:       2,
		SourceTable: "person",
		DestTable:   "person",
		FieldSpecs: specs(
			[]core.FieldSpec{
				idField,
				{Column: "full_name", Type: core.FieldText},
			},
			timestampFields,
		),
		Build: func(f core.Fields) core.Record {
			return core.Person{
				Identity:   core.Identity{ID: f.UUID("id")},
				FullName:   f.String("full_name"),
				Timestamps: timestamps(f),
			}
		},
	})
}

func registerFilmWork() {
	core.Register(core.TableDefinition{
		Kind:        core.KindFilmWork,
		Label:       "Film works",
		Rank:        2,
		Order:       3,
		SourceTable: "film_work",
		DestTable:   "film_work",
		FieldSpecs: specs(
			[]core.FieldSpec{
				idField,
				{Column: "title", Type: core.FieldText},
				{Column: "description", Type: core.FieldBlankText},
				{Column: "creation_date", Type: core.FieldDate},
				{Column: "rating", Type: core.FieldFloat},
				{Column: "type", Type: core.FieldEnum},
			},
			timestampFields,
		),
		Build: func(f core.Fields) core.Record {
			return core.FilmWork{
				Identity:     core.Identity{ID: f.UUID("id")},
				Title:        f.String("title"),
				Description:  f.String("description"),
				CreationDate: f.Date("creation_date"),
				Rating:       f.Float("rating"),
				Type:         f.String("type"),
				Timestamps:   timestamps(f),
			}
		},
	})
}
