package core

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Identity is the primary key shared by every entity.
type Identity struct {
	ID uuid.UUID
}

// Key returns the record identifier.
func (i Identity) Key() uuid.UUID { return i.ID }

// Timestamps carries the creation and modification instants.
type Timestamps struct {
	Created  pgtype.Timestamptz
	Modified pgtype.Timestamptz
}

// CreatedStamp carries only a creation instant (link tables).
type CreatedStamp struct {
	Created pgtype.Timestamptz
}

type Genre struct {
	Identity
	Name        string
	Description string
	Timestamps
}

func (g Genre) Values() []any {
	return []any{ToPgUUID(g.ID), g.Name, g.Description, g.Created, g.Modified}
}

type Person struct {
	Identity
	FullName string
	Timestamps
}

func (p Person) Values() []any {
	return []any{ToPgUUID(p.ID), p.FullName, p.Created, p.Modified}
}

type FilmWork struct {
	Identity
	Title        string
	Description  string
	CreationDate pgtype.Date
	Rating       float64
	Type         string
	Timestamps
}

func (f FilmWork) Values() []any {
	return []any{
		ToPgUUID(f.ID), f.Title, f.Description, f.CreationDate,
		f.Rating, f.Type, f.Created, f.Modified,
	}
}

type PersonFilmWork struct {
	Identity
	FilmWorkID uuid.UUID
	PersonID   uuid.UUID
	Role       pgtype.Text
	CreatedStamp
}

func (p PersonFilmWork) Values() []any {
	return []any{ToPgUUID(p.ID), ToPgUUID(p.FilmWorkID), ToPgUUID(p.PersonID), p.Role, p.Created}
}

type GenreFilmWork struct {
	Identity
	FilmWorkID uuid.UUID
	GenreID    uuid.UUID
	CreatedStamp
}

func (g GenreFilmWork) Values() []any {
	return []any{ToPgUUID(g.ID), ToPgUUID(g.FilmWorkID), ToPgUUID(g.GenreID), g.Created}
}
