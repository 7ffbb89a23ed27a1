// Package coretest builds SQLite source databases for tests.
package coretest

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// SourceSchema mirrors the layout of the movies SQLite export.
const SourceSchema = `
CREATE TABLE genre (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	created_at timestamp with time zone,
	updated_at timestamp with time zone
);
CREATE TABLE person (
	id TEXT PRIMARY KEY,
	full_name TEXT NOT NULL,
	created_at timestamp with time zone,
	updated_at timestamp with time zone
);
CREATE TABLE film_work (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT,
	creation_date DATE,
	file_path TEXT,
	rating FLOAT,
	type TEXT NOT NULL,
	created_at timestamp with time zone,
	updated_at timestamp with time zone
);
CREATE TABLE person_film_work (
	id TEXT PRIMARY KEY,
	film_work_id TEXT NOT NULL,
	person_id TEXT NOT NULL,
	role TEXT,
	created_at timestamp with time zone
);
CREATE TABLE genre_film_work (
	id TEXT PRIMARY KEY,
	film_work_id TEXT NOT NULL,
	genre_id TEXT NOT NULL,
	created_at timestamp with time zone
);
`

// Identifiers used by Scenario.
const (
	GenreAction   = "120a21cf-9097-479e-904a-13dd7198c1dd"
	GenreComedy   = "1cacff68-643e-4ddd-8f57-84b62538081a"
	GenreDrama    = "b92ef010-5e4c-4fd0-99d6-41b6456272cd"
	PersonLucas   = "26e83050-29ef-4163-a99d-b546cac208f8"
	PersonHamill  = "5b4bf1bc-3397-4e83-9b17-8b10c6544ed1"
	FilmStarWars  = "3d825f60-9fff-4dfe-b294-1a45fa1e115d"
	RoleDirector  = "0031feab-8f53-412a-8f53-47098a60ac73"
	RoleActor     = "e6c4da76-4fb4-4bd9-8d2a-1b6bf7e4f5b0"
	GenreLinkFilm = "8ab1fa4e-a6da-4e05-b8a1-9e1b4a3f0cc3"
)

// Scenario seeds 3 genres, 2 persons, 1 film work, 2 person links and
// 1 genre link.
var Scenario = []string{
	`INSERT INTO genre VALUES ('` + GenreAction + `', 'Action', NULL, '2021-06-16 20:14:09.309735+00', '2021-06-16 20:14:09.309751+00')`,
	`INSERT INTO genre VALUES ('` + GenreComedy + `', 'Comedy', 'Funny films', '2021-06-16 20:14:09.310212+00', '2021-06-16 20:14:09.310225+00')`,
	`INSERT INTO genre VALUES ('` + GenreDrama + `', 'Drama', '', '2021-06-16 20:14:09.311181+00', '2021-06-16 20:14:09.311196+00')`,
	`INSERT INTO person VALUES ('` + PersonLucas + `', 'George Lucas', '2021-06-16 20:14:09.221855+00', '2021-06-16 20:14:09.221869+00')`,
	`INSERT INTO person VALUES ('` + PersonHamill + `', 'Mark Hamill', '2021-06-16 20:14:09.222043+00', '2021-06-16 20:14:09.222056+00')`,
	`INSERT INTO film_work VALUES ('` + FilmStarWars + `', 'Star Wars', NULL, '1977-05-25', NULL, 8.6, 'movie', '2021-06-16 20:14:09.223404+00', '2021-06-16 20:14:09.223418+00')`,
	`INSERT INTO person_film_work VALUES ('` + RoleDirector + `', '` + FilmStarWars + `', '` + PersonLucas + `', 'director', '2021-06-16 20:14:09.692486+00')`,
	`INSERT INTO person_film_work VALUES ('` + RoleActor + `', '` + FilmStarWars + `', '` + PersonHamill + `', NULL, '2021-06-16 20:14:09.692577+00')`,
	`INSERT INTO genre_film_work VALUES ('` + GenreLinkFilm + `', '` + FilmStarWars + `', '` + GenreAction + `', '2021-06-16 20:14:09.430113+00')`,
}

// NewSource creates a SQLite file in a temp dir with SourceSchema and the
// given statements applied. It returns the file path.
func NewSource(t testing.TB, stmts ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "db.sqlite")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(SourceSchema)
	require.NoError(t, err)

	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}

	return path
}

// OpenSource opens path for reading and closes it with the test.
func OpenSource(t testing.TB, path string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro&_pragma=query_only(1)")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// Genres returns n INSERT statements for genres with sequential ids.
func Genres(n int) []string {
	stmts := make([]string, n)
	for i := range n {
		stmts[i] = fmt.Sprintf(
			`INSERT INTO genre VALUES ('%s', 'Genre %d', NULL, '2021-06-16 20:14:09+00', '2021-06-16 20:14:09+00')`,
			SeqID(i), i,
		)
	}
	return stmts
}

// SeqID returns a deterministic uuid that sorts by i.
func SeqID(i int) string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012x", i)
}
