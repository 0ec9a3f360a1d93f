package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE series (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				name_de TEXT NOT NULL DEFAULT '',
				name_en TEXT NOT NULL DEFAULT '',
				name_fr TEXT NOT NULL DEFAULT '',
				name_it TEXT NOT NULL DEFAULT '',
				name_es TEXT NOT NULL DEFAULT '',
				slug TEXT NOT NULL UNIQUE,
				link TEXT NOT NULL DEFAULT '',
				notes TEXT NOT NULL DEFAULT ''
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE works (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				series_id INTEGER REFERENCES series (id) ON DELETE SET NULL,
				series_index REAL NOT NULL DEFAULT 0,
				title TEXT NOT NULL DEFAULT '',
				title_de TEXT NOT NULL DEFAULT '',
				title_en TEXT NOT NULL DEFAULT '',
				title_fr TEXT NOT NULL DEFAULT '',
				title_it TEXT NOT NULL DEFAULT '',
				title_es TEXT NOT NULL DEFAULT '',
				slug TEXT NOT NULL DEFAULT '',
				genre TEXT NOT NULL DEFAULT '',
				regions TEXT NOT NULL DEFAULT '',
				keywords TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				rating REAL NOT NULL DEFAULT 0,
				stars INTEGER NOT NULL DEFAULT 0,
				notes TEXT NOT NULL DEFAULT ''
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_works_title ON works (title)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_works_series_id ON works (series_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE books (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				work_id INTEGER REFERENCES works (id) ON DELETE SET NULL,
				path TEXT NOT NULL UNIQUE,
				ext TEXT NOT NULL DEFAULT '',
				title TEXT NOT NULL DEFAULT '',
				series_name TEXT NOT NULL DEFAULT '',
				series_number REAL NOT NULL DEFAULT 0,
				genre TEXT NOT NULL DEFAULT '',
				regions TEXT NOT NULL DEFAULT '',
				keywords TEXT NOT NULL DEFAULT '',
				stars INTEGER NOT NULL DEFAULT 0,
				rating_ol REAL NOT NULL DEFAULT 0,
				rating_ol_count INTEGER NOT NULL DEFAULT 0,
				rating_g REAL NOT NULL DEFAULT 0,
				rating_g_count INTEGER NOT NULL DEFAULT 0,
				is_complete BOOLEAN NOT NULL DEFAULT FALSE,
				is_manual_description BOOLEAN NOT NULL DEFAULT FALSE,
				scanner_version TEXT NOT NULL DEFAULT '',
				isbn TEXT NOT NULL DEFAULT '',
				language TEXT NOT NULL DEFAULT '',
				image_path TEXT NOT NULL DEFAULT '',
				year TEXT NOT NULL DEFAULT '',
				is_read BOOLEAN NOT NULL DEFAULT FALSE,
				notes TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT ''
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_books_work_id ON books (work_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE authors (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				firstname TEXT NOT NULL DEFAULT '',
				lastname TEXT NOT NULL DEFAULT '',
				slug TEXT NOT NULL UNIQUE,
				language TEXT NOT NULL DEFAULT '',
				country TEXT NOT NULL DEFAULT '',
				birth_year INTEGER NOT NULL DEFAULT 0,
				birth_place TEXT NOT NULL DEFAULT '',
				birth_date TEXT NOT NULL DEFAULT '',
				image_path TEXT NOT NULL DEFAULT '',
				vita TEXT NOT NULL DEFAULT '',
				is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
				link_de TEXT NOT NULL DEFAULT '',
				link_en TEXT NOT NULL DEFAULT '',
				link_fr TEXT NOT NULL DEFAULT '',
				link_it TEXT NOT NULL DEFAULT '',
				link_es TEXT NOT NULL DEFAULT ''
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE work_to_author (
				work_id INTEGER NOT NULL REFERENCES works (id) ON DELETE CASCADE,
				author_id INTEGER NOT NULL REFERENCES authors (id) ON DELETE CASCADE,
				PRIMARY KEY (work_id, author_id)
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_work_to_author_author_id ON work_to_author (author_id)`)
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	}

	down := func(_ context.Context, db *bun.DB) error {
		for _, table := range []string{"work_to_author", "books", "authors", "works", "series"} {
			if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
