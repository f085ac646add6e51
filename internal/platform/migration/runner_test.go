// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestPgx5URL verifies the scheme rewrite for every accepted prefix.
*/
func TestPgx5URL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"postgres", "postgres://u:p@db:5432/books", "pgx5://u:p@db:5432/books"},
		{"postgresql", "postgresql://u:p@db/books", "pgx5://u:p@db/books"},
		{"already_pgx5", "pgx5://db/books", "pgx5://db/books"},
		{"keyword_dsn", "host=db dbname=books", "host=db dbname=books"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pgx5URL(tt.in))
		})
	}
}

/*
TestSource_EmbeddedFilesArePaired verifies that every compiled-in up
migration has a matching down file.
*/
func TestSource_EmbeddedFilesArePaired(t *testing.T) {
	names, err := fs.Glob(Source(""), "*.sql")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, name := range names {
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

/*
TestSource_Directory reads from disk when a path is configured.
*/
func TestSource_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, fstest.TestFS(Source("../../../data/migrations"), "000001_users_account.up.sql"))

	entries, err := fs.ReadDir(Source(dir), ".")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
