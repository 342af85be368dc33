package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"creator-contest/infrastructure/configuration"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(configuration.Db{Name: "contest", Host: "db", Port: "5432", User: "app", Password: "p@ss", SSLMode: "disable"})
	require.Equal(t, "postgres://app:p%40ss@db:5432/contest?sslmode=disable", dsn)

	dsn = PostgresDSN(configuration.Db{Name: "contest", Host: "localhost", Port: "5432"})
	require.Equal(t, "postgres://localhost:5432/contest", dsn)
}

func TestRunMigrations(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	var gotDir string
	gooseUp = func(_ context.Context, _ *sql.DB, dir string) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, RunMigrations(context.Background(), db))
	require.Equal(t, ".", gotDir)

	gooseUp = func(context.Context, *sql.DB, string) error { return errors.New("locked") }
	require.ErrorContains(t, RunMigrations(context.Background(), db), "locked")
}
