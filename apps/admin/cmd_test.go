package main

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/user"
	dummydb "github.com/trezcool/alama/storage/database/dummy"
)

func newTestCLI(t *testing.T) *commandLine {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("opening dummy db: %v", err)
	}
	conf := &core.Config{TestMode: true, SecretKey: []byte("secret")}
	return &commandLine{
		db:     &sqlx.DB{},
		usrSvc: user.NewService(dummydb.NewUserRepository(db), conf),
	}
}

func mockPassword(t *testing.T, pwd string) {
	t.Helper()
	orig := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

func Test_commandLine_run(t *testing.T) {
	t.Run("no arguments prints usage", func(t *testing.T) {
		cli := newTestCLI(t)
		assert.Equal(t, errHelp, cli.run([]string{"admin"}))
	})

	t.Run("unknown command prints usage", func(t *testing.T) {
		cli := newTestCLI(t)
		assert.Equal(t, errHelp, cli.run([]string{"admin", "frobnicate"}))
	})

	t.Run("createadmin requires a username", func(t *testing.T) {
		cli := newTestCLI(t)
		assert.Equal(t, errHelp, cli.run([]string{"admin", "createadmin"}))
	})

	t.Run("createadmin rejects an empty password", func(t *testing.T) {
		cli := newTestCLI(t)
		mockPassword(t, "")
		assert.Equal(t, errHelp, cli.run([]string{"admin", "createadmin", "-username", "root"}))
	})

	t.Run("createadmin creates a system admin", func(t *testing.T) {
		cli := newTestCLI(t)
		mockPassword(t, "LePassword")
		err := cli.run([]string{"admin", "createadmin", "-username", "Root", "-email", "Root@alama.cd"})
		assert.NoError(t, err)

		usr, err := cli.usrSvc.Authenticate(context.Background(), "root", "LePassword")
		assert.NoError(t, err)
		assert.True(t, usr.IsSystemAdmin)
		assert.Equal(t, "root", usr.Username)
		assert.Equal(t, "root@alama.cd", usr.Email)
	})

	t.Run("createadmin refuses a taken username", func(t *testing.T) {
		cli := newTestCLI(t)
		mockPassword(t, "LePassword")
		assert.NoError(t, cli.run([]string{"admin", "createadmin", "-username", "root"}))

		err := cli.run([]string{"admin", "createadmin", "-username", "root"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("migrate requires a goose command", func(t *testing.T) {
		cli := newTestCLI(t)
		assert.Equal(t, errHelp, cli.run([]string{"admin", "migrate"}))
	})

	t.Run("migrate forwards to goose", func(t *testing.T) {
		cli := newTestCLI(t)

		var gotCommand, gotDir string
		var gotArgs []string
		orig := gooseRunFunc
		gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
			gotCommand, gotDir, gotArgs = command, dir, args
			return nil
		}
		t.Cleanup(func() { gooseRunFunc = orig })

		err := cli.run([]string{"admin", "migrate", "up-to", "20210101000000"})
		assert.NoError(t, err)
		assert.Equal(t, "up-to", gotCommand)
		assert.Equal(t, filepath.Join(core.Getwd(), "storage", "database", "migrations"), gotDir)
		assert.Equal(t, []string{"20210101000000"}, gotArgs)
	})
}
