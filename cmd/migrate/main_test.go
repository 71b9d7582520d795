package main

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	upErr   error
	steps   []int
	forced  int
	version uint
	verErr  error
}

func (f *fakeMigrator) Up() error               { return f.upErr }
func (f *fakeMigrator) Steps(n int) error       { f.steps = append(f.steps, n); return nil }
func (f *fakeMigrator) Force(version int) error { f.forced = version; return nil }
func (f *fakeMigrator) Version() (uint, bool, error) {
	return f.version, false, f.verErr
}

func TestRunUpIgnoresNoChange(t *testing.T) {
	msg, err := run(&fakeMigrator{upErr: migrate.ErrNoChange}, nil)
	require.NoError(t, err)
	assert.Equal(t, "migrations complete", msg)

	_, err = run(&fakeMigrator{upErr: errors.New("boom")}, []string{"up"})
	assert.ErrorContains(t, err, "boom")
}

func TestRunDown(t *testing.T) {
	m := &fakeMigrator{}
	_, err := run(m, []string{"down"})
	require.NoError(t, err)
	_, err = run(m, []string{"down", "2"})
	require.NoError(t, err)
	assert.Equal(t, []int{-1, -2}, m.steps)

	_, err = run(m, []string{"down", "zero"})
	assert.Error(t, err)
}

func TestRunForceAndVersion(t *testing.T) {
	m := &fakeMigrator{version: 1}
	msg, err := run(m, []string{"force", "1"})
	require.NoError(t, err)
	assert.Equal(t, 1, m.forced)
	assert.Equal(t, "forced version to 1", msg)

	_, err = run(m, []string{"force"})
	assert.Error(t, err)

	msg, err = run(m, []string{"version"})
	require.NoError(t, err)
	assert.Equal(t, "version 1 (dirty=false)", msg)

	msg, err = run(&fakeMigrator{verErr: migrate.ErrNilVersion}, []string{"version"})
	require.NoError(t, err)
	assert.Equal(t, "no migrations applied", msg)
}

func TestRunUnknownCommand(t *testing.T) {
	_, err := run(&fakeMigrator{}, []string{"sideways"})
	assert.ErrorContains(t, err, "unknown command")
}
