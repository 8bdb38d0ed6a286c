package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formrows/pkg/renderers/tui"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersionCommandOutputsBuildInfo(t *testing.T) {
	originalVersion, originalCommit, originalDate := version, commit, date
	t.Cleanup(func() {
		version, commit, date = originalVersion, originalCommit, originalDate
	})
	version, commit, date = "1.2.3", "abcdef1", "2026-01-02"

	out, err := run(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "formrows 1.2.3")
	require.Contains(t, out, "abcdef1")
	require.Contains(t, out, "2026-01-02")
}

func TestFormsListsBuiltinsAndLayoutFiles(t *testing.T) {
	layouts := writeFile(t, "notes.yaml", "id: notes\ntitle: Notes\ncontainers:\n  - {id: notes-container, row_kind: note-row, fields: [{name: note}]}\n")

	out, err := run(t, "forms", "--layouts", layouts)
	require.NoError(t, err)
	require.Contains(t, out, "notes\tNotes\t1 containers\n")
	require.Contains(t, out, "recipe\tRecipe\t2 containers\n")
	require.Contains(t, out, "tip\tTip\t1 containers\n")
}

func TestRenderWritesPage(t *testing.T) {
	out, err := run(t, "render", "tip", "--mode", "dark", "--action", "/save")
	require.NoError(t, err)
	require.Contains(t, out, `id="items-container"`)
	require.Contains(t, out, `class="dark"`)
	require.Contains(t, out, `action="/save"`)

	_, err = run(t, "render", "tip", "--mode", "sepia")
	require.ErrorContains(t, err, "unknown mode")

	_, err = run(t, "render", "nope")
	require.Error(t, err)
}

func TestRenderWithGoTemplateEngine(t *testing.T) {
	builtin, err := run(t, "render", "recipe", "--action", "/save")
	require.NoError(t, err)
	library, err := run(t, "render", "recipe", "--action", "/save", "--engine", "go-template")
	require.NoError(t, err)
	require.Equal(t, builtin, library)

	_, err = run(t, "render", "recipe", "--engine", "mustache")
	require.ErrorContains(t, err, "unknown template engine")
}

func TestRenderToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipe.html")
	out, err := run(t, "render", "recipe", "-o", path)
	require.NoError(t, err)
	require.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `id="directions-container"`)
}

func TestThemeTogglePersists(t *testing.T) {
	prefs := filepath.Join(t.TempDir(), "prefs.yaml")
	cfg := writeFile(t, "formrows.yaml", "theme:\n  preferences_file: "+prefs+"\n")

	out, err := run(t, "--config", cfg, "theme")
	require.NoError(t, err)
	require.Contains(t, out, "light")

	out, err = run(t, "--config", cfg, "theme", "toggle")
	require.NoError(t, err)
	require.Contains(t, out, "dark")

	out, err = run(t, "--config", cfg, "theme", "show")
	require.NoError(t, err)
	require.Contains(t, out, "dark")

	data, err := os.ReadFile(prefs)
	require.NoError(t, err)
	require.Equal(t, "theme: dark\n", string(data))
}

type scriptedDriver struct {
	selects []int
	inputs  []string
	err     error
}

func (d *scriptedDriver) Input(context.Context, tui.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	next := d.inputs[0]
	d.inputs = d.inputs[1:]
	return next, nil
}

func (d *scriptedDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) {
	return false, errors.New("no confirm scripted")
}

func (d *scriptedDriver) Select(context.Context, tui.SelectConfig) (int, error) {
	if d.err != nil {
		return -1, d.err
	}
	if len(d.selects) == 0 {
		return -1, errors.New("no select scripted")
	}
	next := d.selects[0]
	d.selects = d.selects[1:]
	return next, nil
}

func (d *scriptedDriver) TextArea(context.Context, tui.TextAreaConfig) (string, error) {
	return "", errors.New("no textarea scripted")
}

func (d *scriptedDriver) Info(context.Context, string) error {
	return nil
}

func withEditDriver(t *testing.T, driver tui.PromptDriver) {
	t.Helper()
	previous := editDriver
	editDriver = driver
	t.Cleanup(func() { editDriver = previous })
}

func TestEditPrintsRows(t *testing.T) {
	// edit the only row, then done
	withEditDriver(t, &scriptedDriver{selects: []int{1, 3}, inputs: []string{"salt", "to taste"}})

	out, err := run(t, "edit", "tip", "--format", "form")
	require.NoError(t, err)
	require.Equal(t, "item_details=to+taste&item_name=salt", out)
}

func TestEditAbortIsNotAnError(t *testing.T) {
	withEditDriver(t, &scriptedDriver{err: tui.ErrAborted})

	out, err := run(t, "edit", "tip")
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestEditRejectsUnknownFormat(t *testing.T) {
	_, err := run(t, "edit", "tip", "--format", "xml")
	require.ErrorContains(t, err, "unknown format")
}

func TestRenderExampleLayout(t *testing.T) {
	layouts := filepath.Join("..", "..", "examples", "layouts", "pantry.yaml")
	out, err := run(t, "render", "shopping", "--layouts", layouts)
	require.NoError(t, err)
	require.Contains(t, out, `id="groceries-container"`)
	require.Contains(t, out, "olive oil")
	require.Contains(t, out, `id="add-grocery"`)
}
