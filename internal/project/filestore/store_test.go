package filestore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileStore_Open(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.js", "const x = 1;\n")

	s := New(WithLanguageFunc(func(p string) string { return filepath.Ext(p)[1:] }))
	doc, err := s.Open(path, true)
	require.NoError(t, err)

	assert.Equal(t, path, doc.Path)
	assert.Equal(t, "main.js", doc.Name)
	assert.Equal(t, "const x = 1;\n", doc.Content)
	assert.Equal(t, "js", doc.Language)
	assert.Equal(t, int64(1), doc.Version)
	assert.False(t, doc.Repaired)
	assert.False(t, doc.IsDirty())

	active, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, path, active.Path)
}

func TestFileStore_OpenTwiceKeepsEdits(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.css", "a{}")

	s := New()
	_, err := s.Open(path, false)
	require.NoError(t, err)
	_, err = s.Update(path, "b{}")
	require.NoError(t, err)

	doc, err := s.Open(path, false)
	require.NoError(t, err)
	assert.Equal(t, "b{}", doc.Content)
	assert.Equal(t, 1, s.Count())
}

func TestFileStore_OpenLossy(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.txt", "a\xffb")

	doc, err := New().Open(path, false)
	require.NoError(t, err)
	assert.Equal(t, "a�b", doc.Content)
	assert.True(t, doc.Repaired)
	assert.False(t, doc.IsDirty())
}

func TestFileStore_OpenErrors(t *testing.T) {
	dir := t.TempDir()
	s := New(WithMaxFileSize(4))

	_, err := s.Open(dir, false)
	assert.ErrorIs(t, err, ErrIsDirectory)

	big := writeFile(t, dir, "big.js", "0123456789")
	_, err = s.Open(big, false)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = s.Open(filepath.Join(dir, "missing.js"), false)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var pe *PathError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "open", pe.Op)
	assert.Equal(t, 0, s.Count())
}

func TestFileStore_UpdateAndSave(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "x.ts", "let a;")

	s := New()
	var saved []string
	s.OnSave(func(doc Document) { saved = append(saved, doc.Name) })

	_, err := s.Open(path, true)
	require.NoError(t, err)

	doc, err := s.Update(path, "let b;")
	require.NoError(t, err)
	assert.Equal(t, int64(2), doc.Version)
	assert.True(t, doc.IsDirty())

	// Same content does not bump the version.
	doc, err = s.Update(path, "let b;")
	require.NoError(t, err)
	assert.Equal(t, int64(2), doc.Version)

	require.NoError(t, s.SaveActive())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "let b;", string(data))

	doc, ok := s.Get(path)
	require.True(t, ok)
	assert.False(t, doc.IsDirty())
	assert.Equal(t, []string{"x.ts"}, saved)
}

func TestFileStore_NotOpen(t *testing.T) {
	s := New()
	path := filepath.Join(t.TempDir(), "nope.js")

	_, err := s.Update(path, "x")
	assert.ErrorIs(t, err, ErrDocumentNotOpen)
	assert.ErrorIs(t, s.Save(path), ErrDocumentNotOpen)
	assert.ErrorIs(t, s.SetActive(path), ErrDocumentNotOpen)
	assert.ErrorIs(t, s.Close(path), ErrDocumentNotOpen)
	assert.ErrorIs(t, s.SaveActive(), ErrNoActiveDocument)

	_, ok := s.Active()
	assert.False(t, ok)
	assert.Nil(t, s.ActiveComponents())
}

func TestFileStore_Reload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "r.js", "one")

	s := New()
	_, err := s.Open(path, false)
	require.NoError(t, err)
	_, err = s.Update(path, "edited")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("two"), 0o644))
	doc, err := s.Reload(path)
	require.NoError(t, err)
	assert.Equal(t, "two", doc.Content)
	assert.False(t, doc.IsDirty())
}

func TestFileStore_DocumentsOrderAndClose(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.js", "a")
	b := writeFile(t, dir, "b.js", "b")
	c := writeFile(t, dir, "c.js", "c")

	s := New()
	var opened []string
	s.OnOpen(func(doc Document) { opened = append(opened, doc.Name) })

	for _, p := range []string{c, a, b} {
		_, err := s.Open(p, true)
		require.NoError(t, err)
	}
	_, err := s.Open(a, false)
	require.NoError(t, err)

	names := func() []string {
		var out []string
		for _, d := range s.Documents() {
			out = append(out, d.Name)
		}
		return out
	}
	assert.Equal(t, []string{"c.js", "a.js", "b.js"}, names())
	assert.Equal(t, []string{"c.js", "a.js", "b.js"}, opened)

	require.NoError(t, s.SetActive(a))
	require.NoError(t, s.Close(a))
	assert.Equal(t, []string{"c.js", "b.js"}, names())

	active, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, "c.js", active.Name)

	require.NoError(t, s.Close(c))
	active, ok = s.Active()
	require.True(t, ok)
	assert.Equal(t, "b.js", active.Name)

	require.NoError(t, s.Close(b))
	_, ok = s.Active()
	assert.False(t, ok)
}

func TestFileStore_ActiveComponents(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "src/app.js", "")

	s := New()
	_, err := s.Open(path, true)
	require.NoError(t, err)

	comps := s.ActiveComponents()
	require.NotEmpty(t, comps)
	last := comps[len(comps)-1]
	assert.Equal(t, "app.js", last.Name)
	assert.Equal(t, path, last.Path)
	assert.Equal(t, "src", comps[len(comps)-2].Name)
}

func TestListDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.js", "bb")
	writeFile(t, dir, "A.css", "a")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "zeta"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "alpha"), 0o755))

	entries, err := ListDir(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"alpha", "zeta", "A.css", "b.js"}, names)
	assert.True(t, entries[0].IsDir)
	assert.Equal(t, int64(2), entries[3].Size)

	_, err = ListDir(filepath.Join(dir, "b.js"))
	assert.ErrorIs(t, err, ErrNotDirectory)

	_, err = ListDir(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
