package fscrawl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalk_FiltersByExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "resume.pdf", "pdf bytes")
	writeFile(t, root, "notes.txt", "text")
	writeFile(t, root, "image.png", "png bytes")
	writeFile(t, root, "sub/cv.docx", "docx bytes")

	var paths []string
	err := Walk(root, []string{".pdf", ".docx", ".txt"}, func(c Candidate) error {
		paths = append(paths, filepath.Base(c.Path))
		return nil
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"resume.pdf", "notes.txt", "cv.docx"}, paths)
}

func TestWalk_CandidateMetadata(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "doc.txt", "hello world")

	var got Candidate
	err := Walk(root, []string{".txt"}, func(c Candidate) error {
		got = c
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, ".txt", got.Extension)
	assert.Equal(t, int64(len("hello world")), got.Size)
	assert.Greater(t, got.ModTime, int64(0))
}

func TestWalk_SymlinkCycleTerminates(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	writeFile(t, root, "sub/doc.txt", "content")

	// sub/loop -> root creates a cycle
	require.NoError(t, os.Symlink(root, filepath.Join(sub, "loop")))

	count := 0
	err := Walk(root, []string{".txt"}, func(Candidate) error {
		count++
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 1, count)
}

func TestWalk_NonexistentRoot(t *testing.T) {
	err := Walk("/no/such/root", []string{".txt"}, func(Candidate) error { return nil })

	var walkErr *WalkError
	require.ErrorAs(t, err, &walkErr)
}

func TestWalk_CallbackErrorAborts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "a")
	writeFile(t, root, "b.txt", "b")

	calls := 0
	err := Walk(root, []string{".txt"}, func(Candidate) error {
		calls++
		return os.ErrClosed
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
