package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/slicer/internal/domain"
	slicererrors "github.com/mrz1836/slicer/internal/errors"
	"github.com/mrz1836/slicer/internal/testutil"
)

func readFile(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestApply_UpsertAndDelete(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "existing.txt", "old")
	testutil.WriteFile(t, dir, "remove.txt", "bye")

	touched, err := Apply(dir, domain.ChangeSet{
		Summary: "mixed",
		Changes: []domain.Change{
			{Path: "./existing.txt", Action: domain.ActionUpsert, Content: "new"},
			{Path: "pkg/deep/new.go", Action: "UPSERT", Content: "package deep\n"},
			{Path: "remove.txt", Action: domain.ActionDelete},
			{Path: "never-existed.txt", Action: domain.ActionDelete},
			{Path: "existing.txt", Action: domain.ActionUpsert, Content: "newest"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"existing.txt", "pkg/deep/new.go", "remove.txt", "never-existed.txt"}, touched)
	assert.Equal(t, "newest", readFile(t, dir, "existing.txt"))
	assert.Equal(t, "package deep\n", readFile(t, dir, "pkg/deep/new.go"))
	assert.NoFileExists(t, filepath.Join(dir, "remove.txt"))
}

func TestApply_EmptyContentUpsertCreatesEmptyFile(t *testing.T) {
	dir := t.TempDir()

	_, err := Apply(dir, domain.ChangeSet{Changes: []domain.Change{{Path: "empty.txt", Action: domain.ActionUpsert}}})
	require.NoError(t, err)
	assert.Empty(t, readFile(t, dir, "empty.txt"))
}

func TestApply_ValidatesEverythingBeforeWriting(t *testing.T) {
	tests := []struct {
		name    string
		bad     domain.Change
		wantErr error
	}{
		{"absolute path", domain.Change{Path: "/etc/passwd", Action: domain.ActionUpsert, Content: "x"}, slicererrors.ErrUnsafePath},
		{"parent escape", domain.Change{Path: "a/../../b", Action: domain.ActionUpsert, Content: "x"}, slicererrors.ErrUnsafePath},
		{"empty path", domain.Change{Path: "  ", Action: domain.ActionDelete}, slicererrors.ErrUnsafePath},
		{"unknown action", domain.Change{Path: "x.txt", Action: "rename"}, slicererrors.ErrApply},
		{"delete directory", domain.Change{Path: "adir", Action: domain.ActionDelete}, slicererrors.ErrApply},
		{"upsert over directory", domain.Change{Path: "adir", Action: domain.ActionUpsert, Content: "x"}, slicererrors.ErrApply},
		{"file as parent", domain.Change{Path: "plain.txt/child.txt", Action: domain.ActionUpsert, Content: "x"}, slicererrors.ErrApply},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.Mkdir(filepath.Join(dir, "adir"), 0o750))
			testutil.WriteFile(t, dir, "plain.txt", "p")

			touched, err := Apply(dir, domain.ChangeSet{Changes: []domain.Change{
				{Path: "first.txt", Action: domain.ActionUpsert, Content: "should not be written"},
				tc.bad,
			}})

			require.ErrorIs(t, err, tc.wantErr)
			require.ErrorIs(t, err, slicererrors.ErrApply)
			assert.Nil(t, touched)
			assert.NoFileExists(t, filepath.Join(dir, "first.txt"))
			assert.DirExists(t, filepath.Join(dir, "adir"))
		})
	}
}

func TestApply_RejectsConflictsWithinChangeSet(t *testing.T) {
	tests := []struct {
		name    string
		changes []domain.Change
	}{
		{"file then nested file", []domain.Change{
			{Path: "a", Action: domain.ActionUpsert, Content: "x"},
			{Path: "a/b", Action: domain.ActionUpsert, Content: "y"},
		}},
		{"nested file then file over its directory", []domain.Change{
			{Path: "a/b/c.txt", Action: domain.ActionUpsert, Content: "x"},
			{Path: "a/b", Action: domain.ActionUpsert, Content: "y"},
		}},
		{"nested file then delete of its directory", []domain.Change{
			{Path: "a/b.txt", Action: domain.ActionUpsert, Content: "x"},
			{Path: "a", Action: domain.ActionDelete},
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()

			touched, err := Apply(dir, domain.ChangeSet{Changes: tc.changes})

			require.ErrorIs(t, err, slicererrors.ErrApply)
			assert.Contains(t, err.Error(), "change 2")
			assert.Nil(t, touched)
			assert.NoFileExists(t, filepath.Join(dir, "a"))
			assert.NoDirExists(t, filepath.Join(dir, "a"))
		})
	}
}

func TestApply_DeleteThenNestUnderSamePath(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "a", "old file")

	touched, err := Apply(dir, domain.ChangeSet{Changes: []domain.Change{
		{Path: "a", Action: domain.ActionDelete},
		{Path: "a/b.txt", Action: domain.ActionUpsert, Content: "nested"},
		{Path: "a/b.txt/gone", Action: domain.ActionDelete},
	}})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a/b.txt", "a/b.txt/gone"}, touched)
	assert.Equal(t, "nested", readFile(t, dir, "a/b.txt"))
}

func TestApply_RejectsSymlinkEscape(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(dir, "link")))

	_, err := Apply(dir, domain.ChangeSet{Changes: []domain.Change{
		{Path: "link/pwned.txt", Action: domain.ActionUpsert, Content: "x"},
	}})
	require.ErrorIs(t, err, slicererrors.ErrUnsafePath)
	assert.NoFileExists(t, filepath.Join(outside, "pwned.txt"))
}

func TestApply_EmptyChangeSet(t *testing.T) {
	touched, err := Apply(t.TempDir(), domain.ChangeSet{})
	require.NoError(t, err)
	assert.Empty(t, touched)
}
