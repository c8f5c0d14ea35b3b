package organize_test

import (
	"os"
	"path/filepath"
	"testing"

	"cull/internal/config"
	"cull/internal/errors"
	"cull/internal/organize"
	"cull/pkg/testutils"
	"cull/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicFileMove(t *testing.T) {
	tmpDir := t.TempDir()
	badDir := filepath.Join(tmpDir, "bad")

	t.Run("move single file", func(t *testing.T) {
		srcFile := filepath.Join(tmpDir, "single_move.JPG")
		testutils.CreateTestFilesWithContent(t, tmpDir, map[string]string{"single_move.JPG": "x"})

		destFile := filepath.Join(badDir, "single_move.JPG")
		final, err := organize.New().MoveFile(srcFile, destFile)
		require.NoError(t, err, "MoveFile should succeed")
		assert.Equal(t, destFile, final)

		testutils.AssertMissing(t, srcFile)
		testutils.AssertExists(t, destFile)
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := organize.New().MoveFile(filepath.Join(tmpDir, "nope.JPG"), filepath.Join(badDir, "nope.JPG"))
		require.Error(t, err)
		assert.True(t, errors.IsFileNotFound(err))
	})

	t.Run("same path is a no-op", func(t *testing.T) {
		p := filepath.Join(tmpDir, "same.JPG")
		testutils.CreateTestFilesWithContent(t, tmpDir, map[string]string{"same.JPG": "x"})
		final, err := organize.New().MoveFile(p, p)
		require.NoError(t, err)
		assert.Empty(t, final)
		testutils.AssertExists(t, p)
	})

	t.Run("directory source", func(t *testing.T) {
		sub := filepath.Join(tmpDir, "subdir")
		require.NoError(t, os.Mkdir(sub, 0755))
		_, err := organize.New().MoveFile(sub, filepath.Join(badDir, "subdir"))
		require.Error(t, err)
		assert.Equal(t, errors.InvalidPath, errors.KindOf(err))
	})
}

func TestCollisionStrategies(t *testing.T) {
	tests := []struct {
		name      string
		strategy  string
		wantFinal string
		wantBody  string
	}{
		{"overwrite", config.CollisionOverwrite, "a.JPG", "new"},
		{"rename", config.CollisionRename, "a_(1).JPG", "old"},
		{"skip", config.CollisionSkip, "", "old"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			badDir := filepath.Join(dir, "bad")
			require.NoError(t, os.Mkdir(badDir, 0755))
			testutils.CreateTestFilesWithContent(t, dir, map[string]string{"a.JPG": "new"})
			testutils.CreateTestFilesWithContent(t, badDir, map[string]string{"a.JPG": "old"})

			e := organize.New()
			e.SetCollision(tt.strategy)
			final, err := e.MoveFile(filepath.Join(dir, "a.JPG"), filepath.Join(badDir, "a.JPG"))
			require.NoError(t, err)

			if tt.wantFinal == "" {
				assert.Empty(t, final)
				testutils.AssertExists(t, filepath.Join(dir, "a.JPG"))
			} else {
				assert.Equal(t, filepath.Join(badDir, tt.wantFinal), final)
				testutils.AssertMissing(t, filepath.Join(dir, "a.JPG"))
			}

			data, err := os.ReadFile(filepath.Join(badDir, "a.JPG"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, string(data))
		})
	}

	t.Run("unknown strategy", func(t *testing.T) {
		dir := t.TempDir()
		testutils.CreateTestFilesWithContent(t, dir, map[string]string{"a.JPG": "new", "b.JPG": "old"})
		e := organize.New()
		e.SetCollision("ask")
		_, err := e.MoveFile(filepath.Join(dir, "a.JPG"), filepath.Join(dir, "b.JPG"))
		require.Error(t, err)
		assert.True(t, errors.IsInvalidConfig(err))
	})
}

func TestDryRun(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateShoot(t, dir, []string{"DSC0001"}, "DSC0001")

	cfg := config.New()
	cfg.Triage.DryRun = true
	e := organize.NewWithConfig(cfg)
	assert.True(t, e.IsDryRun())

	toggled := organize.New()
	assert.False(t, toggled.IsDryRun())
	toggled.SetDryRun(true)
	assert.True(t, toggled.IsDryRun())

	badDir := filepath.Join(dir, "bad")
	results, err := e.MoveSidecars(filepath.Join(dir, "DSC0001.JPG"), []string{"JPG", "ARW"}, badDir)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.False(t, r.Moved)
	}

	testutils.AssertExists(t, filepath.Join(dir, "DSC0001.JPG"))
	testutils.AssertExists(t, filepath.Join(dir, "DSC0001.ARW"))
	testutils.AssertMissing(t, badDir)
}

func TestSidecarPaths(t *testing.T) {
	got := organize.SidecarPaths("/shoot/DSC0001.JPG", []string{"JPG", "arw"})
	assert.Equal(t, []string{
		"/shoot/DSC0001.JPG",
		"/shoot/DSC0001.jpg",
		"/shoot/DSC0001.arw",
		"/shoot/DSC0001.ARW",
	}, got)
}

func TestMoveSidecars(t *testing.T) {
	t.Run("moves image and raw", func(t *testing.T) {
		dir := t.TempDir()
		paths := testutils.CreateShoot(t, dir, []string{"DSC0001", "DSC0002"}, "DSC0001")
		badDir := filepath.Join(dir, "bad")

		results, err := organize.New().MoveSidecars(paths[0], []string{"JPG", "ARW"}, badDir)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.True(t, results[0].Moved)
		assert.True(t, results[1].Moved)

		testutils.AssertExists(t, filepath.Join(badDir, "DSC0001.JPG"))
		testutils.AssertExists(t, filepath.Join(badDir, "DSC0001.ARW"))
		testutils.AssertMissing(t, paths[0])
		testutils.AssertExists(t, paths[1])
	})

	t.Run("missing raw is skipped", func(t *testing.T) {
		dir := t.TempDir()
		paths := testutils.CreateShoot(t, dir, []string{"DSC0002"})
		badDir := filepath.Join(dir, "bad")

		results, err := organize.New().MoveSidecars(paths[0], []string{"ARW"}, badDir)
		require.NoError(t, err)
		assert.Empty(t, results)
		testutils.AssertExists(t, paths[0])
		testutils.AssertMissing(t, badDir)
	})
}

func TestRestore(t *testing.T) {
	dir := t.TempDir()
	paths := testutils.CreateShoot(t, dir, []string{"DSC0001"}, "DSC0001")
	badDir := filepath.Join(dir, "bad")
	e := organize.New()

	results, err := e.MoveSidecars(paths[0], []string{"JPG", "ARW"}, badDir)
	require.NoError(t, err)

	require.NoError(t, e.Restore(results))
	testutils.AssertExists(t, paths[0])
	testutils.AssertExists(t, filepath.Join(dir, "DSC0001.ARW"))
	testutils.AssertMissing(t, filepath.Join(badDir, "DSC0001.JPG"))

	t.Run("refuses to overwrite", func(t *testing.T) {
		results, err := e.MoveSidecars(paths[0], []string{"JPG"}, badDir)
		require.NoError(t, err)
		testutils.CreateTestFilesWithContent(t, dir, map[string]string{"DSC0001.JPG": "newer"})

		err = e.Restore(results)
		require.Error(t, err)
		testutils.AssertExists(t, filepath.Join(badDir, "DSC0001.JPG"))
	})

	t.Run("collision on a later file restores nothing", func(t *testing.T) {
		results, err := e.MoveSidecars(paths[0], []string{"JPG", "ARW"}, badDir)
		require.NoError(t, err)
		require.Len(t, results, 2)
		testutils.CreateTestFilesWithContent(t, dir, map[string]string{"DSC0001.ARW": "new raw"})

		err = e.Restore(results)
		require.Error(t, err)
		assert.Equal(t, errors.FileOperationFailed, errors.KindOf(err))
		testutils.AssertMissing(t, paths[0])
		testutils.AssertExists(t, filepath.Join(badDir, "DSC0001.JPG"))
		testutils.AssertExists(t, filepath.Join(badDir, "DSC0001.ARW"))

		// Once the path is free again the same results restore cleanly
		require.NoError(t, os.Remove(filepath.Join(dir, "DSC0001.ARW")))
		require.NoError(t, e.Restore(results))
		testutils.AssertExists(t, paths[0])
		testutils.AssertExists(t, filepath.Join(dir, "DSC0001.ARW"))
	})

	t.Run("failed rename returns earlier files to the bad folder", func(t *testing.T) {
		results, err := e.MoveSidecars(paths[0], []string{"JPG", "ARW"}, badDir)
		require.NoError(t, err)
		require.NoError(t, os.Remove(filepath.Join(badDir, "DSC0001.ARW")))

		require.Error(t, e.Restore(results))
		testutils.AssertMissing(t, paths[0])
		testutils.AssertExists(t, filepath.Join(badDir, "DSC0001.JPG"))
	})

	t.Run("skips unmoved results", func(t *testing.T) {
		assert.NoError(t, e.Restore([]types.MoveResult{{SourcePath: "/nope", DestinationPath: "/also-nope"}}))
	})
}
