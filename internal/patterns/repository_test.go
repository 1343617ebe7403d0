package patterns

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRepository_Builtin(t *testing.T) {
	repo, err := NewRepositoryFromFile("", nil)
	require.NoError(t, err)
	require.NotNil(t, repo.Current())
	assert.Equal(t, DefaultVersion, repo.Current().Version)
	assert.True(t, repo.Current().IsCompiled())
	assert.Empty(t, repo.Path())
	assert.Error(t, repo.Reload())
	assert.Error(t, repo.Watch())
}

func TestRepository_ReplaceKeepsPreviousOnError(t *testing.T) {
	repo, err := NewRepository(DefaultSet(), nil)
	require.NoError(t, err)
	before := repo.Current()

	bad := &Set{Version: "bad", Patterns: map[string][]Pattern{"A": {{Text: "[", Regex: true, Confidence: 0.5}}}}
	require.Error(t, repo.Replace(bad))
	assert.Same(t, before, repo.Current())

	var seen string
	repo.SetOnChange(func(s *Set) { seen = s.Version })
	next := DefaultSet()
	next.Version = "v2"
	require.NoError(t, repo.Replace(next))
	assert.Equal(t, "v2", repo.Current().Version)
	assert.Equal(t, "v2", seen)
}

func TestRepository_ReplaceLeavesCallerSetUntouched(t *testing.T) {
	repo, err := NewRepository(DefaultSet(), nil)
	require.NoError(t, err)

	held := DefaultSet()
	held.Version = "held"
	require.NoError(t, repo.Replace(held))

	assert.False(t, held.IsCompiled(), "caller's set must not be compiled in place")
	assert.NotSame(t, held, repo.Current())
	assert.True(t, repo.Current().IsCompiled())
	assert.Equal(t, "held", repo.Current().Version)

	assert.Error(t, repo.Replace(nil))
	assert.Equal(t, "held", repo.Current().Version)
}

func TestRepository_ConcurrentReloadAndSetOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, WriteFile(path, DefaultSet()))

	repo, err := NewRepositoryFromFile(path, nil)
	require.NoError(t, err)

	shared := DefaultSet()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Reload())
		}()
		go func() {
			defer wg.Done()
			repo.SetOnChange(func(*Set) {})
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Replace(shared))
		}()
	}
	wg.Wait()

	require.NotNil(t, repo.Current())
	assert.True(t, repo.Current().IsCompiled())
}

func TestWriteFileAndLoadFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.yaml")

	orig := DefaultSet()
	orig.Version = "roundtrip"
	require.NoError(t, WriteFile(path, orig))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "roundtrip", loaded.Version)
	assert.Equal(t, orig.Sections, loaded.Sections)
	assert.Equal(t, orig.Patterns[SectionSymptoms], loaded.Patterns[SectionSymptoms])
	assert.Equal(t, orig.Context[SectionRecommendations], loaded.Context[SectionRecommendations])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should have been renamed away")
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("version: [unclosed"))
	assert.Error(t, err)

	_, err = Parse([]byte("version: x\npatterns:\n  A:\n    - text: a\n      confidence: 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 0 and 1")

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRepository_ReloadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	first := DefaultSet()
	first.Version = "first"
	require.NoError(t, WriteFile(path, first))

	repo, err := NewRepositoryFromFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "first", repo.Current().Version)
	assert.Equal(t, path, repo.Path())

	second := DefaultSet()
	second.Version = "second"
	require.NoError(t, WriteFile(path, second))
	require.NoError(t, repo.Reload())
	assert.Equal(t, "second", repo.Current().Version)

	require.NoError(t, os.WriteFile(path, []byte("version: broken\npatterns: {}\n"), 0o600))
	assert.Error(t, repo.Reload())
	assert.Equal(t, "second", repo.Current().Version)
}

func TestRepository_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, WriteFile(path, DefaultSet()))

	repo, err := NewRepositoryFromFile(path, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Watch())
	defer repo.StopWatch()

	next := DefaultSet()
	next.Version = "watched"
	require.NoError(t, WriteFile(path, next))

	assert.Eventually(t, func() bool {
		return repo.Current().Version == "watched"
	}, 5*time.Second, 20*time.Millisecond)
}
