package cas_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/redo/internal/adapters/cas"
	"go.trai.ch/redo/internal/core/domain"
)

func TestStore_UpsertAndLookup(t *testing.T) {
	store, err := cas.NewStore(filepath.Join(t.TempDir(), ".redo", "hashes.json"))
	require.NoError(t, err)

	got, err := store.Lookup("src/main.c")
	require.NoError(t, err)
	assert.Nil(t, got)

	rec := domain.FileRecord{Name: "src/main.c", Size: 12, Digest: "xxh64:abc"}
	require.NoError(t, store.Upsert("compile", []domain.FileRecord{rec}))

	got, err = store.Lookup("src/main.c")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec, *got)
}

func TestStore_LastWriteWins(t *testing.T) {
	store, err := cas.NewStore(filepath.Join(t.TempDir(), "hashes.json"))
	require.NoError(t, err)

	require.NoError(t, store.Upsert("gen", []domain.FileRecord{
		{Name: "a", Size: 1, Digest: "xxh64:1"},
		{Name: "a", Size: 2, Digest: "xxh64:2"},
	}))

	got, err := store.Lookup("a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(2), got.Size)
	assert.Equal(t, "xxh64:2", got.Digest)
}

func TestStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".redo", "hashes.json")

	store1, err := cas.NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store1.Upsert("compile", []domain.FileRecord{{Name: "lib.h", Size: 3, Digest: "xxh64:ff"}}))

	store2, err := cas.NewStore(path)
	require.NoError(t, err)

	got, err := store2.Lookup("lib.h")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "xxh64:ff", got.Digest)
	assert.Equal(t, 1, store2.Len())
}

func TestStore_Reset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hashes.json")
	store, err := cas.NewStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Upsert("gen", []domain.FileRecord{
		{Name: "a", Size: 1, Digest: "d1"},
		{Name: "b", Size: 1, Digest: "d2"},
	}))
	require.NoError(t, store.Reset([]string{"a", "missing"}))

	got, err := store.Lookup("a")
	require.NoError(t, err)
	assert.Nil(t, got)

	reopened, err := cas.NewStore(path)
	require.NoError(t, err)
	got, err = reopened.Lookup("b")
	require.NoError(t, err)
	assert.NotNil(t, got)
	got, err = reopened.Lookup("a")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_FailureMarker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hashes.json")
	store, err := cas.NewStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Upsert("link", []domain.FileRecord{{Name: "a.o", Size: 1, Digest: "d1"}}))
	require.NoError(t, store.MarkFailed("link"))
	require.NoError(t, store.MarkFailed("link"))

	reopened, err := cas.NewStore(path)
	require.NoError(t, err)
	failed, err := reopened.Failed("link")
	require.NoError(t, err)
	assert.True(t, failed)
	failed, err = reopened.Failed("compile")
	require.NoError(t, err)
	assert.False(t, failed)

	// A commit without records still clears the marker of its task.
	require.NoError(t, reopened.Upsert("link", nil))
	failed, err = reopened.Failed("link")
	require.NoError(t, err)
	assert.False(t, failed)

	reopened, err = cas.NewStore(path)
	require.NoError(t, err)
	failed, err = reopened.Failed("link")
	require.NoError(t, err)
	assert.False(t, failed)

	got, err := reopened.Lookup("a.o")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "d1", got.Digest)
}

func TestStore_CorruptFileFailsLoudly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hashes.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := cas.NewStore(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrStoreUnmarshalFailed.Error())
}

func TestStore_VersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hashes.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":99,"files":{}}`), 0o600))

	_, err := cas.NewStore(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrStoreVersionMismatch.Error())
}

func TestStore_EmptyFileIsEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hashes.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	store, err := cas.NewStore(path)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestStore_WriteFailureRollsBack(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	dir := filepath.Join(t.TempDir(), "state")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	store, err := cas.NewStore(filepath.Join(dir, "hashes.json"))
	require.NoError(t, err)

	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o750) })

	err = store.Upsert("gen", []domain.FileRecord{{Name: "a", Size: 1, Digest: "d"}})
	require.Error(t, err)

	got, err := store.Lookup("a")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOpener_SharesStorePerPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hashes.json")
	opener := cas.NewOpener()

	s1, err := opener.Open(path)
	require.NoError(t, err)
	s2, err := opener.Open(path + "/.")
	require.NoError(t, err)
	assert.Same(t, s1, s2)
}
