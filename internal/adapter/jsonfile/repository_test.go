package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aegis/userkit/internal/domain"
	"github.com/aegis/userkit/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*Repository, string) {
	path := filepath.Join(t.TempDir(), "data", "users.json")
	repo, err := New(path)
	require.NoError(t, err)
	return repo, path
}

func TestCreate_AssignsIDs(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	a := domain.NewUser("A", "a@example.com")
	b := domain.NewUser("B", "b@example.com")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))
	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 2, b.ID)
}

func TestCreate_ExplicitIDConflict(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{ID: 5, Name: "X", Email: "x@y"}))
	err := repo.Create(ctx, &domain.User{ID: 5, Name: "Y", Email: "y@z"})
	assert.ErrorIs(t, err, port.ErrAlreadyExists)

	next := domain.NewUser("N", "n@example.com")
	require.NoError(t, repo.Create(ctx, next))
	assert.Equal(t, 6, next.ID)
}

func TestCreate_DoesNotValidate(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	u := domain.NewUser("", "")
	require.NoError(t, repo.Create(ctx, u))
	got, err := repo.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsValid())
}

func TestPersistence(t *testing.T) {
	repo, path := newRepo(t)
	ctx := context.Background()

	u := domain.NewUser("Admin", "admin@example.com")
	u.SetPassword("secret123")
	require.NoError(t, repo.Create(ctx, u))
	v1 := repo.Version()
	assert.NotEmpty(t, v1)

	require.NoError(t, repo.SetPassword(ctx, u.ID, "changed"))
	assert.NotEqual(t, v1, repo.Version())

	reopened, err := New(path)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Admin", got.Name)
	assert.Equal(t, "changed", got.Password)
	assert.Equal(t, repo.Version(), reopened.Version())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestGetMissing(t *testing.T) {
	repo, _ := newRepo(t)
	_, err := repo.Get(context.Background(), 42)
	assert.ErrorIs(t, err, port.ErrNotFound)
	assert.ErrorIs(t, repo.SetPassword(context.Background(), 42, "x"), port.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(context.Background(), 42), port.ErrNotFound)
}

func TestListAndDelete(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, repo.Create(ctx, domain.NewUser(name, name+"@example.com")))
	}
	require.NoError(t, repo.Delete(ctx, 2))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, 1, users[0].ID)
	assert.Equal(t, 3, users[1].ID)
}

func TestReturnedUserIsCopy(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	u := domain.NewUser("A", "a@example.com")
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.Get(ctx, u.ID)
	require.NoError(t, err)
	got.Name = "mutated"

	again, err := repo.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Name)
}

func TestNew_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))
	_, err := New(path)
	assert.Error(t, err)
}

// breakDataDir replaces the directory holding the data file with a regular
// file so every later write fails.
func breakDataDir(t *testing.T, path string) {
	dir := filepath.Dir(path)
	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, os.WriteFile(dir, []byte("x"), 0600))
}

func TestCreate_FailedWriteLeavesNoTrace(t *testing.T) {
	repo, path := newRepo(t)
	ctx := context.Background()
	breakDataDir(t, path)

	u := domain.NewUser("A", "a@example.com")
	require.Error(t, repo.Create(ctx, u))
	assert.Equal(t, 0, u.ID)
	assert.Empty(t, repo.Version())

	_, err := repo.Get(ctx, 1)
	assert.ErrorIs(t, err, port.ErrNotFound)
	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Equal(t, 1, repo.nextID)
}

func TestSetPassword_FailedWriteKeepsOldValue(t *testing.T) {
	repo, path := newRepo(t)
	ctx := context.Background()
	u := domain.NewUser("A", "a@example.com")
	u.SetPassword("old")
	require.NoError(t, repo.Create(ctx, u))
	version := repo.Version()
	breakDataDir(t, path)

	require.Error(t, repo.SetPassword(ctx, u.ID, "new"))
	got, err := repo.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "old", got.Password)
	assert.Equal(t, version, repo.Version())
}

func TestDelete_FailedWriteKeepsUser(t *testing.T) {
	repo, path := newRepo(t)
	ctx := context.Background()
	u := domain.NewUser("A", "a@example.com")
	require.NoError(t, repo.Create(ctx, u))
	breakDataDir(t, path)

	require.Error(t, repo.Delete(ctx, u.ID))
	got, err := repo.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
}

func TestSave_KeepsBackupAndNoTempFiles(t *testing.T) {
	repo, path := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, domain.NewUser("A", "a@example.com")))
	require.NoError(t, repo.Create(ctx, domain.NewUser("B", "b@example.com")))

	_, err := os.Stat(path + backupSuffix)
	assert.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

func TestNew_RecoversFromBackup(t *testing.T) {
	repo, path := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, domain.NewUser("A", "a@example.com")))
	require.NoError(t, repo.Create(ctx, domain.NewUser("B", "b@example.com")))

	// torn write of the main file
	require.NoError(t, os.WriteFile(path, []byte(`{"users": [`), 0600))

	reopened, err := New(path)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
}

func TestNew_RecoversWhenMainFileMissing(t *testing.T) {
	repo, path := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, domain.NewUser("A", "a@example.com")))
	require.NoError(t, repo.Create(ctx, domain.NewUser("B", "b@example.com")))
	require.NoError(t, os.Remove(path))

	reopened, err := New(path)
	require.NoError(t, err)
	users, err := reopened.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
