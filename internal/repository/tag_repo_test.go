package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/blog_go_server/internal/testutil"
)

func TestTagRepository_IncrementCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTagRepository(db)

	t.Run("creates tag on first increment", func(t *testing.T) {
		require.NoError(t, repo.IncrementCount("golang", 1))

		tag, err := repo.GetByName("golang")
		require.NoError(t, err)
		assert.Equal(t, 1, tag.Count)
	})

	t.Run("increments existing tag", func(t *testing.T) {
		require.NoError(t, repo.IncrementCount("golang", 1))

		tag, err := repo.GetByName("golang")
		require.NoError(t, err)
		assert.Equal(t, 2, tag.Count)
	})

	t.Run("decrement does not create", func(t *testing.T) {
		require.NoError(t, repo.IncrementCount("missing", -1))

		_, err := repo.GetByName("missing")
		assert.Error(t, err)
	})
}

func TestTagRepository_ListActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTagRepository(db)
	testutil.TestTag(t, db, "golang", 5)
	testutil.TestTag(t, db, "web", 2)
	testutil.TestTag(t, db, "retired", 0)

	tags, err := repo.ListActive()
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "golang", tags[0].Name)
	assert.Equal(t, "web", tags[1].Name)
}

func TestTagRepository_Search(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTagRepository(db)
	testutil.TestTag(t, db, "golang", 3)
	testutil.TestTag(t, db, "go-redis", 1)
	testutil.TestTag(t, db, "rust", 2)

	tags, err := repo.Search("go", 10)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "golang", tags[0].Name)
}

func TestTagRepository_ReplaceAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTagRepository(db)
	testutil.TestTag(t, db, "stale", 7)

	require.NoError(t, repo.ReplaceAll(map[string]int{
		"golang": 3,
		"web":    1,
		"gone":   0,
	}))

	tags, err := repo.ListActive()
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "golang", tags[0].Name)
	assert.Equal(t, 3, tags[0].Count)

	_, err = repo.GetByName("stale")
	assert.Error(t, err)
}
