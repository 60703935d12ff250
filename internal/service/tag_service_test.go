package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/blog_go_server/internal/repository"
	"github.com/qs3c/blog_go_server/internal/testutil"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return client, cleanup
}

func newTagService(db *gorm.DB, rdb *redis.Client) *TagService {
	return NewTagService(
		repository.NewTagRepository(db),
		repository.NewArticleRepository(db),
		rdb,
		time.Minute,
	)
}

func TestTagService_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	rdb, cleanup := setupTestRedis(t)
	defer cleanup()

	svc := newTagService(db, rdb)
	ctx := context.Background()

	testutil.TestTag(t, db, "golang", 5)
	testutil.TestTag(t, db, "web", 2)

	t.Run("ordered by count", func(t *testing.T) {
		tags, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, tags, 2)
		assert.Equal(t, "golang", tags[0].Name)
	})

	t.Run("served from cache", func(t *testing.T) {
		// 缓存命中时不回表
		testutil.TestTag(t, db, "fresh", 9)

		tags, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Len(t, tags, 2)
	})

	t.Run("invalidate drops cache", func(t *testing.T) {
		svc.Invalidate(ctx)

		tags, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Len(t, tags, 3)
		assert.Equal(t, "fresh", tags[0].Name)
	})
}

func TestTagService_List_WithoutRedis(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newTagService(db, nil)
	testutil.TestTag(t, db, "golang", 1)

	tags, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tags, 1)
}

func TestTagService_Reconcile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	rdb, cleanup := setupTestRedis(t)
	defer cleanup()

	svc := newTagService(db, rdb)
	ctx := context.Background()

	user := testutil.TestUser(t, db)
	testutil.TestArticle(t, db, user, testutil.WithTags("golang", "web"))
	testutil.TestArticle(t, db, user, testutil.WithTags("golang"))

	// 失真的计数
	testutil.TestTag(t, db, "golang", 99)
	testutil.TestTag(t, db, "stale", 4)

	require.NoError(t, svc.Reconcile(ctx))

	tags, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "golang", tags[0].Name)
	assert.Equal(t, 2, tags[0].Count)
	assert.Equal(t, "web", tags[1].Name)
	assert.Equal(t, 1, tags[1].Count)
}

func TestTagService_Search(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newTagService(db, nil)
	testutil.TestTag(t, db, "golang", 3)
	testutil.TestTag(t, db, "rust", 1)

	tags, err := svc.Search("go")
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "golang", tags[0].Name)
}
