package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/blog_go_server/internal/model"
	"github.com/qs3c/blog_go_server/internal/testutil"
)

func TestCommentRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCommentRepository(db)
	user := testutil.TestUser(t, db)
	article := testutil.TestArticle(t, db, user)

	comment := &model.Comment{
		Body:        "first!",
		AuthorID:    user.ID,
		AuthorName:  user.Username,
		ArticleID:   article.ID,
		Level:       1,
		ReplyList:   model.Int64Array{},
	}
	require.NoError(t, repo.Create(comment))
	assert.NotZero(t, comment.ID)

	got, err := repo.GetByID(comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "first!", got.Body)
	assert.Equal(t, 1, got.Level)
	assert.Empty(t, got.ReplyList)
}

func TestCommentRepository_UpdateReplyList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCommentRepository(db)
	user := testutil.TestUser(t, db)
	article := testutil.TestArticle(t, db, user)
	comment := testutil.TestComment(t, db, user, article, "root")

	require.NoError(t, repo.UpdateReplyList(comment.ID, model.Int64Array{10, 11}))

	got, err := repo.GetByID(comment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Int64Array{10, 11}, got.ReplyList)
}

func TestCommentRepository_ListRootsByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCommentRepository(db)
	user := testutil.TestUser(t, db)
	article := testutil.TestArticle(t, db, user)

	root1 := testutil.TestComment(t, db, user, article, "root 1")
	reply := testutil.TestReply(t, db, user, article, root1, "a reply")
	root2 := testutil.TestComment(t, db, user, article, "root 2")

	candidates := []int64{root1.ID, reply.ID, root2.ID}

	t.Run("returns only level-1 comments", func(t *testing.T) {
		roots, err := repo.ListRootsByIDs(candidates, 0, 10)
		require.NoError(t, err)
		require.Len(t, roots, 2)
		assert.Equal(t, root1.ID, roots[0].ID)
		assert.Equal(t, root2.ID, roots[1].ID)
	})

	t.Run("pagination", func(t *testing.T) {
		roots, err := repo.ListRootsByIDs(candidates, 1, 10)
		require.NoError(t, err)
		require.Len(t, roots, 1)
		assert.Equal(t, root2.ID, roots[0].ID)
	})

	t.Run("count roots", func(t *testing.T) {
		count, err := repo.CountRootsByIDs(candidates)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("empty candidates", func(t *testing.T) {
		roots, err := repo.ListRootsByIDs(nil, 0, 10)
		require.NoError(t, err)
		assert.Empty(t, roots)

		count, err := repo.CountRootsByIDs(nil)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestCommentRepository_ListByIDs_Ordering(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCommentRepository(db)
	user := testutil.TestUser(t, db)
	article := testutil.TestArticle(t, db, user)

	c1 := testutil.TestComment(t, db, user, article, "oldest")
	c2 := testutil.TestComment(t, db, user, article, "newest")

	// 顺序与传入 ID 顺序无关，按创建时间升序
	comments, err := repo.ListByIDs([]int64{c2.ID, c1.ID})
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, c1.ID, comments[0].ID)
	assert.Equal(t, c2.ID, comments[1].ID)
}

func TestCommentRepository_DeleteByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCommentRepository(db)
	user := testutil.TestUser(t, db)
	article := testutil.TestArticle(t, db, user)

	c1 := testutil.TestComment(t, db, user, article, "one")
	c2 := testutil.TestComment(t, db, user, article, "two")
	c3 := testutil.TestComment(t, db, user, article, "three")

	deleted, err := repo.DeleteByIDs([]int64{c1.ID, c2.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, err = repo.GetByID(c1.ID)
	assert.Error(t, err)

	got, err := repo.GetByID(c3.ID)
	require.NoError(t, err)
	assert.Equal(t, "three", got.Body)

	deleted, err = repo.DeleteByIDs(nil)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestCommentRepository_DeleteByArticleID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCommentRepository(db)
	user := testutil.TestUser(t, db)
	article := testutil.TestArticle(t, db, user)
	other := testutil.TestArticle(t, db, user)

	testutil.TestComment(t, db, user, article, "one")
	testutil.TestComment(t, db, user, article, "two")
	kept := testutil.TestComment(t, db, user, other, "kept")

	deleted, err := repo.DeleteByArticleID(article.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	got, err := repo.GetByID(kept.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Body)
}
