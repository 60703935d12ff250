package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/blog_go_server/internal/repository"
	"github.com/qs3c/blog_go_server/internal/service"
	"github.com/qs3c/blog_go_server/internal/testutil"
)

func setupTagHandler(t *testing.T) (*TagHandler, *testContext, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	tagService := service.NewTagService(
		repository.NewTagRepository(db),
		repository.NewArticleRepository(db),
		nil,
		time.Minute,
	)
	h := NewTagHandler(tagService)

	ctx := &testContext{DB: db}
	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return h, ctx, cleanup
}

func TestTagHandler_List(t *testing.T) {
	h, ctx, cleanup := setupTagHandler(t)
	defer cleanup()

	testutil.TestTag(t, ctx.DB, "golang", 5)
	testutil.TestTag(t, ctx.DB, "web", 2)
	testutil.TestTag(t, ctx.DB, "unused", 0)

	router := gin.New()
	router.GET("/tags", h.List)

	req := httptest.NewRequest("GET", "/tags", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	tags := body["tags"].([]interface{})
	require.Len(t, tags, 2)
	assert.Equal(t, "golang", tags[0])
	assert.Equal(t, "web", tags[1])
}

func TestTagHandler_Search(t *testing.T) {
	h, ctx, cleanup := setupTagHandler(t)
	defer cleanup()

	testutil.TestTag(t, ctx.DB, "golang", 3)
	testutil.TestTag(t, ctx.DB, "go-kit", 1)
	testutil.TestTag(t, ctx.DB, "python", 4)

	router := gin.New()
	router.GET("/tags/search", h.Search)

	req := httptest.NewRequest("GET", "/tags/search?q=go", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	tags := body["tags"].([]interface{})
	assert.Len(t, tags, 2)
}
