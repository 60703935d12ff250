package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/blog_go_server/internal/api/middleware"
	"github.com/qs3c/blog_go_server/internal/model/dto"
	"github.com/qs3c/blog_go_server/internal/repository"
	"github.com/qs3c/blog_go_server/internal/service"
	"github.com/qs3c/blog_go_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testContext struct {
	DB *gorm.DB
}

// mockAuth 测试用认证中间件，直接注入用户 ID
func mockAuth(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func jsonRequest(method, url string, payload interface{}) *http.Request {
	jsonBytes, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, url, bytes.NewBuffer(jsonBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func setupArticleHandler(t *testing.T) (*ArticleHandler, *testContext, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	articleService := service.NewArticleService(
		repository.NewArticleRepository(db),
		repository.NewCommentRepository(db),
		repository.NewUserRepository(db),
		repository.NewTagRepository(db),
		repository.NewInteractionRepository(db),
	)
	h := NewArticleHandler(articleService)

	ctx := &testContext{DB: db}
	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return h, ctx, cleanup
}

func TestArticleHandler_Create_Success(t *testing.T) {
	h, ctx, cleanup := setupArticleHandler(t)
	defer cleanup()

	author := testutil.TestUser(t, ctx.DB)

	router := gin.New()
	router.Use(mockAuth(author.ID))
	router.POST("/articles", h.Create)

	req := jsonRequest("POST", "/articles", dto.CreateArticleRequest{
		Title:       "Hello World",
		Description: "desc",
		Body:        "body",
		TagList:     []string{"golang"},
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	article := body["article"].(map[string]interface{})
	assert.Regexp(t, `^hello-world-\d+$`, article["slug"])
}

func TestArticleHandler_Create_MissingTitle(t *testing.T) {
	h, ctx, cleanup := setupArticleHandler(t)
	defer cleanup()

	author := testutil.TestUser(t, ctx.DB)

	router := gin.New()
	router.Use(mockAuth(author.ID))
	router.POST("/articles", h.Create)

	req := jsonRequest("POST", "/articles", dto.CreateArticleRequest{
		Description: "desc",
		Body:        "body",
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decodeBody(t, w)
	errs := body["errors"].(map[string]interface{})
	assert.Contains(t, errs, "title")
}

func TestArticleHandler_Create_Unauthorized(t *testing.T) {
	h, _, cleanup := setupArticleHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/articles", h.Create)

	req := jsonRequest("POST", "/articles", dto.CreateArticleRequest{Title: "t", Description: "d", Body: "b"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestArticleHandler_Get(t *testing.T) {
	h, ctx, cleanup := setupArticleHandler(t)
	defer cleanup()

	author := testutil.TestUser(t, ctx.DB)
	article := testutil.TestArticle(t, ctx.DB, author)

	router := gin.New()
	router.GET("/articles/:slug", h.Get)

	req := httptest.NewRequest("GET", "/articles/"+article.Slug, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	got := body["article"].(map[string]interface{})
	assert.Equal(t, article.Slug, got["slug"])
	assert.Equal(t, false, got["favorited"])
}

func TestArticleHandler_Get_NotFound(t *testing.T) {
	h, _, cleanup := setupArticleHandler(t)
	defer cleanup()

	router := gin.New()
	router.GET("/articles/:slug", h.Get)

	req := httptest.NewRequest("GET", "/articles/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.Contains(t, body, "message")
}

func TestArticleHandler_Update_Forbidden(t *testing.T) {
	h, ctx, cleanup := setupArticleHandler(t)
	defer cleanup()

	author := testutil.TestUser(t, ctx.DB)
	stranger := testutil.TestUser(t, ctx.DB)
	article := testutil.TestArticle(t, ctx.DB, author)

	router := gin.New()
	router.Use(mockAuth(stranger.ID))
	router.PUT("/articles/:slug", h.Update)

	req := jsonRequest("PUT", "/articles/"+article.Slug, dto.UpdateArticleRequest{Body: "hacked"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestArticleHandler_Delete(t *testing.T) {
	h, ctx, cleanup := setupArticleHandler(t)
	defer cleanup()

	author := testutil.TestUser(t, ctx.DB)
	article := testutil.TestArticle(t, ctx.DB, author)

	router := gin.New()
	router.Use(mockAuth(author.ID))
	router.DELETE("/articles/:slug", h.Delete)

	req := httptest.NewRequest("DELETE", "/articles/"+article.Slug, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	articleRepo := repository.NewArticleRepository(ctx.DB)
	_, err := articleRepo.GetBySlug(article.Slug)
	assert.Error(t, err)
}

func TestArticleHandler_List(t *testing.T) {
	h, ctx, cleanup := setupArticleHandler(t)
	defer cleanup()

	alice := testutil.TestUser(t, ctx.DB, testutil.WithUsername("alice"))
	testutil.TestArticle(t, ctx.DB, alice, testutil.WithTags("golang"))
	testutil.TestArticle(t, ctx.DB, alice, testutil.WithTags("web"))

	router := gin.New()
	router.GET("/articles", h.List)

	t.Run("all", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/articles", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, float64(2), body["total"])
	})

	t.Run("by tag", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/articles?tag=golang", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		body := decodeBody(t, w)
		assert.Equal(t, float64(1), body["total"])
		assert.Equal(t, float64(1), body["totalAuthor"])
	})

	t.Run("unknown favorited user", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/articles?favorited=ghost", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestArticleHandler_Feed(t *testing.T) {
	h, ctx, cleanup := setupArticleHandler(t)
	defer cleanup()

	reader := testutil.TestUser(t, ctx.DB)
	followed := testutil.TestUser(t, ctx.DB)
	testutil.TestFollow(t, ctx.DB, reader.ID, followed.ID)
	article := testutil.TestArticle(t, ctx.DB, followed)

	router := gin.New()
	router.Use(mockAuth(reader.ID))
	router.GET("/articles/feed", h.Feed)

	req := httptest.NewRequest("GET", "/articles/feed", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	articles := body["articles"].([]interface{})
	require.Len(t, articles, 1)
	assert.Equal(t, article.Slug, articles[0].(map[string]interface{})["slug"])
}

func TestArticleHandler_FavoriteFlow(t *testing.T) {
	h, ctx, cleanup := setupArticleHandler(t)
	defer cleanup()

	author := testutil.TestUser(t, ctx.DB)
	reader := testutil.TestUser(t, ctx.DB)
	article := testutil.TestArticle(t, ctx.DB, author)

	router := gin.New()
	router.Use(mockAuth(reader.ID))
	router.POST("/articles/:slug/favorite", h.Favorite)
	router.DELETE("/articles/:slug/favorite", h.Unfavorite)

	req := httptest.NewRequest("POST", fmt.Sprintf("/articles/%s/favorite", article.Slug), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	got := body["article"].(map[string]interface{})
	assert.Equal(t, true, got["favorited"])
	assert.Equal(t, float64(1), got["favoriteCount"])

	req = httptest.NewRequest("DELETE", fmt.Sprintf("/articles/%s/favorite", article.Slug), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	got = body["article"].(map[string]interface{})
	assert.Equal(t, false, got["favorited"])
	assert.Equal(t, float64(0), got["favoriteCount"])
}

func TestArticleHandler_Search(t *testing.T) {
	h, ctx, cleanup := setupArticleHandler(t)
	defer cleanup()

	author := testutil.TestUser(t, ctx.DB)
	testutil.TestArticle(t, ctx.DB, author, testutil.WithTitle("Go Concurrency Patterns"))
	testutil.TestArticle(t, ctx.DB, author, testutil.WithTitle("Cooking for Beginners"))

	router := gin.New()
	router.GET("/articles/search", h.Search)

	req := httptest.NewRequest("GET", "/articles/search?q=Concurrency", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	articles := body["articles"].([]interface{})
	assert.Len(t, articles, 1)
}
