package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/blog_go_server/internal/model"
	"github.com/qs3c/blog_go_server/internal/repository"
	"github.com/qs3c/blog_go_server/internal/service"
	"github.com/qs3c/blog_go_server/internal/testutil"
)

func setupCronService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)

	userRepo := repository.NewUserRepository(db)
	tagService := service.NewTagService(
		repository.NewTagRepository(db),
		repository.NewArticleRepository(db),
		nil,
		time.Minute,
	)
	return NewService(userRepo, tagService), db
}

func TestNewService(t *testing.T) {
	svc, _ := setupCronService(t)
	assert.NotNil(t, svc)
	assert.NotNil(t, svc.stopChan)
}

func TestService_StartAndStop(t *testing.T) {
	svc, _ := setupCronService(t)

	svc.Start()
	time.Sleep(10 * time.Millisecond)
	svc.Stop()
	time.Sleep(10 * time.Millisecond)
}

func TestService_StopBeforeStart(t *testing.T) {
	svc, _ := setupCronService(t)

	// 未启动时关闭 stopChan 也应安全
	svc.Stop()
}

func TestService_RunNow_PurgesExpiredTokens(t *testing.T) {
	svc, db := setupCronService(t)

	expired := testutil.TestUser(t, db)
	fresh := testutil.TestUser(t, db)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	expiredToken := "expired-token"
	freshToken := "fresh-token"

	require.NoError(t, db.Model(expired).Updates(map[string]interface{}{
		"reset_token":      expiredToken,
		"reset_expires_at": past,
	}).Error)
	require.NoError(t, db.Model(fresh).Updates(map[string]interface{}{
		"reset_token":      freshToken,
		"reset_expires_at": future,
	}).Error)

	require.NoError(t, svc.RunNow(context.Background()))

	var users []model.User
	require.NoError(t, db.Order("id ASC").Find(&users).Error)
	require.Len(t, users, 2)
	assert.Nil(t, users[0].ResetToken)
	require.NotNil(t, users[1].ResetToken)
	assert.Equal(t, freshToken, *users[1].ResetToken)
}

func TestService_RunNow_ReconcilesTagCounts(t *testing.T) {
	svc, db := setupCronService(t)

	author := testutil.TestUser(t, db)
	testutil.TestArticle(t, db, author, testutil.WithTags("golang", "web"))
	testutil.TestArticle(t, db, author, testutil.WithTags("golang"))

	// 预置错误的计数，对账后应被纠正
	testutil.TestTag(t, db, "golang", 99)
	testutil.TestTag(t, db, "stale", 7)

	require.NoError(t, svc.RunNow(context.Background()))

	tagRepo := repository.NewTagRepository(db)
	tags, err := tagRepo.ListActive()
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "golang", tags[0].Name)
	assert.Equal(t, 2, tags[0].Count)
	assert.Equal(t, "web", tags[1].Name)
	assert.Equal(t, 1, tags[1].Count)
}

func TestService_RunNow_Empty(t *testing.T) {
	svc, _ := setupCronService(t)

	// 没有任何数据时也应正常完成
	require.NoError(t, svc.RunNow(context.Background()))
}
