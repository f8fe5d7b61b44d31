package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/cashflow-game/internal/models"
	"gorm.io/gorm"
)

// UserRepositoryTestSuite 用户仓储测试套件
type UserRepositoryTestSuite struct {
	suite.Suite
	db       *gorm.DB
	repo     UserRepository
	authRepo UserAuthRepository
}

func (suite *UserRepositoryTestSuite) SetupTest() {
	suite.db = SetupTestDB()
	suite.repo = NewUserRepository(suite.db)
	suite.authRepo = NewUserAuthRepository(suite.db)
}

func (suite *UserRepositoryTestSuite) TearDownTest() {
	CleanupTestDB(suite.db)
}

// TestUserRepository_Create 测试创建用户
func (suite *UserRepositoryTestSuite) TestUserRepository_Create() {
	ctx := context.Background()

	user := &models.User{
		Username: "testuser",
		Nickname: "Test User",
		Status:   "active",
	}

	err := suite.repo.Create(ctx, user)
	assert.NoError(suite.T(), err)
	assert.NotZero(suite.T(), user.ID)

	// 验证数据
	found, err := suite.repo.FindByID(ctx, user.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), user.Username, found.Username)
}

// TestUserRepository_CreateDefaults 测试创建时的默认值钩子
func (suite *UserRepositoryTestSuite) TestUserRepository_CreateDefaults() {
	ctx := context.Background()

	user := &models.User{Username: "nodefaults"}
	err := suite.repo.Create(ctx, user)
	assert.NoError(suite.T(), err)

	found, err := suite.repo.FindByID(ctx, user.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "nodefaults", found.Nickname)
	assert.Equal(suite.T(), "active", found.Status)
	assert.True(suite.T(), found.IsActive())
}

// TestUserRepository_FindByUsername 测试根据用户名查找
func (suite *UserRepositoryTestSuite) TestUserRepository_FindByUsername() {
	ctx := context.Background()

	user := &models.User{
		Username: "findbyusername",
		Status:   "active",
	}

	err := suite.repo.Create(ctx, user)
	assert.NoError(suite.T(), err)

	found, err := suite.repo.FindByUsername(ctx, "findbyusername")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), user.ID, found.ID)

	// 测试不存在的用户
	_, err = suite.repo.FindByUsername(ctx, "notexist")
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "用户不存在")
}

// TestUserRepository_UpdateStatus 测试更新状态
func (suite *UserRepositoryTestSuite) TestUserRepository_UpdateStatus() {
	ctx := context.Background()

	user := &models.User{Username: "statususer", Status: "active"}
	err := suite.repo.Create(ctx, user)
	assert.NoError(suite.T(), err)

	err = suite.repo.UpdateStatus(ctx, user.ID, "frozen")
	assert.NoError(suite.T(), err)

	found, err := suite.repo.FindByID(ctx, user.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "frozen", found.Status)
	assert.False(suite.T(), found.IsActive())
}

// TestUserRepository_IncrementGameStats 测试累加对局统计
func (suite *UserRepositoryTestSuite) TestUserRepository_IncrementGameStats() {
	ctx := context.Background()

	user := &models.User{Username: "statsuser"}
	err := suite.repo.Create(ctx, user)
	assert.NoError(suite.T(), err)

	err = suite.repo.IncrementGameStats(ctx, user.ID, false)
	assert.NoError(suite.T(), err)
	err = suite.repo.IncrementGameStats(ctx, user.ID, true)
	assert.NoError(suite.T(), err)

	found, err := suite.repo.FindByID(ctx, user.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, found.GamesPlayed)
	assert.Equal(suite.T(), 1, found.GamesWon)
}

// TestUserRepository_GetAll 测试分页查询
func (suite *UserRepositoryTestSuite) TestUserRepository_GetAll() {
	ctx := context.Background()

	for _, name := range []string{"u1", "u2", "u3"} {
		err := suite.repo.Create(ctx, &models.User{Username: name})
		assert.NoError(suite.T(), err)
	}

	pagination := NewPagination(1, 2)
	users, err := suite.repo.GetAll(ctx, pagination)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), users, 2)
	assert.Equal(suite.T(), int64(3), pagination.Total)
}

// TestUserAuthRepository 测试认证仓储
func (suite *UserRepositoryTestSuite) TestUserAuthRepository() {
	ctx := context.Background()

	user := &models.User{Username: "authuser"}
	err := suite.repo.Create(ctx, user)
	assert.NoError(suite.T(), err)

	auth := &models.UserAuth{
		UserID:   user.ID,
		Password: "hashed-password",
	}
	err = suite.authRepo.Create(ctx, auth)
	assert.NoError(suite.T(), err)

	found, err := suite.authRepo.FindByUserID(ctx, user.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "hashed-password", found.Password)

	// 更新密码
	err = suite.authRepo.UpdatePassword(ctx, user.ID, "new-hash")
	assert.NoError(suite.T(), err)

	found, err = suite.authRepo.FindByUserID(ctx, user.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "new-hash", found.Password)
}

// TestUserAuthRepository_LockAccount 测试锁定账户
func (suite *UserRepositoryTestSuite) TestUserAuthRepository_LockAccount() {
	ctx := context.Background()

	user := &models.User{Username: "lockeduser"}
	err := suite.repo.Create(ctx, user)
	assert.NoError(suite.T(), err)

	auth := &models.UserAuth{UserID: user.ID, Password: "hash"}
	err = suite.authRepo.Create(ctx, auth)
	assert.NoError(suite.T(), err)

	until := time.Now().Add(10 * time.Minute)
	err = suite.authRepo.LockAccount(ctx, user.ID, until)
	assert.NoError(suite.T(), err)

	found, err := suite.authRepo.FindByUserID(ctx, user.ID)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), found.LockedUntil)

	// 重置后解除锁定
	err = suite.authRepo.ResetLoginAttempts(ctx, user.ID)
	assert.NoError(suite.T(), err)

	found, err = suite.authRepo.FindByUserID(ctx, user.ID)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), found.LockedUntil)
	assert.Equal(suite.T(), 0, found.LoginAttempts)
}

func TestUserRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(UserRepositoryTestSuite))
}
