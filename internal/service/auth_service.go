package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/wfunc/cashflow-game/internal/models"
	"github.com/wfunc/cashflow-game/internal/repository"
	"github.com/wfunc/cashflow-game/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserExists         = errors.New("用户已存在")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrUserBanned         = errors.New("用户已被封禁")
	ErrAccountLocked      = errors.New("账户已锁定，请稍后再试")
)

// 连续失败5次锁定15分钟
const (
	maxLoginAttempts = 5
	lockDuration     = 15 * time.Minute
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

// authService 认证服务实现
type authService struct {
	db         *gorm.DB
	userRepo   repository.UserRepository
	authRepo   repository.UserAuthRepository
	jwtManager *utils.JWTManager
	log        *zap.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	authRepo repository.UserAuthRepository,
	jwtManager *utils.JWTManager,
	log *zap.Logger,
) AuthService {
	return &authService{
		db:         db,
		userRepo:   userRepo,
		authRepo:   authRepo,
		jwtManager: jwtManager,
		log:        log,
	}
}

// Register 用户注册
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if !usernamePattern.MatchString(req.Username) {
		return nil, fmt.Errorf("用户名只能包含字母、数字和下划线，长度3-20")
	}
	if len(req.Password) < 6 {
		return nil, fmt.Errorf("密码长度不能少于6位")
	}
	if req.Password != req.ConfirmPassword {
		return nil, fmt.Errorf("两次输入的密码不一致")
	}

	// 检查用户是否已存在
	if user, _ := s.userRepo.FindByUsername(ctx, req.Username); user != nil {
		return nil, ErrUserExists
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	user := &models.User{
		Username: req.Username,
		Nickname: req.Nickname,
		Avatar:   req.Avatar,
		Status:   "active",
	}

	// 用户与认证信息在同一事务中创建
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		auth := &models.UserAuth{
			UserID:   user.ID,
			Password: hashedPassword,
		}
		return tx.Create(auth).Error
	})
	if err != nil {
		s.log.Error("注册失败", zap.String("username", req.Username), zap.Error(err))
		return nil, fmt.Errorf("注册失败: %w", err)
	}

	s.log.Info("用户注册成功",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username))

	return s.issueTokens(user)
}

// Login 用户登录
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive() {
		return nil, ErrUserBanned
	}

	auth, err := s.authRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// 检查锁定状态
	if auth.LockedUntil != nil && auth.LockedUntil.After(time.Now()) {
		return nil, ErrAccountLocked
	}

	valid, err := utils.VerifyPassword(req.Password, auth.Password)
	if err != nil || !valid {
		attempts := auth.LoginAttempts + 1
		_ = s.authRepo.UpdateLoginAttempts(ctx, user.ID, attempts)
		if attempts >= maxLoginAttempts {
			until := time.Now().Add(lockDuration)
			_ = s.authRepo.LockAccount(ctx, user.ID, until)
			s.log.Warn("账户因连续登录失败被锁定",
				zap.Uint("user_id", user.ID),
				zap.Int("attempts", attempts))
		}
		return nil, ErrInvalidCredentials
	}

	// 登录成功，重置失败计数
	_ = s.authRepo.ResetLoginAttempts(ctx, user.ID)

	user.UpdateLoginInfo(req.IP)
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.log.Warn("更新登录信息失败", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	s.log.Info("用户登录成功",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("ip", req.IP))

	return s.issueTokens(user)
}

// RefreshToken 刷新访问令牌
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "refresh" {
		return nil, utils.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive() {
		return nil, ErrUserBanned
	}

	return s.issueTokens(user)
}

// ValidateToken 验证访问令牌
func (s *authService) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "access" {
		return nil, utils.ErrInvalidToken
	}
	return claims, nil
}

// issueTokens 签发令牌对
func (s *authService) issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("生成访问令牌失败: %w", err)
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("生成刷新令牌失败: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtManager.GetTokenExpiry("access").Seconds()),
		TokenType:    "Bearer",
	}, nil
}
