package service

import (
	"context"
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"

	"mailchimp_wc_v1_202608/internal/middleware"
	"mailchimp_wc_v1_202608/internal/model"
	"mailchimp_wc_v1_202608/internal/repository"
)

// ErrInvalidCredentials 用户名或密码错误 (不区分哪个错，避免探测)
var ErrInvalidCredentials = errors.New("用户名或密码错误")

// AuthService 后台登录鉴权
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService 工厂方法
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// Login 校验密码并签发 Token 对
func (s *AuthService) Login(ctx context.Context, username, password string) (accessToken, refreshToken string, err error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", "", err
	}
	if user == nil || !user.IsActive {
		return "", "", ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", "", ErrInvalidCredentials
	}

	return middleware.GenerateTokenPair(user.ID, user.Username, user.Role)
}

// RefreshToken 用 Refresh Token 换新的 Access Token
func (s *AuthService) RefreshToken(refreshToken string) (string, error) {
	claims, err := middleware.ParseToken(refreshToken)
	if err != nil {
		return "", err
	}
	if claims.Subject != "refresh" {
		return "", errors.New("token 类型错误")
	}
	return middleware.GenerateAccessToken(claims.UserID, claims.Username, claims.Role)
}

// EnsureDefaultAdmin 首次启动时种下默认管理员
// 已有任何用户则什么都不做
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := &model.SysUser{
		Username: username,
		Password: string(hashed),
		Role:     "admin",
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}
	log.Printf("[Auth] 已创建默认管理员: %s", username)
	return nil
}
