package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mailchimp_wc_v1_202608/internal/api/dto"
	"mailchimp_wc_v1_202608/internal/service"
)

type AuthController struct {
	authService *service.AuthService
}

func NewAuthController(s *service.AuthService) *AuthController {
	return &AuthController{authService: s}
}

// Login 管理员登录
// @Summary 管理员登录
// @Description 校验密码，签发 Access/Refresh Token 对
// @Tags Auth (鉴权)
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "用户名密码"
// @Success 200 {object} dto.LoginResponse "Token 对"
// @Failure 401 {object} map[string]string "用户名或密码错误"
// @Router /api/auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	access, refresh, err := ctrl.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

// RefreshToken 刷新 Access Token
// @Summary 用 Refresh Token 换新的 Access Token
// @Tags Auth (鉴权)
// @Accept json
// @Produce json
// @Param body body dto.RefreshTokenRequest true "Refresh Token"
// @Success 200 {object} dto.RefreshTokenResponse "新的 Access Token"
// @Failure 401 {object} map[string]string "Token 无效或已过期"
// @Router /api/auth/refresh [post]
func (ctrl *AuthController) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	access, err := ctrl.authService.RefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token 无效或已过期"})
		return
	}

	c.JSON(http.StatusOK, dto.RefreshTokenResponse{AccessToken: access})
}
