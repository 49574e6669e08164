package api

import (
	"strings"
	"time"

	"consec/config"
	"consec/database"
	"consec/middleware"
	"consec/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	cfg *config.Config
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Nome  string `json:"nome" binding:"required,min=2,max=100" example:"Maria Silva"`
	Email string `json:"email" binding:"required,email,max=150" example:"maria@empresa.com"`
	Senha string `json:"senha" binding:"required,min=6,max=72" example:"senha123"`
	Cargo string `json:"cargo" binding:"required,oneof=gestor funcionario" example:"funcionario"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email string `json:"email" binding:"required,email" example:"maria@empresa.com"`
	Senha string `json:"senha" binding:"required" example:"senha123"`
}

// AuthResponse 认证响应（注册与登录共用）
type AuthResponse struct {
	Token     string    `json:"token"`
	ID        uint      `json:"id"`
	Nome      string    `json:"nome"`
	Email     string    `json:"email"`
	Cargo     string    `json:"cargo"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Register 用户注册
// @Summary 用户注册
// @Description 创建新用户账号并返回 JWT token。邮箱不区分大小写，重复注册返回 400。
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册信息"
// @Success 200 {object} AuthResponse "注册成功"
// @Failure 400 {object} ErrorResponse "请求参数错误或邮箱已注册"
// @Failure 500 {object} ErrorResponse "服务器错误"
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados de cadastro inválidos"))
		return
	}

	// 邮箱唯一性检查（不区分大小写）
	email := strings.TrimSpace(req.Email)
	var existing models.User
	if err := database.DB.Where("LOWER(email) = ?", strings.ToLower(email)).First(&existing).Error; err == nil {
		BadRequest(c, "Já existe um usuário com este email")
		return
	}

	// 加密密码
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "Erro ao processar a senha")
		return
	}

	user := models.User{
		Nome:  req.Nome,
		Email: email,
		Senha: string(hashed),
		Cargo: req.Cargo,
	}

	if err := database.DB.Create(&user).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Erro ao criar usuário"))
		return
	}

	h.respondWithToken(c, &user)
}

// Login 用户登录
// @Summary 用户登录
// @Description 邮箱+密码登录，返回 7 天有效的 JWT token。用户不存在与密码错误返回同一个 401，避免探测账号。
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录信息"
// @Success 200 {object} AuthResponse "登录成功"
// @Failure 400 {object} ErrorResponse "请求参数错误"
// @Failure 401 {object} ErrorResponse "邮箱或密码错误"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados de login inválidos"))
		return
	}

	var user models.User
	if err := database.DB.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		Unauthorized(c, "Email ou senha inválidos")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Senha), []byte(req.Senha)); err != nil {
		Unauthorized(c, "Email ou senha inválidos")
		return
	}

	h.respondWithToken(c, &user)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, user *models.User) {
	token, expiresAt, err := middleware.GenerateToken(user.ID, user.Email, user.Nome, user.Cargo, h.cfg.JWT.ExpireTime)
	if err != nil {
		InternalError(c, "Erro ao gerar token")
		return
	}

	Success(c, AuthResponse{
		Token:     token,
		ID:        user.ID,
		Nome:      user.Nome,
		Email:     user.Email,
		Cargo:     user.Cargo,
		ExpiresAt: expiresAt,
	})
}
