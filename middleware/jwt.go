package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"consec/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSecret []byte

// InitJWT 初始化 JWT 密钥
func InitJWT(cfg *config.Config) {
	jwtSecret = []byte(cfg.JWT.Secret)
}

// Claims 令牌载荷：身份 + 角色。无服务端吊销，退出登录仅由客户端丢弃令牌。
type Claims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Nome   string `json:"nome"`
	Cargo  string `json:"cargo"`
	jwt.RegisteredClaims
}

// GenerateToken 生成 JWT token
func GenerateToken(userID uint, email, nome, cargo string, expire time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(expire)
	claims := Claims{
		UserID: userID,
		Email:  email,
		Nome:   nome,
		Cargo:  cargo,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken 解析并校验 JWT token
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("意外的签名算法")
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("无效的 token")
	}
	return claims, nil
}

// JWTAuth JWT 认证中间件
// 校验 Authorization: Bearer <token>，并把身份信息放入请求上下文。
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Token de autenticação ausente")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			abortUnauthorized(c, "Formato de token inválido")
			return
		}

		claims, err := ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			abortUnauthorized(c, "Token inválido ou expirado")
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userEmail", claims.Email)
		c.Set("userNome", claims.Nome)
		c.Set("userCargo", claims.Cargo)
		c.Next()
	}
}

// GestorOnly 角色中间件：仅 gestor 可通过，需在 JWTAuth 之后使用
func GestorOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetCurrentUserCargo(c) != "gestor" {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    http.StatusForbidden,
				"message": "Acesso restrito a gestores",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"code":    http.StatusUnauthorized,
		"message": message,
	})
	c.Abort()
}

// GetCurrentUserID 获取当前登录用户ID
func GetCurrentUserID(c *gin.Context) uint {
	if v, exists := c.Get("userID"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// GetCurrentUserCargo 获取当前登录用户角色
func GetCurrentUserCargo(c *gin.Context) string {
	if v, exists := c.Get("userCargo"); exists {
		if cargo, ok := v.(string); ok {
			return cargo
		}
	}
	return ""
}

// GetCurrentUserNome 获取当前登录用户姓名
func GetCurrentUserNome(c *gin.Context) string {
	if v, exists := c.Get("userNome"); exists {
		if nome, ok := v.(string); ok {
			return nome
		}
	}
	return ""
}

// IsGestor 当前请求是否来自管理者
func IsGestor(c *gin.Context) bool {
	return GetCurrentUserCargo(c) == "gestor"
}
