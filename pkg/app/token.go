package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// 默认 Token 签发者
const DefaultTokenIssuer = "content-hub-service"

// TokenConfig 定义 Token 管理器的配置
type TokenConfig struct {
	SecretKey string        `yaml:"secret-key"` // JWT 签名密钥
	Expiry    time.Duration `yaml:"expiry"`     // Token 过期时间，默认 7 天
	Issuer    string        `yaml:"issuer"`     // Token 签发者
}

// UserEntity represents the user data stored in the JWT.
type UserEntity struct {
	UID      int64  `json:"uid"`
	Client   string `json:"client"`
	AuthType string `json:"authType"`
	jwt.RegisteredClaims
}

// GenerateTokenWithKey 使用指定密钥签发用户 Token
func GenerateTokenWithKey(uid int64, client, authType, secretKey string, expiry time.Duration) (string, error) {
	if expiry == 0 {
		expiry = 7 * 24 * time.Hour
	}
	now := time.Now()
	claims := &UserEntity{
		UID:      uid,
		Client:   client,
		AuthType: authType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    DefaultTokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}

// ParseTokenWithKey 使用指定密钥解析用户 Token
func ParseTokenWithKey(tokenString, secretKey string) (*UserEntity, error) {
	claims := &UserEntity{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// GetUID 从 gin.Context 获取已认证用户的 UID
func GetUID(c *gin.Context) int64 {
	if v, ok := c.Get("user_token"); ok {
		if user, ok := v.(*UserEntity); ok {
			return user.UID
		}
	}
	return 0
}

// GetUserToken 从 gin.Context 获取已认证用户实体
func GetUserToken(c *gin.Context) *UserEntity {
	if v, ok := c.Get("user_token"); ok {
		if user, ok := v.(*UserEntity); ok {
			return user
		}
	}
	return nil
}
