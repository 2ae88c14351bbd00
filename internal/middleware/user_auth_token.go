package middleware

import (
	"github.com/haierkeys/content-hub-service/pkg/app"
	"github.com/haierkeys/content-hub-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// tokenPrefixLen 写入历史行的 Token 前缀长度，仅用于审计溯源
const tokenPrefixLen = 8

// UserAuthTokenWithConfig 用户 Token 认证中间件（使用注入的密钥）
// 认证通过后在上下文中留存 Token 前缀，供历史行记录写入来源
func UserAuthTokenWithConfig(secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		response := app.NewResponse(c)

		if s, exist := c.GetQuery("authorization"); exist {
			token = s
		} else if s, exist := c.GetQuery("Authorization"); exist {
			token = s
		} else if s := c.GetHeader("authorization"); len(s) != 0 {
			token = s
		} else if s := c.GetHeader("Authorization"); len(s) != 0 {
			token = s
		} else if s, exist := c.GetQuery("token"); exist {
			token = s
		} else if s, exist := c.GetQuery("Token"); exist {
			token = s
		} else if s = c.GetHeader("token"); len(s) != 0 {
			token = s
		} else if s = c.GetHeader("Token"); len(s) != 0 {
			token = s
		}

		if token == "" {
			response.ToResponse(code.ErrorNotUserAuthToken)
			c.Abort()
			return
		}

		user, err := app.ParseTokenWithKey(token, secretKey)
		if err != nil {
			response.ToResponse(code.ErrorInvalidUserAuthToken)
			c.Abort()
			return
		}

		c.Set("user_token", user)

		prefix := token
		if len(prefix) > tokenPrefixLen {
			prefix = prefix[:tokenPrefixLen]
		}
		c.Set("token_prefix", prefix)

		c.Next()
	}
}
