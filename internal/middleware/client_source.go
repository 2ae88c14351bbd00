package middleware

import (
	"github.com/gin-gonic/gin"
)

// ClientSource 捕获请求方客户端名称，写入历史行的来源字段
func ClientSource(defaultName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.GetHeader("X-Client-Name")
		if name == "" {
			name, _ = c.GetQuery("client")
		}
		if name == "" {
			name = defaultName
		}
		c.Set("client_name", name)

		c.Next()
	}
}
