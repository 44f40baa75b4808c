package views

import (
	"strings"

	"github.com/GrainArc/CragTopo/models"
	"github.com/GrainArc/CragTopo/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const loginUserKey = "login_user"

// AuthMiddleware 按令牌识别用户，没有令牌时按只读访问处理
type AuthMiddleware struct {
	db *gorm.DB
}

func NewAuthMiddleware(db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{db: db}
}

// Optional 令牌有效时记录当前用户，无效或缺失时继续以匿名身份处理
func (a *AuthMiddleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := a.lookup(c); ok {
			c.Set(loginUserKey, user)
		}
		c.Next()
	}
}

// Required 写操作必须携带有效令牌
func (a *AuthMiddleware) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := a.lookup(c)
		if !ok {
			response.Unauthorized(c, "需要登录后才能修改")
			return
		}
		c.Set(loginUserKey, user)
		c.Next()
	}
}

func (a *AuthMiddleware) lookup(c *gin.Context) (*models.LoginUser, bool) {
	token := bearerToken(c)
	if token == "" {
		return nil, false
	}
	var user models.LoginUser
	if err := a.db.WithContext(c.Request.Context()).Where("token = ?", token).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}

// CurrentUser 当前请求的用户
func CurrentUser(c *gin.Context) (*models.LoginUser, bool) {
	v, ok := c.Get(loginUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.LoginUser)
	return user, ok
}

// bearerToken 浏览器无法给 websocket 设置请求头，所以也接受 token 查询参数
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return strings.TrimSpace(c.Query("token"))
}
