package user

import "github.com/gin-gonic/gin"

// UserModule implements the app.Module interface for the user domain.
type UserModule struct {
	handler *UserHandler
}

// NewModule creates a new UserModule with the given handler.
// Panics if h is nil.
func NewModule(h *UserHandler) *UserModule {
	if h == nil {
		panic("user.NewModule: handler must not be nil")
	}
	return &UserModule{handler: h}
}

// RegisterRoutes registers user and admin API routes.
func (m *UserModule) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/users", m.handler.Register)
	api.GET("/users", m.handler.List)
	api.GET("/users/:login", m.handler.Get)
	api.PUT("/users/:login/rights/:right", m.handler.SetRight)
	api.POST("/users/:login/ban", m.handler.Ban)
	api.DELETE("/users/:login/ban", m.handler.Unban)

	api.GET("/admin/stats", m.handler.Stats)
}
