package user

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/classifieds/internal/domain"
	"github.com/simp-lee/classifieds/internal/pkg"
)

// UserHandler handles REST API requests for users and administration.
type UserHandler struct {
	svc domain.UserService
}

// NewUserHandler creates a new UserHandler with the given service.
func NewUserHandler(svc domain.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Register handles POST /api/v1/users.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req.Login, req.Nickname)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, user)
}

// Get handles GET /api/v1/users/:login.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.svc.GetUser(c.Request.Context(), c.Param("login"))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, user)
}

// List handles GET /api/v1/users.
func (h *UserHandler) List(c *gin.Context) {
	actor, ok := pkg.RequireActor(c)
	if !ok {
		return
	}
	req := pkg.ParsePageRequest(c)

	result, err := h.svc.ListUsers(c.Request.Context(), actor, req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// SetRight handles PUT /api/v1/users/:login/rights/:right.
func (h *UserHandler) SetRight(c *gin.Context) {
	actor, ok := pkg.RequireActor(c)
	if !ok {
		return
	}
	var req SetRightRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	if err := h.svc.SetRight(c.Request.Context(), actor, c.Param("login"), c.Param("right"), *req.Value); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}

// Ban handles POST /api/v1/users/:login/ban.
func (h *UserHandler) Ban(c *gin.Context) {
	actor, ok := pkg.RequireActor(c)
	if !ok {
		return
	}

	if err := h.svc.Ban(c.Request.Context(), actor, c.Param("login")); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}

// Unban handles DELETE /api/v1/users/:login/ban.
func (h *UserHandler) Unban(c *gin.Context) {
	actor, ok := pkg.RequireActor(c)
	if !ok {
		return
	}

	if err := h.svc.Unban(c.Request.Context(), actor, c.Param("login")); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}

// Stats handles GET /api/v1/admin/stats.
func (h *UserHandler) Stats(c *gin.Context) {
	actor, ok := pkg.RequireActor(c)
	if !ok {
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), actor)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, stats)
}
