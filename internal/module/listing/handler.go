package listing

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/classifieds/internal/domain"
	"github.com/simp-lee/classifieds/internal/pkg"
)

// ListingHandler handles REST API requests for the listing resource.
type ListingHandler struct {
	svc domain.ListingService
}

// NewListingHandler creates a new ListingHandler with the given service.
func NewListingHandler(svc domain.ListingService) *ListingHandler {
	return &ListingHandler{svc: svc}
}

// Browse handles GET /api/v1/listings?q=&cat=&region=&page=.
func (h *ListingHandler) Browse(c *gin.Context) {
	req := domain.BrowseRequest{
		Query:    c.Query("q"),
		Category: c.Query("cat"),
		Region:   c.Query("region"),
		Page:     pkg.ParsePage(c),
	}

	result, err := h.svc.Browse(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// Create handles POST /api/v1/listings.
func (h *ListingHandler) Create(c *gin.Context) {
	actor, ok := pkg.RequireActor(c)
	if !ok {
		return
	}
	var req ListingRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	l, err := h.svc.Create(c.Request.Context(), actor, req.input())
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, l)
}

// Get handles GET /api/v1/listings/:id. Every call counts as a view.
func (h *ListingHandler) Get(c *gin.Context) {
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	l, err := h.svc.View(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, l)
}

// Update handles PUT /api/v1/listings/:id.
func (h *ListingHandler) Update(c *gin.Context) {
	actor, ok := pkg.RequireActor(c)
	if !ok {
		return
	}
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	var req ListingRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	l, err := h.svc.Update(c.Request.Context(), actor, id, req.input())
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, l)
}

// Delete handles DELETE /api/v1/listings/:id.
func (h *ListingHandler) Delete(c *gin.Context) {
	actor, ok := pkg.RequireActor(c)
	if !ok {
		return
	}
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actor, id); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}

// Promote handles POST /api/v1/listings/:id/promotion.
func (h *ListingHandler) Promote(c *gin.Context) {
	actor, ok := pkg.RequireActor(c)
	if !ok {
		return
	}
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	var req PromoteRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	l, err := h.svc.Promote(c.Request.Context(), actor, id, req.Days)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, l)
}

// Demote handles DELETE /api/v1/listings/:id/promotion.
func (h *ListingHandler) Demote(c *gin.Context) {
	actor, ok := pkg.RequireActor(c)
	if !ok {
		return
	}
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	l, err := h.svc.Demote(c.Request.Context(), actor, id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, l)
}

// ListByOwner handles GET /api/v1/users/:login/listings.
func (h *ListingHandler) ListByOwner(c *gin.Context) {
	listings, err := h.svc.ListByOwner(c.Request.Context(), c.Param("login"))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, listings)
}

// ToggleFavorite handles POST /api/v1/favorites/:id.
func (h *ListingHandler) ToggleFavorite(c *gin.Context) {
	actor, ok := pkg.RequireActor(c)
	if !ok {
		return
	}
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	liked, err := h.svc.ToggleFavorite(c.Request.Context(), actor, id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, FavoriteResponse{ListingID: id, Favorite: liked})
}

// ListFavorites handles GET /api/v1/favorites.
func (h *ListingHandler) ListFavorites(c *gin.Context) {
	actor, ok := pkg.RequireActor(c)
	if !ok {
		return
	}

	listings, err := h.svc.ListFavorites(c.Request.Context(), actor)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, listings)
}
