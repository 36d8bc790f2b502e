package listing

import "github.com/gin-gonic/gin"

// ListingModule implements the app.Module interface for listings and favorites.
type ListingModule struct {
	handler *ListingHandler
}

// NewModule creates a new ListingModule. Panics if h is nil.
func NewModule(h *ListingHandler) *ListingModule {
	if h == nil {
		panic("listing.NewModule: handler must not be nil")
	}
	return &ListingModule{handler: h}
}

// RegisterRoutes registers listing API routes.
func (m *ListingModule) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/listings", m.handler.Browse)
	api.POST("/listings", m.handler.Create)
	api.GET("/listings/:id", m.handler.Get)
	api.PUT("/listings/:id", m.handler.Update)
	api.DELETE("/listings/:id", m.handler.Delete)
	api.POST("/listings/:id/promotion", m.handler.Promote)
	api.DELETE("/listings/:id/promotion", m.handler.Demote)

	api.GET("/users/:login/listings", m.handler.ListByOwner)

	api.GET("/favorites", m.handler.ListFavorites)
	api.POST("/favorites/:id", m.handler.ToggleFavorite)
}
