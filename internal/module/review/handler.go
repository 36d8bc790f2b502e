package review

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/classifieds/internal/domain"
	"github.com/simp-lee/classifieds/internal/pkg"
)

// CreateReviewRequest is the body of POST /api/v1/listings/:id/reviews.
type CreateReviewRequest struct {
	Text  string `json:"text" binding:"required,max=2000"`
	Stars int    `json:"stars" binding:"required,min=1,max=5"`
}

// ReviewHandler handles REST API requests for reviews and seller ratings.
type ReviewHandler struct {
	svc domain.ReviewService
}

// NewReviewHandler creates a new ReviewHandler with the given service.
func NewReviewHandler(svc domain.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

// Create handles POST /api/v1/listings/:id/reviews.
func (h *ReviewHandler) Create(c *gin.Context) {
	actor, ok := pkg.RequireActor(c)
	if !ok {
		return
	}
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	var req CreateReviewRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	review, err := h.svc.AddReview(c.Request.Context(), actor, id, req.Text, req.Stars)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, review)
}

// List handles GET /api/v1/listings/:id/reviews.
func (h *ReviewHandler) List(c *gin.Context) {
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	reviews, err := h.svc.ListReviews(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, reviews)
}

// Rating handles GET /api/v1/users/:login/rating.
func (h *ReviewHandler) Rating(c *gin.Context) {
	rating, err := h.svc.SellerRating(c.Request.Context(), c.Param("login"))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, rating)
}
