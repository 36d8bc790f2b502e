package listing

import "github.com/simp-lee/classifieds/internal/domain"

// ListingRequest is the body of create and update requests.
type ListingRequest struct {
	Title       string   `json:"title" binding:"required,max=200"`
	Price       string   `json:"price" binding:"max=50"`
	Description string   `json:"description" binding:"max=5000"`
	Contact     string   `json:"contact" binding:"max=200"`
	Category    string   `json:"category" binding:"required,max=100"`
	Region      string   `json:"region" binding:"max=100"`
	City        string   `json:"city" binding:"max=100"`
	Images      []string `json:"images" binding:"max=5,dive,max=500"`
}

func (r ListingRequest) input() domain.ListingInput {
	return domain.ListingInput{
		Title:       r.Title,
		Price:       r.Price,
		Description: r.Description,
		Contact:     r.Contact,
		Category:    r.Category,
		Region:      r.Region,
		City:        r.City,
		Images:      r.Images,
	}
}

// PromoteRequest is the body of a promotion request.
type PromoteRequest struct {
	Days int `json:"days" binding:"required,min=1,max=365"`
}

// FavoriteResponse reports the favorite state after a toggle.
type FavoriteResponse struct {
	ListingID uint `json:"listing_id"`
	Favorite  bool `json:"favorite"`
}
