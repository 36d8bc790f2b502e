package review

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/classifieds/internal/domain"
	"github.com/simp-lee/classifieds/internal/pkg"
)

func setupAPIRouter(svc domain.ReviewService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewModule(NewReviewHandler(svc)).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func doRequest(r *gin.Engine, method, path, actor, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != "" {
		req.Header.Set(pkg.ActorHeader, actor)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestReviewHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		actor      string
		body       string
		wantStatus int
	}{
		{"created", "/api/v1/listings/1/reviews", "carol", `{"text":"polite seller","stars":5}`, http.StatusCreated},
		{"anonymous", "/api/v1/listings/1/reviews", "", `{"text":"polite seller","stars":5}`, http.StatusForbidden},
		{"stars out of range", "/api/v1/listings/1/reviews", "carol", `{"text":"x","stars":7}`, http.StatusBadRequest},
		{"bad id", "/api/v1/listings/x/reviews", "carol", `{"text":"x","stars":3}`, http.StatusBadRequest},
		{"missing listing", "/api/v1/listings/5/reviews", "carol", `{"text":"x","stars":3}`, http.StatusNotFound},
		{"own listing", "/api/v1/listings/1/reviews", "alice", `{"text":"x","stars":5}`, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupAPIRouter(newTestService(&mockReviewRepo{}))
			w := doRequest(r, http.MethodPost, tt.path, tt.actor, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d; want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestReviewHandler_ListAndRating(t *testing.T) {
	repo := &mockReviewRepo{
		reviews: []domain.Review{{ListingID: 1, Author: "carol", Stars: 4}},
		rating:  &domain.SellerRating{Average: 4, Count: 1},
	}
	r := setupAPIRouter(newTestService(repo))

	w := doRequest(r, http.MethodGet, "/api/v1/listings/1/reviews", "", "")
	var list struct {
		Data []domain.Review `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if w.Code != http.StatusOK || len(list.Data) != 1 {
		t.Errorf("list status = %d, data = %v", w.Code, list.Data)
	}

	w = doRequest(r, http.MethodGet, "/api/v1/users/alice/rating", "", "")
	var rating struct {
		Data domain.SellerRating `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &rating)
	if w.Code != http.StatusOK || rating.Data.Count != 1 || rating.Data.Average != 4 {
		t.Errorf("rating status = %d, data = %+v", w.Code, rating.Data)
	}
}
