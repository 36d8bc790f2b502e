package listing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/classifieds/internal/domain"
	"github.com/simp-lee/classifieds/internal/pkg"
)

// setupAPIRouter mounts the listing module on /api/v1 of a test engine.
func setupAPIRouter(svc domain.ListingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewModule(NewListingHandler(svc)).RegisterRoutes(r.Group("/api/v1"))
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

type pageEnvelope struct {
	Code int                               `json:"code"`
	Data domain.PageResult[domain.Listing] `json:"data"`
}

func TestListingHandler_Browse_EndToEnd(t *testing.T) {
	db := setupTestDB(t)
	seedFeed(t, db, rankNow)
	svc := NewListingService(NewListingRepository(db), newMockUsers(), fixedClock{rankNow}, Options{AllCategories: testAllCategories})
	r := setupAPIRouter(svc)

	w := doRequest(r, http.MethodGet, "/api/v1/listings?q=toyota", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", w.Code, w.Body.String())
	}
	var resp pageEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// Matches: 1 and 4 by Latin title, 2 by Cyrillic title, 5 by city.
	// Regular 5, 1 come first; promoted 4, 2 are drained after them.
	if got := ids(resp.Data.Items); !slices.Equal(got, []uint{5, 1, 4, 2}) {
		t.Errorf("ids = %v; want [5 1 4 2]", got)
	}
	if resp.Data.Total != 4 || resp.Data.TotalPages != 1 || resp.Data.Page != 1 || resp.Data.PageSize != 15 {
		t.Errorf("page = %+v", resp.Data)
	}

	w = doRequest(r, http.MethodGet, "/api/v1/listings?q=toyota&page=2", "", "")
	resp = pageEnvelope{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Data.Items) != 0 || resp.Data.TotalPages != 1 {
		t.Errorf("page 2 = %+v; want empty with 1 total page", resp.Data)
	}

	w = doRequest(r, http.MethodGet, "/api/v1/listings?cat=%D0%92%D1%81%D0%B5&region=%D0%9A%D0%B0%D0%B7%D0%B0%D1%85%D1%81%D1%82%D0%B0%D0%BD&page=-4", "", "")
	resp = pageEnvelope{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if got := ids(resp.Data.Items); !slices.Equal(got, []uint{3, 1}) || resp.Data.Page != 1 {
		t.Errorf("region feed = %v (page %d); want [3 1] on page 1", got, resp.Data.Page)
	}
}

func TestListingHandler_Browse_Unavailable(t *testing.T) {
	db := setupTestDB(t)
	sqlDB, _ := db.DB()
	_ = sqlDB.Close()
	svc := NewListingService(NewListingRepository(db), newMockUsers(), fixedClock{rankNow}, Options{})
	r := setupAPIRouter(svc)

	w := doRequest(r, http.MethodGet, "/api/v1/listings", "", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d; want 503", w.Code)
	}
	var resp pkg.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Message != "data source unavailable" {
		t.Errorf("message = %q", resp.Message)
	}
}

func newHandlerTestRouter() (*gin.Engine, *mockListingRepo) {
	repo := newMockListingRepo()
	repo.add(domain.Listing{OwnerLogin: "alice", Title: "Camry", Category: "Авто"})
	return setupAPIRouter(newTestService(repo)), repo
}

func TestListingHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		actor      string
		body       string
		wantStatus int
	}{
		{"created", "alice", `{"title":"Corolla","category":"Авто","images":["a.jpg"]}`, http.StatusCreated},
		{"no actor", "", `{"title":"Corolla","category":"Авто"}`, http.StatusForbidden},
		{"banned", "mallory", `{"title":"Corolla","category":"Авто"}`, http.StatusForbidden},
		{"missing title", "alice", `{"category":"Авто"}`, http.StatusBadRequest},
		{"too many images", "alice", `{"title":"x","category":"Авто","images":["1","2","3","4","5","6"]}`, http.StatusBadRequest},
		{"malformed json", "alice", `{"title":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newHandlerTestRouter()
			w := doRequest(r, http.MethodPost, "/api/v1/listings", tt.actor, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d; want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestListingHandler_Create_LimitExceeded(t *testing.T) {
	repo := newMockListingRepo()
	repo.createErr = domain.NewAppError(domain.CodeLimitExceeded, "daily listing limit reached", nil)
	r := setupAPIRouter(newTestService(repo))

	w := doRequest(r, http.MethodPost, "/api/v1/listings", "alice", `{"title":"Corolla","category":"Авто"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d; want 429", w.Code)
	}
}

func TestListingHandler_Get(t *testing.T) {
	r, repo := newHandlerTestRouter()

	w := doRequest(r, http.MethodGet, "/api/v1/listings/1", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if repo.listings[1].ViewCount != 1 {
		t.Errorf("ViewCount = %d; want 1", repo.listings[1].ViewCount)
	}

	for path, want := range map[string]int{
		"/api/v1/listings/99":  http.StatusNotFound,
		"/api/v1/listings/abc": http.StatusBadRequest,
		"/api/v1/listings/0":   http.StatusBadRequest,
	} {
		if w := doRequest(r, http.MethodGet, path, "", ""); w.Code != want {
			t.Errorf("GET %s status = %d; want %d", path, w.Code, want)
		}
	}
}

func TestListingHandler_UpdateAndDelete(t *testing.T) {
	r, repo := newHandlerTestRouter()
	body := `{"title":"Camry 2020","category":"Авто"}`

	if w := doRequest(r, http.MethodPut, "/api/v1/listings/1", "bob", body); w.Code != http.StatusForbidden {
		t.Errorf("foreign update status = %d; want 403", w.Code)
	}
	if w := doRequest(r, http.MethodPut, "/api/v1/listings/1", "alice", body); w.Code != http.StatusOK {
		t.Fatalf("owner update status = %d", w.Code)
	}
	if repo.listings[1].Title != "Camry 2020" {
		t.Errorf("title = %q", repo.listings[1].Title)
	}

	if w := doRequest(r, http.MethodDelete, "/api/v1/listings/1", "bob", ""); w.Code != http.StatusForbidden {
		t.Errorf("foreign delete status = %d; want 403", w.Code)
	}
	if w := doRequest(r, http.MethodDelete, "/api/v1/listings/1", "sheriff", ""); w.Code != http.StatusOK {
		t.Errorf("moderator delete status = %d", w.Code)
	}
}

func TestListingHandler_Promotion(t *testing.T) {
	r, repo := newHandlerTestRouter()

	if w := doRequest(r, http.MethodPost, "/api/v1/listings/1/promotion", "admin", `{"days":400}`); w.Code != http.StatusBadRequest {
		t.Errorf("days=400 status = %d; want 400", w.Code)
	}
	if w := doRequest(r, http.MethodPost, "/api/v1/listings/1/promotion", "alice", `{"days":3}`); w.Code != http.StatusForbidden {
		t.Errorf("non-admin status = %d; want 403", w.Code)
	}
	if w := doRequest(r, http.MethodPost, "/api/v1/listings/1/promotion", "admin", `{"days":3}`); w.Code != http.StatusOK {
		t.Fatalf("promote status = %d", w.Code)
	}
	if !repo.listings[1].IsPromoted(rankNow) {
		t.Error("listing should be promoted")
	}
	if w := doRequest(r, http.MethodDelete, "/api/v1/listings/1/promotion", "admin", ""); w.Code != http.StatusOK {
		t.Fatalf("demote status = %d", w.Code)
	}
	if repo.listings[1].IsPromoted(rankNow) {
		t.Error("listing should be demoted")
	}
}

func TestListingHandler_Favorites(t *testing.T) {
	r, _ := newHandlerTestRouter()

	if w := doRequest(r, http.MethodGet, "/api/v1/favorites", "", ""); w.Code != http.StatusForbidden {
		t.Errorf("anonymous favorites status = %d; want 403", w.Code)
	}

	w := doRequest(r, http.MethodPost, "/api/v1/favorites/1", "bob", "")
	if w.Code != http.StatusOK {
		t.Fatalf("toggle status = %d", w.Code)
	}
	var toggled struct {
		Data FavoriteResponse `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &toggled)
	if !toggled.Data.Favorite || toggled.Data.ListingID != 1 {
		t.Errorf("toggle response = %+v", toggled.Data)
	}

	w = doRequest(r, http.MethodGet, "/api/v1/favorites", "bob", "")
	var list struct {
		Data []domain.Listing `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Data) != 1 {
		t.Errorf("favorites = %v", list.Data)
	}
}

func TestListingHandler_ListByOwner(t *testing.T) {
	r, _ := newHandlerTestRouter()

	w := doRequest(r, http.MethodGet, "/api/v1/users/alice/listings", "", "")
	var resp struct {
		Data []domain.Listing `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusOK || len(resp.Data) != 1 {
		t.Errorf("status = %d, listings = %v", w.Code, resp.Data)
	}
}
