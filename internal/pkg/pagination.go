package pkg

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/classifieds/internal/domain"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
	defaultSort     = "id:desc"
)

// reservedParams lists query parameter names used for pagination/sorting, not for filtering.
var reservedParams = map[string]bool{
	"page":      true,
	"page_size": true,
	"sort":      true,
}

// validFieldName matches only alphanumeric characters and underscores.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParsePage reads the 1-indexed "page" query parameter.
// Missing, malformed, zero and negative values are clamped to 1.
func ParsePage(c *gin.Context) int {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if page < 1 {
		page = defaultPage
	}
	return page
}

// ParsePageRequest extracts pagination, sorting, and filtering parameters from query params.
func ParsePageRequest(c *gin.Context) domain.PageRequest {
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	filter := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if reservedParams[key] {
			continue
		}
		if len(values) > 0 && values[0] != "" {
			filter[key] = values[0]
		}
	}

	return domain.PageRequest{
		Page:     ParsePage(c),
		PageSize: pageSize,
		Sort:     c.DefaultQuery("sort", defaultSort),
		Filter:   filter,
	}
}

// Paginate returns a GORM scope that applies LIMIT and OFFSET based on the page request.
func Paginate(req domain.PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		offset := (req.Page - 1) * req.PageSize
		return db.Offset(offset).Limit(req.PageSize)
	}
}

// Sort returns a GORM scope that applies ORDER BY based on the page request.
// Only field names present in the allowed list are accepted; others are silently ignored.
func Sort(req domain.PageRequest, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		field, direction, ok := strings.Cut(req.Sort, ":")
		if !ok {
			return db
		}
		field = strings.TrimSpace(field)
		direction = strings.ToLower(strings.TrimSpace(direction))

		if direction != "asc" && direction != "desc" {
			return db
		}
		if !validFieldName.MatchString(field) || !slices.Contains(allowed, field) {
			return db
		}

		return db.Order(field + " " + direction)
	}
}

// Filter returns a GORM scope that applies WHERE conditions based on the page request filters.
// Only filter keys present in the allowed list are applied; others are silently ignored.
// Keys ending with "__like" produce a LIKE '%value%' condition; others use exact match.
func Filter(req domain.PageRequest, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for key, value := range req.Filter {
			field, like := strings.CutSuffix(key, "__like")
			if !validFieldName.MatchString(field) || !slices.Contains(allowed, field) {
				continue
			}
			if like {
				db = db.Where(field+" LIKE ?", "%"+value+"%")
			} else {
				db = db.Where(field+" = ?", value)
			}
		}
		return db
	}
}

// NewPageResult wraps one database-paged window of items with its totals.
func NewPageResult[T any](items []T, total int64, req domain.PageRequest) *domain.PageResult[T] {
	totalPages := 0
	if req.PageSize > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	}

	if items == nil {
		items = []T{}
	}

	return &domain.PageResult[T]{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}
}

// SlicePage cuts page number page (1-indexed) of pageSize items out of an
// in-memory sequence.
//
// TotalPages is ceil(len(items)/pageSize), so an empty sequence has 0 pages.
// A page past the end yields an empty Items slice with the same totals.
// Pages below 1 are not part of the contract (callers clamp them, see
// ParsePage); they also yield an empty page.
func SlicePage[T any](items []T, page, pageSize int) *domain.PageResult[T] {
	total := len(items)
	var window []T
	if page >= 1 && pageSize > 0 && page-1 <= total/pageSize {
		offset := (page - 1) * pageSize
		if offset < total {
			end := min(offset+pageSize, total)
			window = items[offset:end:end]
		}
	}
	return NewPageResult(window, int64(total), domain.PageRequest{Page: page, PageSize: pageSize})
}

// ParseID reads a positive integer path parameter. Malformed values yield a
// validation error.
func ParseID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, domain.NewAppError(domain.CodeValidation, "invalid "+name+": "+raw, nil)
	}
	return uint(id), nil
}
