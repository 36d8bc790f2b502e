package user

import (
	"context"

	"gorm.io/gorm"

	"github.com/simp-lee/classifieds/internal/domain"
	"github.com/simp-lee/classifieds/internal/pkg"
)

// Allowed fields for sorting and filtering in List queries.
var (
	allowedSortFields   = []string{"id", "login", "nickname", "created_at"}
	allowedFilterFields = []string{"login", "nickname"}
)

// rightColumns resolves a grantable right to its fixed column. Column names
// never come from request input.
var rightColumns = map[domain.Right]string{
	domain.RightModerator: "is_moderator",
	domain.RightCanBan:    "can_ban",
	domain.RightCanChat:   "can_chat",
}

// userRepository implements domain.UserRepository using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository backed by the given GORM database.
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return pkg.MapDBError(r.db.WithContext(ctx).Create(user).Error, "user")
}

// GetByLogin retrieves a user by login.
func (r *userRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("login = ?", login).First(&user).Error; err != nil {
		return nil, pkg.MapDBError(err, "user")
	}
	return &user, nil
}

// List returns a paginated, filtered list of users. Staff accounts come
// first, then the requested sort applies.
func (r *userRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.User], error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&domain.User{}).
		Scopes(pkg.Filter(req, allowedFilterFields))

	if err := base.Count(&total).Error; err != nil {
		return nil, pkg.MapDBError(err, "user")
	}

	var users []domain.User
	if err := base.
		Order("is_admin DESC").
		Order("is_moderator DESC").
		Scopes(
			pkg.Paginate(req),
			pkg.Sort(req, allowedSortFields),
		).Find(&users).Error; err != nil {
		return nil, pkg.MapDBError(err, "user")
	}

	return pkg.NewPageResult(users, total, req), nil
}

// SetRight sets one grantable right through the fixed right→column table.
func (r *userRepository) SetRight(ctx context.Context, login string, right domain.Right, value bool) error {
	column, ok := rightColumns[right]
	if !ok {
		return domain.NewAppError(domain.CodeValidation, "unknown right: "+string(right), nil)
	}
	return r.updateFlag(ctx, login, column, value)
}

func (r *userRepository) SetBanned(ctx context.Context, login string, banned bool) error {
	return r.updateFlag(ctx, login, "is_banned", banned)
}

// Count returns the number of registered users.
func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error; err != nil {
		return 0, pkg.MapDBError(err, "user")
	}
	return n, nil
}

func (r *userRepository) updateFlag(ctx context.Context, login, column string, value bool) error {
	result := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("login = ?", login).
		Update(column, value)
	if result.Error != nil {
		return pkg.MapDBError(result.Error, "user")
	}
	if result.RowsAffected == 0 {
		return domain.NewAppError(domain.CodeNotFound, "user not found", nil)
	}
	return nil
}
