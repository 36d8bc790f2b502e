package domain

import "context"

// AdminLogin is the account that owns the marketplace. Its rights cannot be
// changed and it cannot be banned.
const AdminLogin = "admin"

// User represents a marketplace account.
type User struct {
	BaseModel
	Login       string `gorm:"size:100;uniqueIndex;not null" json:"login"`
	Nickname    string `gorm:"size:100;not null" json:"nickname"`
	IsAdmin     bool   `gorm:"not null;default:false" json:"is_admin"`
	IsBanned    bool   `gorm:"not null;default:false" json:"is_banned"`
	IsModerator bool   `gorm:"not null;default:false" json:"is_moderator"`
	CanBan      bool   `gorm:"not null;default:false" json:"can_ban"`
	CanChat     bool   `gorm:"not null;default:false" json:"can_chat"`
}

// Right is a grantable moderation right.
type Right string

// Grantable rights. Admin status itself is not grantable.
const (
	RightModerator Right = "is_moderator"
	RightCanBan    Right = "can_ban"
	RightCanChat   Right = "can_chat"
)

// ParseRight maps an external right name onto a Right.
func ParseRight(s string) (Right, bool) {
	switch r := Right(s); r {
	case RightModerator, RightCanBan, RightCanChat:
		return r, true
	default:
		return "", false
	}
}

// CanModerate reports whether the user may view the admin panel.
func (u *User) CanModerate() bool {
	return u.IsAdmin || u.IsModerator
}

// CanBanUsers reports whether the user may ban accounts and delete any listing.
func (u *User) CanBanUsers() bool {
	return u.IsAdmin || u.CanBan
}

// Stats is the admin panel summary.
type Stats struct {
	Users    int64 `json:"users"`
	Listings int64 `json:"listings"`
	Views    int64 `json:"views"`
}

// UserRepository defines the data access interface for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByLogin(ctx context.Context, login string) (*User, error)
	List(ctx context.Context, req PageRequest) (*PageResult[User], error)
	SetRight(ctx context.Context, login string, right Right, value bool) error
	SetBanned(ctx context.Context, login string, banned bool) error
	Count(ctx context.Context) (int64, error)
}

// UserService defines the business logic interface for users and administration.
type UserService interface {
	Register(ctx context.Context, login, nickname string) (*User, error)
	GetUser(ctx context.Context, login string) (*User, error)
	ListUsers(ctx context.Context, actor string, req PageRequest) (*PageResult[User], error)
	SetRight(ctx context.Context, actor, login, right string, value bool) error
	Ban(ctx context.Context, actor, login string) error
	Unban(ctx context.Context, actor, login string) error
	Stats(ctx context.Context, actor string) (*Stats, error)
}
