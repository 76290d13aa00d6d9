package userdb

import (
	"time"

	"github.com/uptrace/bun"
)

// User is a registered competitor. Identity is owned by the login provider;
// the id is the provider's opaque user id.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        string    `bun:"id,pk" json:"id"`
	Name      string    `bun:"name,notnull,default:''" json:"name"`
	Image     *string   `bun:"image,nullzero" json:"image,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// DisplayName returns the name to show on leaderboards, falling back to the id.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.ID
}
