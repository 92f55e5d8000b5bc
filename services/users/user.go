package users

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleUser    Role = "user"
	RoleCreator Role = "creator"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleCreator, RoleAdmin:
		return true
	}
	return false
}

// User is the persisted account. Password always holds a bcrypt hash; clear
// text set through SetPassword is hashed by the store before it is written.
type User struct {
	ID         string    `gorm:"primaryKey;size:36" bson:"_id" json:"_id"`
	Name       string    `gorm:"not null" bson:"name" json:"name"`
	Email      string    `gorm:"uniqueIndex;not null;size:255" bson:"email" json:"email"`
	Password   string    `gorm:"not null" bson:"password" json:"-"`
	Role       Role      `gorm:"size:16;not null" bson:"role" json:"role"`
	Photo      string    `bson:"photo" json:"photo"`
	Bio        string    `bson:"bio" json:"bio"`
	IsVerified bool      `gorm:"not null" bson:"isVerified" json:"isVerified"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`

	pendingPassword string
}

// SetPassword stages a clear-text password. The next Create or Save hashes it.
func (u *User) SetPassword(plain string) {
	u.pendingPassword = plain
}

func (u *User) HasPendingPassword() bool {
	return u.pendingPassword != ""
}

func (u *User) CheckPassword(plain string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsCreator is true for creators and admins.
func (u *User) IsCreator() bool {
	return u.Role == RoleCreator || u.Role == RoleAdmin
}
