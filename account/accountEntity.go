package account

import (
	"time"

	"caster/authority"

	"github.com/fundwit/go-commons/types"
)

type User struct {
	ID       types.ID `json:"id" gorm:"primary_key"`
	Username string   `json:"username" gorm:"unique_index:uni_user_username"`
	Secret   string   `json:"-"`
	Active   bool     `json:"active"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
	UpdateTime time.Time `json:"updateTime" sql:"type:DATETIME(3) NOT NULL"`
}

// AuthzSubject tags the user record for ability checks. Identity rules are
// keyed on the username, so the instance carries it.
func (u *User) AuthzSubject() authority.Subject {
	return authority.InstanceSubject("User", authority.Conditions{"username": u.Username})
}

type UserInfo struct {
	ID       types.ID `json:"id"`
	Username string   `json:"username"`
	Active   bool     `json:"active"`
}

type UserSignup struct {
	Username string `json:"username" binding:"required,lte=32"`
	Secret   string `json:"secret" binding:"required,gte=6"`
}

type UserUpdating struct {
	Active *bool `json:"active" binding:"required"`
}

type BasicAuthUpdating struct {
	OriginalSecret string `json:"originalSecret" binding:"required"`
	NewSecret      string `json:"newSecret" binding:"required,gte=6"`
}
