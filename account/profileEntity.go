package account

import (
	"time"

	"caster/authority"

	"github.com/fundwit/go-commons/types"
)

// Profile is the public persona of a user. A user has at most one profile;
// role grants and chat messages reference profiles, never users.
type Profile struct {
	ID          types.ID `json:"id" gorm:"primary_key"`
	Email       string   `json:"email,omitempty"`
	DisplayName string   `json:"displayName"`
	Picture     string   `json:"picture,omitempty"`
	UserID      types.ID `json:"userId,omitempty" gorm:"unique_index:uni_profile_user"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
	UpdateTime time.Time `json:"updateTime" sql:"type:DATETIME(3) NOT NULL"`
}

func (p *Profile) AuthzSubject() authority.Subject {
	return authority.InstanceSubject("Profile", authority.Conditions{
		"id":     p.ID.String(),
		"userId": p.UserID.String(),
	})
}

// ProfileFields is the full field set the censor projects against. Read
// access to a profile does not imply read access to every field of it.
var ProfileFields = []string{"id", "email", "displayName", "picture", "userId"}

var ProfileFieldPolicy = authority.FieldPolicy{DefaultFields: ProfileFields}

// CensorProfile projects p down to the permitted field set. Projection is
// idempotent: censoring an already censored profile changes nothing.
func CensorProfile(p Profile, permitted []string) Profile {
	censored := Profile{CreateTime: p.CreateTime, UpdateTime: p.UpdateTime}
	for _, field := range permitted {
		switch field {
		case "id":
			censored.ID = p.ID
		case "email":
			censored.Email = p.Email
		case "displayName":
			censored.DisplayName = p.DisplayName
		case "picture":
			censored.Picture = p.Picture
		case "userId":
			censored.UserID = p.UserID
		}
	}
	return censored
}

type ProfileCreation struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"displayName" binding:"required,lte=64"`
	Picture     string `json:"picture"`
}

type ProfileUpdating struct {
	Email       string `json:"email" binding:"omitempty,email"`
	DisplayName string `json:"displayName" binding:"omitempty,lte=64"`
	Picture     string `json:"picture"`
}
