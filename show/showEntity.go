package show

import (
	"time"

	"caster/authority"

	"github.com/fundwit/go-commons/types"
)

type Show struct {
	ID      types.ID `json:"id" gorm:"primary_key"`
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Picture string   `json:"picture,omitempty"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
	UpdateTime time.Time `json:"updateTime" sql:"type:DATETIME(3) NOT NULL"`
}

func (s *Show) AuthzSubject() authority.Subject {
	return authority.InstanceSubject("Show", authority.Conditions{"id": s.ID.String()})
}

type ShowQuery struct {
	Title string `json:"title" form:"title"`
}

type ShowCreation struct {
	Title   string `json:"title" binding:"required,lte=128"`
	Summary string `json:"summary" binding:"lte=1024"`
	Picture string `json:"picture"`
}

type ShowUpdating struct {
	Title   string `json:"title" binding:"omitempty,lte=128"`
	Summary string `json:"summary" binding:"lte=1024"`
	Picture string `json:"picture"`
}
