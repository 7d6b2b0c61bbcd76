package episode

import (
	"time"

	"caster/authority"

	"github.com/fundwit/go-commons/types"
)

type Episode struct {
	ID      types.ID `json:"id" gorm:"primary_key"`
	ShowID  types.ID `json:"showId" gorm:"index:idx_episode_show"`
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Picture string   `json:"picture,omitempty"`
	AirDate types.Timestamp `json:"airDate,omitempty" sql:"type:DATETIME(3)"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
	UpdateTime time.Time `json:"updateTime" sql:"type:DATETIME(3) NOT NULL"`
}

// AuthzSubject carries the owning show id too: episode management rules are
// conditioned on the show, not on individual episodes.
func (e *Episode) AuthzSubject() authority.Subject {
	return authority.InstanceSubject("Episode", authority.Conditions{
		"id":     e.ID.String(),
		"showId": e.ShowID.String(),
	})
}

type EpisodeQuery struct {
	ShowID types.ID `json:"showId" form:"showId"`
}

type EpisodeCreation struct {
	ShowID  types.ID        `json:"showId" binding:"required"`
	Title   string          `json:"title" binding:"required,lte=128"`
	Summary string          `json:"summary" binding:"lte=1024"`
	Picture string          `json:"picture"`
	AirDate types.Timestamp `json:"airDate"`
}

type EpisodeUpdating struct {
	Title   string `json:"title" binding:"omitempty,lte=128"`
	Summary string `json:"summary" binding:"lte=1024"`
	Picture string `json:"picture"`
}
