package show

import (
	"errors"
	"time"

	"caster/authority"
	"caster/bizerror"
	"caster/idgen"
	"caster/persistence"
	"caster/role"
	"caster/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	showIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	QueryShowsFunc = QueryShows
	DetailShowFunc = DetailShow
	CreateShowFunc = CreateShow
	UpdateShowFunc = UpdateShow
	DeleteShowFunc = DeleteShow

	// DeleteEpisodesOfShowFunc cascades a show deletion into its episodes.
	// Wired at bootstrap; the episode package owns the implementation.
	DeleteEpisodesOfShowFunc func(tx *gorm.DB, showId types.ID) error
)

func QueryShows(q ShowQuery, sec *session.Session) ([]Show, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	if q.Title != "" {
		db = db.Where("title LIKE ?", "%"+q.Title+"%")
	}
	var shows []Show
	if err := db.Order("ID ASC").Find(&shows).Error; err != nil {
		return nil, err
	}
	return shows, nil
}

func DetailShow(id types.ID, sec *session.Session) (*Show, error) {
	s := Show{}
	err := persistence.ActiveDataSourceManager.GormDB(sec.Context).
		Where(&Show{ID: id}).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	if sec.Ability.Cannot(authority.ActionRead, s.AuthzSubject()) {
		return nil, bizerror.ErrForbidden
	}
	return &s, nil
}

// CreateShow persists the show and grants the creator the show admin role,
// so a fresh show is immediately manageable by whoever created it.
func CreateShow(c ShowCreation, sec *session.Session) (*Show, error) {
	if !sec.Actor.HasProfile() {
		return nil, bizerror.ErrNoProfile
	}
	if sec.Ability.Cannot(authority.ActionCreate, authority.TableSubject("Show")) {
		return nil, bizerror.ErrForbidden
	}

	now := time.Now()
	s := Show{
		ID:         idgen.NextID(showIdWorker),
		Title:      c.Title,
		Summary:    c.Summary,
		Picture:    c.Picture,
		CreateTime: now,
		UpdateTime: now,
	}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Create(&s).Error; err != nil {
		return nil, err
	}

	subject := role.Subject{Table: "Show", ID: s.ID}
	if err := role.GrantRolesFunc(sec.ProfileID(), subject, []string{RoleShowAdmin.Key}); err != nil {
		return nil, err
	}
	return &s, nil
}

func UpdateShow(id types.ID, u ShowUpdating, sec *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		s := Show{}
		if err := tx.Where(&Show{ID: id}).First(&s).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		if sec.Ability.Cannot(authority.ActionUpdate, s.AuthzSubject()) {
			return bizerror.ErrForbidden
		}
		// struct updates skip zero values; a map writes cleared fields too
		return tx.Model(&s).Updates(map[string]interface{}{
			"title":       u.Title,
			"summary":     u.Summary,
			"picture":     u.Picture,
			"update_time": time.Now(),
		}).Error
	})
}

// DeleteShow removes the show, its episodes and every role grant over any
// of them, all in one transaction.
func DeleteShow(id types.ID, sec *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		s := Show{}
		if err := tx.Where(&Show{ID: id}).First(&s).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		if sec.Ability.Cannot(authority.ActionDelete, s.AuthzSubject()) {
			return bizerror.ErrForbidden
		}

		if DeleteEpisodesOfShowFunc != nil {
			if err := DeleteEpisodesOfShowFunc(tx, s.ID); err != nil {
				return err
			}
		}
		if err := role.DeleteGrantsBySubjectFunc(tx, role.Subject{Table: "Show", ID: s.ID}); err != nil {
			return err
		}
		return tx.Delete(Show{}, "id = ?", id).Error
	})
}
