package episode

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
	episodeIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	QueryEpisodesFunc = QueryEpisodes
	DetailEpisodeFunc = DetailEpisode
	CreateEpisodeFunc = CreateEpisode
	UpdateEpisodeFunc = UpdateEpisode
	DeleteEpisodeFunc = DeleteEpisode
)

func QueryEpisodes(q EpisodeQuery, sec *session.Session) ([]Episode, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	if q.ShowID != 0 {
		db = db.Where(&Episode{ShowID: q.ShowID})
	}
	var episodes []Episode
	if err := db.Order("ID ASC").Find(&episodes).Error; err != nil {
		return nil, err
	}
	return episodes, nil
}

func DetailEpisode(id types.ID, sec *session.Session) (*Episode, error) {
	e := Episode{}
	err := persistence.ActiveDataSourceManager.GormDB(sec.Context).
		Where(&Episode{ID: id}).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	if sec.Ability.Cannot(authority.ActionRead, e.AuthzSubject()) {
		return nil, bizerror.ErrForbidden
	}
	return &e, nil
}

// CreateEpisode requires episode management over the owning show, which
// only show-level grants provide.
func CreateEpisode(c EpisodeCreation, sec *session.Session) (*Episode, error) {
	subject := authority.InstanceSubject("Episode", authority.Conditions{"showId": c.ShowID.String()})
	if sec.Ability.Cannot(authority.ActionCreate, subject) {
		return nil, bizerror.ErrForbidden
	}

	now := time.Now()
	e := Episode{
		ID:         idgen.NextID(episodeIdWorker),
		ShowID:     c.ShowID,
		Title:      c.Title,
		Summary:    c.Summary,
		Picture:    c.Picture,
		AirDate:    c.AirDate,
		CreateTime: now,
		UpdateTime: now,
	}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Create(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func UpdateEpisode(id types.ID, u EpisodeUpdating, sec *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		e := Episode{}
		if err := tx.Where(&Episode{ID: id}).First(&e).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		if sec.Ability.Cannot(authority.ActionUpdate, e.AuthzSubject()) {
			return bizerror.ErrForbidden
		}
		// map-based update so emptied summary/picture fields are written too
		return tx.Model(&e).Updates(map[string]interface{}{
			"title":       u.Title,
			"summary":     u.Summary,
			"picture":     u.Picture,
			"update_time": time.Now(),
		}).Error
	})
}

// DeleteEpisode removes the episode and every role grant over it.
func DeleteEpisode(id types.ID, sec *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		e := Episode{}
		if err := tx.Where(&Episode{ID: id}).First(&e).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		if sec.Ability.Cannot(authority.ActionDelete, e.AuthzSubject()) {
			return bizerror.ErrForbidden
		}

		if err := role.DeleteGrantsBySubjectFunc(tx, role.Subject{Table: "Episode", ID: e.ID}); err != nil {
			return err
		}
		return tx.Delete(Episode{}, "id = ?", id).Error
	})
}

// DeleteEpisodesOfShow cascades a show deletion. Grants over each episode
// go with it. Runs inside the caller's transaction.
func DeleteEpisodesOfShow(tx *gorm.DB, showId types.ID) error {
	var episodes []Episode
	if err := tx.Where(&Episode{ShowID: showId}).Find(&episodes).Error; err != nil {
		return err
	}
	for _, e := range episodes {
		if err := role.DeleteGrantsBySubjectFunc(tx, role.Subject{Table: "Episode", ID: e.ID}); err != nil {
			return err
		}
	}
	return tx.Delete(Episode{}, "show_id = ?", showId).Error
}
