package account

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

type ProfileQuery struct {
	UserID types.ID `json:"userId" form:"userId"`
}

var (
	profileIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	ProfileByUserIDFunc = ProfileByUserID
	ProfileByIDFunc     = ProfileByID
	CreateProfileFunc   = CreateProfile
	DetailProfileFunc   = DetailProfile
	QueryProfilesFunc   = QueryProfiles
	UpdateProfileFunc   = UpdateProfile
	DeleteProfileFunc   = DeleteProfile
)

// ProfileByUserID returns nil without error when the user has no profile.
func ProfileByUserID(userId types.ID) (*Profile, error) {
	profile := Profile{}
	err := persistence.ActiveDataSourceManager.GormDB().
		Where(&Profile{UserID: userId}).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func ProfileByID(id types.ID) (*Profile, error) {
	profile := Profile{}
	err := persistence.ActiveDataSourceManager.GormDB().
		Where(&Profile{ID: id}).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func CreateProfile(c ProfileCreation, sec *session.Session) (*Profile, error) {
	userId := sec.Actor.UserID
	subject := authority.InstanceSubject("Profile", authority.Conditions{"userId": userId.String()})
	if sec.Ability.Cannot(authority.ActionCreate, subject) {
		return nil, bizerror.ErrForbidden
	}

	existing, err := ProfileByUserIDFunc(userId)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &bizerror.ErrBadParam{Cause: errors.New("profile already exists")}
	}

	now := time.Now()
	profile := Profile{
		ID:          idgen.NextID(profileIdWorker),
		Email:       c.Email,
		DisplayName: c.DisplayName,
		Picture:     c.Picture,
		UserID:      userId,
		CreateTime:  now,
		UpdateTime:  now,
	}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Create(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// DetailProfile serves anonymous readers too: the result is projected down
// to the fields the requester's ability permits.
func DetailProfile(id types.ID, sec *session.Session) (*Profile, error) {
	profile := Profile{}
	err := persistence.ActiveDataSourceManager.GormDB(sec.Context).
		Where(&Profile{ID: id}).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	if sec.Ability.Cannot(authority.ActionRead, profile.AuthzSubject()) {
		return nil, bizerror.ErrForbidden
	}

	censored := CensorProfile(profile, sec.Ability.Censor(profile.AuthzSubject(), ProfileFieldPolicy))
	return &censored, nil
}

func QueryProfiles(q ProfileQuery, sec *session.Session) ([]Profile, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	if q.UserID != 0 {
		db = db.Where(&Profile{UserID: q.UserID})
	}
	var profiles []Profile
	if err := db.Order("ID ASC").Find(&profiles).Error; err != nil {
		return nil, err
	}

	result := make([]Profile, 0, len(profiles))
	for _, profile := range profiles {
		if sec.Ability.Cannot(authority.ActionRead, profile.AuthzSubject()) {
			continue
		}
		result = append(result, CensorProfile(profile, sec.Ability.Censor(profile.AuthzSubject(), ProfileFieldPolicy)))
	}
	return result, nil
}

func UpdateProfile(id types.ID, u ProfileUpdating, sec *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		profile := Profile{}
		if err := tx.Where(&Profile{ID: id}).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		if sec.Ability.Cannot(authority.ActionUpdate, profile.AuthzSubject()) {
			return bizerror.ErrForbidden
		}
		// map-based update so an emptied picture is written too
		return tx.Model(&profile).Updates(map[string]interface{}{
			"email":        u.Email,
			"display_name": u.DisplayName,
			"picture":      u.Picture,
			"update_time":  time.Now(),
		}).Error
	})
}

// DeleteProfile removes the profile and every role grant held by it.
func DeleteProfile(id types.ID, sec *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		profile := Profile{}
		if err := tx.Where(&Profile{ID: id}).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		if sec.Ability.Cannot(authority.ActionDelete, profile.AuthzSubject()) {
			return bizerror.ErrForbidden
		}
		if err := role.DeleteGrantsByProfileFunc(tx, profile.ID); err != nil {
			return err
		}
		return tx.Delete(Profile{}, "id = ?", id).Error
	})
}
