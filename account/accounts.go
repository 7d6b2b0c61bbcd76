package account

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"caster/authority"
	"caster/bizerror"
	"caster/idgen"
	"caster/persistence"
	"caster/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	UserByUsernameFunc        = UserByUsername
	SignupUserFunc            = SignupUser
	DetailUserFunc            = DetailUser
	UpdateUserFunc            = UpdateUser
	UpdateBasicAuthSecretFunc = UpdateBasicAuthSecret
)

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}

// UserByUsername returns nil without error when no such user exists.
func UserByUsername(username string) (*User, error) {
	user := User{}
	err := persistence.ActiveDataSourceManager.GormDB().
		Where(&User{Username: username}).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// SignupUser registers a new account. The route is open to anonymous
// requests; uniqueness of the username is enforced by the database.
func SignupUser(c UserSignup) (*UserInfo, error) {
	existing, err := UserByUsernameFunc(c.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &bizerror.ErrBadParam{Cause: errors.New("username is already taken")}
	}

	now := time.Now()
	user := User{
		ID:         idgen.NextID(userIdWorker),
		Username:   c.Username,
		Secret:     HashSha256(c.Secret),
		Active:     true,
		CreateTime: now,
		UpdateTime: now,
	}
	if err := persistence.ActiveDataSourceManager.GormDB().Create(&user).Error; err != nil {
		return nil, err
	}
	return &UserInfo{ID: user.ID, Username: user.Username, Active: user.Active}, nil
}

func DetailUser(id types.ID, sec *session.Session) (*UserInfo, error) {
	user := User{}
	err := persistence.ActiveDataSourceManager.GormDB(sec.Context).
		Where(&User{ID: id}).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	if sec.Ability.Cannot(authority.ActionRead, user.AuthzSubject()) {
		return nil, bizerror.ErrForbidden
	}
	return &UserInfo{ID: user.ID, Username: user.Username, Active: user.Active}, nil
}

func UpdateUser(id types.ID, u UserUpdating, sec *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		user := User{}
		if err := tx.Where(&User{ID: id}).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		if sec.Ability.Cannot(authority.ActionUpdate, user.AuthzSubject()) {
			return bizerror.ErrForbidden
		}
		return tx.Model(&user).Updates(map[string]interface{}{
			"active":      *u.Active,
			"update_time": time.Now(),
		}).Error
	})
}

func UpdateBasicAuthSecret(u BasicAuthUpdating, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	user := User{}
	err := db.Where(&User{ID: sec.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bizerror.ErrInvalidPassword
		}
		return err
	}

	return db.Model(&user).Updates(map[string]interface{}{
		"secret":      HashSha256(u.NewSecret),
		"update_time": time.Now(),
	}).Error
}
