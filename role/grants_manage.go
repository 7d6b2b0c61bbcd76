package role

import (
	"errors"

	"caster/authority"
	"caster/bizerror"
	"caster/persistence"
	"caster/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

type GrantQuery struct {
	SubjectTable string   `json:"subjectTable" form:"subjectTable" binding:"required"`
	SubjectID    types.ID `json:"subjectId" form:"subjectId" binding:"required"`
}

type GrantCreation struct {
	ProfileID    types.ID `json:"profileId" binding:"required"`
	SubjectTable string   `json:"subjectTable" binding:"required"`
	SubjectID    types.ID `json:"subjectId" binding:"required"`
	RoleKeys     []string `json:"roleKeys" binding:"required,gt=0"`
}

var (
	QueryGrantsFunc  = QueryGrants
	CreateGrantsFunc = CreateGrants
	RevokeGrantFunc  = RevokeGrant
)

// AuthzSubject tags a grant scope for ability checks. Managing grants over a
// subject requires a rule like can(manage, RoleGrant, {subjectTable, subjectId}).
func AuthzSubject(subject Subject) authority.Subject {
	return authority.InstanceSubject("RoleGrant", authority.Conditions{
		"subjectTable": subject.Table,
		"subjectId":    subject.ID.String(),
	})
}

func QueryGrants(q GrantQuery, sec *session.Session) ([]RoleGrant, error) {
	subject := Subject{Table: q.SubjectTable, ID: q.SubjectID}
	if sec.Ability.Cannot(authority.ActionManage, AuthzSubject(subject)) {
		return nil, bizerror.ErrForbidden
	}

	grants := []RoleGrant{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	if err := db.Where(&RoleGrant{SubjectTable: subject.Table, SubjectID: subject.ID}).
		Order("ID ASC").Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

func CreateGrants(d GrantCreation, sec *session.Session) error {
	subject := Subject{Table: d.SubjectTable, ID: d.SubjectID}
	if sec.Ability.Cannot(authority.ActionManage, AuthzSubject(subject)) {
		return bizerror.ErrForbidden
	}
	return GrantRolesFunc(d.ProfileID, subject, d.RoleKeys)
}

func RevokeGrant(id types.ID, sec *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		var grant RoleGrant
		if err := tx.Where(&RoleGrant{ID: id}).First(&grant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}

		subject := Subject{Table: grant.SubjectTable, ID: grant.SubjectID}
		if sec.Ability.Cannot(authority.ActionManage, AuthzSubject(subject)) {
			return bizerror.ErrForbidden
		}

		return tx.Delete(RoleGrant{}, "id = ?", id).Error
	})
}
