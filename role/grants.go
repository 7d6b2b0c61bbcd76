package role

import (
	"sort"
	"time"

	"caster/idgen"
	"caster/persistence"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

// RoleGrant binds a profile to a Role over one specific subject instance.
type RoleGrant struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	ProfileID    types.ID `json:"profileId" gorm:"index:idx_profile_table"`
	RoleKey      string   `json:"roleKey"`
	SubjectTable string   `json:"subjectTable" gorm:"index:idx_profile_table"`
	SubjectID    types.ID `json:"subjectId"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
}

// Subject locates the instance a grant applies to.
type Subject struct {
	Table string
	ID    types.ID
}

var (
	grantIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	RolesForTableFunc         = RolesForTable
	PermissionsForTableFunc   = PermissionsForTable
	GrantRolesFunc            = GrantRoles
	DeleteGrantsBySubjectFunc = DeleteGrantsBySubject
	DeleteGrantsByProfileFunc = DeleteGrantsByProfile
)

// RolesByProfile returns all Roles granted to the profile over one subject
// instance. A stored grant with an unregistered role key errors.
func RolesByProfile(profileId types.ID, subject Subject) ([]Role, error) {
	var grants []RoleGrant
	db := persistence.ActiveDataSourceManager.GormDB()
	if err := db.Where(&RoleGrant{ProfileID: profileId, SubjectTable: subject.Table, SubjectID: subject.ID}).
		Find(&grants).Error; err != nil {
		return nil, err
	}
	return rolesOfGrants(grants)
}

// RolesForTable returns all Roles granted to the profile across every
// instance of the table, grouped by subject id. One query, not N.
func RolesForTable(profileId types.ID, table string) (map[types.ID][]Role, error) {
	var grants []RoleGrant
	db := persistence.ActiveDataSourceManager.GormDB()
	if err := db.Where(&RoleGrant{ProfileID: profileId, SubjectTable: table}).
		Find(&grants).Error; err != nil {
		return nil, err
	}

	result := map[types.ID][]Role{}
	for _, grant := range grants {
		role, err := GetRole(grant.RoleKey)
		if err != nil {
			return nil, err
		}
		result[grant.SubjectID] = append(result[grant.SubjectID], role)
	}
	return result, nil
}

// PermissionsByProfile flattens the profile's Roles over one subject into a
// distinct Permission list.
func PermissionsByProfile(profileId types.ID, subject Subject) ([]Permission, error) {
	roles, err := RolesByProfile(profileId, subject)
	if err != nil {
		return nil, err
	}
	return distinctPermissions(roles), nil
}

// PermissionsForTable flattens RolesForTable into distinct Permissions per
// subject id.
func PermissionsForTable(profileId types.ID, table string) (map[types.ID][]Permission, error) {
	roles, err := RolesForTableFunc(profileId, table)
	if err != nil {
		return nil, err
	}

	result := map[types.ID][]Permission{}
	for subjectId, subjectRoles := range roles {
		result[subjectId] = distinctPermissions(subjectRoles)
	}
	return result, nil
}

func PermissionKeysByProfile(profileId types.ID, subject Subject) ([]string, error) {
	permissions, err := PermissionsByProfile(profileId, subject)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(permissions))
	for _, p := range permissions {
		keys = append(keys, p.Key)
	}
	return keys, nil
}

// HasPermissions reports whether every given permission is granted (AND).
func HasPermissions(profileId types.ID, subject Subject, permissions []Permission) (bool, error) {
	keys, err := PermissionKeysByProfile(profileId, subject)
	if err != nil {
		return false, err
	}
	for _, p := range permissions {
		if !containsKey(keys, p.Key) {
			return false, nil
		}
	}
	return true, nil
}

// AnyPermission reports whether at least one given permission is granted (OR).
func AnyPermission(profileId types.ID, subject Subject, permissions []Permission) (bool, error) {
	keys, err := PermissionKeysByProfile(profileId, subject)
	if err != nil {
		return false, err
	}
	for _, p := range permissions {
		if containsKey(keys, p.Key) {
			return true, nil
		}
	}
	return false, nil
}

// GrantRoles bulk-inserts grants of the given roles over the subject. Every
// role key must be registered; nothing is inserted otherwise.
func GrantRoles(profileId types.ID, subject Subject, roleKeys []string) error {
	grants := make([]RoleGrant, 0, len(roleKeys))
	for _, key := range roleKeys {
		role, err := GetRole(key)
		if err != nil {
			return err
		}
		grants = append(grants, RoleGrant{
			ID:           idgen.NextID(grantIdWorker),
			ProfileID:    profileId,
			RoleKey:      role.Key,
			SubjectTable: subject.Table,
			SubjectID:    subject.ID,
			CreateTime:   time.Now(),
		})
	}

	return persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		for _, grant := range grants {
			if err := tx.Create(&grant).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteGrantsBySubject removes every grant over the subject, used when the
// subject itself is deleted. Runs inside the caller's transaction.
func DeleteGrantsBySubject(tx *gorm.DB, subject Subject) error {
	return tx.Where("subject_table = ? AND subject_id = ?", subject.Table, subject.ID).
		Delete(&RoleGrant{}).Error
}

// DeleteGrantsByProfile removes every grant held by the profile, used when
// the profile itself is deleted. Runs inside the caller's transaction.
func DeleteGrantsByProfile(tx *gorm.DB, profileId types.ID) error {
	return tx.Where("profile_id = ?", profileId).Delete(&RoleGrant{}).Error
}

// SortedSubjectIds orders the keys of a per-subject permission map. Rule
// contributors iterate grants in this order so the composed rule list is
// deterministic for a given grant state.
func SortedSubjectIds(permissions map[types.ID][]Permission) []types.ID {
	ids := make([]types.ID, 0, len(permissions))
	for id := range permissions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func rolesOfGrants(grants []RoleGrant) ([]Role, error) {
	roles := make([]Role, 0, len(grants))
	for _, grant := range grants {
		role, err := GetRole(grant.RoleKey)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func distinctPermissions(roles []Role) []Permission {
	var permissions []Permission
	seen := map[string]bool{}
	for _, role := range roles {
		for _, p := range role.Permissions {
			if seen[p.Key] {
				continue
			}
			seen[p.Key] = true
			permissions = append(permissions, p)
		}
	}
	return permissions
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
