package role_test

import (
	"context"
	"errors"

	"caster/persistence"
	"caster/role"
	"caster/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var (
	permUpdate = role.Permission{Key: "SHOW_UPDATE", Name: "Update show"}
	permDelete = role.Permission{Key: "SHOW_DELETE", Name: "Delete show"}
	permChat   = role.Permission{Key: "EPISODE_CHAT", Name: "Chat"}

	roleManager = role.Role{Key: "SHOW_MANAGER", Permissions: []role.Permission{permUpdate}}
	roleAdmin   = role.Role{Key: "SHOW_ADMIN", Permissions: []role.Permission{permUpdate, permDelete}}
	roleGuest   = role.Role{Key: "EPISODE_GUEST", Permissions: []role.Permission{permChat}}
)

var _ = Describe("grants", func() {
	var testDatabase *testinfra.TestDatabase

	BeforeEach(func() {
		testDatabase = testinfra.StartMysqlTestDatabase("caster")
		persistence.ActiveDataSourceManager = testDatabase.DS
		Expect(testDatabase.DS.GormDB(context.TODO()).AutoMigrate(&role.RoleGrant{}).Error).To(BeNil())

		role.Reset()
		Expect(role.Register([]role.Permission{permUpdate, permDelete, permChat},
			[]role.Role{roleManager, roleAdmin, roleGuest})).To(BeNil())
	})
	AfterEach(func() {
		testinfra.StopMysqlTestDatabase(testDatabase)
	})

	Describe("GrantRoles", func() {
		It("should persist one grant per role key", func() {
			subject := role.Subject{Table: "Show", ID: 100}
			Expect(role.GrantRoles(10, subject, []string{roleManager.Key, roleGuest.Key})).To(BeNil())

			roles, err := role.RolesByProfile(10, subject)
			Expect(err).To(BeNil())
			Expect(roles).To(Equal([]role.Role{roleManager, roleGuest}))
		})

		It("should reject unregistered role keys without inserting anything", func() {
			subject := role.Subject{Table: "Show", ID: 100}
			err := role.GrantRoles(10, subject, []string{roleManager.Key, "NO_SUCH_ROLE"})
			Expect(errors.Is(err, role.ErrUnregistered)).To(BeTrue())

			roles, err := role.RolesByProfile(10, subject)
			Expect(err).To(BeNil())
			Expect(roles).To(BeEmpty())
		})
	})

	Describe("RolesForTable", func() {
		It("should group roles by subject id without cross-contamination", func() {
			Expect(role.GrantRoles(10, role.Subject{Table: "Show", ID: 100}, []string{roleAdmin.Key})).To(BeNil())
			Expect(role.GrantRoles(10, role.Subject{Table: "Show", ID: 200}, []string{roleManager.Key})).To(BeNil())
			Expect(role.GrantRoles(10, role.Subject{Table: "Episode", ID: 300}, []string{roleGuest.Key})).To(BeNil())
			Expect(role.GrantRoles(20, role.Subject{Table: "Show", ID: 100}, []string{roleManager.Key})).To(BeNil())

			grouped, err := role.RolesForTable(10, "Show")
			Expect(err).To(BeNil())
			Expect(grouped).To(Equal(map[types.ID][]role.Role{
				100: {roleAdmin},
				200: {roleManager},
			}))
		})

		It("should error on a stored grant with an unregistered role", func() {
			Expect(role.GrantRoles(10, role.Subject{Table: "Show", ID: 100}, []string{roleManager.Key})).To(BeNil())
			role.Reset()

			_, err := role.RolesForTable(10, "Show")
			Expect(errors.Is(err, role.ErrUnregistered)).To(BeTrue())
		})
	})

	Describe("permission flattening", func() {
		It("should dedupe permissions shared by several roles", func() {
			subject := role.Subject{Table: "Show", ID: 100}
			Expect(role.GrantRoles(10, subject, []string{roleManager.Key, roleAdmin.Key})).To(BeNil())

			permissions, err := role.PermissionsByProfile(10, subject)
			Expect(err).To(BeNil())
			Expect(permissions).To(Equal([]role.Permission{permUpdate, permDelete}))

			keys, err := role.PermissionKeysByProfile(10, subject)
			Expect(err).To(BeNil())
			Expect(keys).To(Equal([]string{permUpdate.Key, permDelete.Key}))
		})

		It("should answer AND and OR permission checks", func() {
			subject := role.Subject{Table: "Show", ID: 100}
			Expect(role.GrantRoles(10, subject, []string{roleManager.Key})).To(BeNil())

			has, err := role.HasPermissions(10, subject, []role.Permission{permUpdate})
			Expect(err).To(BeNil())
			Expect(has).To(BeTrue())

			has, err = role.HasPermissions(10, subject, []role.Permission{permUpdate, permDelete})
			Expect(err).To(BeNil())
			Expect(has).To(BeFalse())

			any, err := role.AnyPermission(10, subject, []role.Permission{permUpdate, permDelete})
			Expect(err).To(BeNil())
			Expect(any).To(BeTrue())

			any, err = role.AnyPermission(10, subject, []role.Permission{permDelete})
			Expect(err).To(BeNil())
			Expect(any).To(BeFalse())
		})
	})

	Describe("cascade deletion", func() {
		It("should remove every grant over a deleted subject", func() {
			subject := role.Subject{Table: "Show", ID: 100}
			Expect(role.GrantRoles(10, subject, []string{roleAdmin.Key})).To(BeNil())
			Expect(role.GrantRoles(20, subject, []string{roleManager.Key})).To(BeNil())
			Expect(role.GrantRoles(10, role.Subject{Table: "Show", ID: 200}, []string{roleManager.Key})).To(BeNil())

			Expect(role.DeleteGrantsBySubject(testDatabase.DS.GormDB(), subject)).To(BeNil())

			roles, err := role.RolesByProfile(10, subject)
			Expect(err).To(BeNil())
			Expect(roles).To(BeEmpty())
			roles, err = role.RolesByProfile(10, role.Subject{Table: "Show", ID: 200})
			Expect(err).To(BeNil())
			Expect(roles).To(Equal([]role.Role{roleManager}))
		})

		It("should remove every grant held by a deleted profile", func() {
			Expect(role.GrantRoles(10, role.Subject{Table: "Show", ID: 100}, []string{roleAdmin.Key})).To(BeNil())
			Expect(role.GrantRoles(10, role.Subject{Table: "Episode", ID: 300}, []string{roleGuest.Key})).To(BeNil())
			Expect(role.GrantRoles(20, role.Subject{Table: "Show", ID: 100}, []string{roleManager.Key})).To(BeNil())

			Expect(role.DeleteGrantsByProfile(testDatabase.DS.GormDB(), 10)).To(BeNil())

			roles, err := role.RolesByProfile(10, role.Subject{Table: "Show", ID: 100})
			Expect(err).To(BeNil())
			Expect(roles).To(BeEmpty())
			roles, err = role.RolesByProfile(20, role.Subject{Table: "Show", ID: 100})
			Expect(err).To(BeNil())
			Expect(roles).To(Equal([]role.Role{roleManager}))
		})
	})
})
