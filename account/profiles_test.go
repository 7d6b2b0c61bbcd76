package account_test

import (
	"context"

	"caster/account"
	"caster/authority"
	"caster/bizerror"
	"caster/persistence"
	"caster/role"
	"caster/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("profiles", func() {
	var testDatabase *testinfra.TestDatabase

	ownerRules := func(userId types.ID) func(b *authority.RuleBuilder) {
		return func(b *authority.RuleBuilder) {
			b.Can(authority.ActionRead, "Profile")
			b.CannotFields(authority.ActionRead, "Profile", "email", "userId")
			b.CanWhen(authority.ActionManage, "Profile", authority.Conditions{"userId": userId.String()})
		}
	}
	publicRules := func(b *authority.RuleBuilder) {
		b.Can(authority.ActionRead, "Profile")
		b.CannotFields(authority.ActionRead, "Profile", "email", "userId")
	}

	BeforeEach(func() {
		testDatabase = testinfra.StartMysqlTestDatabase("caster")
		persistence.ActiveDataSourceManager = testDatabase.DS
		Expect(testDatabase.DS.GormDB(context.TODO()).
			AutoMigrate(&account.Profile{}, &role.RoleGrant{}).Error).To(BeNil())

		account.ProfileByUserIDFunc = account.ProfileByUserID
		role.DeleteGrantsByProfileFunc = role.DeleteGrantsByProfile
	})
	AfterEach(func() {
		testinfra.StopMysqlTestDatabase(testDatabase)
	})

	Describe("CreateProfile", func() {
		It("should create a profile for the acting user only", func() {
			sec := testinfra.BuildSession(7, "ann", 0, ownerRules(7))
			profile, err := account.CreateProfile(account.ProfileCreation{
				Email: "ann@example.com", DisplayName: "Ann"}, sec)
			Expect(err).To(BeNil())
			Expect(profile.UserID).To(Equal(types.ID(7)))

			_, err = account.CreateProfile(account.ProfileCreation{
				Email: "ann@example.com", DisplayName: "Ann again"}, sec)
			Expect(err).To(BeAssignableToTypeOf(&bizerror.ErrBadParam{}))
		})

		It("should forbid creation without an owner rule", func() {
			sec := testinfra.BuildSession(7, "ann", 0, publicRules)
			_, err := account.CreateProfile(account.ProfileCreation{
				Email: "ann@example.com", DisplayName: "Ann"}, sec)
			Expect(err).To(Equal(bizerror.ErrForbidden))
		})
	})

	Describe("DetailProfile", func() {
		It("should censor contact fields for strangers and keep them for the owner", func() {
			owner := testinfra.BuildSession(7, "ann", 0, ownerRules(7))
			profile, err := account.CreateProfile(account.ProfileCreation{
				Email: "ann@example.com", DisplayName: "Ann", Picture: "p.png"}, owner)
			Expect(err).To(BeNil())

			visitor := testinfra.BuildAnonymousSession(publicRules)
			censored, err := account.DetailProfile(profile.ID, visitor)
			Expect(err).To(BeNil())
			Expect(censored.DisplayName).To(Equal("Ann"))
			Expect(censored.Picture).To(Equal("p.png"))
			Expect(censored.Email).To(BeEmpty())
			Expect(censored.UserID).To(BeZero())

			full, err := account.DetailProfile(profile.ID, owner)
			Expect(err).To(BeNil())
			Expect(full.Email).To(Equal("ann@example.com"))
			Expect(full.UserID).To(Equal(types.ID(7)))

			_, err = account.DetailProfile(types.ID(404), visitor)
			Expect(err).To(Equal(bizerror.ErrNotFound))
		})
	})

	Describe("QueryProfiles", func() {
		It("should censor each profile for the requester", func() {
			ann := testinfra.BuildSession(7, "ann", 0, ownerRules(7))
			_, err := account.CreateProfile(account.ProfileCreation{
				Email: "ann@example.com", DisplayName: "Ann"}, ann)
			Expect(err).To(BeNil())
			bob := testinfra.BuildSession(8, "bob", 0, ownerRules(8))
			_, err = account.CreateProfile(account.ProfileCreation{
				Email: "bob@example.com", DisplayName: "Bob"}, bob)
			Expect(err).To(BeNil())

			profiles, err := account.QueryProfiles(account.ProfileQuery{}, ann)
			Expect(err).To(BeNil())
			Expect(profiles).To(HaveLen(2))
			Expect(profiles[0].Email).To(Equal("ann@example.com"))
			Expect(profiles[1].Email).To(BeEmpty())
		})
	})

	Describe("UpdateProfile", func() {
		It("should answer not found before forbidden", func() {
			sec := testinfra.BuildSession(7, "ann", 0, publicRules)
			err := account.UpdateProfile(types.ID(404), account.ProfileUpdating{DisplayName: "X"}, sec)
			Expect(err).To(Equal(bizerror.ErrNotFound))
		})

		It("should let only the owner update", func() {
			owner := testinfra.BuildSession(7, "ann", 0, ownerRules(7))
			profile, err := account.CreateProfile(account.ProfileCreation{
				Email: "ann@example.com", DisplayName: "Ann"}, owner)
			Expect(err).To(BeNil())

			stranger := testinfra.BuildSession(8, "bob", 0, ownerRules(8))
			Expect(account.UpdateProfile(profile.ID, account.ProfileUpdating{DisplayName: "X"}, stranger)).
				To(Equal(bizerror.ErrForbidden))

			Expect(account.UpdateProfile(profile.ID, account.ProfileUpdating{DisplayName: "Ann B."}, owner)).
				To(BeNil())
			updated, err := account.DetailProfile(profile.ID, owner)
			Expect(err).To(BeNil())
			Expect(updated.DisplayName).To(Equal("Ann B."))
		})

		It("should write a cleared picture field", func() {
			owner := testinfra.BuildSession(7, "ann", 0, ownerRules(7))
			profile, err := account.CreateProfile(account.ProfileCreation{
				Email: "ann@example.com", DisplayName: "Ann", Picture: "me.png"}, owner)
			Expect(err).To(BeNil())

			Expect(account.UpdateProfile(profile.ID, account.ProfileUpdating{
				Email: "ann@example.com", DisplayName: "Ann"}, owner)).To(BeNil())

			updated, err := account.DetailProfile(profile.ID, owner)
			Expect(err).To(BeNil())
			Expect(updated.Picture).To(BeEmpty())
		})
	})

	Describe("DeleteProfile", func() {
		It("should delete the profile and its role grants", func() {
			owner := testinfra.BuildSession(7, "ann", 0, ownerRules(7))
			profile, err := account.CreateProfile(account.ProfileCreation{
				Email: "ann@example.com", DisplayName: "Ann"}, owner)
			Expect(err).To(BeNil())

			role.Reset()
			Expect(role.Register([]role.Permission{{Key: "SHOW_UPDATE"}},
				[]role.Role{{Key: "SHOW_MANAGER", Permissions: []role.Permission{{Key: "SHOW_UPDATE"}}}})).To(BeNil())
			Expect(role.GrantRoles(profile.ID, role.Subject{Table: "Show", ID: 100}, []string{"SHOW_MANAGER"})).To(BeNil())

			Expect(account.DeleteProfile(profile.ID, owner)).To(BeNil())

			_, err = account.DetailProfile(profile.ID, owner)
			Expect(err).To(Equal(bizerror.ErrNotFound))
			roles, err := role.RolesByProfile(profile.ID, role.Subject{Table: "Show", ID: 100})
			Expect(err).To(BeNil())
			Expect(roles).To(BeEmpty())
		})
	})
})
