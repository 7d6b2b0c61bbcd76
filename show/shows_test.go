package show_test

import (
	"context"

	"caster/authority"
	"caster/bizerror"
	"caster/episode"
	"caster/persistence"
	"caster/role"
	"caster/show"
	"caster/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("shows", func() {
	var testDatabase *testinfra.TestDatabase

	creatorRules := func(b *authority.RuleBuilder) {
		b.Can(authority.ActionRead, "Show")
		b.Can(authority.ActionCreate, "Show")
	}
	managerRules := func(showId types.ID) func(b *authority.RuleBuilder) {
		return func(b *authority.RuleBuilder) {
			b.Can(authority.ActionRead, "Show")
			b.CanWhen(authority.ActionUpdate, "Show", authority.Conditions{"id": showId.String()})
			b.CanWhen(authority.ActionDelete, "Show", authority.Conditions{"id": showId.String()})
		}
	}

	BeforeEach(func() {
		testDatabase = testinfra.StartMysqlTestDatabase("caster")
		persistence.ActiveDataSourceManager = testDatabase.DS
		Expect(testDatabase.DS.GormDB(context.TODO()).
			AutoMigrate(&show.Show{}, &episode.Episode{}, &role.RoleGrant{}).Error).To(BeNil())

		role.Reset()
		Expect(role.Register(show.Permissions(), show.Roles())).To(BeNil())
		role.GrantRolesFunc = role.GrantRoles
		role.DeleteGrantsBySubjectFunc = role.DeleteGrantsBySubject
		show.DeleteEpisodesOfShowFunc = episode.DeleteEpisodesOfShow
	})
	AfterEach(func() {
		testinfra.StopMysqlTestDatabase(testDatabase)
	})

	Describe("CreateShow", func() {
		It("should grant the creator the show admin role", func() {
			sec := testinfra.BuildSession(1, "ann", 10, creatorRules)
			created, err := show.CreateShow(show.ShowCreation{Title: "My Show"}, sec)
			Expect(err).To(BeNil())
			Expect(created.Title).To(Equal("My Show"))

			roles, err := role.RolesByProfile(10, role.Subject{Table: "Show", ID: created.ID})
			Expect(err).To(BeNil())
			Expect(roles).To(Equal([]role.Role{show.RoleShowAdmin}))
		})

		It("should reject actors without a profile", func() {
			sec := testinfra.BuildSession(1, "ann", 0, creatorRules)
			_, err := show.CreateShow(show.ShowCreation{Title: "My Show"}, sec)
			Expect(err).To(Equal(bizerror.ErrNoProfile))
		})

		It("should reject abilities without a create rule", func() {
			sec := testinfra.BuildSession(1, "ann", 10, func(b *authority.RuleBuilder) {
				b.Can(authority.ActionRead, "Show")
			})
			_, err := show.CreateShow(show.ShowCreation{Title: "My Show"}, sec)
			Expect(err).To(Equal(bizerror.ErrForbidden))
		})
	})

	Describe("DetailShow and QueryShows", func() {
		It("should serve shows to readers and filter by title", func() {
			creator := testinfra.BuildSession(1, "ann", 10, creatorRules)
			created, err := show.CreateShow(show.ShowCreation{Title: "Morning News"}, creator)
			Expect(err).To(BeNil())
			_, err = show.CreateShow(show.ShowCreation{Title: "Night Talk"}, creator)
			Expect(err).To(BeNil())

			visitor := testinfra.BuildAnonymousSession(func(b *authority.RuleBuilder) {
				b.Can(authority.ActionRead, "Show")
			})

			detail, err := show.DetailShow(created.ID, visitor)
			Expect(err).To(BeNil())
			Expect(detail.Title).To(Equal("Morning News"))

			_, err = show.DetailShow(types.ID(404), visitor)
			Expect(err).To(Equal(bizerror.ErrNotFound))

			shows, err := show.QueryShows(show.ShowQuery{Title: "Night"}, visitor)
			Expect(err).To(BeNil())
			Expect(shows).To(HaveLen(1))
			Expect(shows[0].Title).To(Equal("Night Talk"))
		})
	})

	Describe("UpdateShow", func() {
		It("should answer not found before forbidden", func() {
			sec := testinfra.BuildSession(1, "ann", 10, nil)
			Expect(show.UpdateShow(types.ID(404), show.ShowUpdating{Title: "X"}, sec)).
				To(Equal(bizerror.ErrNotFound))
		})

		It("should forbid ungranted actors and allow granted ones", func() {
			creator := testinfra.BuildSession(1, "ann", 10, creatorRules)
			created, err := show.CreateShow(show.ShowCreation{Title: "My Show"}, creator)
			Expect(err).To(BeNil())

			stranger := testinfra.BuildSession(2, "bob", 20, creatorRules)
			Expect(show.UpdateShow(created.ID, show.ShowUpdating{Title: "Hijacked"}, stranger)).
				To(Equal(bizerror.ErrForbidden))

			manager := testinfra.BuildSession(1, "ann", 10, managerRules(created.ID))
			Expect(show.UpdateShow(created.ID, show.ShowUpdating{Title: "My Show v2"}, manager)).To(BeNil())

			detail, err := show.DetailShow(created.ID, manager)
			Expect(err).To(BeNil())
			Expect(detail.Title).To(Equal("My Show v2"))
		})

		It("should write cleared summary and picture fields", func() {
			creator := testinfra.BuildSession(1, "ann", 10, creatorRules)
			created, err := show.CreateShow(
				show.ShowCreation{Title: "My Show", Summary: "about things", Picture: "cover.png"}, creator)
			Expect(err).To(BeNil())

			manager := testinfra.BuildSession(1, "ann", 10, managerRules(created.ID))
			Expect(show.UpdateShow(created.ID, show.ShowUpdating{Title: "My Show"}, manager)).To(BeNil())

			detail, err := show.DetailShow(created.ID, manager)
			Expect(err).To(BeNil())
			Expect(detail.Summary).To(BeEmpty())
			Expect(detail.Picture).To(BeEmpty())
		})
	})

	Describe("grant lifecycle", func() {
		It("should reflect granting and revoking in freshly built abilities", func() {
			role.PermissionsForTableFunc = role.PermissionsForTable
			Expect(role.GrantRoles(20, role.Subject{Table: "Show", ID: 100},
				[]string{show.RoleShowManager.Key})).To(BeNil())

			factory := authority.NewAbilityFactory(show.ShowRules{})
			actor := &authority.Actor{UserID: 2, Username: "bob", ProfileID: 20}
			granted := authority.InstanceSubject("Show", authority.Conditions{"id": "100"})

			ability, err := factory.CreateForActor(actor)
			Expect(err).To(BeNil())
			Expect(ability.Can(authority.ActionUpdate, granted)).To(BeTrue())

			admin := testinfra.BuildSession(1, "ann", 10, func(b *authority.RuleBuilder) {
				b.CanWhen(authority.ActionManage, "RoleGrant",
					authority.Conditions{"subjectTable": "Show", "subjectId": "100"})
			})
			grants, err := role.QueryGrants(role.GrantQuery{SubjectTable: "Show", SubjectID: 100}, admin)
			Expect(err).To(BeNil())
			Expect(grants).To(HaveLen(1))
			Expect(role.RevokeGrant(grants[0].ID, admin)).To(BeNil())

			rebuilt, err := factory.CreateForActor(actor)
			Expect(err).To(BeNil())
			Expect(rebuilt.Can(authority.ActionUpdate, granted)).To(BeFalse())
		})
	})

	Describe("DeleteShow", func() {
		It("should delete the show with its episodes and grants", func() {
			creator := testinfra.BuildSession(1, "ann", 10, creatorRules)
			created, err := show.CreateShow(show.ShowCreation{Title: "My Show"}, creator)
			Expect(err).To(BeNil())

			episodeOwner := testinfra.BuildSession(1, "ann", 10, func(b *authority.RuleBuilder) {
				b.CanWhen(authority.ActionManage, "Episode", authority.Conditions{"showId": created.ID.String()})
			})
			ep, err := episode.CreateEpisode(episode.EpisodeCreation{ShowID: created.ID, Title: "Pilot"}, episodeOwner)
			Expect(err).To(BeNil())

			admin := testinfra.BuildSession(1, "ann", 10, managerRules(created.ID))
			Expect(show.DeleteShow(created.ID, admin)).To(BeNil())

			_, err = show.DetailShow(created.ID, admin)
			Expect(err).To(Equal(bizerror.ErrNotFound))

			episodes, err := episode.QueryEpisodes(episode.EpisodeQuery{ShowID: created.ID}, admin)
			Expect(err).To(BeNil())
			Expect(episodes).To(BeEmpty())

			roles, err := role.RolesByProfile(10, role.Subject{Table: "Show", ID: created.ID})
			Expect(err).To(BeNil())
			Expect(roles).To(BeEmpty())

			var count int
			Expect(testDatabase.DS.GormDB().Model(&role.RoleGrant{}).
				Where(&role.RoleGrant{SubjectTable: "Episode", SubjectID: ep.ID}).Count(&count).Error).To(BeNil())
			Expect(count).To(BeZero())
		})
	})
})
