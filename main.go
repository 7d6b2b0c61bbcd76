package main

import (
	"net/http"

	"caster/account"
	"caster/avatar"
	"caster/bizerror"
	"caster/chat"
	"caster/client/s3"
	"caster/episode"
	"caster/infra/tracing"
	"caster/persistence"
	"caster/role"
	"caster/sessions"
	"caster/show"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"caster/authz"
)

func main() {
	logrus.Infoln("service start")

	tracingCloser := tracing.Bootstrap()
	if tracingCloser != nil {
		defer tracingCloser.Close()
	}

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		logrus.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB().AutoMigrate(
		&account.User{}, &account.Profile{},
		&show.Show{}, &episode.Episode{},
		&role.RoleGrant{},
	).Error
	if err != nil {
		logrus.Fatalf("database migration failed %v\n", err)
	}

	// the static role catalogs; duplicate keys abort bootstrap
	if err := role.Register(show.Permissions(), show.Roles()); err != nil {
		logrus.Fatalf("role registration failed %v\n", err)
	}
	if err := role.Register(episode.Permissions(), episode.Roles()); err != nil {
		logrus.Fatalf("role registration failed %v\n", err)
	}

	// enhancer order is part of the policy: later rules override earlier ones
	authz.Configure(account.ResolveActor,
		account.UserRules{},
		account.ProfileRules{},
		show.ShowRules{},
		episode.EpisodeRules{},
	)
	show.DeleteEpisodesOfShowFunc = episode.DeleteEpisodesOfShow

	if err := chat.Bootstrap(); err != nil {
		logrus.Fatalf("chat bootstrap failed %v\n", err)
	}
	s3.Bootstrap()

	engine := gin.Default()
	engine.Use(bizerror.ErrorHandling(), tracing.TracingIngress())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "caster")
	})

	sessions.RegisterSessionsRestAPI(engine)
	sessions.RegisterSessionRestAPI(engine)
	account.RegisterUsersRestAPI(engine)
	account.RegisterProfilesRestAPI(engine)
	show.RegisterShowsRestAPI(engine)
	episode.RegisterEpisodesRestAPI(engine)
	role.RegisterGrantsRestAPI(engine)
	chat.RegisterChatRestAPI(engine)
	avatar.RegisterAvatarsRestAPI(engine)

	if err := engine.Run(":80"); err != nil {
		panic(err)
	}
}
