package main

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/kamus/internal/auth"
	"github.com/jimdaga/kamus/internal/config"
	"github.com/jimdaga/kamus/internal/definitions"
	"github.com/jimdaga/kamus/internal/events"
	"github.com/jimdaga/kamus/internal/feed"
	"github.com/jimdaga/kamus/internal/health"
	"github.com/jimdaga/kamus/internal/logging"
	"github.com/jimdaga/kamus/internal/moderation"
	"github.com/jimdaga/kamus/internal/profile"
	"github.com/jimdaga/kamus/internal/reactions"
	"gorm.io/gorm"
)

func newRouter(cfg *config.Config, logger *slog.Logger, db *gorm.DB, bus *events.Bus) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	auth.InitProviders(cfg, logger)

	defs := definitions.NewStore(db)
	reacts := reactions.NewStore(db)
	resolver := auth.NewResolver(db, logger)
	accounts := auth.NewAccounts(db, cfg.AdminEmail)
	home := feed.New(defs, reacts, cfg.PageSize)
	mod := moderation.NewService(defs, bus, cfg.PageSize)
	profiles := profile.NewStore(db)

	r := gin.New()
	r.Use(logging.Recover(logger), logging.Requests(logger))
	r.Use(auth.Sessions(cfg))

	r.GET("/health", gin.WrapF(health.Handler(sqlDB)))

	r.GET("/auth/google", auth.HandleLogin)
	r.GET("/auth/google/callback", auth.HandleCallback(accounts, logger))
	r.POST("/logout", auth.HandleLogout(logger))

	optional := r.Group("/", auth.LoadIdentity(resolver))
	optional.GET("/", feed.HandleHome(home, logger))
	optional.GET("/definitions/:id", feed.HandleSingle(home, logger))
	optional.GET("/me", profile.HandleMe)

	member := r.Group("/", auth.RequireUser(resolver))
	member.POST("/definitions", definitions.HandleCreate(defs, bus, logger))
	member.GET("/my-definitions", feed.HandleMine(home, logger))
	member.POST("/reactions", reactions.HandleSetReaction(reacts, bus, logger))
	member.POST("/profile", profile.HandleUpdate(profiles, logger))

	dashboard := r.Group("/dashboard", auth.RequireAdmin(resolver))
	dashboard.GET("/definitions", moderation.HandleQueue(mod, logger))
	dashboard.GET("/definitions/:id", moderation.HandleDetail(mod, logger))
	dashboard.POST("/definitions", moderation.HandleApprove(mod, logger))

	return r, nil
}
