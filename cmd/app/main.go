package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"swarmdon/cmd/fx/accountfx"
	"swarmdon/cmd/fx/dbfx"
	"swarmdon/cmd/fx/pollerfx"
	"swarmdon/cmd/fx/relayfx"
	"swarmdon/internal/api/controllers"
	"swarmdon/pkg/config"
	"swarmdon/pkg/middleware"
)

func main() {
	app := fx.New(
		fx.Provide(config.Load),
		fx.Provide(provideSessions),
		dbfx.Module,
		accountfx.Module,
		relayfx.Module,
		pollerfx.Module,

		fx.Provide(controllers.NewLinkController),
		fx.Provide(controllers.NewSwarmController),
		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func provideSessions(cfg config.Config) *middleware.Sessions {
	return middleware.NewSessions(cfg.SessionSecret)
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Printf("Starting HTTP server at :%s", cfg.Port)
				if err := engine.Run(":" + cfg.Port); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping HTTP server")
			return nil
		},
	})
}

func ProvideRouter(
	linkController *controllers.LinkController,
	swarmController *controllers.SwarmController,
	sessions *middleware.Sessions) *gin.Engine {

	r := gin.Default()
	r.Use(middleware.TraceIDMiddleware())

	RegisterRoutes(r, linkController, swarmController, sessions)

	return r
}

func RegisterRoutes(r *gin.Engine,
	linkController *controllers.LinkController,
	swarmController *controllers.SwarmController,
	sessions *middleware.Sessions) {

	r.GET("/", linkController.GetHomeHandler)
	r.POST("/", linkController.PostHomeHandler)
	r.GET("/mastodon/callback", linkController.GetMastodonCallbackHandler)

	swarmGroup := r.Group("/swarm")
	swarmGroup.GET("", sessions.RequireSession(), swarmController.GetSwarmHandler)
	swarmGroup.GET("/callback", sessions.RequireSession(), swarmController.GetSwarmCallbackHandler)
	swarmGroup.POST("/push", swarmController.PostSwarmPushHandler)
}
