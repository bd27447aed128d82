package web

import (
	"context"
	"fmt"

	"github.com/dwalast/drugguide/internal/app"
	"github.com/dwalast/drugguide/internal/config"
	"github.com/dwalast/drugguide/pkg/middleware/auth"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/web/views/admin"
	"github.com/dwalast/drugguide/pkg/web/views/drug"
	"github.com/dwalast/drugguide/pkg/web/views/health"
	"github.com/dwalast/drugguide/pkg/web/views/notify"
	"github.com/dwalast/drugguide/pkg/web/views/page"
	"github.com/dwalast/drugguide/pkg/web/views/rating"
	"github.com/dwalast/drugguide/pkg/web/views/shortage"
	"github.com/dwalast/drugguide/pkg/web/views/user"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(ctx context.Context, g *gin.Engine, s *app.Services) {
	installMiddleware(g)
	installURL(ctx, g, s)
}

func installMiddleware(g *gin.Engine) {
	g.ContextWithFallback = true
	server := config.Global().Server
	corsConf := cors.DefaultConfig()
	corsConf.AllowAllOrigins = true
	corsConf.AddAllowHeaders("Authorization", rating.DeviceHeader)
	g.Use(cors.New(corsConf))
	g.Use(otelgin.Middleware(fmt.Sprintf("%s-%s", server.Platform, server.Service)))
	g.Use(logger.LogWithWriter())
}

func installURL(_ context.Context, g *gin.Engine, s *app.Services) {
	hHandle := health.NewHealthHandle(s)
	api := g.Group("/api")
	api.GET("/health", health.Health)
	api.GET("/health/live", health.Live)
	api.GET("/health/ready", hHandle.Ready)

	dHandle := drug.NewDrugHandle(s)
	rHandle := rating.NewRatingHandle(s)
	sHandle := shortage.NewShortageHandle(s)
	pHandle := page.NewPageHandle(s)
	uHandle := user.NewUserHandle(s)
	aHandle := admin.NewAdminHandle(s)

	wsClient := s.WSClient
	if wsClient == nil {
		wsClient = notify.NewWSClient()
	}
	nHandle := notify.NewNotifyHandle(wsClient)

	v1 := api.Group("/v1", rating.Device())

	// public catalog
	{
		drugRouter := v1.Group("/drugs")
		drugRouter.GET("", dHandle.List)
		drugRouter.GET("/:id/ratings", rHandle.DrugRatings)
		drugRouter.POST("/:id/ratings", rHandle.AddDrugRating)
		drugRouter.GET("/:id/rated", rHandle.DrugRated)

		v1.GET("/shortages", sHandle.List)

		siteRouter := v1.Group("/website-ratings")
		siteRouter.GET("", rHandle.WebsiteRatings)
		siteRouter.POST("", rHandle.AddWebsiteRating)
		siteRouter.GET("/rated", rHandle.WebsiteRated)

		v1.GET("/pages/:name", pHandle.Get)

		v1.GET("/favorites", uHandle.Favorites)
		v1.POST("/favorites/:id/toggle", uHandle.ToggleFavorite)
		v1.POST("/errors", uHandle.ReportError)

		v1.GET("/ws/catalog", nHandle.Catalog)
	}

	v1.POST("/admin/login", aHandle.Login)

	adminRouter := v1.Group("/admin", auth.AuthAdmin(s.Session))
	{
		adminRouter.POST("/logout", aHandle.Logout)
		adminRouter.POST("/import", aHandle.Import)
		adminRouter.POST("/import/remote", aHandle.ImportRemote)
		adminRouter.POST("/import/backup", aHandle.ImportBackup)
		adminRouter.GET("/export", aHandle.Export)
		adminRouter.POST("/command/:name", aHandle.Command)
		adminRouter.GET("/backup", aHandle.Backup)

		mirrorRouter := adminRouter.Group("/mirror")
		mirrorRouter.POST("/import", aHandle.MirrorImport)
		mirrorRouter.GET("/export", aHandle.MirrorExport)
		mirrorRouter.GET("/stats", aHandle.MirrorStats)
		mirrorRouter.DELETE("", aHandle.MirrorClear)

		drugRouter := adminRouter.Group("/drugs")
		drugRouter.POST("", dHandle.Create)
		drugRouter.PATCH("/:id", dHandle.Update)
		drugRouter.DELETE("/:id", dHandle.Delete)

		shortageRouter := adminRouter.Group("/shortages")
		shortageRouter.POST("", sHandle.Add)
		shortageRouter.PATCH("/:id", sHandle.Update)
		shortageRouter.DELETE("/:id", sHandle.Delete)

		ratingRouter := adminRouter.Group("/ratings")
		ratingRouter.GET("", rHandle.AdminList)
		ratingRouter.PATCH("/:kind/:rating_id", rHandle.AdminUpdate)
		ratingRouter.DELETE("/:kind/:rating_id", rHandle.AdminDelete)

		adminRouter.PUT("/pages/:name", pHandle.Save)
		adminRouter.DELETE("/cache", dHandle.InvalidateCache)
		adminRouter.GET("/errors", uHandle.Errors)
		adminRouter.DELETE("/errors", uHandle.ClearErrors)
	}
}
