package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nftadvisor/valuation-go/internal/api/handlers"
	"github.com/nftadvisor/valuation-go/internal/config"
	"github.com/nftadvisor/valuation-go/internal/database"
	"github.com/nftadvisor/valuation-go/internal/middleware"
	"github.com/nftadvisor/valuation-go/internal/report"
	"github.com/nftadvisor/valuation-go/internal/valuation"
)

// SetupRoutes wires the HTTP surface. Handlers only see typed results and
// errors from the core; status-code mapping happens at this layer.
func SetupRoutes(router *gin.Engine, cfg *config.Config, logger *logrus.Logger, svc *valuation.Service, assembler *report.Assembler, db *database.PostgresDB, redis *database.RedisClient) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	router.Use(cors.New(corsConfig))
	router.Use(middleware.RequestLogger(logger))

	healthHandler := handlers.NewHealthHandler(db, redis)
	router.GET("/health", healthHandler.Health)

	valuationHandler := handlers.NewValuationHandler(svc, assembler)
	marketHandler := handlers.NewMarketHandler(svc)

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/valuate", valuationHandler.Valuate)
		apiGroup.GET("/valuation/:nft_id", valuationHandler.GetValuation)
		apiGroup.GET("/report/:user_id", valuationHandler.GetReport)

		apiGroup.GET("/collections", marketHandler.GetCollections)
		apiGroup.GET("/market/:collection", marketHandler.GetSnapshot)
	}
}
