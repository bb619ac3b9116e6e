package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/princinho/o3dstudio/config"
	"github.com/princinho/o3dstudio/controllers"
	"github.com/princinho/o3dstudio/logger"
	"github.com/princinho/o3dstudio/metrics"
	"github.com/princinho/o3dstudio/middleware"
	"github.com/princinho/o3dstudio/quoteform"
)

// application is everything the router needs. Review and Users stay nil
// unless the mongo intake is enabled.
type application struct {
	cfg      *config.Config
	log      *logger.Logger
	gatherer prometheus.Gatherer
	metrics  *metrics.Metrics

	advisor  quoteform.Advisor
	intake   quoteform.Intake
	registry *quoteform.Registry
	uploads  controllers.Uploads

	review controllers.QuoteReviewStore
	users  controllers.UserFinder
}

func allowedOriginSet(origins []string) map[string]bool {
	allowed := make(map[string]bool, len(origins))
	for _, origin := range origins {
		if origin != "" {
			allowed[origin] = true
		}
	}
	return allowed
}

func (app *application) router() *gin.Engine {
	r := gin.New()

	allowedOrigins := allowedOriginSet(app.cfg.App.AllowedOrigins)
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestID(app.log))
	r.Use(middleware.RequestLogger(app.log))
	r.Use(gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	if app.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(app.gatherer, promhttp.HandlerOpts{})))
	}

	r.POST("/advisory", controllers.RequestAdvisory(app.advisor))
	r.POST("/quote-requests", controllers.CreateQuoteRequest(app.intake, app.metrics))

	forms := r.Group("/quote-forms")
	{
		forms.POST("", controllers.CreateQuoteForm(app.registry))
		forms.GET("/:id", controllers.GetQuoteForm(app.registry))
		forms.DELETE("/:id", controllers.DeleteQuoteForm(app.registry))
		forms.PATCH("/:id/fields", controllers.UpdateQuoteFormFields(app.registry))
		forms.POST("/:id/advisory", controllers.RequestQuoteFormAdvisory(app.registry))
		forms.DELETE("/:id/notice", controllers.DismissQuoteFormNotice(app.registry))
		forms.POST("/:id/submit", controllers.SubmitQuoteForm(app.registry, app.uploads))
	}

	if app.review != nil && app.users != nil {
		r.POST("/auth/login", controllers.Login(app.users, app.cfg.Auth))

		admin := r.Group("/admin")
		admin.Use(middleware.AuthMiddleware(app.cfg.Auth.JWTSecret), middleware.RequireAdmin())
		{
			admin.GET("/quote-requests", controllers.AdminListQuoteRequests(app.review))
			admin.GET("/quote-requests/:id", controllers.AdminGetQuoteRequest(app.review))
			admin.PATCH("/quote-requests/:id/status", controllers.AdminUpdateQuoteStatus(app.review))
			admin.POST("/quote-requests/:id/notes", controllers.AdminAddQuoteNote(app.review, app.users))
		}
	}
	return r
}
