// Package router builds the gin engine and mounts every controller.
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/formkit/config"
	"github.com/lshigami/formkit/internal/auth"
	"github.com/lshigami/formkit/internal/controller/account"
	"github.com/lshigami/formkit/internal/controller/author"
	"github.com/lshigami/formkit/internal/controller/respondent"
	"github.com/lshigami/formkit/internal/middleware"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
)

const APIPrefix = "/api/v1"

// Controllers groups every controller the router mounts.
type Controllers struct {
	fx.In

	Account    *account.AccountController
	Forms      *author.FormController
	Sections   *author.SectionController
	Questions  *author.QuestionController
	Options    *author.OptionController
	Responses  *author.ResponseController
	Images     *author.ImageController
	Respondent *respondent.RespondentController
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	switch cfg.Server.GinMode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.GinMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	origins := cfg.Server.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsCfg := cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	// credentials cannot be combined with a wildcard origin
	if !(len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	return r
}

// RegisterRoutes mounts the API under /api/v1 and the respondent pages at
// the root, where published links point.
func RegisterRoutes(r *gin.Engine, tokens *auth.TokenManager, c Controllers) {
	api := r.Group(APIPrefix)
	c.Account.RegisterRoutes(api)

	protected := api.Group("", middleware.RequireAuth(tokens))
	c.Forms.RegisterRoutes(protected)
	c.Sections.RegisterRoutes(protected)
	c.Questions.RegisterRoutes(protected)
	c.Options.RegisterRoutes(protected)
	c.Responses.RegisterRoutes(protected)
	c.Images.RegisterRoutes(api, protected)

	c.Respondent.RegisterRoutes(&r.RouterGroup)
}
