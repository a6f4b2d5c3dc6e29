package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/khoahotran/pathwise/pkg/logger"
)

type RouterConfig struct {
	ServiceName       string
	AllowedOrigins    []string
	Logger            logger.Logger
	AuthMiddleware    gin.HandlerFunc
	AuthHandler       *AuthHandler
	RecommendHandler  *RecommendHandler
	ProfileHandler    *ProfileHandler
	CourseHandler     *CourseHandler
	PathwayHandler    *PathwayHandler
	CareerHandler     *CareerHandler
	PreferenceHandler *PreferenceHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		router.Use(otelgin.Middleware(cfg.ServiceName))
	}
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(CORS(cfg.AllowedOrigins))
	}
	router.Use(ErrorMiddleware(cfg.Logger))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

		authGroup := api.Group("/auth")
		authGroup.POST("/register", cfg.AuthHandler.Register)
		authGroup.POST("/login", cfg.AuthHandler.Login)

		api.POST("/recommend-pathways", cfg.RecommendHandler.Recommend)
		api.GET("/recommend-pathways", cfg.RecommendHandler.Describe)
		api.GET("/pathways/catalog", cfg.PathwayHandler.Catalog)
		api.GET("/careers", cfg.CareerHandler.Catalog)

		private := api.Group("/")
		private.Use(cfg.AuthMiddleware)
		{
			private.POST("/me/recommendations", cfg.RecommendHandler.RecommendForMe)

			profile := private.Group("/profile")
			{
				profile.GET("", cfg.ProfileHandler.GetProfile)
				profile.PUT("", cfg.ProfileHandler.UpdateProfile)
				profile.POST("/skills", cfg.ProfileHandler.AddSkill)
				profile.DELETE("/skills/:name", cfg.ProfileHandler.RemoveSkill)
				profile.POST("/education", cfg.ProfileHandler.AddEducation)
				profile.DELETE("/education/:index", cfg.ProfileHandler.RemoveEducation)
				profile.POST("/experience", cfg.ProfileHandler.AddExperience)
				profile.DELETE("/experience/:index", cfg.ProfileHandler.RemoveExperience)
				profile.PUT("/assessment", cfg.ProfileHandler.SetAssessment)
			}

			courses := private.Group("/courses")
			{
				courses.GET("", cfg.CourseHandler.ListCourses)
				courses.POST("/toggle", cfg.CourseHandler.ToggleBookmark)
				courses.PATCH("/:id", cfg.CourseHandler.UpdateCourse)
				courses.DELETE("/:id", cfg.CourseHandler.RemoveCourse)
				courses.GET("/:id/bookmarked", cfg.CourseHandler.IsBookmarked)
			}

			pathways := private.Group("/pathways")
			{
				pathways.GET("", cfg.PathwayHandler.ListPathways)
				pathways.POST("/:id/toggle", cfg.PathwayHandler.TogglePathway)
				pathways.GET("/progress", cfg.PathwayHandler.Progress)
			}

			careers := private.Group("/careers")
			{
				careers.GET("/goals", cfg.CareerHandler.Goals)
				careers.POST("/:id/goal", cfg.CareerHandler.ToggleGoal)
				careers.PUT("/selected", cfg.CareerHandler.SelectCareer)
			}

			private.GET("/preferences/theme", cfg.PreferenceHandler.GetTheme)
			private.PUT("/preferences/theme", cfg.PreferenceHandler.SetTheme)
		}
	}
	return router
}
