// Package server contain implementation of go-gin-server and each route handlers
package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	"UniTrack-backend/internal/auth"
	"UniTrack-backend/internal/controller/application"
	"UniTrack-backend/internal/controller/scholarship"
	"UniTrack-backend/internal/middleware"
	"UniTrack-backend/internal/model"
)

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *MyServer) RegisterRoutes() http.Handler {
	r := gin.Default()

	allowOriginsStr := os.Getenv("ALLOW_ORIGIN")
	allowOrigins := strings.Split(allowOriginsStr, ",")

	blacklist := auth.NewInMemoryBlacklistStore()

	lAuth := auth.NewLocalAuthHandler(s.DB)
	logout := auth.NewLogoutController(blacklist)
	applications := application.NewApplicationController(s.DB)
	scholarships := scholarship.NewScholarshipController(s.DB)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true, // Enable cookies/auth
	}))

	r.GET("/", s.HelloHandler)
	r.GET("/health", s.healthHandler)

	api := r.Group("/api")
	{
		authRoute := api.Group("/auth")
		{
			authRoute.Use(middleware.EnvRateLimitMiddleware())
			authRoute.POST("signup", lAuth.SignupHandler)
			authRoute.POST("login", lAuth.LoginHandler)
			authRoute.POST("logout",
				middleware.RequireAuth(s.DB),
				middleware.JwtBlacklistCheck(blacklist),
				logout.LogoutHandler)
		}

		needAuth := api.Group("")
		{
			needAuth.Use(middleware.RequireAuth(s.DB), middleware.JwtBlacklistCheck(blacklist))

			applicationRoute := needAuth.Group("/applications")
			{
				// Fixed paths must come before the :id parameter routes
				applicationRoute.GET("all", middleware.CheckRole(model.RoleAdmin), applications.GetAllApplications)
				applicationRoute.GET("agent", middleware.CheckRole(model.RoleAgent), applications.GetAgentApplications)

				applicationRoute.GET("", middleware.CheckRole(model.RoleStudent), applications.GetMyApplications)
				applicationRoute.POST("", middleware.CheckRole(model.RoleStudent), applications.CreateApplication)

				applicationRoute.GET(":id", applications.GetApplication)
				applicationRoute.PUT(":id", middleware.CheckRole(model.RoleStudent, model.RoleAdmin), applications.UpdateApplication)
				applicationRoute.DELETE(":id", middleware.CheckRole(model.RoleStudent, model.RoleAdmin), applications.DeleteApplication)
				applicationRoute.POST(":id/note", middleware.CheckRole(model.RoleAgent), applications.AddNote)
			}

			scholarshipRoute := needAuth.Group("/scholarships")
			{
				scholarshipRoute.GET("", scholarships.GetScholarships)

				scholarshipRoute.GET("applications", middleware.CheckRole(model.RoleStudent), scholarships.GetMyScholarshipApplications)
				scholarshipRoute.POST("applications", middleware.CheckRole(model.RoleStudent), scholarships.CreateScholarshipApplication)
				scholarshipRoute.PUT("applications/:id", middleware.CheckRole(model.RoleStudent), scholarships.UpdateScholarshipApplication)
				scholarshipRoute.DELETE("applications/:id", middleware.CheckRole(model.RoleStudent), scholarships.DeleteScholarshipApplication)

				scholarshipRoute.POST("", middleware.CheckRole(model.RoleAdmin), scholarships.CreateScholarship)
				scholarshipRoute.PUT(":id", middleware.CheckRole(model.RoleAdmin), scholarships.UpdateScholarship)
				scholarshipRoute.DELETE(":id", middleware.CheckRole(model.RoleAdmin), scholarships.DeleteScholarship)
			}
		}
	}

	return r
}

// HelloHandler handle request by return a liveness message
func (s *MyServer) HelloHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "API is running"})
}

func (s *MyServer) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.DB.Health())
}
