package handlers

import (
	"github.com/chachabrian/uniride-backend/internal/carpool"
	"github.com/chachabrian/uniride-backend/internal/database"
	"github.com/chachabrian/uniride-backend/internal/locations"
	"github.com/chachabrian/uniride-backend/internal/middleware"
	"github.com/chachabrian/uniride-backend/internal/services"
	"github.com/chachabrian/uniride-backend/pkg/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Service     *carpool.Service
	Users       database.UserStore
	Tokens      *utils.TokenManager
	Graph       *locations.Graph
	Hub         *services.Hub
	Archiver    Archiver
	StoreName   string
	EmailDomain string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	config.ExposeHeaders = []string{middleware.RequestIDHeader}
	r.Use(cors.New(config))

	auth := middleware.AuthMiddleware(d.Tokens)

	api := r.Group("/api")
	{
		api.GET("/health", Health(d.StoreName, d.Hub))

		// Public routes
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", Register(d.Users, d.Tokens, d.EmailDomain))
			authRoutes.POST("/login", Login(d.Users, d.Tokens))
		}

		locs := api.Group("/locations")
		{
			locs.GET("", ListLocations(d.Graph))
			locs.GET("/:name/nearby", NearbyLocations(d.Graph))
		}

		// WebSocket connection
		api.GET("/ws", auth, WebSocketHandler(d.Hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(auth)
		{
			users := protected.Group("/users")
			{
				users.GET("/profile", GetProfile(d.Users))
				users.PUT("/profile", UpdateProfile(d.Users))
			}

			protected.GET("/requests/mine", GetMyRequests(d.Service))

			rides := protected.Group("/rides")
			{
				rides.GET("", ListRides(d.Service))
				rides.POST("", CreateRide(d.Service))
				rides.POST("/search", SearchRides(d.Service))
				rides.POST("/fallback", CreateFallbackRide(d.Service))
				rides.GET("/:rideId", GetRide(d.Service))
				rides.POST("/:rideId/start", StartRide(d.Service))
				rides.POST("/:rideId/end", EndRide(d.Service, d.Archiver))

				rides.POST("/:rideId/requests", RequestToJoin(d.Service))
				rides.GET("/:rideId/requests", GetPendingRequests(d.Service))
				rides.GET("/:rideId/requests/history", GetRequestHistory(d.Service))
				rides.DELETE("/:rideId/requests/mine", WithdrawRequest(d.Service))
				rides.POST("/:rideId/requests/:userId/respond", RespondToRequest(d.Service))
				rides.GET("/:rideId/passengers", GetPassengers(d.Service))

				rides.GET("/:rideId/messages", GetMessages(d.Service))
				rides.POST("/:rideId/messages", SendMessage(d.Service))
				rides.GET("/:rideId/transcript", GetTranscript(d.Service, d.Archiver))
			}
		}
	}

	return r
}
