package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/marcyhel/room-booking-backend/internal/activitylog"
	logHttp "github.com/marcyhel/room-booking-backend/internal/activitylog/http"
	"github.com/marcyhel/room-booking-backend/internal/auth"
	"github.com/marcyhel/room-booking-backend/internal/reservation"
	resHttp "github.com/marcyhel/room-booking-backend/internal/reservation/http"
	"github.com/marcyhel/room-booking-backend/internal/room"
	roomHttp "github.com/marcyhel/room-booking-backend/internal/room/http"
	"github.com/marcyhel/room-booking-backend/internal/user"
	userHttp "github.com/marcyhel/room-booking-backend/internal/user/http"
)

// Config holds the dependencies needed to assemble the router.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	UserService        user.Service
	RoomService        room.Service
	ReservationService reservation.Service
	LogService         activitylog.Service
	JWTManager         *auth.JWTManager
}

// NewRouter initializes the HTTP router engine: middleware (CORS, logging,
// recovery, auth) plus the route registrations of every module.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	adminMiddleware := RequireAdmin(cfg.UserService)

	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	roomHandler := roomHttp.NewHandler(cfg.RoomService)
	reservationHandler := resHttp.NewHandler(cfg.ReservationService)
	logHandler := logHttp.NewHandler(cfg.LogService)

	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, adminMiddleware)
		roomHttp.RegisterRoutes(v1, roomHandler, authMiddleware, adminMiddleware)
		resHttp.RegisterRoutes(v1, reservationHandler, authMiddleware, adminMiddleware)
		logHttp.RegisterRoutes(v1, logHandler, authMiddleware, adminMiddleware)
	}

	return r
}
