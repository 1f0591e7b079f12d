package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/marcyhel/room-booking-backend/internal/activitylog"
	"github.com/marcyhel/room-booking-backend/internal/api"
	"github.com/marcyhel/room-booking-backend/internal/auth"
	"github.com/marcyhel/room-booking-backend/internal/db"
	"github.com/marcyhel/room-booking-backend/internal/reservation"
	"github.com/marcyhel/room-booking-backend/internal/room"
	"github.com/marcyhel/room-booking-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	Logger       *zap.Logger
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int
	Timezone     *time.Location

	// Now is the clock the booking engine judges past slots against.
	// Defaults to time.Now; tests inject a fixed clock.
	Now func() time.Time
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	Recorder   *activitylog.AsyncRecorder
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	txRunner := db.NewTxRunner(cfg.DBPool)

	// Activity log module. The recorder is the fire-and-forget write side
	// shared by every other module.
	logRepo := activitylog.NewPgxRepository(cfg.DBPool)
	recorder := activitylog.NewAsyncRecorder(logRepo, cfg.Logger)
	logService := activitylog.NewService(logRepo)

	// User module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher, recorder)

	// Reservation repository is shared between the reservation service and
	// the room-edit cascade.
	reservationRepo := reservation.NewPgxRepository(cfg.DBPool)

	// Room module
	roomRepo := room.NewPgxRepository(cfg.DBPool)
	roomService := room.NewService(roomRepo, reservation.NewCanceller(reservationRepo),
		txRunner, recorder, cfg.Now, cfg.Timezone)

	// Reservation module
	reservationService := reservation.NewService(reservationRepo, roomService, userService,
		txRunner, recorder, cfg.Now, cfg.Timezone)

	router := api.NewRouter(api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		UserService:        userService,
		RoomService:        roomService,
		ReservationService: reservationService,
		LogService:         logService,
		JWTManager:         jwtManager,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		Recorder:   recorder,
	}
}
