package api

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/MineVault/MineVault-Backend/db/store"
	"github.com/MineVault/MineVault-Backend/models"
	"github.com/MineVault/MineVault-Backend/services"
	"github.com/MineVault/MineVault-Backend/services/mining"
	"github.com/MineVault/MineVault-Backend/services/monitoring/logging"
	"github.com/MineVault/MineVault-Backend/services/monitoring/tasks"
	"github.com/MineVault/MineVault-Backend/services/notification"
	"github.com/MineVault/MineVault-Backend/services/referral"
	"github.com/MineVault/MineVault-Backend/services/settings"
	"github.com/MineVault/MineVault-Backend/services/transaction"
	"github.com/MineVault/MineVault-Backend/services/user"
	"github.com/MineVault/MineVault-Backend/services/wallet"
	"github.com/MineVault/MineVault-Backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

var TokenController *utils.JWTToken

const (
	taskAccrual = "mining-accrual"
	taskSweep   = "holding-sweep"
)

type Server struct {
	router    *gin.Engine
	store     store.Store
	config    *utils.Config
	logger    *logging.Logger
	scheduler *tasks.TaskScheduler

	settings     *settings.Service
	users        *user.Service
	wallets      *wallet.Service
	transactions *transaction.Service
	notifier     *notification.Service
	referrals    *referral.Service
	mining       *mining.Service
}

func NewServer(envPath string) *Server {
	c, err := utils.LoadConfig(envPath)
	if err != nil {
		panic(fmt.Sprintf("Could not load config: %v", err))
	}

	conn, err := sql.Open(c.DBDriver, utils.GetDBSource(c, c.DBName))
	if err != nil {
		panic(fmt.Sprintf("Could not load DB: %v", err))
	}

	m, err := migrate.New(
		"file://db/migrations",
		utils.GetDBSource(c, c.DBName),
	)
	if err != nil {
		log.Fatalf("Unable to instantiate the database schema migrator - %v", err)
	}

	if err := m.Up(); err != nil {
		if err != migrate.ErrNoChange {
			log.Fatalf("Unable to migrate up to the latest database schema - %v", err)
		}
	}

	l := logging.NewLogger(c)
	s := store.NewStore(conn)

	var redisService *services.RedisService
	if c.RedisHost != "" {
		redisService, err = services.NewRedisService(&services.RedisConfig{
			Host:     c.RedisHost,
			Port:     c.RedisPort,
			Password: c.RedisPassword,
		})
		if err != nil {
			l.Error(fmt.Sprintf("Redis unavailable, running without cache: %v", err))
			redisService = nil
		}
	}

	settingsService := settings.NewSettingsService(s, l, time.Duration(c.SettingsCacheTTL)*time.Second)
	userService := user.NewUserService(s)
	walletService := wallet.NewWalletService(s, l)
	pushService := notification.NewPushService(l)
	notifier := notification.NewNotificationService(s, pushService, l)
	referralService := referral.NewReferralService(s, userService, settingsService, c.DefaultCurrency, l)
	transactionService := transaction.NewTransactionService(s, settingsService, notifier, l)
	transactionService.SetCascader(referralService)
	catalog := mining.NewCatalog(s)
	miningService := mining.NewMiningService(s, catalog, notifier, redisService, l)
	miningService.SetCascader(referralService)

	g := gin.Default()
	g.Use(CORSMiddleware())
	g.Use(l.LoggingMiddleWare())

	TokenController = utils.NewJWTToken(c)

	server := &Server{
		router:       g,
		store:        s,
		config:       c,
		logger:       l,
		scheduler:    tasks.NewTaskScheduler(l),
		settings:     settingsService,
		users:        userService,
		wallets:      walletService,
		transactions: transactionService,
		notifier:     notifier,
		referrals:    referralService,
		mining:       miningService,
	}
	server.registerJobs()
	return server
}

// registerJobs puts the daily accrual and the hourly expiry sweep on the
// scheduler. The accrual first fires at the configured UTC hour and then
// every 24h; each run pays the current UTC date.
func (s *Server) registerJobs() {
	_, err := s.scheduler.AddTask(taskAccrual, "daily mining reward accrual", func(ctx context.Context) error {
		_, err := s.mining.RunAccrual(ctx, time.Now().UTC())
		return err
	}, 24*time.Hour)
	if err != nil {
		s.logger.Error(fmt.Sprintf("register accrual task: %v", err))
	}

	_, err = s.scheduler.AddTask(taskSweep, "expired holding sweep", func(ctx context.Context) error {
		_, err := s.mining.SweepExpired(ctx)
		return err
	}, time.Hour)
	if err != nil {
		s.logger.Error(fmt.Sprintf("register sweep task: %v", err))
	}
}

// untilAccrualHour returns the delay to the next configured accrual hour.
func (s *Server) untilAccrualHour(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.config.AccrualHourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

func (s *Server) Start() {

	dr := models.SuccessResponse{
		Status:  "success",
		Message: "Welcome to MineVault!",
		Version: utils.REVISION,
	}

	s.router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, dr)
	})

	/// Register Object Routers Below
	Wallets{}.router(s)
	Transactions{}.router(s)
	Mining{}.router(s)
	Referrals{}.router(s)
	Notifications{}.router(s)
	Admin{}.router(s)

	if err := s.scheduler.ScheduleTask(taskAccrual, s.untilAccrualHour(time.Now().UTC())); err != nil {
		s.logger.Error(fmt.Sprintf("schedule accrual task: %v", err))
	}
	if err := s.scheduler.ScheduleTask(taskSweep, time.Hour); err != nil {
		s.logger.Error(fmt.Sprintf("schedule sweep task: %v", err))
	}

	s.router.Run(fmt.Sprintf(":%v", s.config.ServerPort))
}
