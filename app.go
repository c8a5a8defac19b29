package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"nailsalon-backend/config"
	"nailsalon-backend/models"
	"nailsalon-backend/routes"
	"nailsalon-backend/services/booking"
	"nailsalon-backend/services/notify"
	"nailsalon-backend/services/storage"
	"nailsalon-backend/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 5 * time.Second

// app holds the process-wide collaborators shared by every command.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	db     *gorm.DB
	loc    *time.Location
}

func bootstrap() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	loc, err := time.LoadLocation(cfg.SalonTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid SALON_TIMEZONE %q: %w", cfg.SalonTimezone, err)
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, db: db, loc: loc}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}

func (a *app) sender() notify.Sender {
	if a.cfg.TwilioEnabled() {
		return notify.NewTwilioSender(a.cfg.TwilioAccountSID, a.cfg.TwilioAuthToken,
			a.cfg.TwilioPhoneNumber, a.cfg.TwilioWhatsAppNumber)
	}
	a.logger.Warn("Twilio credentials not set, notifications are only logged")
	return notify.NewLogSender(a.logger)
}

func (a *app) imageStore() storage.ImageStore {
	if !a.cfg.CloudinaryEnabled() {
		a.logger.Warn("Cloudinary credentials not set, reference image uploads are disabled")
		return storage.Unconfigured{}
	}
	store, err := storage.NewCloudinaryStore(a.cfg.CloudinaryCloudName, a.cfg.CloudinaryAPIKey,
		a.cfg.CloudinaryAPISecret, a.cfg.CloudinaryFolder)
	if err != nil {
		a.logger.Error("Cloudinary init failed, reference image uploads are disabled", zap.Error(err))
		return storage.Unconfigured{}
	}
	return store
}

func (a *app) tokenIssuer() (*utils.TokenIssuer, error) {
	secret := a.cfg.JWTSecret
	if secret == "" {
		if a.cfg.IsProduction() {
			return nil, utils.ErrMissingSecret
		}
		a.logger.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
		secret = utils.GenerateJWTSecret()
	}
	return utils.NewTokenIssuer(secret, a.cfg.JWTExpiryHours), nil
}

func (a *app) redisQueueOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: a.cfg.RedisAddr, Password: a.cfg.RedisPassword, DB: a.cfg.RedisQueueDB}
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	if err := models.AutoMigrate(a.db); err != nil {
		return err
	}

	tokens, err := a.tokenIssuer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := notify.NewDispatcher(a.db, a.sender(), a.logger)
	defer dispatcher.Wait()

	var (
		notifier booking.Notifier = dispatcher
		locker   booking.Locker
		worker   *notify.Worker
	)
	if a.cfg.RedisEnabled() {
		rdb := redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr, Password: a.cfg.RedisPassword, DB: a.cfg.RedisLockDB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			a.logger.Warn("Redis unreachable at startup, booking lock falls back to the database", zap.Error(err))
		}
		locker = booking.NewRedisLocker(rdb)

		queue := asynq.NewClient(a.redisQueueOpt())
		defer queue.Close()
		queued := notify.NewQueueNotifier(queue, dispatcher, a.logger)
		defer queued.Wait()
		notifier = queued
		worker = notify.NewWorker(a.redisQueueOpt(), dispatcher, a.logger)
	}

	engine := booking.NewEngine(a.db, booking.Options{
		Granularity: a.cfg.SlotGranularityMin,
		Location:    a.loc,
		AutoConfirm: a.cfg.BookingAutoConfirm,
		LockTTL:     time.Duration(a.cfg.BookingLockTTLSec) * time.Second,
		Locker:      locker,
		Notifier:    notifier,
		Logger:      a.logger,
	})

	router := routes.SetupRouter(routes.Deps{
		Config: a.cfg,
		DB:     a.db,
		Engine: engine,
		Tokens: tokens,
		Images: a.imageStore(),
		Logger: a.logger,
	})
	if printRoutes {
		for _, r := range router.Routes() {
			a.logger.Info("route", zap.String("method", r.Method), zap.String("path", r.Path))
		}
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		reminders := notify.NewReminderService(a.db, notifier, a.logger, a.loc)
		return reminders.Run(gctx, a.cfg.ReminderCron)
	})
	if worker != nil {
		g.Go(func() error {
			return worker.Run(gctx)
		})
	}

	return g.Wait()
}

func runMigrate(*cobra.Command, []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	if err := models.AutoMigrate(a.db); err != nil {
		return err
	}
	a.logger.Info("migration complete")
	return nil
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	if len(adminPassword) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	email := strings.ToLower(strings.TrimSpace(adminEmail))
	if !utils.ValidateEmail(email) {
		return fmt.Errorf("invalid email %q", adminEmail)
	}

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	if err := models.AutoMigrate(a.db); err != nil {
		return err
	}

	user := models.User{
		Email:    email,
		Name:     adminName,
		Password: adminPassword,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := a.db.WithContext(cmd.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("a user with email %s already exists", email)
		}
		return fmt.Errorf("create admin: %w", err)
	}
	a.logger.Info("admin created", zap.String("email", email), zap.String("id", user.ID.String()))
	return nil
}

func runSendReminders(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	dispatcher := notify.NewDispatcher(a.db, a.sender(), a.logger)
	reminders := notify.NewReminderService(a.db, dispatcher, a.logger, a.loc)
	n, err := reminders.SendDailyReminders(cmd.Context())
	dispatcher.Wait()
	if err != nil {
		return err
	}
	a.logger.Info("reminders sent", zap.Int("count", n))
	return nil
}
