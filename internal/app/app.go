package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aifahao/streamticket/internal/backoffice"
	"github.com/aifahao/streamticket/internal/catalog"
	"github.com/aifahao/streamticket/internal/config"
	"github.com/aifahao/streamticket/internal/db"
	"github.com/aifahao/streamticket/internal/entitlement"
	"github.com/aifahao/streamticket/internal/events"
	"github.com/aifahao/streamticket/internal/fulfillment"
	apihttp "github.com/aifahao/streamticket/internal/http"
	"github.com/aifahao/streamticket/internal/http/api/admin"
	"github.com/aifahao/streamticket/internal/http/api/front"
	"github.com/aifahao/streamticket/internal/logging"
	"github.com/aifahao/streamticket/internal/metrics"
	"github.com/aifahao/streamticket/internal/security"
	"github.com/aifahao/streamticket/internal/settings"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// eventBuffer is the number of order events queued ahead of kafka.
const eventBuffer = 1024

// Services are the collaborators the HTTP API is built from.
type Services struct {
	Config    config.Config
	DB        *gorm.DB
	Cache     catalog.Cache
	Publisher events.Publisher
	Sender    security.CodeSender
}

// openDatabase loads the config at the resolved path and opens its database.
func openDatabase(cfg config.AppConfig) (config.Config, *gorm.DB, error) {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	appCfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	conn, err := db.Open(appCfg.Database.DSN)
	if err != nil {
		return config.Config{}, nil, err
	}
	return appCfg, conn, nil
}

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	_, conn, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close(conn)
	return db.Migrate(conn.WithContext(ctx))
}

// NewRouter assembles the gin engine with middleware and all API routes.
func NewRouter(svc Services) (*gin.Engine, error) {
	if svc.DB == nil {
		return nil, errors.New("app: nil database")
	}
	otp, err := security.NewPhoneOTP(svc.Config.OTP.Secret, svc.Config.OTP.Period)
	if err != nil {
		return nil, err
	}
	publisher := svc.Publisher
	if publisher == nil {
		publisher = events.Noop{}
	}

	products := catalog.New(svc.DB, svc.Cache, svc.Config.Redis.ProductTTL)
	queries := entitlement.NewService(svc.DB)
	engine := fulfillment.NewEngine(svc.DB, publisher)
	gateway := backoffice.NewGateway(svc.DB, products)

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		apihttp.Recovery(),
		logging.RequestID(),
		logging.GinLogger(),
		metrics.Middleware(),
		apihttp.Timeout(svc.Config.HTTP.RequestTimeout),
	)
	r.NoRoute(apihttp.NotFound())
	r.NoMethod(apihttp.MethodNotAllowed())
	r.GET("/metrics", metrics.Handler())

	front.RegisterFrontRoutes(r, front.Deps{
		DB:          svc.DB,
		JWT:         svc.Config.JWT,
		OTP:         otp,
		CodeSender:  svc.Sender,
		Catalog:     products,
		Engine:      engine,
		Entitlement: queries,
	})
	admin.RegisterAdminRoutes(r, admin.Deps{
		DB:          svc.DB,
		JWT:         svc.Config.JWT,
		Entitlement: queries,
		Gateway:     gateway,
	})
	return r, nil
}

// RunServer boots the storefront API and blocks until ctx is canceled.
func RunServer(ctx context.Context, cfg config.AppConfig) error {
	appCfg, conn, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close(conn)

	logCloser, err := logging.Setup(appCfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logCloser.Close() }()

	if errValidate := appCfg.Validate(); errValidate != nil {
		return errValidate
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	if errRefresh := settings.Refresh(ctx, conn); errRefresh != nil {
		return fmt.Errorf("load settings: %w", errRefresh)
	}

	svc := Services{Config: appCfg, DB: conn}
	if appCfg.Redis.Addr != "" {
		rdb := catalog.NewRedisClient(appCfg.Redis.Addr, appCfg.Redis.Password, appCfg.Redis.DB)
		defer func() { _ = rdb.Close() }()
		if errPing := rdb.Ping(ctx).Err(); errPing != nil {
			log.WithError(errPing).Warn("redis unreachable, product cache degrades to database reads")
		}
		svc.Cache = catalog.NewRedisCache(rdb)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var kafkaPublisher *events.KafkaPublisher
	if len(appCfg.Kafka.Brokers) > 0 {
		kafkaPublisher = events.NewKafkaPublisher(appCfg.Kafka.Brokers, appCfg.Kafka.Topic, eventBuffer)
		kafkaPublisher.Start(runCtx)
		svc.Publisher = kafkaPublisher
	}

	router, err := NewRouter(svc)
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              appCfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		log.Infof("storefront API listening on %s", appCfg.HTTP.Addr)
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", errServe)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), appCfg.HTTP.ShutdownTimeout)
		defer cancelShutdown()
		errShutdown := server.Shutdown(shutdownCtx)
		if kafkaPublisher != nil {
			kafkaPublisher.Close()
			kafkaPublisher.Wait()
		}
		return errShutdown
	})
	return g.Wait()
}
