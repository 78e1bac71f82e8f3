package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/goevery/signaling/internal/auth"
	"github.com/goevery/signaling/internal/broadcaster"
	"github.com/goevery/signaling/internal/handler"
	"github.com/goevery/signaling/internal/metrics"
	"github.com/goevery/signaling/internal/notify"
	"github.com/goevery/signaling/internal/notify/redisbus"
	"github.com/goevery/signaling/internal/persistence/mongodb"
	"github.com/goevery/signaling/internal/server"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
)

type App struct {
	logger     *zap.Logger
	settings   Settings
	dispatcher *broadcaster.Dispatcher
	notifier   *notify.Notifier

	websocketServer *server.WebSocketServer
	restServer      *server.RESTServer

	mongoClient *mongo.Client
	bus         *redisbus.Bus
}

func NewApp(ctx context.Context, logger *zap.Logger, settings Settings) (*App, error) {
	app := &App{
		logger:   logger,
		settings: settings,
	}

	var notifierOpts []notify.Option

	if settings.MongoDBURI != "" {
		client, err := mongodb.Connect(settings.MongoDBURI)
		if err != nil {
			return nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		app.mongoClient = client

		store := mongodb.NewMeetingStore(client, settings.MongoDBDatabase)
		if err := store.Setup(ctx); err != nil {
			app.close()
			return nil, fmt.Errorf("setup meeting store: %w", err)
		}

		notifierOpts = append(notifierOpts, notify.WithMeetingStore(store))
		logger.Info("meeting store enabled", zap.String("database", settings.MongoDBDatabase))
	}

	if settings.RedisAddr != "" {
		bus, err := redisbus.New(ctx, logger, settings.RedisAddr, settings.RedisChannel)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		app.bus = bus

		instanceId := gonanoid.Must()
		notifierOpts = append(notifierOpts, notify.WithBus(bus, instanceId))
		logger.Info("room list bus enabled",
			zap.String("channel", settings.RedisChannel),
			zap.String("instanceId", instanceId))
	}

	m := metrics.New()
	app.notifier = notify.NewNotifier(logger, notifierOpts...)
	app.dispatcher = broadcaster.NewDispatcher(logger, app.notifier, broadcaster.WithMetrics(m))

	router := server.NewRouter(
		logger,
		handler.NewHeartbeatHandler(app.dispatcher),
		handler.NewJoinRoomHandler(app.dispatcher),
		handler.NewLeaveRoomHandler(app.dispatcher),
		handler.NewSignalHandler(app.dispatcher),
		handler.NewMediaToggleHandler(app.dispatcher),
		handler.NewChatHandler(app.dispatcher),
		handler.NewScreenShareHandler(app.dispatcher),
		handler.NewFileTransferHandler(app.dispatcher),
	)

	authenticator := auth.NewAuthenticator(settings.JWTSecret, settings.APIKeyList())
	originChecker := server.NewOriginChecker(settings.AllowedOriginList())
	websocketUpgrader := &websocket.Upgrader{
		ReadBufferSize:    1024,
		WriteBufferSize:   1024,
		CheckOrigin:       originChecker.Check,
		EnableCompression: true,
	}

	app.websocketServer = server.NewWebSocketServer(
		logger,
		websocketUpgrader,
		authenticator,
		app.dispatcher,
		server.NewRPCHandler(logger, router),
		server.WithSendBuffer(settings.SendBuffer),
		server.WithReadLimit(int64(settings.ReadLimit)),
	)
	app.restServer = server.NewRESTServer(
		logger,
		app.dispatcher,
		authenticator,
		m.Handler(),
	)

	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	defer a.close()

	notifyCtx, notifyCtxCancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer notifyCtxCancel()

	notifierDone := make(chan struct{})
	go func() {
		defer close(notifierDone)
		a.notifier.Run(notifyCtx, a.dispatcher)
	}()

	err := a.startHttpServer(notifyCtx)

	notifyCtxCancel()
	<-notifierDone

	return err
}

func (a *App) startHttpServer(ctx context.Context) error {
	address := fmt.Sprintf("0.0.0.0:%d", a.settings.Port)

	router := mux.NewRouter().
		PathPrefix(a.settings.BasePath).
		Subrouter()

	a.websocketServer.Register(ctx, router)
	a.restServer.Register(router)

	httpServer := &http.Server{
		Addr:    address,
		Handler: router,
	}

	a.logger.Info("starting http server",
		zap.String("address", address),
		zap.String("basePath", a.settings.BasePath))

	serveErr := make(chan error, 1)
	go func() {
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("stopping http server")

	shutdownCtx, shutdownCtxCancel := context.WithTimeout(context.Background(), a.settings.ShutdownTimeout())
	defer shutdownCtxCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	a.logger.Info("http server stopped")

	return nil
}

func (a *App) close() {
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			a.logger.Warn("failed to close redis bus", zap.Error(err))
		}
	}

	if a.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.settings.ShutdownTimeout())
		defer cancel()

		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.logger.Warn("failed to disconnect from mongodb", zap.Error(err))
		}
	}
}
