package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/fading-tictactoe/internal/config"
	"github.com/rocketscienceinc/fading-tictactoe/internal/repository"
	"github.com/rocketscienceinc/fading-tictactoe/internal/repository/storage"
	"github.com/rocketscienceinc/fading-tictactoe/internal/room"
	"github.com/rocketscienceinc/fading-tictactoe/internal/usecase"
	"github.com/rocketscienceinc/fading-tictactoe/transport/rest"
	"github.com/rocketscienceinc/fading-tictactoe/transport/websocket"
)

const shutdownTimeout = 10 * time.Second

var ErrAddrNotFound = errors.New("redis address string is empty")

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// RunApp - runs the application until SIGINT or SIGTERM.
func RunApp(logger *zap.Logger, conf *config.Config) error {
	log := logger.With(zap.String("component", "app"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gameRepo, closer, err := openGameRepository(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := closer.Close(); closeErr != nil {
			log.Error("could not close storage", zap.Error(closeErr))
		}
	}()

	rooms := room.NewRegistry(logger)
	games := usecase.NewGameManager(logger, gameRepo, rooms)
	socket := websocket.New(logger, games, rooms, websocket.Config{
		WriteTimeout:   conf.WebSocket.WriteTimeout,
		ReadLimit:      conf.WebSocket.ReadLimit,
		AllowedOrigins: conf.WebSocket.AllowedOrigins,
	})

	server := rest.NewServer(ctx, logger, conf.HTTPPort, rest.NewRouter(logger, games, socket))

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(server.Start)

	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err = group.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// openGameRepository connects the configured store. The returned closer
// releases the underlying connection.
func openGameRepository(ctx context.Context, conf *config.Config) (repository.GameRepository, io.Closer, error) {
	switch conf.Storage.Driver {
	case config.DriverRedis:
		addr := conf.Redis.GetRedisAddr()
		if conf.Redis.Host == "" {
			return nil, nil, ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, addr, conf.Redis.Password, conf.Redis.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return repository.NewGameRepository(redisStorage.Connection, conf.Storage.GameTTL), redisStorage, nil
	case config.DriverSQLite:
		sqlStorage, err := storage.NewSQLiteStorage(ctx, conf.SQLiteStoragePath)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		return openSQLRepository(ctx, sqlStorage, repository.SQLiteDialect)
	case config.DriverPostgres:
		sqlStorage, err := storage.NewPostgresStorage(ctx, conf.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to postgres storage: %w", err)
		}

		return openSQLRepository(ctx, sqlStorage, repository.PostgresDialect)
	case config.DriverMemory:
		return repository.NewMemoryGameRepository(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, conf.Storage.Driver)
	}
}

func openSQLRepository(
	ctx context.Context, sqlStorage *storage.Storage, dialect repository.Dialect,
) (repository.GameRepository, io.Closer, error) {
	if err := repository.Migrate(ctx, sqlStorage.Connection, dialect); err != nil {
		_ = sqlStorage.Close()
		return nil, nil, fmt.Errorf("could not migrate storage: %w", err)
	}

	return repository.NewSQLGameRepository(sqlStorage.Connection, dialect), sqlStorage, nil
}
