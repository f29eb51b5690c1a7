// Package holder initializes and runs the identity holder: storage, the
// authorization endpoint, the metrics endpoint and the interactive console.
package holder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/quickauth/internal/common"
	"github.com/dmitrijs2005/quickauth/internal/dbx"
	"github.com/dmitrijs2005/quickauth/internal/filex"
	"github.com/dmitrijs2005/quickauth/internal/holder/avatar"
	"github.com/dmitrijs2005/quickauth/internal/holder/config"
	"github.com/dmitrijs2005/quickauth/internal/holder/console"
	"github.com/dmitrijs2005/quickauth/internal/holder/identity"
	"github.com/dmitrijs2005/quickauth/internal/holder/inbox"
	"github.com/dmitrijs2005/quickauth/internal/holder/metrics"
	"github.com/dmitrijs2005/quickauth/internal/holder/migrations"
	"github.com/dmitrijs2005/quickauth/internal/holder/session"
	"github.com/dmitrijs2005/quickauth/internal/logging"

	gs "github.com/dmitrijs2005/quickauth/internal/holder/grpc"
)

// Seeded account, created on startup when absent.
const (
	SeedUsername = "admin"
	SeedPassword = "123456"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	ids      *identity.Store
	sessions *session.State
	metrics  *metrics.Metrics
	inbox    *inbox.Inbox
	console  *console.Console
}

// NewApp opens and migrates the database and wires every component. The
// console reads from in and writes to out; logs go to logOut.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out, logOut io.Writer) (*App, error) {
	logger := logging.New(logOut, c.LogFormat, c.LogLevel)

	creds, err := identity.NewCredentials(c.Credentials)
	if err != nil {
		return nil, err
	}

	if _, dialect, source := dbx.ParseDSN(c.DatabaseDSN); dialect == dbx.DialectSQLite && source != ":memory:" {
		if _, err := filex.EnsureParentDir(source); err != nil {
			return nil, err
		}
	}

	db, dialect, err := dbx.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := migrations.Up(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}

	m := metrics.New()
	ids := identity.NewStore(identity.NewSQLRepository(db, dialect), creds, logger)
	sessions := session.NewState(db, dialect, logger)
	box := inbox.New(c.InboxCapacity, m, logger)

	// A nil interface, not a nil *S3Storage, keeps avatars disabled.
	var storage avatar.Storage
	ac := avatar.Config{
		Bucket:   c.S3Bucket,
		Region:   c.S3Region,
		Endpoint: c.S3Endpoint,
		User:     c.S3User,
		Password: c.S3Password,
		URLTTL:   c.AvatarURLTTL,
	}
	if ac.Enabled() {
		s3s, err := avatar.NewS3Storage(ctx, ac)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("avatar storage: %w", err)
		}
		storage = s3s
	}

	app := &App{
		config:   c,
		logger:   logger,
		db:       db,
		ids:      ids,
		sessions: sessions,
		metrics:  m,
		inbox:    box,
		console: console.New(console.Deps{
			Identities: ids,
			Sessions:   sessions,
			Avatars:    avatar.NewManager(storage, ids),
			Observer:   m,
			Log:        logger,
		}, in, out, box.Requests()),
	}

	if err := app.seed(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

// seed creates the default account and signature when missing.
func (app *App) seed(ctx context.Context) error {
	if app.config.SeedAdmin {
		ok, err := app.ids.Exists(ctx, SeedUsername)
		if err != nil {
			return err
		}
		if !ok {
			_, err := app.ids.Create(ctx, SeedUsername, SeedPassword)
			if err != nil && !errors.Is(err, common.ErrConflict) {
				return fmt.Errorf("seed %s: %w", SeedUsername, err)
			}
			app.logger.Info(ctx, "seeded account", "username", SeedUsername)
		}
	}
	return app.sessions.EnsureSignature(ctx, common.DefaultSignature)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) (stop func()) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancelFunc()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// Run serves until ctx is cancelled, a signal arrives, the user leaves the
// console, or a server fails. The first server error is returned.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	stop := app.initSignalHandler(cancelFunc)
	defer stop()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		app.logger.Error(ctx, err.Error())
		errOnce.Do(func() { firstErr = err })
		cancelFunc()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s := gs.NewGRPCServer(app.config.GRPCAddress, app.logger, app.inbox, app.metrics)
		if err := s.Run(ctx); err != nil {
			fail(fmt.Errorf("grpc server: %w", err))
		}
	}()

	if app.config.MetricsAddress != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := app.metrics.Serve(ctx, app.config.MetricsAddress, app.logger); err != nil {
				fail(fmt.Errorf("metrics server: %w", err))
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancelFunc()
		if err := app.console.Run(ctx); err != nil {
			fail(fmt.Errorf("console: %w", err))
		}
	}()

	<-ctx.Done()
	app.inbox.Close()
	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Warn(context.Background(), "close db", "error", err)
	}
	app.logger.Info(context.Background(), "Stopped")
	return firstErr
}
