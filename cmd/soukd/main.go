package main

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/soukhq/souk-auth"
	"github.com/soukhq/souk-auth/imagestore"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Debug),
		glog.WithName("soukd"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	ctx := context.Background()

	db, err := openDatabase(ctx, envOr("SOUK_DSN", "file:souk.db?cache=shared"))
	if err != nil {
		lgr.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	cfg := &auth.Config{
		ActivationSecret:      os.Getenv("SOUK_ACTIVATION_SECRET"),
		CustomerSessionSecret: os.Getenv("SOUK_CUSTOMER_SESSION_SECRET"),
		SellerSessionSecret:   os.Getenv("SOUK_SELLER_SESSION_SECRET"),
		ActivationBaseURL:     envOr("SOUK_ACTIVATION_BASE_URL", "http://localhost:3000/activation"),
	}

	auther, err := auth.New(repo, cfg)
	if err != nil {
		lgr.Error("failed to build authenticator", "error", err)
		os.Exit(1)
	}
	auther.WithLogger(lgr.GetLogger("auth"))

	mailer := auth.NewSMTPMailer(auth.SMTPConfig{
		Host:     envOr("SOUK_SMTP_HOST", "localhost"),
		Port:     envIntOr("SOUK_SMTP_PORT", 587),
		Username: os.Getenv("SOUK_SMTP_USER"),
		Password: os.Getenv("SOUK_SMTP_PASSWORD"),
		From:     envOr("SOUK_SMTP_FROM", "no-reply@souk.local"),
	}).WithLogger(lgr.GetLogger("mail"))

	var images auth.ImageStore
	if url := os.Getenv("SOUK_CLOUDINARY_URL"); url != "" {
		images, err = imagestore.NewCloudinary(url)
		if err != nil {
			lgr.Error("failed to initialize image store", "error", err)
			os.Exit(1)
		}
	}

	activation := auth.NewActivationService(auther, repo, mailer, images).
		WithLogger(lgr.GetLogger("activation"))

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
		}))
	})
	srv.Router().WithLogger(lgr.GetLogger("router"))

	auth.RegisterAuthRoutes(srv.Router().Group("/"),
		auth.WithController(repo, auther, activation),
		auth.WithControllerLogger(lgr.GetLogger("auth:ctrl")),
	)

	addr := envOr("SOUK_ADDR", ":8011")
	srv.Serve(addr)

	lgr.Info("soukd listening", "addr", addr)

	WaitExitSignal()
}

func openDatabase(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := applyMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// applyMigrations runs the embedded sqlite migrations in lexical order. The
// statements are idempotent so re-running at boot is safe.
func applyMigrations(ctx context.Context, db *bun.DB) error {
	root := "data/sql/migrations/sqlite"

	entries, err := fs.ReadDir(auth.GetMigrationsFS(), root)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		stmt, err := fs.ReadFile(auth.GetMigrationsFS(), root+"/"+name)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(stmt)); err != nil {
			return err
		}
	}

	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// WaitExitSignal blocks until the process receives a termination signal
func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
