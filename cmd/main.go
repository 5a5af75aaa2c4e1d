package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wanderlust/internal/geocode"
	"wanderlust/internal/handlers"
	"wanderlust/internal/logger"
	"wanderlust/internal/repository"
	"wanderlust/internal/server"
	"wanderlust/internal/service"
	"wanderlust/internal/storage"

	"github.com/gorilla/csrf"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultSweepTick = 1 * time.Hour

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load .env (development convenience) and config.yml
	if err := godotenv.Load(); err != nil {
		log.Infow("no .env file loaded", "err", err)
	}
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// image store
	store, err := storage.NewLocalStore(viper.GetString("uploads.dir"), "/uploads")
	if err != nil {
		log.Fatalw("failed to init uploads dir", "err", err)
	}

	// wire dependencies
	repos := repository.NewRepository(db)
	services := service.NewService(service.Deps{
		Repos:    repos,
		Geocoder: newGeocoder(),
		Store:    store,
		Log:      log,
	})
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// sweep expired sessions in the background
	go services.Sessions.Sweep(ctx, defaultSweepTick)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), buildHandler(apiHandler, store), log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	viper.SetDefault("uploads.dir", "uploads")
	viper.SetDefault("templates.glob", "web/templates/*.html")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "app.db")
		dbPath = "app.db"
	}
	return repository.InitDB(dbPath)
}

func newGeocoder() *geocode.Client {
	opts := []geocode.Option{}
	if base := viper.GetString("geocoder.url"); base != "" {
		opts = append(opts, geocode.WithBaseURL(base))
	}
	return geocode.New(opts...)
}

// buildHandler assembles the full HTTP stack: CSRF protection on the
// outside, then the form-method override, then the router. CSRF must see
// the original POST: after the override rewrites it to DELETE, ParseForm
// no longer reads the body and the form token would be invisible.
func buildHandler(h *handlers.Handler, store *storage.LocalStore) http.Handler {
	router := h.InitRoutes(viper.GetString("templates.glob"), store.Dir(), viper.GetBool("session.secure"))

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = viper.GetString("session.secret")
	}
	protect := csrf.Protect([]byte(secret),
		csrf.Secure(viper.GetBool("session.secure")),
		csrf.Path("/"),
		csrf.FieldName("csrf_token"),
		csrf.SameSite(csrf.SameSiteLaxMode),
	)
	return protect(handlers.MethodOverride(router))
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler http.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler); err != nil && err != http.ErrServerClosed {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
