package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leafscan/internal/classifier"
	"leafscan/internal/handlers"
	"leafscan/internal/logger"
	"leafscan/internal/repository"
	"leafscan/internal/repository/db"
	"leafscan/internal/server"
	"leafscan/internal/service"
	"leafscan/internal/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// .env is optional; deployed environments set variables directly
	_ = godotenv.Load()

	cfgErr := loadConfig()

	// init logger
	log := logger.Get(viper.GetString("log_level"))
	if cfgErr != nil {
		log.Fatalw("error reading config", "err", cfgErr)
	}

	// open the document store
	client, database, err := db.Connect(context.Background(), viper.GetString("db.uri"), viper.GetString("db.name"))
	if err != nil {
		log.Fatalw("failed to init mongo", "err", err)
	}

	// local image storage, served under /static
	images, err := storage.NewImageStore(viper.GetString("storage.dir"), viper.GetString("storage.base_url"))
	if err != nil {
		log.Fatalw("failed to init image storage", "err", err)
	}

	// wire dependencies
	repos := repository.NewRepository(database)
	clf := classifier.NewHTTP(viper.GetString("classifier.url"))
	services := service.NewService(repos, images, clf, service.AuthConfig{
		SigningKey: []byte(viper.GetString("auth.signing_key")),
		TokenTTL:   time.Duration(viper.GetInt("auth.token_ttl_minutes")) * time.Minute,
	})
	apiHandler := handlers.NewHandler(services, log, viper.GetString("storage.dir"), viper.GetStringSlice("cors.origins"))

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(srv, client, log)
}

// loadConfig reads configs/config.yml and binds environment overrides.
// A missing config file is fine; defaults and the environment cover it.
func loadConfig() error {
	viper.SetDefault("port", "8000")
	viper.SetDefault("log_level", logger.InfoLevel)
	viper.SetDefault("db.uri", "mongodb://localhost:27017")
	viper.SetDefault("db.name", "leafscan")
	viper.SetDefault("auth.token_ttl_minutes", 30)
	viper.SetDefault("classifier.url", "http://localhost:8501/predict")
	viper.SetDefault("storage.dir", "static")
	viper.SetDefault("storage.base_url", "http://localhost:8000")

	_ = viper.BindEnv("db.uri", "MONGO_URI")
	_ = viper.BindEnv("auth.signing_key", "SIGNING_KEY")

	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals, drains in-flight
// requests and closes the database connection.
func waitForShutdown(srv *server.Server, client *mongo.Client, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
	if err := client.Disconnect(ctx); err != nil {
		log.Errorw("failed to close mongo connection", "err", err)
	}
}
