package server

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Daskott/minicrm/server/logger"
	"github.com/Daskott/minicrm/server/models"
	"github.com/Daskott/minicrm/shared"
	"github.com/go-playground/validator"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	defaultMaxRequestBodySize = 1 << 20
	defaultReadTimeout        = 5 * time.Second
	defaultWriteTimeout       = 10 * time.Second
	defaultShutdownTimeout    = 5 * time.Second
)

var logg = logger.NewLogger()

// Start opens the contact db and serves the api until the process receives
// SIGINT or SIGTERM.
func Start(config *viper.Viper, devMode bool) {
	serverConfig, err := ParseConfig(config)
	fatalOnError(err)

	configDir, err := ConfigDirectory(devMode)
	fatalOnError(err)

	db, err := models.OpenDB(serverConfig.Sqlite.PassPhrase, configDir)
	fatalOnError(err)

	listener := serverConfig.Crm.Listener
	server := &http.Server{
		Addr:         fmt.Sprintf(":%v", listener.Port),
		Handler:      NewRouter(models.NewStore(db), serverConfig),
		ReadTimeout:  listener.ReadTimeout,
		WriteTimeout: listener.WriteTimeout,
	}

	go serve(server)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	cleanup(server, listener.ShutdownTimeout)

	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

// ParseConfig decodes and validates the server config, filling in defaults
// for the optional settings.
func ParseConfig(config *viper.Viper) (*shared.ServerConfig, error) {
	if config == nil {
		return nil, errors.New("server config is required")
	}

	serverConfig := shared.ServerConfig{}
	err := config.Unmarshal(&serverConfig)
	if err != nil {
		return nil, errors.Wrap(err, "decode server config")
	}

	err = validator.New().Struct(serverConfig)
	if err != nil {
		return nil, errors.Wrap(err, "invalid server config")
	}

	listener := &serverConfig.Crm.Listener
	if listener.ReadTimeout == 0 {
		listener.ReadTimeout = defaultReadTimeout
	}
	if listener.WriteTimeout == 0 {
		listener.WriteTimeout = defaultWriteTimeout
	}
	if listener.ShutdownTimeout == 0 {
		listener.ShutdownTimeout = defaultShutdownTimeout
	}
	if serverConfig.Crm.MaxRequestBodySize == 0 {
		serverConfig.Crm.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	return &serverConfig, nil
}
