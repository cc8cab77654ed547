package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/roomops/mtr-console/internal/handlers"
	"github.com/roomops/mtr-console/internal/rules"
	"github.com/roomops/mtr-console/internal/services"
	"github.com/roomops/mtr-console/internal/utils"
	"github.com/roomops/mtr-console/pkg/entra"
	"github.com/roomops/mtr-console/pkg/file"
	"github.com/roomops/mtr-console/pkg/httpclient"
	"github.com/roomops/mtr-console/pkg/intune"
	"github.com/roomops/mtr-console/pkg/token"
)

const statusWorkers = 5

func main() {
	// Set up structured logging with JSON output
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Initialize file operations handler
	fileClient := file.NewFileService()

	// Load configuration from file
	config, err := utils.LoadConfig("configs/config.yaml", fileClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(config.Logging.Level); err == nil && config.Logging.Level != "" {
		logger = logger.Level(level)
	}

	// The client secret lives in its own file so the config can be checked in
	clientSecret, err := fileClient.ReadFile(config.Auth.ClientSecretFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read client secret")
	}
	clientSecret = strings.TrimSpace(clientSecret)

	// Shared token manager and authenticated HTTP client for both directories
	tokens := token.NewManager(config.Auth.TokenEndpoint, config.Auth.TenantID,
		config.Auth.ClientID, clientSecret, logger)
	apiClient := httpclient.New(tokens, logger)

	identityDirectory := entra.NewClient(apiClient, config.Entra.BaseURL,
		config.Entra.Resource, config.Entra.PageSize, logger)
	deviceDirectory := intune.NewClient(apiClient, config.Intune.BaseURL,
		config.Intune.Resource, config.Intune.PageSize, logger)

	// Wire the services
	deviceService := services.NewDeviceService(deviceDirectory, logger)
	accountService := services.NewAccountService(identityDirectory, config.Accounts.UsageLocation, logger)
	groupService := services.NewGroupService(identityDirectory, accountService, []services.GroupBinding{
		{Role: rules.RoleResourceAccount, ObjectID: config.Groups.ResourceAccount.ObjectID},
		{Role: rules.RoleRoomAccount, ObjectID: config.Groups.RoomAccount.ObjectID},
		{Role: rules.RoleProLicense, ObjectID: config.Groups.ProLicense.ObjectID},
	}, logger)

	pool := utils.NewWorkerPool(statusWorkers)
	statusService := services.NewStatusService(deviceService, accountService, groupService, pool, logger)

	diagnosticsService, err := services.NewDiagnosticsService(config.Diagnostics.MinimumAppVersion, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize diagnostics")
	}

	deviceHandler := handlers.NewDeviceHandler(deviceService, logger)
	accountHandler := handlers.NewAccountHandler(accountService, logger)
	groupHandler := handlers.NewGroupHandler(groupService, logger)
	statusHandler := handlers.NewStatusHandler(statusService, logger)
	diagnosticsHandler := handlers.NewDiagnosticsHandler(diagnosticsService, logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(handlers.RequestLogger(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")
	api.POST("/device/check", deviceHandler.Check)
	api.POST("/device/provision", deviceHandler.Provision)
	api.POST("/mac/normalize", deviceHandler.NormalizeMac)

	api.POST("/account/check", accountHandler.Check)
	api.POST("/account/create", accountHandler.Create)
	api.POST("/account/update", accountHandler.Update)
	api.POST("/account/reset-password", accountHandler.ResetPassword)
	api.POST("/account/verify-password", accountHandler.VerifyPassword)
	api.POST("/account/unlock-check", accountHandler.CheckUnlock)

	api.POST("/group/:role/check", groupHandler.Check)
	api.POST("/group/:role/add", groupHandler.Add)
	api.POST("/group/:role/remove", groupHandler.Remove)

	api.POST("/room/status", statusHandler.Snapshot)
	api.GET("/diagnostics", diagnosticsHandler.Info)
	api.POST("/diagnostics/app-version", diagnosticsHandler.CheckAppVersion)

	e.Server.ReadTimeout = config.Server.ReadTimeout
	e.Server.WriteTimeout = config.Server.WriteTimeout

	address := fmt.Sprintf("%s:%d", config.Server.BindAddress, config.Server.Port)
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()
	logger.Info().Str("address", address).Msg("Console backend started")

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logger.Info().Msg("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
	pool.Shutdown()
}
