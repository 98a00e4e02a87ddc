// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/target-creator/backend/internal/exchange"
	"github.com/target-creator/backend/internal/notify"
	"github.com/target-creator/backend/internal/storage"
)

// Sessions is the session manager surface the handlers need
type Sessions interface {
	SessionManager
	SessionCounter
}

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store      storage.Store
	SessionMgr Sessions
	ImportMgr  ImportJobs
	Hub        *notify.Hub
	Codecs     *exchange.Registry
	Version    string
	// AllowFileDeletion registers DELETE /api/files/:id
	AllowFileDeletion bool
}

// Handlers holds all handler instances
type Handlers struct {
	Health       HealthHandler
	Session      SessionHandler
	Scene        SceneHandler
	PathCreation PathCreationHandler
	GridItems    GridItemsHandler
	Exchange     ExchangeHandler
	Notification NotificationHandler

	allowFileDeletion bool
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:            NewHealthHandler(deps.Version, deps.SessionMgr),
		Session:           NewSessionHandler(deps.SessionMgr),
		Scene:             NewSceneHandler(deps.SessionMgr),
		PathCreation:      NewPathCreationHandler(deps.SessionMgr),
		GridItems:         NewGridItemsHandler(deps.SessionMgr),
		Exchange:          NewExchangeHandler(deps.Store, deps.SessionMgr, deps.ImportMgr, deps.Codecs),
		Notification:      NewWebSocketHandler(deps.Hub, deps.SessionMgr),
		allowFileDeletion: deps.AllowFileDeletion,
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Formats and stored files
	apiGroup.GET("/formats", handlers.Exchange.HandleFormats)
	apiGroup.POST("/files", handlers.Exchange.HandleUploadFile)
	apiGroup.GET("/files", handlers.Exchange.HandleListFiles)
	apiGroup.GET("/files/:id", handlers.Exchange.HandleGetFile)
	apiGroup.GET("/files/:id/download", handlers.Exchange.HandleDownloadFile)
	apiGroup.PUT("/files/:id", handlers.Exchange.HandleRenameFile)
	if handlers.allowFileDeletion {
		apiGroup.DELETE("/files/:id", handlers.Exchange.HandleDeleteFile)
	}
	apiGroup.GET("/import/jobs/:jobId", handlers.Exchange.HandleGetImportJob)

	// Session lifecycle
	apiGroup.POST("/sessions", handlers.Session.HandleCreateSession)
	apiGroup.GET("/sessions", handlers.Session.HandleListSessions)

	sessionGroup := apiGroup.Group("/sessions/:sessionId")
	sessionGroup.GET("", handlers.Session.HandleGetSession)
	sessionGroup.DELETE("", handlers.Session.HandleDeleteSession)
	sessionGroup.POST("/keepalive", handlers.Session.HandleSessionKeepAlive)
	sessionGroup.GET("/ws", handlers.Notification.HandleWebSocket)

	// Scene editing
	sessionGroup.GET("/coordinates", handlers.Scene.HandleListCoordinates)
	sessionGroup.POST("/coordinates", handlers.Scene.HandleEnsureCoordinate)
	sessionGroup.GET("/coordinates/:id", handlers.Scene.HandleGetCoordinate)
	sessionGroup.PUT("/coordinates/:id", handlers.Scene.HandleRenameCoordinate)
	sessionGroup.DELETE("/coordinates/:id", handlers.Scene.HandleDeleteCoordinate)
	sessionGroup.GET("/targets", handlers.Scene.HandleListTargets)
	sessionGroup.POST("/targets", handlers.Scene.HandlePlaceTarget)
	sessionGroup.PUT("/targets/:id", handlers.Scene.HandleUpdateTarget)
	sessionGroup.PUT("/targets/:id/position", handlers.Scene.HandleMoveTarget)
	sessionGroup.DELETE("/targets/:id", handlers.Scene.HandleDeleteTarget)
	sessionGroup.GET("/paths", handlers.Scene.HandleListPaths)
	sessionGroup.GET("/paths/:id", handlers.Scene.HandleGetPath)
	sessionGroup.DELETE("/paths/:id", handlers.Scene.HandleDeletePath)
	sessionGroup.GET("/relationships/:itemType/:itemId", handlers.Scene.HandleGetRelationships)
	sessionGroup.GET("/scene/msgpack", handlers.Scene.HandleSceneMsgpack)

	// Path creation
	sessionGroup.GET("/path-creation", handlers.PathCreation.HandleGetMode)
	sessionGroup.POST("/path-creation/start", handlers.PathCreation.HandleStart)
	sessionGroup.POST("/path-creation/click", handlers.PathCreation.HandleClick)
	sessionGroup.POST("/path-creation/cancel", handlers.PathCreation.HandleCancel)
	sessionGroup.GET("/path-creation/endpoints", handlers.PathCreation.HandleEndpoints)
	sessionGroup.POST("/grid/click", handlers.PathCreation.HandleGridClick)

	// Grid items store
	gridGroup := sessionGroup.Group("/grid-items")
	gridGroup.GET("/targets", handlers.GridItems.HandleListTargets)
	gridGroup.POST("/targets", handlers.GridItems.HandleCreateTarget)
	gridGroup.GET("/targets/:id", handlers.GridItems.HandleGetTarget)
	gridGroup.PUT("/targets/:id", handlers.GridItems.HandleUpdateTarget)
	gridGroup.DELETE("/targets/:id", handlers.GridItems.HandleDeleteTarget)
	gridGroup.GET("/targets/:id/start-coordinate", handlers.GridItems.HandleStartCoordinate)
	gridGroup.GET("/paths", handlers.GridItems.HandleListPaths)
	gridGroup.POST("/paths", handlers.GridItems.HandleCreatePath)
	gridGroup.GET("/paths/:id", handlers.GridItems.HandleGetPath)
	gridGroup.PUT("/paths/:id", handlers.GridItems.HandleUpdatePath)
	gridGroup.DELETE("/paths/:id", handlers.GridItems.HandleDeletePath)
	gridGroup.GET("/coordinates", handlers.GridItems.HandleListCoordinates)
	gridGroup.POST("/coordinates", handlers.GridItems.HandleCreateCoordinate)
	gridGroup.GET("/coordinates/:id", handlers.GridItems.HandleGetCoordinate)
	gridGroup.PUT("/coordinates/:id", handlers.GridItems.HandleUpdateCoordinate)
	gridGroup.DELETE("/coordinates/:id", handlers.GridItems.HandleDeleteCoordinate)
	gridGroup.GET("/coordinates/:id/targets", handlers.GridItems.HandleCoordinateTargets)
	gridGroup.GET("/coordinates/:id/paths", handlers.GridItems.HandleCoordinatePaths)

	// Import and export
	sessionGroup.GET("/export", handlers.Exchange.HandleExport)
	sessionGroup.POST("/exports", handlers.Exchange.HandleSaveExport)
	sessionGroup.POST("/import", handlers.Exchange.HandleImport)
	sessionGroup.POST("/import/jobs", handlers.Exchange.HandleStartImportJob)
}

// MiddlewareConfig selects the optional middleware
type MiddlewareConfig struct {
	RequestLogging   bool
	EnableCORS       bool
	AllowOrigins     string // comma separated; empty means "*"
	EnableGzip       bool
	CompressionLevel int
	BodyLimit        string
	ShowErrorDetails bool
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg MiddlewareConfig) {
	e.HTTPErrorHandler = ErrorHandler
	SetErrorDetails(cfg.ShowErrorDetails)

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.RequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/keepalive") ||
				strings.HasSuffix(path, "/ws") ||
				path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if cfg.EnableGzip {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level: cfg.CompressionLevel,
			Skipper: func(c echo.Context) bool {
				return strings.HasSuffix(c.Request().URL.Path, "/ws")
			},
		}))
	}

	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	if cfg.EnableCORS {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: splitOrigins(cfg.AllowOrigins),
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
