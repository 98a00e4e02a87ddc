// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/target-creator/backend/internal/models"
	"github.com/target-creator/backend/internal/scene"
)

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// SessionHandler handles editor session lifecycle
type SessionHandler interface {
	HandleCreateSession(c echo.Context) error
	HandleListSessions(c echo.Context) error
	HandleGetSession(c echo.Context) error
	HandleDeleteSession(c echo.Context) error
	HandleSessionKeepAlive(c echo.Context) error
}

// SceneHandler handles placed targets, paths, coordinates and relationships
type SceneHandler interface {
	HandleListCoordinates(c echo.Context) error
	HandleEnsureCoordinate(c echo.Context) error
	HandleGetCoordinate(c echo.Context) error
	HandleRenameCoordinate(c echo.Context) error
	HandleDeleteCoordinate(c echo.Context) error
	HandleListTargets(c echo.Context) error
	HandlePlaceTarget(c echo.Context) error
	HandleUpdateTarget(c echo.Context) error
	HandleMoveTarget(c echo.Context) error
	HandleDeleteTarget(c echo.Context) error
	HandleListPaths(c echo.Context) error
	HandleGetPath(c echo.Context) error
	HandleDeletePath(c echo.Context) error
	HandleGetRelationships(c echo.Context) error
	HandleSceneMsgpack(c echo.Context) error
}

// PathCreationHandler drives the path-creation state machine
type PathCreationHandler interface {
	HandleGetMode(c echo.Context) error
	HandleStart(c echo.Context) error
	HandleClick(c echo.Context) error
	HandleCancel(c echo.Context) error
	HandleEndpoints(c echo.Context) error
	HandleGridClick(c echo.Context) error
}

// GridItemsHandler exposes the relational grid items store
type GridItemsHandler interface {
	HandleListTargets(c echo.Context) error
	HandleCreateTarget(c echo.Context) error
	HandleGetTarget(c echo.Context) error
	HandleUpdateTarget(c echo.Context) error
	HandleDeleteTarget(c echo.Context) error
	HandleStartCoordinate(c echo.Context) error
	HandleListPaths(c echo.Context) error
	HandleCreatePath(c echo.Context) error
	HandleGetPath(c echo.Context) error
	HandleUpdatePath(c echo.Context) error
	HandleDeletePath(c echo.Context) error
	HandleListCoordinates(c echo.Context) error
	HandleCreateCoordinate(c echo.Context) error
	HandleGetCoordinate(c echo.Context) error
	HandleUpdateCoordinate(c echo.Context) error
	HandleDeleteCoordinate(c echo.Context) error
	HandleCoordinateTargets(c echo.Context) error
	HandleCoordinatePaths(c echo.Context) error
}

// ExchangeHandler handles import, export and stored scene files
type ExchangeHandler interface {
	HandleFormats(c echo.Context) error
	HandleExport(c echo.Context) error
	HandleSaveExport(c echo.Context) error
	HandleImport(c echo.Context) error
	HandleStartImportJob(c echo.Context) error
	HandleGetImportJob(c echo.Context) error
	HandleUploadFile(c echo.Context) error
	HandleListFiles(c echo.Context) error
	HandleGetFile(c echo.Context) error
	HandleDownloadFile(c echo.Context) error
	HandleRenameFile(c echo.Context) error
	HandleDeleteFile(c echo.Context) error
}

// NotificationHandler streams notifications over a websocket
type NotificationHandler interface {
	HandleWebSocket(c echo.Context) error
}

// SessionManager defines the interface for session management
// This allows mocking in tests
type SessionManager interface {
	CreateSession(name string) *models.EditorSession
	GetSession(id string) (*models.EditorSession, bool)
	GetScene(id string) (*scene.Scene, bool)
	ListSessions() []*models.EditorSession
	DeleteSession(id string) bool
	TouchSession(id string) bool
}

// sceneFor resolves the :sessionId path parameter to its scene.
func sceneFor(c echo.Context, sessions SessionManager) (*scene.Scene, error) {
	id := c.Param("sessionId")
	if id == "" {
		return nil, NewValidationError("sessionId")
	}
	sc, ok := sessions.GetScene(id)
	if !ok {
		return nil, NewNotFoundError("session", id)
	}
	return sc, nil
}
