// handlers_pathcreation.go - Path creation state machine handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/target-creator/backend/internal/models"
	"github.com/target-creator/backend/internal/pathcreation"
)

// PathCreationHandlerImpl implements the PathCreationHandler interface
type PathCreationHandlerImpl struct {
	sessions SessionManager
}

// NewPathCreationHandler creates a new path creation handler
func NewPathCreationHandler(sessions SessionManager) PathCreationHandler {
	return &PathCreationHandlerImpl{sessions: sessions}
}

// HandleGetMode returns the current path creation state
func (h *PathCreationHandlerImpl) HandleGetMode(c echo.Context) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sc.PathCreationMode())
}

// HandleStart begins path creation from a position or from a placed target
func (h *PathCreationHandlerImpl) HandleStart(c echo.Context) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	var req startPathRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	start := pathcreation.StartRequest{
		Shape:    req.Type,
		PathType: req.PathType,
		Label:    req.PathLabel,
		Name:     req.PathName,
	}
	if req.TargetID != "" {
		err = sc.StartPathFromTarget(req.TargetID, start)
	} else {
		start.Start = *req.StartPosition
		err = sc.StartPathCreation(start)
	}
	if err != nil {
		return fromDomainError(err)
	}
	return c.JSON(http.StatusOK, sc.PathCreationMode())
}

// HandleClick offers a candidate endpoint for the in-progress path
func (h *PathCreationHandlerImpl) HandleClick(c echo.Context) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	var req positionRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}
	if !sc.PathCreationMode().IsActive {
		return NewConflictError("path creation is not active")
	}

	path, completed := sc.CompletePathCreation(*req.Position)
	return c.JSON(http.StatusOK, completeResponse{
		Completed: completed,
		Path:      path,
		Mode:      sc.PathCreationMode(),
	})
}

// HandleCancel discards the in-progress path
func (h *PathCreationHandlerImpl) HandleCancel(c echo.Context) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	cancelled := sc.CancelPathCreation()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"cancelled": cancelled,
		"mode":      sc.PathCreationMode(),
	})
}

// HandleEndpoints returns the endpoints to highlight for the in-progress path
func (h *PathCreationHandlerImpl) HandleEndpoints(c echo.Context) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	endpoints := sc.ValidEndpoints()
	if endpoints == nil {
		endpoints = []models.Position{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"gridSize":  sc.GridSize(),
		"endpoints": endpoints,
	})
}

// HandleGridClick routes a plain grid click; path creation consumes it while active
func (h *PathCreationHandlerImpl) HandleGridClick(c echo.Context) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	var req positionRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sc.ClickGridPoint(*req.Position))
}

type startPathRequest struct {
	Type          models.PathShape `json:"type"`
	StartPosition *models.Position `json:"startPosition"`
	TargetID      string           `json:"targetId"`
	PathType      string           `json:"pathType"`
	PathLabel     string           `json:"pathLabel"`
	PathName      string           `json:"pathName"`
}

func (r *startPathRequest) validate() error {
	if r.StartPosition == nil && r.TargetID == "" {
		return NewValidationError("startPosition")
	}
	return nil
}

type completeResponse struct {
	Completed bool                    `json:"completed"`
	Path      *models.Path            `json:"path,omitempty"`
	Mode      models.PathCreationMode `json:"mode"`
}
