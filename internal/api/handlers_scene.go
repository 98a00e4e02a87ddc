// handlers_scene.go - Scene editing handlers (placed targets, paths, coordinates)
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/target-creator/backend/internal/models"
	"github.com/target-creator/backend/internal/scene"
	"github.com/vmihailenco/msgpack/v5"
)

// SceneHandlerImpl implements the SceneHandler interface
type SceneHandlerImpl struct {
	sessions SessionManager
}

// NewSceneHandler creates a new scene handler
func NewSceneHandler(sessions SessionManager) SceneHandler {
	return &SceneHandlerImpl{sessions: sessions}
}

// HandleListCoordinates returns every registered coordinate
func (h *SceneHandlerImpl) HandleListCoordinates(c echo.Context) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sc.Coordinates())
}

// HandleEnsureCoordinate registers a position, returning the existing record if any
func (h *SceneHandlerImpl) HandleEnsureCoordinate(c echo.Context) error {
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

	coord, err := sc.EnsureCoordinate(*req.Position)
	if err != nil {
		return fromDomainError(err)
	}
	return c.JSON(http.StatusOK, coord)
}

// HandleGetCoordinate returns one coordinate with its relationship counts
func (h *SceneHandlerImpl) HandleGetCoordinate(c echo.Context) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	id := c.Param("id")
	coord, ok := sc.Coordinate(id)
	if !ok {
		return NewNotFoundError("coordinate", id)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"coordinate": coord,
		"counts":     sc.RelationshipCounts(models.ItemCoordinate, id),
	})
}

// HandleRenameCoordinate sets a coordinate's display name
func (h *SceneHandlerImpl) HandleRenameCoordinate(c echo.Context) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	var req renameRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	coord, err := sc.RenameCoordinate(c.Param("id"), req.Name)
	if err != nil {
		return fromDomainError(err)
	}
	return c.JSON(http.StatusOK, coord)
}

// HandleDeleteCoordinate detaches everything on a coordinate and removes it
func (h *SceneHandlerImpl) HandleDeleteCoordinate(c echo.Context) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	if err := sc.RemoveCoordinate(c.Param("id")); err != nil {
		return fromDomainError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleListTargets returns every placed target
func (h *SceneHandlerImpl) HandleListTargets(c echo.Context) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sc.Targets())
}

// HandlePlaceTarget places a new target on the grid
func (h *SceneHandlerImpl) HandlePlaceTarget(c echo.Context) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	var req placeTargetRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	target, err := sc.PlaceTarget(scene.TargetInput{
		Label:    req.Label,
		Name:     req.Name,
		Position: *req.Position,
	})
	if err != nil {
		return fromDomainError(err)
	}
	return c.JSON(http.StatusCreated, target)
}

// HandleUpdateTarget changes a target's label or name
func (h *SceneHandlerImpl) HandleUpdateTarget(c echo.Context) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	var req scene.TargetUpdate
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	target, err := sc.UpdateTarget(c.Param("id"), req)
	if err != nil {
		return fromDomainError(err)
	}
	return c.JSON(http.StatusOK, target)
}

// HandleMoveTarget moves a target and relinks it to the coordinate at its new position
func (h *SceneHandlerImpl) HandleMoveTarget(c echo.Context) error {
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
	target, err := sc.MoveTarget(c.Param("id"), *req.Position)
	if err != nil {
		return fromDomainError(err)
	}
	return c.JSON(http.StatusOK, target)
}

// HandleDeleteTarget removes a target and its relationships
func (h *SceneHandlerImpl) HandleDeleteTarget(c echo.Context) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	if err := sc.RemoveTarget(c.Param("id")); err != nil {
		return fromDomainError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleListPaths returns every placed path
func (h *SceneHandlerImpl) HandleListPaths(c echo.Context) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sc.Paths())
}

// HandleGetPath returns one path
func (h *SceneHandlerImpl) HandleGetPath(c echo.Context) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	id := c.Param("id")
	path, ok := sc.Path(id)
	if !ok {
		return NewNotFoundError("path", id)
	}
	return c.JSON(http.StatusOK, path)
}

// HandleDeletePath removes a path and its relationships
func (h *SceneHandlerImpl) HandleDeletePath(c echo.Context) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	if err := sc.RemovePath(c.Param("id")); err != nil {
		return fromDomainError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleGetRelationships returns the related items and counts for one item
func (h *SceneHandlerImpl) HandleGetRelationships(c echo.Context) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	itemType := models.ItemType(c.Param("itemType"))
	if !itemType.Valid() {
		return NewValidationError("itemType")
	}
	id := c.Param("itemId")
	return c.JSON(http.StatusOK, relationshipsResponse{
		ItemType: itemType,
		ItemID:   id,
		Related:  sc.RelatedItems(itemType, id),
		Counts:   sc.RelationshipCounts(itemType, id),
	})
}

// HandleSceneMsgpack returns the full scene document in MessagePack format
func (h *SceneHandlerImpl) HandleSceneMsgpack(c echo.Context) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	data, err := msgpack.Marshal(sc.Document())
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

type positionRequest struct {
	Position *models.Position `json:"position"`
}

func (r *positionRequest) validate() error {
	if r.Position == nil {
		return NewValidationError("position")
	}
	return nil
}

type placeTargetRequest struct {
	Label    string           `json:"label"`
	Name     string           `json:"name"`
	Position *models.Position `json:"position"`
}

func (r *placeTargetRequest) validate() error {
	if r.Label == "" {
		return NewValidationError("label")
	}
	if r.Position == nil {
		return NewValidationError("position")
	}
	return nil
}

type renameRequest struct {
	Name string `json:"name"`
}

type relationshipsResponse struct {
	ItemType models.ItemType           `json:"itemType"`
	ItemID   string                    `json:"itemId"`
	Related  []models.RelatedItem      `json:"related"`
	Counts   models.RelationshipCounts `json:"counts"`
}
