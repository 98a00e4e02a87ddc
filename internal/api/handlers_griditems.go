// handlers_griditems.go - Grid items store handlers
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/target-creator/backend/internal/griditems"
	"github.com/target-creator/backend/internal/scene"
)

// GridItemsHandlerImpl implements the GridItemsHandler interface
type GridItemsHandlerImpl struct {
	sessions SessionManager
}

// NewGridItemsHandler creates a new grid items handler
func NewGridItemsHandler(sessions SessionManager) GridItemsHandler {
	return &GridItemsHandlerImpl{sessions: sessions}
}

// withItems runs fn against the session's grid items store under the scene lock.
func (h *GridItemsHandlerImpl) withItems(c echo.Context, fn func(items *griditems.Service) error) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	return sc.WithGridItems(fn)
}

// createError maps a failed create: a missing referenced entity is a conflict.
func createError(err error) error {
	if errors.Is(err, griditems.ErrPathNotFound) {
		return NewConflictError(err.Error())
	}
	return fromDomainError(err)
}

// HandleListTargets returns every grid target
func (h *GridItemsHandlerImpl) HandleListTargets(c echo.Context) error {
	return h.withItems(c, func(items *griditems.Service) error {
		return c.JSON(http.StatusOK, items.GetAllTargets())
	})
}

// HandleCreateTarget creates a target owned by an existing path
func (h *GridItemsHandlerImpl) HandleCreateTarget(c echo.Context) error {
	var req griditems.TargetInput
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.PathID == "" {
		return NewValidationError("pathId")
	}
	return h.withItems(c, func(items *griditems.Service) error {
		t, err := items.CreateTarget(req)
		if err != nil {
			return createError(err)
		}
		return c.JSON(http.StatusCreated, t)
	})
}

// HandleGetTarget returns one grid target
func (h *GridItemsHandlerImpl) HandleGetTarget(c echo.Context) error {
	id := c.Param("id")
	return h.withItems(c, func(items *griditems.Service) error {
		t, ok := items.GetTarget(id)
		if !ok {
			return NewNotFoundError("target", id)
		}
		return c.JSON(http.StatusOK, t)
	})
}

// HandleUpdateTarget changes a target's label or owning path
func (h *GridItemsHandlerImpl) HandleUpdateTarget(c echo.Context) error {
	var req griditems.TargetUpdate
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	return h.withItems(c, func(items *griditems.Service) error {
		t, err := items.UpdateTarget(c.Param("id"), req)
		if err != nil {
			return fromDomainError(err)
		}
		return c.JSON(http.StatusOK, t)
	})
}

// HandleDeleteTarget removes a target
func (h *GridItemsHandlerImpl) HandleDeleteTarget(c echo.Context) error {
	id := c.Param("id")
	return h.withItems(c, func(items *griditems.Service) error {
		if !items.DeleteTarget(id) {
			return NewNotFoundError("target", id)
		}
		return c.NoContent(http.StatusNoContent)
	})
}

// HandleStartCoordinate returns the first coordinate of a target's path
func (h *GridItemsHandlerImpl) HandleStartCoordinate(c echo.Context) error {
	id := c.Param("id")
	return h.withItems(c, func(items *griditems.Service) error {
		coord, ok := items.GetStartCoordinateOfTarget(id)
		if !ok {
			return NewNotFoundError("start coordinate for target", id)
		}
		return c.JSON(http.StatusOK, coord)
	})
}

// HandleListPaths returns every grid path
func (h *GridItemsHandlerImpl) HandleListPaths(c echo.Context) error {
	return h.withItems(c, func(items *griditems.Service) error {
		return c.JSON(http.StatusOK, items.GetAllPaths())
	})
}

// HandleCreatePath creates a path, reusing coordinates by id or position
func (h *GridItemsHandlerImpl) HandleCreatePath(c echo.Context) error {
	var req griditems.PathInput
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := validateCoordinateInputs(req.Coordinates); err != nil {
		return err
	}
	return h.withItems(c, func(items *griditems.Service) error {
		p, err := items.CreatePath(req)
		if err != nil {
			return createError(err)
		}
		return c.JSON(http.StatusCreated, p)
	})
}

// HandleGetPath returns one grid path with its resolved coordinates
func (h *GridItemsHandlerImpl) HandleGetPath(c echo.Context) error {
	id := c.Param("id")
	return h.withItems(c, func(items *griditems.Service) error {
		p, ok := items.GetPath(id)
		if !ok {
			return NewNotFoundError("path", id)
		}
		return c.JSON(http.StatusOK, p)
	})
}

// HandleUpdatePath changes a path's label, target or coordinates
func (h *GridItemsHandlerImpl) HandleUpdatePath(c echo.Context) error {
	var req griditems.PathUpdate
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Coordinates != nil {
		if err := validateCoordinateInputs(*req.Coordinates); err != nil {
			return err
		}
	}
	return h.withItems(c, func(items *griditems.Service) error {
		p, err := items.UpdatePath(c.Param("id"), req)
		if err != nil {
			return fromDomainError(err)
		}
		return c.JSON(http.StatusOK, p)
	})
}

// HandleDeletePath removes a path and the target it owns
func (h *GridItemsHandlerImpl) HandleDeletePath(c echo.Context) error {
	id := c.Param("id")
	return h.withItems(c, func(items *griditems.Service) error {
		if !items.DeletePath(id) {
			return NewNotFoundError("path", id)
		}
		return c.NoContent(http.StatusNoContent)
	})
}

// HandleListCoordinates returns every stored coordinate with back-references
func (h *GridItemsHandlerImpl) HandleListCoordinates(c echo.Context) error {
	return h.withItems(c, func(items *griditems.Service) error {
		return c.JSON(http.StatusOK, items.GetAllCoordinates())
	})
}

// HandleCreateCoordinate stores a coordinate unless its id or position is known
func (h *GridItemsHandlerImpl) HandleCreateCoordinate(c echo.Context) error {
	var req griditems.CoordinateInput
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := validateCoordinateInputs([]griditems.CoordinateInput{req}); err != nil {
		return err
	}
	return h.withItems(c, func(items *griditems.Service) error {
		coord, created := items.CreateCoordinate(req)
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		return c.JSON(status, coord)
	})
}

// HandleGetCoordinate returns one coordinate with back-references
func (h *GridItemsHandlerImpl) HandleGetCoordinate(c echo.Context) error {
	id := c.Param("id")
	return h.withItems(c, func(items *griditems.Service) error {
		coord, ok := items.GetCoordinate(id)
		if !ok {
			return NewNotFoundError("coordinate", id)
		}
		return c.JSON(http.StatusOK, coord)
	})
}

// HandleUpdateCoordinate changes a coordinate's label
func (h *GridItemsHandlerImpl) HandleUpdateCoordinate(c echo.Context) error {
	var req struct {
		Label string `json:"label"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	return h.withItems(c, func(items *griditems.Service) error {
		coord, err := items.UpdateCoordinateLabel(c.Param("id"), req.Label)
		if err != nil {
			return fromDomainError(err)
		}
		return c.JSON(http.StatusOK, coord)
	})
}

// HandleDeleteCoordinate removes a coordinate from the store and from every path
func (h *GridItemsHandlerImpl) HandleDeleteCoordinate(c echo.Context) error {
	id := c.Param("id")
	return h.withItems(c, func(items *griditems.Service) error {
		if !items.DeleteCoordinate(id) {
			return NewNotFoundError("coordinate", id)
		}
		return c.NoContent(http.StatusNoContent)
	})
}

// HandleCoordinateTargets returns the targets whose paths pass through a coordinate
func (h *GridItemsHandlerImpl) HandleCoordinateTargets(c echo.Context) error {
	id := c.Param("id")
	return h.withItems(c, func(items *griditems.Service) error {
		return c.JSON(http.StatusOK, items.GetTargetsByCoordinate(id))
	})
}

// HandleCoordinatePaths returns the paths passing through a coordinate
func (h *GridItemsHandlerImpl) HandleCoordinatePaths(c echo.Context) error {
	id := c.Param("id")
	return h.withItems(c, func(items *griditems.Service) error {
		return c.JSON(http.StatusOK, items.GetPathsByCoordinate(id))
	})
}

func validateCoordinateInputs(in []griditems.CoordinateInput) error {
	for _, c := range in {
		if !c.Position.IsFinite() {
			return NewBadRequestError("coordinate position must be finite", scene.ErrInvalidPosition)
		}
	}
	return nil
}
