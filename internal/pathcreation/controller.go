// Package pathcreation drives the two-click path creation flow: pick a start
// point, then pick a valid straight-line endpoint.
//
// States: idle, awaiting endpoint. A rejected endpoint keeps the controller
// awaiting so the user can retry; completion and cancellation return it to
// idle. Nothing is persisted until a path completes.
package pathcreation

import (
	"errors"
	"fmt"

	"github.com/target-creator/backend/internal/coords"
	"github.com/target-creator/backend/internal/geometry"
	"github.com/target-creator/backend/internal/idgen"
	"github.com/target-creator/backend/internal/models"
	"github.com/target-creator/backend/internal/relations"
)

// NotificationID identifies the persistent "awaiting endpoint" notification.
const NotificationID = "path-creation"

// User-facing rejection messages.
const (
	MsgStartAsEndpoint = "Cannot select the start point as the endpoint"
	MsgInvalidEndpoint = "Please select a valid endpoint (horizontal, vertical, or diagonal line from the start point)"
)

var (
	ErrUnsupportedShape = errors.New("unsupported path shape")
	ErrInvalidStart     = errors.New("invalid start position")
)

// Notifier shows and dismisses user notifications.
type Notifier interface {
	Notify(n models.Notification)
	Dismiss(id string)
}

// PathSink receives completed paths.
type PathSink interface {
	AddPath(p models.Path)
}

// Options configures a Controller.
type Options struct {
	GridSize int
	// Endpoints memoizes valid endpoint sets. Nil computes them each time.
	Endpoints *geometry.EndpointCache
}

// StartRequest begins a path creation. An empty Shape means a line.
type StartRequest struct {
	Shape    models.PathShape `json:"type"`
	Start    models.Position  `json:"startPosition"`
	PathType string           `json:"pathType"`
	Label    string           `json:"pathLabel"`
	Name     string           `json:"pathName,omitempty"`
}

// Controller is not safe for concurrent use.
type Controller struct {
	registry  *coords.Registry
	relations *relations.Manager
	sink      PathSink
	ids       idgen.Generator
	notifier  Notifier
	opts      Options

	mode models.PathCreationMode
}

// New creates an idle controller.
func New(registry *coords.Registry, rel *relations.Manager, sink PathSink, ids idgen.Generator, notifier Notifier, opts Options) *Controller {
	if ids == nil {
		ids = idgen.UUID{}
	}
	if opts.GridSize <= 0 {
		opts.GridSize = geometry.DefaultGridSize
	}
	return &Controller{
		registry:  registry,
		relations: rel,
		sink:      sink,
		ids:       ids,
		notifier:  notifier,
		opts:      opts,
	}
}

// Mode returns a copy of the current mode.
func (c *Controller) Mode() models.PathCreationMode {
	m := c.mode
	if m.StartPosition != nil {
		start := *m.StartPosition
		m.StartPosition = &start
	}
	return m
}

// Active reports whether the controller is awaiting an endpoint.
func (c *Controller) Active() bool {
	return c.mode.IsActive
}

// Start enters the awaiting-endpoint state. Starting while already active
// replaces the previous attempt.
func (c *Controller) Start(req StartRequest) error {
	shape := req.Shape
	if shape == "" {
		shape = models.PathShapeLine
	}
	if shape != models.PathShapeLine {
		return fmt.Errorf("cannot start %s path: %w", shape, ErrUnsupportedShape)
	}
	if !req.Start.IsFinite() {
		return fmt.Errorf("cannot start path at %v: %w", req.Start, ErrInvalidStart)
	}

	start := req.Start
	c.mode = models.PathCreationMode{
		IsActive:      true,
		Type:          shape,
		StartPosition: &start,
		PathType:      req.PathType,
		PathLabel:     req.Label,
		PathName:      req.Name,
	}

	c.notify(models.Notification{
		ID:         NotificationID,
		Level:      models.NotificationInfo,
		Message:    fmt.Sprintf("Creating path %q: click a grid point to place the endpoint", req.Label),
		Persistent: true,
		Cancelable: true,
	})
	return nil
}

// ValidEndpoints returns the endpoints the current start allows, or nil when
// idle.
func (c *Controller) ValidEndpoints() []models.Position {
	if !c.mode.IsActive {
		return nil
	}
	return c.opts.Endpoints.ValidEndpoints(geometry.RoundPosition(*c.mode.StartPosition), c.opts.GridSize)
}

// Complete tries endpoint as the path's end. On success the path is
// materialized, its tiles registered and linked, and the controller returns
// to idle. On rejection an error notification is shown and the controller
// stays active. It returns false when idle.
func (c *Controller) Complete(endpoint models.Position) (*models.Path, bool) {
	if !c.mode.IsActive {
		return nil, false
	}

	start := geometry.RoundPosition(*c.mode.StartPosition)
	candidate := geometry.RoundPosition(endpoint)

	if geometry.PositionsEqual(candidate, start) {
		c.ShowError(MsgStartAsEndpoint)
		return nil, false
	}
	if !endpoint.IsFinite() || !c.opts.Endpoints.IsValidEndpoint(start, candidate, c.opts.GridSize) {
		c.ShowError(MsgInvalidEndpoint)
		return nil, false
	}

	tiles := geometry.CalculateLinePoints(start, candidate)
	if !geometry.PositionsEqual(tiles[len(tiles)-1], candidate) {
		c.ShowError(MsgInvalidEndpoint)
		return nil, false
	}

	path := models.Path{
		ID:       c.ids.NewID("path"),
		Label:    c.mode.PathLabel,
		Name:     c.mode.PathName,
		PathType: c.mode.PathType,
		Shape:    c.mode.Type,
		LitTiles: tiles,
	}

	coordinateIDs := make([]string, 0, len(tiles))
	for _, tile := range tiles {
		coordinateIDs = append(coordinateIDs, c.registry.GetOrCreate(tile).ID)
	}
	c.relations.AttachPathToCoordinates(path.ID, coordinateIDs)
	if c.sink != nil {
		c.sink.AddPath(path)
	}

	c.reset()
	c.notify(models.Notification{
		ID:      c.ids.NewID("notification"),
		Level:   models.NotificationSuccess,
		Message: fmt.Sprintf("Path %q created", path.Label),
	})
	return &path, true
}

// Cancel discards the in-progress creation. It reports whether anything was
// active.
func (c *Controller) Cancel() bool {
	if !c.mode.IsActive {
		return false
	}
	c.reset()
	return true
}

// ShowError shows a transient error notification.
func (c *Controller) ShowError(message string) {
	c.notify(models.Notification{
		ID:      c.ids.NewID("notification"),
		Level:   models.NotificationError,
		Message: message,
	})
}

func (c *Controller) reset() {
	c.mode = models.PathCreationMode{}
	if c.notifier != nil {
		c.notifier.Dismiss(NotificationID)
	}
}

func (c *Controller) notify(n models.Notification) {
	if c.notifier != nil {
		c.notifier.Notify(n)
	}
}
