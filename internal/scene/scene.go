// Package scene holds one editing scene: placed targets and paths, the
// coordinate registry and relationship index that link them, the path
// creation flow and the independent grid items store.
//
// A Scene serializes every call with a single mutex; the components it owns
// are single-owner and unsynchronized.
package scene

import (
	"errors"
	"fmt"
	"sync"

	"github.com/target-creator/backend/internal/coords"
	"github.com/target-creator/backend/internal/geometry"
	"github.com/target-creator/backend/internal/griditems"
	"github.com/target-creator/backend/internal/idgen"
	"github.com/target-creator/backend/internal/models"
	"github.com/target-creator/backend/internal/pathcreation"
	"github.com/target-creator/backend/internal/relations"
)

var (
	ErrTargetNotFound     = errors.New("target not found")
	ErrPathNotFound       = errors.New("path not found")
	ErrCoordinateNotFound = errors.New("coordinate not found")
	ErrInvalidPosition    = errors.New("invalid position")
)

// Options configures a Scene.
type Options struct {
	GridSize  int
	IDs       idgen.Generator
	Notifier  pathcreation.Notifier
	Endpoints *geometry.EndpointCache
}

// TargetInput describes a target to place.
type TargetInput struct {
	Label    string          `json:"label"`
	Name     string          `json:"name,omitempty"`
	Position models.Position `json:"position"`
}

// TargetUpdate holds optional target changes; nil fields are left alone.
type TargetUpdate struct {
	Label *string `json:"label,omitempty"`
	Name  *string `json:"name,omitempty"`
}

type Scene struct {
	mu sync.Mutex

	gridSize int
	ids      idgen.Generator

	registry  *coords.Registry
	relations *relations.Manager
	creation  *pathcreation.Controller
	items     *griditems.Service

	targets     map[string]*models.Target
	targetOrder []string
	paths       map[string]*models.Path
	pathOrder   []string
}

// New creates an empty scene.
func New(opts Options) *Scene {
	if opts.GridSize <= 0 {
		opts.GridSize = geometry.DefaultGridSize
	}
	if opts.IDs == nil {
		opts.IDs = idgen.UUID{}
	}

	s := &Scene{
		gridSize:  opts.GridSize,
		ids:       opts.IDs,
		registry:  coords.NewRegistry(),
		relations: relations.NewManager(),
		items:     griditems.NewService(opts.IDs),
		targets:   make(map[string]*models.Target),
		paths:     make(map[string]*models.Path),
	}
	s.creation = pathcreation.New(s.registry, s.relations, sceneSink{s}, opts.IDs, opts.Notifier, pathcreation.Options{
		GridSize:  opts.GridSize,
		Endpoints: opts.Endpoints,
	})
	return s
}

// sceneSink appends completed paths. It runs under the scene lock.
type sceneSink struct {
	s *Scene
}

func (k sceneSink) AddPath(p models.Path) {
	k.s.addPath(p)
}

// GridSize returns the scene's grid size.
func (s *Scene) GridSize() int {
	return s.gridSize
}

// Counts returns the number of placed targets and paths.
func (s *Scene) Counts() (targets, paths int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.targets), len(s.paths)
}

// PlaceTarget places a new target, registering its position and linking it.
func (s *Scene) PlaceTarget(in TargetInput) (models.Target, error) {
	if !in.Position.IsFinite() {
		return models.Target{}, fmt.Errorf("cannot place target at %v: %w", in.Position, ErrInvalidPosition)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := models.Target{
		ID:       s.newTargetID(),
		Label:    in.Label,
		Name:     in.Name,
		Position: in.Position,
	}
	s.addTarget(t)
	return t, nil
}

// MoveTarget moves a target (drag release), relinking it to the coordinate
// at its new position.
func (s *Scene) MoveTarget(id string, position models.Position) (models.Target, error) {
	if !position.IsFinite() {
		return models.Target{}, fmt.Errorf("cannot move target to %v: %w", position, ErrInvalidPosition)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.targets[id]
	if !ok {
		return models.Target{}, fmt.Errorf("target %s not found: %w", id, ErrTargetNotFound)
	}
	t.Position = position
	c := s.registry.GetOrCreate(position)
	s.relations.AttachTargetToCoordinate(id, c.ID)
	return *t, nil
}

// UpdateTarget changes a target's label or name.
func (s *Scene) UpdateTarget(id string, u TargetUpdate) (models.Target, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.targets[id]
	if !ok {
		return models.Target{}, fmt.Errorf("target %s not found: %w", id, ErrTargetNotFound)
	}
	if u.Label != nil {
		t.Label = *u.Label
	}
	if u.Name != nil {
		t.Name = *u.Name
	}
	return *t, nil
}

// RemoveTarget deletes a target and its relationships.
func (s *Scene) RemoveTarget(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.targets[id]; !ok {
		return fmt.Errorf("target %s not found: %w", id, ErrTargetNotFound)
	}
	delete(s.targets, id)
	s.targetOrder = removeID(s.targetOrder, id)
	s.relations.RemoveTargetRelationships(id)
	return nil
}

// RemovePath deletes a path and its relationships. Registered coordinates
// stay.
func (s *Scene) RemovePath(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.paths[id]; !ok {
		return fmt.Errorf("path %s not found: %w", id, ErrPathNotFound)
	}
	delete(s.paths, id)
	s.pathOrder = removeID(s.pathOrder, id)
	s.relations.RemovePathRelationships(id)
	return nil
}

// EnsureCoordinate returns the coordinate at position, registering it if
// needed.
func (s *Scene) EnsureCoordinate(position models.Position) (models.Coordinate, error) {
	if !position.IsFinite() {
		return models.Coordinate{}, fmt.Errorf("cannot register coordinate at %v: %w", position, ErrInvalidPosition)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.GetOrCreate(position), nil
}

// RenameCoordinate sets a coordinate's display name.
func (s *Scene) RenameCoordinate(id, name string) (models.Coordinate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.registry.GetByID(id); !ok {
		return models.Coordinate{}, fmt.Errorf("coordinate %s not found: %w", id, ErrCoordinateNotFound)
	}
	s.registry.UpdateName(id, name)
	c, _ := s.registry.GetByID(id)
	return c, nil
}

// RemoveCoordinate detaches everything linked to a coordinate and removes it.
// Targets and paths themselves stay.
func (s *Scene) RemoveCoordinate(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.registry.GetByID(id); !ok {
		return fmt.Errorf("coordinate %s not found: %w", id, ErrCoordinateNotFound)
	}
	s.relations.RemoveCoordinateRelationships(id)
	s.registry.Remove(id)
	return nil
}

// Coordinate returns a registered coordinate by id.
func (s *Scene) Coordinate(id string) (models.Coordinate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.GetByID(id)
}

// Coordinates returns every registered coordinate.
func (s *Scene) Coordinates() []models.Coordinate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.GetAll()
}

// Target returns a placed target by id.
func (s *Scene) Target(id string) (models.Target, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.targets[id]
	if !ok {
		return models.Target{}, false
	}
	return *t, true
}

// Targets returns every placed target in placement order.
func (s *Scene) Targets() []models.Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targetList()
}

// Path returns a placed path by id.
func (s *Scene) Path(id string) (models.Path, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.paths[id]
	if !ok {
		return models.Path{}, false
	}
	return copyPath(*p), true
}

// Paths returns every placed path in creation order.
func (s *Scene) Paths() []models.Path {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pathList()
}

// RelatedItems returns the items related to one item, with display names
// joined from the current scene.
func (s *Scene) RelatedItems(itemType models.ItemType, id string) []models.RelatedItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.relations.GetRelatedItems(itemType, id, relations.Snapshot{
		Coordinates: s.registry.GetAll(),
		Targets:     s.targetList(),
		Paths:       s.pathList(),
	})
}

// RelationshipCounts counts one item's relations.
func (s *Scene) RelationshipCounts(itemType models.ItemType, id string) models.RelationshipCounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.relations.GetRelationshipCounts(itemType, id)
}

// TargetCoordinate returns the coordinate a target is attached to.
func (s *Scene) TargetCoordinate(targetID string) (models.Coordinate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.relations.GetTargetCoordinates(targetID)
	if len(ids) == 0 {
		return models.Coordinate{}, false
	}
	return s.registry.GetByID(ids[0])
}

// WithGridItems runs fn with exclusive access to the scene's grid items store.
func (s *Scene) WithGridItems(fn func(items *griditems.Service) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.items)
}

func (s *Scene) newTargetID() string {
	for {
		id := s.ids.NewID("target")
		if _, taken := s.targets[id]; !taken {
			return id
		}
	}
}

func (s *Scene) newPathID() string {
	for {
		id := s.ids.NewID("path")
		if _, taken := s.paths[id]; !taken {
			return id
		}
	}
}

func (s *Scene) addTarget(t models.Target) {
	s.targets[t.ID] = &t
	s.targetOrder = append(s.targetOrder, t.ID)
	c := s.registry.GetOrCreate(t.Position)
	s.relations.AttachTargetToCoordinate(t.ID, c.ID)
}

func (s *Scene) addPath(p models.Path) {
	if _, exists := s.paths[p.ID]; !exists {
		s.pathOrder = append(s.pathOrder, p.ID)
	}
	s.paths[p.ID] = &p
}

func (s *Scene) targetList() []models.Target {
	out := make([]models.Target, 0, len(s.targetOrder))
	for _, id := range s.targetOrder {
		out = append(out, *s.targets[id])
	}
	return out
}

func (s *Scene) pathList() []models.Path {
	out := make([]models.Path, 0, len(s.pathOrder))
	for _, id := range s.pathOrder {
		out = append(out, copyPath(*s.paths[id]))
	}
	return out
}

func copyPath(p models.Path) models.Path {
	p.LitTiles = append([]models.Position(nil), p.LitTiles...)
	return p
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
