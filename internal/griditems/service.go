// Package griditems is a small in-memory relational store for targets, paths
// and coordinates with referential integrity between them.
//
// Validation is deliberately asymmetric: CreatePath accepts a TargetID that
// does not exist yet so a path can be created before its target, and
// CreateTarget back-patches the path's TargetID. UpdatePath, by contrast,
// rejects an unknown TargetID.
//
// Service is not safe for concurrent use.
package griditems

import (
	"errors"
	"fmt"

	"github.com/target-creator/backend/internal/idgen"
	"github.com/target-creator/backend/internal/models"
)

var (
	ErrPathNotFound       = errors.New("path not found")
	ErrTargetNotFound     = errors.New("target not found")
	ErrCoordinateNotFound = errors.New("coordinate not found")
	ErrDuplicateID        = errors.New("duplicate id")
)

const (
	targetPrefix     = "target"
	pathPrefix       = "path"
	coordinatePrefix = "coord"
)

// Service stores targets, paths and coordinates in insertion order.
type Service struct {
	ids idgen.Generator

	targets     map[string]*Target
	targetOrder []string

	paths     map[string]*pathRecord
	pathOrder []string

	coordinates map[string]*coordinateRecord
	byPosition  map[string]string
	coordOrder  []string
}

// NewService creates an empty store. A nil generator defaults to idgen.UUID.
func NewService(ids idgen.Generator) *Service {
	if ids == nil {
		ids = idgen.UUID{}
	}
	s := &Service{ids: ids}
	s.Clear()
	return s
}

// Clear drops every entity.
func (s *Service) Clear() {
	s.targets = make(map[string]*Target)
	s.targetOrder = nil
	s.paths = make(map[string]*pathRecord)
	s.pathOrder = nil
	s.coordinates = make(map[string]*coordinateRecord)
	s.byPosition = make(map[string]string)
	s.coordOrder = nil
}

// CreateTarget stores a target and back-patches its path's TargetID.
// It fails if the path does not exist or the id is taken.
func (s *Service) CreateTarget(in TargetInput) (Target, error) {
	path, ok := s.paths[in.PathID]
	if !ok {
		return Target{}, fmt.Errorf("cannot create target: path %s does not exist: %w", in.PathID, ErrPathNotFound)
	}

	id := in.ID
	if id == "" {
		id = s.ids.NewID(targetPrefix)
	}
	if _, exists := s.targets[id]; exists {
		return Target{}, fmt.Errorf("cannot create target: target %s already exists: %w", id, ErrDuplicateID)
	}

	t := &Target{ID: id, Label: in.Label, PathID: in.PathID}
	s.targets[id] = t
	s.targetOrder = append(s.targetOrder, id)
	path.targetID = id

	return *t, nil
}

// CreatePath stores a path, resolving each coordinate to its canonical
// record. TargetID is not validated.
func (s *Service) CreatePath(in PathInput) (Path, error) {
	id := in.ID
	if id == "" {
		id = s.ids.NewID(pathPrefix)
	}
	if _, exists := s.paths[id]; exists {
		return Path{}, fmt.Errorf("cannot create path: path %s already exists: %w", id, ErrDuplicateID)
	}

	p := &pathRecord{
		id:            id,
		label:         in.Label,
		targetID:      in.TargetID,
		coordinateIDs: s.resolveAll(in.Coordinates),
	}
	s.paths[id] = p
	s.pathOrder = append(s.pathOrder, id)

	return s.pathView(p), nil
}

// CreateCoordinate resolves in to a stored coordinate, creating it when
// neither its id nor its position is known. created reports whether a new
// record was stored.
func (s *Service) CreateCoordinate(in CoordinateInput) (c Coordinate, created bool) {
	before := len(s.coordinates)
	id := s.resolve(in)
	return s.coordinateView(s.coordinates[id]), len(s.coordinates) > before
}

// UpdateTarget applies changes to a target. A new PathID must exist, and the
// new path's TargetID is pointed at the target.
func (s *Service) UpdateTarget(id string, u TargetUpdate) (Target, error) {
	t, ok := s.targets[id]
	if !ok {
		return Target{}, fmt.Errorf("target %s not found: %w", id, ErrTargetNotFound)
	}

	if u.PathID != nil {
		path, ok := s.paths[*u.PathID]
		if !ok {
			return Target{}, fmt.Errorf("cannot update target: path %s does not exist: %w", *u.PathID, ErrPathNotFound)
		}
		t.PathID = *u.PathID
		path.targetID = id
	}
	if u.Label != nil {
		t.Label = *u.Label
	}

	return *t, nil
}

// UpdatePath applies changes to a path. Unlike CreatePath, a supplied
// TargetID must name an existing target.
func (s *Service) UpdatePath(id string, u PathUpdate) (Path, error) {
	p, ok := s.paths[id]
	if !ok {
		return Path{}, fmt.Errorf("path %s not found: %w", id, ErrPathNotFound)
	}

	if u.TargetID != nil {
		if _, ok := s.targets[*u.TargetID]; !ok {
			return Path{}, fmt.Errorf("cannot update path: target %s does not exist: %w", *u.TargetID, ErrTargetNotFound)
		}
		p.targetID = *u.TargetID
	}
	if u.Label != nil {
		p.label = *u.Label
	}
	if u.Coordinates != nil {
		p.coordinateIDs = s.resolveAll(*u.Coordinates)
	}

	return s.pathView(p), nil
}

// UpdateCoordinateLabel renames a coordinate.
func (s *Service) UpdateCoordinateLabel(id, label string) (Coordinate, error) {
	c, ok := s.coordinates[id]
	if !ok {
		return Coordinate{}, fmt.Errorf("coordinate %s not found: %w", id, ErrCoordinateNotFound)
	}
	c.label = label
	return s.coordinateView(c), nil
}

// DeletePath removes a path together with every target that belongs to it.
func (s *Service) DeletePath(id string) bool {
	if _, ok := s.paths[id]; !ok {
		return false
	}

	for _, tid := range append([]string(nil), s.targetOrder...) {
		if s.targets[tid].PathID == id {
			s.DeleteTarget(tid)
		}
	}

	delete(s.paths, id)
	s.pathOrder = removeID(s.pathOrder, id)
	return true
}

// DeleteTarget removes a target. Its path is left untouched.
func (s *Service) DeleteTarget(id string) bool {
	if _, ok := s.targets[id]; !ok {
		return false
	}
	delete(s.targets, id)
	s.targetOrder = removeID(s.targetOrder, id)
	return true
}

// DeleteCoordinate removes a coordinate and strips it from every path.
func (s *Service) DeleteCoordinate(id string) bool {
	c, ok := s.coordinates[id]
	if !ok {
		return false
	}

	delete(s.byPosition, c.position.Key())
	delete(s.coordinates, id)
	s.coordOrder = removeID(s.coordOrder, id)

	for _, pid := range s.pathOrder {
		p := s.paths[pid]
		p.coordinateIDs = removeID(p.coordinateIDs, id)
	}
	return true
}

// GetTarget returns a target by id.
func (s *Service) GetTarget(id string) (Target, bool) {
	t, ok := s.targets[id]
	if !ok {
		return Target{}, false
	}
	return *t, true
}

// GetPath returns a path by id.
func (s *Service) GetPath(id string) (Path, bool) {
	p, ok := s.paths[id]
	if !ok {
		return Path{}, false
	}
	return s.pathView(p), true
}

// GetCoordinate returns a coordinate by id.
func (s *Service) GetCoordinate(id string) (Coordinate, bool) {
	c, ok := s.coordinates[id]
	if !ok {
		return Coordinate{}, false
	}
	return s.coordinateView(c), true
}

// GetCoordinateByPosition returns the coordinate stored at position.
func (s *Service) GetCoordinateByPosition(position models.Position) (Coordinate, bool) {
	id, ok := s.byPosition[position.Key()]
	if !ok {
		return Coordinate{}, false
	}
	return s.GetCoordinate(id)
}

// GetAllTargets returns every target in insertion order.
func (s *Service) GetAllTargets() []Target {
	out := make([]Target, 0, len(s.targetOrder))
	for _, id := range s.targetOrder {
		out = append(out, *s.targets[id])
	}
	return out
}

// GetAllPaths returns every path in insertion order.
func (s *Service) GetAllPaths() []Path {
	out := make([]Path, 0, len(s.pathOrder))
	for _, id := range s.pathOrder {
		out = append(out, s.pathView(s.paths[id]))
	}
	return out
}

// GetAllCoordinates merges the id index and the position index, keeping one
// entry per id (or per position for entries without an id).
func (s *Service) GetAllCoordinates() []Coordinate {
	out := make([]Coordinate, 0, len(s.coordOrder))
	seen := make(map[string]struct{}, len(s.coordOrder))
	add := func(c *coordinateRecord) {
		key := c.id
		if key == "" {
			key = "pos:" + c.position.Key()
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, s.coordinateView(c))
	}

	for _, id := range s.coordOrder {
		add(s.coordinates[id])
	}
	for _, id := range s.byPosition {
		if c, ok := s.coordinates[id]; ok {
			add(c)
		}
	}
	return out
}

// GetPathsByCoordinate returns the paths that pass through a coordinate,
// matched by id or by position.
func (s *Service) GetPathsByCoordinate(coordinateID string) []Path {
	out := []Path{}
	for _, p := range s.pathsThrough(coordinateID) {
		out = append(out, s.pathView(p))
	}
	return out
}

// GetTargetsByCoordinate returns the distinct targets owned by any path
// through a coordinate.
func (s *Service) GetTargetsByCoordinate(coordinateID string) []Target {
	return s.targetsOf(s.pathsThrough(coordinateID))
}

// GetStartCoordinateOfTarget returns the first coordinate of the target's
// path.
func (s *Service) GetStartCoordinateOfTarget(targetID string) (Coordinate, bool) {
	t, ok := s.targets[targetID]
	if !ok {
		return Coordinate{}, false
	}
	p, ok := s.paths[t.PathID]
	if !ok || len(p.coordinateIDs) == 0 {
		return Coordinate{}, false
	}
	c, ok := s.coordinates[p.coordinateIDs[0]]
	if !ok {
		return Coordinate{}, false
	}
	return s.coordinateView(c), true
}

// resolve returns the canonical id for in: an existing id is reused, an
// existing position is reused, otherwise a record is stored under the given
// id or a synthesized one.
func (s *Service) resolve(in CoordinateInput) string {
	if in.ID != "" {
		if _, ok := s.coordinates[in.ID]; ok {
			return in.ID
		}
	}
	if id, ok := s.byPosition[in.Position.Key()]; ok {
		return id
	}

	id := in.ID
	if id == "" {
		id = s.ids.NewID(coordinatePrefix)
	}
	s.coordinates[id] = &coordinateRecord{id: id, label: in.Label, position: in.Position}
	s.byPosition[in.Position.Key()] = id
	s.coordOrder = append(s.coordOrder, id)
	return id
}

func (s *Service) resolveAll(in []CoordinateInput) []string {
	ids := make([]string, 0, len(in))
	for _, c := range in {
		ids = append(ids, s.resolve(c))
	}
	return ids
}

func (s *Service) pathsThrough(coordinateID string) []*pathRecord {
	c, ok := s.coordinates[coordinateID]
	var out []*pathRecord
	for _, pid := range s.pathOrder {
		p := s.paths[pid]
		for _, cid := range p.coordinateIDs {
			if cid == coordinateID {
				out = append(out, p)
				break
			}
			if other, found := s.coordinates[cid]; ok && found && other.position == c.position {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func (s *Service) targetsOf(paths []*pathRecord) []Target {
	out := []Target{}
	seen := make(map[string]struct{})
	for _, p := range paths {
		for _, tid := range s.targetOrder {
			t := s.targets[tid]
			if t.PathID != p.id {
				continue
			}
			if _, ok := seen[tid]; ok {
				continue
			}
			seen[tid] = struct{}{}
			out = append(out, *t)
		}
	}
	return out
}

func (s *Service) pathView(p *pathRecord) Path {
	coords := make([]Coordinate, 0, len(p.coordinateIDs))
	for _, cid := range p.coordinateIDs {
		if c, ok := s.coordinates[cid]; ok {
			coords = append(coords, s.coordinateView(c))
		}
	}
	return Path{ID: p.id, Label: p.label, TargetID: p.targetID, Coordinates: coords}
}

func (s *Service) coordinateView(c *coordinateRecord) Coordinate {
	paths := s.pathsThrough(c.id)
	summaries := make([]PathSummary, 0, len(paths))
	for _, p := range paths {
		summaries = append(summaries, PathSummary{ID: p.id, Label: p.label, TargetID: p.targetID})
	}
	return Coordinate{
		ID:       c.id,
		Label:    c.label,
		Position: c.position,
		Paths:    summaries,
		Targets:  s.targetsOf(paths),
	}
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
