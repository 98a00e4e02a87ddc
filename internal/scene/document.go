package scene

import (
	"fmt"

	"github.com/target-creator/backend/internal/models"
)

// Document exports the scene as a denormalized document.
func (s *Scene) Document() *models.SceneDocument {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := models.NewSceneDocument()
	doc.GridSize = s.gridSize

	for _, c := range s.registry.GetAll() {
		doc.Coordinates = append(doc.Coordinates, models.CoordinateRecord{
			ID:       c.ID,
			Name:     c.Name,
			Position: c.Position,
		})
	}

	for _, t := range s.targetList() {
		rec := models.TargetRecord{
			ID:       t.ID,
			Label:    t.Label,
			Name:     t.Name,
			Position: t.Position,
		}
		if ids := s.relations.GetTargetCoordinates(t.ID); len(ids) > 0 {
			rec.CoordinateID = ids[0]
		}
		doc.Targets = append(doc.Targets, rec)
	}

	for _, p := range s.pathList() {
		doc.Paths = append(doc.Paths, models.PathRecord{
			ID:            p.ID,
			Label:         p.Label,
			Name:          p.Name,
			PathType:      p.PathType,
			Shape:         p.Shape,
			LitTiles:      p.LitTiles,
			CoordinateIDs: s.relations.GetPathCoordinates(p.ID),
		})
	}

	return doc
}

// Import applies a document to the scene: every position is registered and
// every target and path relinked. With replace the scene is cleared first.
// Ids that clash with existing items are regenerated. Nothing is applied if
// the document holds a non-finite position.
func (s *Scene) Import(doc *models.SceneDocument, replace bool) (models.ImportSummary, error) {
	if err := checkPositions(doc); err != nil {
		return models.ImportSummary{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if replace {
		s.clear()
	}

	var summary models.ImportSummary
	positions := make(map[string]models.Position, len(doc.Coordinates))

	for _, rec := range doc.Coordinates {
		c := s.registry.GetOrCreate(rec.Position)
		if rec.Name != "" {
			s.registry.UpdateName(c.ID, rec.Name)
		}
		positions[rec.ID] = rec.Position
		summary.Coordinates++
	}

	for _, rec := range doc.Targets {
		id := rec.ID
		if _, taken := s.targets[id]; id == "" || taken {
			id = s.newTargetID()
		}
		s.addTarget(models.Target{
			ID:       id,
			Label:    rec.Label,
			Name:     rec.Name,
			Position: rec.Position,
		})
		summary.Targets++
	}

	for _, rec := range doc.Paths {
		tiles := rec.LitTiles
		if len(tiles) == 0 {
			for _, cid := range rec.CoordinateIDs {
				if p, ok := positions[cid]; ok {
					tiles = append(tiles, p)
				}
			}
		}
		if len(tiles) == 0 {
			continue
		}

		id := rec.ID
		if _, taken := s.paths[id]; id == "" || taken {
			id = s.newPathID()
		}
		shape := rec.Shape
		if shape == "" {
			shape = models.PathShapeLine
		}

		coordinateIDs := make([]string, 0, len(tiles))
		for _, tile := range tiles {
			coordinateIDs = append(coordinateIDs, s.registry.GetOrCreate(tile).ID)
		}
		s.relations.AttachPathToCoordinates(id, coordinateIDs)
		s.addPath(models.Path{
			ID:       id,
			Label:    rec.Label,
			Name:     rec.Name,
			PathType: rec.PathType,
			Shape:    shape,
			LitTiles: append([]models.Position(nil), tiles...),
		})
		summary.Paths++
	}

	return summary, nil
}

// Reset clears the scene and cancels any path creation.
func (s *Scene) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
}

func (s *Scene) clear() {
	s.creation.Cancel()
	s.registry.Clear()
	s.relations.Clear()
	s.items.Clear()
	s.targets = make(map[string]*models.Target)
	s.targetOrder = nil
	s.paths = make(map[string]*models.Path)
	s.pathOrder = nil
}

func checkPositions(doc *models.SceneDocument) error {
	if doc == nil {
		return fmt.Errorf("empty document: %w", ErrInvalidPosition)
	}
	for _, c := range doc.Coordinates {
		if !c.Position.IsFinite() {
			return fmt.Errorf("coordinate %s: %w", c.ID, ErrInvalidPosition)
		}
	}
	for _, t := range doc.Targets {
		if !t.Position.IsFinite() {
			return fmt.Errorf("target %s: %w", t.ID, ErrInvalidPosition)
		}
	}
	for _, p := range doc.Paths {
		for _, tile := range p.LitTiles {
			if !tile.IsFinite() {
				return fmt.Errorf("path %s: %w", p.ID, ErrInvalidPosition)
			}
		}
	}
	return nil
}
