package exchange

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/target-creator/backend/internal/models"
)

// GeoJSON positions are [x, z, y]: the XZ grid plane maps to the horizontal
// axes and Y to altitude.

type geoCollection struct {
	Type       string       `json:"type"`
	Version    string       `json:"version,omitempty"`
	ExportedAt *time.Time   `json:"exportedAt,omitempty"`
	GridSize   int          `json:"gridSize,omitempty"`
	Features   []geoFeature `json:"features"`
}

type geoFeature struct {
	Type       string        `json:"type"`
	ID         string        `json:"id,omitempty"`
	Geometry   geoGeometry   `json:"geometry"`
	Properties geoProperties `json:"properties"`
}

type geoGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

type geoProperties struct {
	Kind          models.ItemType `json:"kind"`
	Label         string          `json:"label,omitempty"`
	Name          string          `json:"name,omitempty"`
	CoordinateID  string          `json:"coordinateId,omitempty"`
	CoordinateIDs []string        `json:"coordinateIds,omitempty"`
	PathType      string          `json:"pathType,omitempty"`
	Shape         string          `json:"shape,omitempty"`
}

func toGeo(p models.Position) [3]float64 {
	return [3]float64{p[0], p[2], p[1]}
}

func fromGeo(c []float64) (models.Position, error) {
	switch len(c) {
	case 2:
		return models.Position{c[0], 0, c[1]}, nil
	case 3:
		return models.Position{c[0], c[2], c[1]}, nil
	}
	return models.Position{}, fmt.Errorf("position needs 2 or 3 components, got %d", len(c))
}

// GeoJSONCodec writes coordinates and targets as Points and paths as
// LineStrings.
type GeoJSONCodec struct{}

func (GeoJSONCodec) Name() string         { return "geojson" }
func (GeoJSONCodec) Extensions() []string { return []string{".geojson"} }
func (GeoJSONCodec) ContentType() string  { return "application/geo+json" }

func (GeoJSONCodec) Encode(w io.Writer, doc *models.SceneDocument) error {
	fc := geoCollection{
		Type:     "FeatureCollection",
		Version:  doc.Version,
		GridSize: doc.GridSize,
		Features: make([]geoFeature, 0, len(doc.Coordinates)+len(doc.Targets)+len(doc.Paths)),
	}
	if !doc.ExportedAt.IsZero() {
		ts := doc.ExportedAt
		fc.ExportedAt = &ts
	}

	point := func(p models.Position) (geoGeometry, error) {
		raw, err := json.Marshal(toGeo(p))
		return geoGeometry{Type: "Point", Coordinates: raw}, err
	}

	for _, c := range doc.Coordinates {
		g, err := point(c.Position)
		if err != nil {
			return err
		}
		fc.Features = append(fc.Features, geoFeature{
			Type: "Feature", ID: c.ID, Geometry: g,
			Properties: geoProperties{Kind: models.ItemCoordinate, Name: c.Name},
		})
	}
	for _, t := range doc.Targets {
		g, err := point(t.Position)
		if err != nil {
			return err
		}
		fc.Features = append(fc.Features, geoFeature{
			Type: "Feature", ID: t.ID, Geometry: g,
			Properties: geoProperties{Kind: models.ItemTarget, Label: t.Label, Name: t.Name, CoordinateID: t.CoordinateID},
		})
	}
	for _, p := range doc.Paths {
		line := make([][3]float64, 0, len(p.LitTiles))
		for _, tile := range p.LitTiles {
			line = append(line, toGeo(tile))
		}
		raw, err := json.Marshal(line)
		if err != nil {
			return err
		}
		fc.Features = append(fc.Features, geoFeature{
			Type: "Feature", ID: p.ID,
			Geometry: geoGeometry{Type: "LineString", Coordinates: raw},
			Properties: geoProperties{
				Kind:          models.ItemPath,
				Label:         p.Label,
				Name:          p.Name,
				CoordinateIDs: p.CoordinateIDs,
				PathType:      p.PathType,
				Shape:         string(p.Shape),
			},
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(fc)
}

func (GeoJSONCodec) Decode(r io.Reader) (*models.SceneDocument, error) {
	var fc geoCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("failed to decode geojson scene: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("expected FeatureCollection, got %q", fc.Type)
	}

	doc := &models.SceneDocument{Version: fc.Version, GridSize: fc.GridSize}
	if fc.ExportedAt != nil {
		doc.ExportedAt = *fc.ExportedAt
	}

	for i, f := range fc.Features {
		switch f.Geometry.Type {
		case "Point":
			var c []float64
			if err := json.Unmarshal(f.Geometry.Coordinates, &c); err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			pos, err := fromGeo(c)
			if err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			if f.Properties.Kind == models.ItemTarget {
				doc.Targets = append(doc.Targets, models.TargetRecord{
					ID:           f.ID,
					Label:        f.Properties.Label,
					Name:         f.Properties.Name,
					Position:     pos,
					CoordinateID: f.Properties.CoordinateID,
				})
			} else {
				doc.Coordinates = append(doc.Coordinates, models.CoordinateRecord{ID: f.ID, Name: f.Properties.Name, Position: pos})
			}
		case "LineString":
			var line [][]float64
			if err := json.Unmarshal(f.Geometry.Coordinates, &line); err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			rec := models.PathRecord{
				ID:            f.ID,
				Label:         f.Properties.Label,
				Name:          f.Properties.Name,
				PathType:      f.Properties.PathType,
				Shape:         models.PathShape(f.Properties.Shape),
				CoordinateIDs: f.Properties.CoordinateIDs,
			}
			for _, c := range line {
				pos, err := fromGeo(c)
				if err != nil {
					return nil, fmt.Errorf("feature %d: %w", i, err)
				}
				rec.LitTiles = append(rec.LitTiles, pos)
			}
			doc.Paths = append(doc.Paths, rec)
		default:
			return nil, fmt.Errorf("feature %d: unsupported geometry %q", i, f.Geometry.Type)
		}
	}

	return normalize(doc), nil
}
