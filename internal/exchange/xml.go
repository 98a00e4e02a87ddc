package exchange

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/target-creator/backend/internal/models"
)

type xmlScene struct {
	XMLName     xml.Name        `xml:"Scene"`
	Version     string          `xml:"version,attr"`
	ExportedAt  string          `xml:"exportedAt,attr,omitempty"`
	GridSize    int             `xml:"gridSize,attr,omitempty"`
	Coordinates []xmlCoordinate `xml:"Coordinates>Coordinate"`
	Targets     []xmlTarget     `xml:"Targets>Target"`
	Paths       []xmlPath       `xml:"Paths>Path"`
}

type xmlPoint struct {
	X float64 `xml:"x,attr"`
	Y float64 `xml:"y,attr"`
	Z float64 `xml:"z,attr"`
}

type xmlCoordinate struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr,omitempty"`
	xmlPoint
}

type xmlTarget struct {
	ID           string `xml:"id,attr"`
	Label        string `xml:"label,attr"`
	Name         string `xml:"name,attr,omitempty"`
	CoordinateID string `xml:"coordinateId,attr,omitempty"`
	xmlPoint
}

type xmlTile struct {
	CoordinateID string `xml:"coordinateId,attr,omitempty"`
	xmlPoint
}

type xmlPath struct {
	ID       string    `xml:"id,attr"`
	Label    string    `xml:"label,attr"`
	Name     string    `xml:"name,attr,omitempty"`
	PathType string    `xml:"pathType,attr,omitempty"`
	Shape    string    `xml:"shape,attr,omitempty"`
	Tiles    []xmlTile `xml:"Tile"`
}

func toPoint(p models.Position) xmlPoint {
	return xmlPoint{X: p[0], Y: p[1], Z: p[2]}
}

func (p xmlPoint) position() models.Position {
	return models.Position{p.X, p.Y, p.Z}
}

// XMLCodec writes documents as XML.
type XMLCodec struct{}

func (XMLCodec) Name() string         { return "xml" }
func (XMLCodec) Extensions() []string { return []string{".xml"} }
func (XMLCodec) ContentType() string  { return "application/xml" }

func (XMLCodec) Encode(w io.Writer, doc *models.SceneDocument) error {
	out := xmlScene{
		Version:  doc.Version,
		GridSize: doc.GridSize,
	}
	if !doc.ExportedAt.IsZero() {
		out.ExportedAt = doc.ExportedAt.UTC().Format(time.RFC3339Nano)
	}
	for _, c := range doc.Coordinates {
		out.Coordinates = append(out.Coordinates, xmlCoordinate{ID: c.ID, Name: c.Name, xmlPoint: toPoint(c.Position)})
	}
	for _, t := range doc.Targets {
		out.Targets = append(out.Targets, xmlTarget{
			ID:           t.ID,
			Label:        t.Label,
			Name:         t.Name,
			CoordinateID: t.CoordinateID,
			xmlPoint:     toPoint(t.Position),
		})
	}
	for _, p := range doc.Paths {
		xp := xmlPath{ID: p.ID, Label: p.Label, Name: p.Name, PathType: p.PathType, Shape: string(p.Shape)}
		for i, tile := range p.LitTiles {
			t := xmlTile{xmlPoint: toPoint(tile)}
			if i < len(p.CoordinateIDs) {
				t.CoordinateID = p.CoordinateIDs[i]
			}
			xp.Tiles = append(xp.Tiles, t)
		}
		out.Paths = append(out.Paths, xp)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Flush()
}

func (XMLCodec) Decode(r io.Reader) (*models.SceneDocument, error) {
	var in xmlScene
	if err := xml.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("failed to decode xml scene: %w", err)
	}

	doc := &models.SceneDocument{Version: in.Version, GridSize: in.GridSize}
	if in.ExportedAt != "" {
		ts, err := time.Parse(time.RFC3339Nano, in.ExportedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid exportedAt: %w", err)
		}
		doc.ExportedAt = ts
	}
	for _, c := range in.Coordinates {
		doc.Coordinates = append(doc.Coordinates, models.CoordinateRecord{ID: c.ID, Name: c.Name, Position: c.position()})
	}
	for _, t := range in.Targets {
		doc.Targets = append(doc.Targets, models.TargetRecord{
			ID:           t.ID,
			Label:        t.Label,
			Name:         t.Name,
			Position:     t.position(),
			CoordinateID: t.CoordinateID,
		})
	}
	for _, p := range in.Paths {
		rec := models.PathRecord{ID: p.ID, Label: p.Label, Name: p.Name, PathType: p.PathType, Shape: models.PathShape(p.Shape)}
		for _, t := range p.Tiles {
			rec.LitTiles = append(rec.LitTiles, t.position())
			if t.CoordinateID != "" {
				rec.CoordinateIDs = append(rec.CoordinateIDs, t.CoordinateID)
			}
		}
		doc.Paths = append(doc.Paths, rec)
	}
	return normalize(doc), nil
}
