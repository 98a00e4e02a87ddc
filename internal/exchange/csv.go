package exchange

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/target-creator/backend/internal/models"
)

// csvHeader is the column layout. Paths take one row per lit tile.
var csvHeader = []string{"type", "id", "label", "name", "x", "y", "z", "coordinate_id", "path_type", "shape"}

// CSVCodec flattens a document into one table.
type CSVCodec struct{}

func (CSVCodec) Name() string         { return "csv" }
func (CSVCodec) Extensions() []string { return []string{".csv"} }
func (CSVCodec) ContentType() string  { return "text/csv" }

func (CSVCodec) Encode(w io.Writer, doc *models.SceneDocument) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, c := range doc.Coordinates {
		if err := cw.Write(csvRow(models.ItemCoordinate, c.ID, "", c.Name, c.Position, "", "", "")); err != nil {
			return err
		}
	}
	for _, t := range doc.Targets {
		if err := cw.Write(csvRow(models.ItemTarget, t.ID, t.Label, t.Name, t.Position, t.CoordinateID, "", "")); err != nil {
			return err
		}
	}
	for _, p := range doc.Paths {
		for i, tile := range p.LitTiles {
			coordID := ""
			if i < len(p.CoordinateIDs) {
				coordID = p.CoordinateIDs[i]
			}
			if err := cw.Write(csvRow(models.ItemPath, p.ID, p.Label, p.Name, tile, coordID, p.PathType, string(p.Shape))); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvRow(kind models.ItemType, id, label, name string, p models.Position, coordID, pathType, shape string) []string {
	return []string{
		string(kind), id, label, name,
		models.FormatComponent(p[0]), models.FormatComponent(p[1]), models.FormatComponent(p[2]),
		coordID, pathType, shape,
	}
}

func (CSVCodec) Decode(r io.Reader) (*models.SceneDocument, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"type", "id", "x", "y", "z"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv is missing column %q", required)
		}
	}
	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	doc := models.NewSceneDocument()
	paths := make(map[string]int)
	line := 1

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}

		pos, err := parsePosition(field(rec, "x"), field(rec, "y"), field(rec, "z"))
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}

		id := field(rec, "id")
		switch models.ItemType(strings.ToLower(field(rec, "type"))) {
		case models.ItemCoordinate:
			doc.Coordinates = append(doc.Coordinates, models.CoordinateRecord{ID: id, Name: field(rec, "name"), Position: pos})
		case models.ItemTarget:
			doc.Targets = append(doc.Targets, models.TargetRecord{
				ID:           id,
				Label:        field(rec, "label"),
				Name:         field(rec, "name"),
				Position:     pos,
				CoordinateID: field(rec, "coordinate_id"),
			})
		case models.ItemPath:
			i, ok := paths[id]
			if !ok {
				i = len(doc.Paths)
				paths[id] = i
				doc.Paths = append(doc.Paths, models.PathRecord{
					ID:       id,
					Label:    field(rec, "label"),
					Name:     field(rec, "name"),
					PathType: field(rec, "path_type"),
					Shape:    models.PathShape(field(rec, "shape")),
				})
			}
			p := &doc.Paths[i]
			p.LitTiles = append(p.LitTiles, pos)
			if cid := field(rec, "coordinate_id"); cid != "" {
				p.CoordinateIDs = append(p.CoordinateIDs, cid)
			}
		default:
			return nil, fmt.Errorf("csv line %d: unknown row type %q", line, field(rec, "type"))
		}
	}

	return doc, nil
}

func parsePosition(xs, ys, zs string) (models.Position, error) {
	var p models.Position
	for i, s := range []string{xs, ys, zs} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return p, fmt.Errorf("invalid position component %q: %w", s, err)
		}
		p[i] = v
	}
	return p, nil
}
