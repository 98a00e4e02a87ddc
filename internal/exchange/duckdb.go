package exchange

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/marcboeker/go-duckdb"

	"github.com/target-creator/backend/internal/models"
)

var duckSchema = []string{
	`CREATE TABLE scene (
		version     VARCHAR NOT NULL,
		exported_at TIMESTAMP,
		grid_size   INTEGER
	)`,
	`CREATE TABLE coordinates (
		seq  INTEGER NOT NULL,
		id   VARCHAR NOT NULL,
		name VARCHAR,
		x    DOUBLE NOT NULL,
		y    DOUBLE NOT NULL,
		z    DOUBLE NOT NULL
	)`,
	`CREATE TABLE targets (
		seq           INTEGER NOT NULL,
		id            VARCHAR NOT NULL,
		label         VARCHAR,
		name          VARCHAR,
		x             DOUBLE NOT NULL,
		y             DOUBLE NOT NULL,
		z             DOUBLE NOT NULL,
		coordinate_id VARCHAR
	)`,
	`CREATE TABLE paths (
		seq       INTEGER NOT NULL,
		id        VARCHAR NOT NULL,
		label     VARCHAR,
		name      VARCHAR,
		path_type VARCHAR,
		shape     VARCHAR
	)`,
	`CREATE TABLE path_tiles (
		path_id       VARCHAR NOT NULL,
		seq           INTEGER NOT NULL,
		x             DOUBLE NOT NULL,
		y             DOUBLE NOT NULL,
		z             DOUBLE NOT NULL,
		coordinate_id VARCHAR
	)`,
}

// DuckDBCodec stores a document as relational tables in a DuckDB database
// file, so exported scenes can be queried with SQL.
type DuckDBCodec struct {
	// TempDir holds scratch database files. Empty uses os.TempDir.
	TempDir string
}

func (DuckDBCodec) Name() string         { return "duckdb" }
func (DuckDBCodec) Extensions() []string { return []string{".duckdb"} }
func (DuckDBCodec) ContentType() string  { return "application/vnd.duckdb" }

// WriteFile writes doc into a new database at path.
func (DuckDBCodec) WriteFile(path string, doc *models.SceneDocument) error {
	db, err := openDuck(path)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	for _, stmt := range duckSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create scene tables: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exportedAt any
	if !doc.ExportedAt.IsZero() {
		exportedAt = doc.ExportedAt.UTC()
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO scene VALUES (?, ?, ?)`, doc.Version, exportedAt, doc.GridSize); err != nil {
		return fmt.Errorf("failed to write scene row: %w", err)
	}
	for i, c := range doc.Coordinates {
		if _, err := tx.ExecContext(ctx, `INSERT INTO coordinates VALUES (?, ?, ?, ?, ?, ?)`,
			i, c.ID, c.Name, c.Position[0], c.Position[1], c.Position[2]); err != nil {
			return fmt.Errorf("failed to write coordinate %s: %w", c.ID, err)
		}
	}
	for i, t := range doc.Targets {
		if _, err := tx.ExecContext(ctx, `INSERT INTO targets VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			i, t.ID, t.Label, t.Name, t.Position[0], t.Position[1], t.Position[2], t.CoordinateID); err != nil {
			return fmt.Errorf("failed to write target %s: %w", t.ID, err)
		}
	}
	for i, p := range doc.Paths {
		if _, err := tx.ExecContext(ctx, `INSERT INTO paths VALUES (?, ?, ?, ?, ?, ?)`,
			i, p.ID, p.Label, p.Name, p.PathType, string(p.Shape)); err != nil {
			return fmt.Errorf("failed to write path %s: %w", p.ID, err)
		}
		for j, tile := range p.LitTiles {
			coordID := ""
			if j < len(p.CoordinateIDs) {
				coordID = p.CoordinateIDs[j]
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO path_tiles VALUES (?, ?, ?, ?, ?, ?)`,
				p.ID, j, tile[0], tile[1], tile[2], coordID); err != nil {
				return fmt.Errorf("failed to write tile %d of path %s: %w", j, p.ID, err)
			}
		}
	}

	return tx.Commit()
}

// ReadFile reads a document from the database at path.
func (DuckDBCodec) ReadFile(path string) (*models.SceneDocument, error) {
	db, err := openDuck(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	doc := &models.SceneDocument{}
	var exportedAt sql.NullTime
	var gridSize sql.NullInt64
	row := db.QueryRow(`SELECT version, exported_at, grid_size FROM scene LIMIT 1`)
	if err := row.Scan(&doc.Version, &exportedAt, &gridSize); err != nil {
		return nil, fmt.Errorf("failed to read scene row: %w", err)
	}
	if exportedAt.Valid {
		doc.ExportedAt = exportedAt.Time.UTC()
	}
	doc.GridSize = int(gridSize.Int64)

	rows, err := db.Query(`SELECT id, COALESCE(name, ''), x, y, z FROM coordinates ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var c models.CoordinateRecord
		if err := rows.Scan(&c.ID, &c.Name, &c.Position[0], &c.Position[1], &c.Position[2]); err != nil {
			rows.Close()
			return nil, err
		}
		doc.Coordinates = append(doc.Coordinates, c)
	}
	rows.Close()

	rows, err = db.Query(`SELECT id, COALESCE(label, ''), COALESCE(name, ''), x, y, z, COALESCE(coordinate_id, '') FROM targets ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var t models.TargetRecord
		if err := rows.Scan(&t.ID, &t.Label, &t.Name, &t.Position[0], &t.Position[1], &t.Position[2], &t.CoordinateID); err != nil {
			rows.Close()
			return nil, err
		}
		doc.Targets = append(doc.Targets, t)
	}
	rows.Close()

	rows, err = db.Query(`SELECT id, COALESCE(label, ''), COALESCE(name, ''), COALESCE(path_type, ''), COALESCE(shape, '') FROM paths ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int)
	for rows.Next() {
		var p models.PathRecord
		var shape string
		if err := rows.Scan(&p.ID, &p.Label, &p.Name, &p.PathType, &shape); err != nil {
			rows.Close()
			return nil, err
		}
		p.Shape = models.PathShape(shape)
		index[p.ID] = len(doc.Paths)
		doc.Paths = append(doc.Paths, p)
	}
	rows.Close()

	rows, err = db.Query(`SELECT path_id, x, y, z, COALESCE(coordinate_id, '') FROM path_tiles ORDER BY path_id, seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var pathID, coordID string
		var tile models.Position
		if err := rows.Scan(&pathID, &tile[0], &tile[1], &tile[2], &coordID); err != nil {
			return nil, err
		}
		i, ok := index[pathID]
		if !ok {
			continue
		}
		doc.Paths[i].LitTiles = append(doc.Paths[i].LitTiles, tile)
		if coordID != "" {
			doc.Paths[i].CoordinateIDs = append(doc.Paths[i].CoordinateIDs, coordID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return normalize(doc), nil
}

// Encode writes the database to a scratch file and streams it to w.
func (c DuckDBCodec) Encode(w io.Writer, doc *models.SceneDocument) error {
	dir, err := os.MkdirTemp(c.TempDir, "scene-export-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "scene.duckdb")
	if err := c.WriteFile(path, doc); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// Decode spools r to a scratch file and reads it as a database.
func (c DuckDBCodec) Decode(r io.Reader) (*models.SceneDocument, error) {
	dir, err := os.MkdirTemp(c.TempDir, "scene-import-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "scene.duckdb")
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	return c.ReadFile(path)
}

func openDuck(path string) (*sql.DB, error) {
	connector, err := duckdb.NewConnector(path, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}
	return sql.OpenDB(connector), nil
}
