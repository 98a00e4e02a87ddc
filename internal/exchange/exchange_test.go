package exchange

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target-creator/backend/internal/models"
)

func sampleDocument() *models.SceneDocument {
	doc := models.NewSceneDocument()
	doc.ExportedAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	doc.GridSize = 20
	doc.Coordinates = []models.CoordinateRecord{
		{ID: "coord_0_0_0", Name: "Origin", Position: models.Position{0, 0, 0}},
		{ID: "coord_1_0_1", Position: models.Position{1, 0, 1}},
		{ID: "coord_2_0_2", Position: models.Position{2, 0, 2}},
		{ID: "coord_-3_1.5_4", Position: models.Position{-3, 1.5, 4}},
	}
	doc.Targets = []models.TargetRecord{
		{ID: "target-1", Label: "Crate", Name: "Blue, \"big\" crate", Position: models.Position{2, 0, 2}, CoordinateID: "coord_2_0_2"},
		{ID: "target-2", Label: "Lamp", Position: models.Position{-3, 1.5, 4}, CoordinateID: "coord_-3_1.5_4"},
	}
	doc.Paths = []models.PathRecord{{
		ID:            "path-1",
		Label:         "Diagonal",
		PathType:      "walkway",
		Shape:         models.PathShapeLine,
		LitTiles:      []models.Position{{0, 0, 0}, {1, 0, 1}, {2, 0, 2}},
		CoordinateIDs: []string{"coord_0_0_0", "coord_1_0_1", "coord_2_0_2"},
	}}
	return doc
}

func assertSameScene(t *testing.T, want, got *models.SceneDocument) {
	t.Helper()
	assert.Equal(t, want.Version, got.Version)
	assert.Equal(t, want.GridSize, got.GridSize)
	assert.True(t, want.ExportedAt.Equal(got.ExportedAt), "exportedAt %v != %v", want.ExportedAt, got.ExportedAt)
	assert.Equal(t, want.Coordinates, got.Coordinates)
	assert.Equal(t, want.Targets, got.Targets)
	assert.Equal(t, want.Paths, got.Paths)
}

func TestCodecsRoundTrip(t *testing.T) {
	reg := NewRegistry()

	for _, name := range []string{"json", "csv", "xml", "geojson", "yaml", "msgpack", "duckdb"} {
		t.Run(name, func(t *testing.T) {
			codec, err := reg.ByName(name)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, codec.Encode(&buf, sampleDocument()))
			got, err := codec.Decode(&buf)
			require.NoError(t, err)

			want := sampleDocument()
			if name == "csv" {
				// CSV carries no document header.
				got.Version, got.GridSize, got.ExportedAt = want.Version, want.GridSize, want.ExportedAt
			}
			assertSameScene(t, want, got)
			assert.NoError(t, ValidateDocument(got))
		})
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()

	c, err := reg.ForFile("Scene.GeoJSON.gz")
	require.NoError(t, err)
	assert.Equal(t, "geojson", c.Name())

	c, err = reg.ForFile("layout.yml")
	require.NoError(t, err)
	assert.Equal(t, "yaml", c.Name())

	_, err = reg.ForFile("notes.txt")
	assert.Error(t, err)

	_, err = reg.ByName("svg")
	assert.Error(t, err)

	assert.Equal(t, []string{"csv", "duckdb", "geojson", "json", "msgpack", "xml", "yaml"}, reg.Names())
	assert.Equal(t, "scene.xml", FileName("scene", XMLCodec{}))

	reg.Register(DuckDBCodec{TempDir: t.TempDir()})
	assert.Len(t, reg.Codecs(), 7)
	c, err = reg.ByName("duckdb")
	require.NoError(t, err)
	assert.NotEmpty(t, c.(DuckDBCodec).TempDir)
}

func TestDecompress(t *testing.T) {
	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	_, _ = w.Write([]byte(`{"version":"1.0"}`))
	require.NoError(t, w.Close())

	r, compressed, err := Decompress(&gz)
	require.NoError(t, err)
	assert.True(t, compressed)
	data, _ := io.ReadAll(r)
	assert.Equal(t, `{"version":"1.0"}`, string(data))

	r, compressed, err = Decompress(strings.NewReader("plain"))
	require.NoError(t, err)
	assert.False(t, compressed)
	data, _ = io.ReadAll(r)
	assert.Equal(t, "plain", string(data))

	_, compressed, err = Decompress(strings.NewReader(""))
	require.NoError(t, err)
	assert.False(t, compressed)
}

func TestCSVDecodeErrors(t *testing.T) {
	_, err := CSVCodec{}.Decode(strings.NewReader("type,id\n"))
	assert.ErrorContains(t, err, "missing column")

	_, err = CSVCodec{}.Decode(strings.NewReader("type,id,x,y,z\nblob,b1,0,0,0\n"))
	assert.ErrorContains(t, err, "unknown row type")

	_, err = CSVCodec{}.Decode(strings.NewReader("type,id,x,y,z\ntarget,t1,one,0,0\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestGeoJSONAxisOrder(t *testing.T) {
	doc := models.NewSceneDocument()
	doc.Coordinates = []models.CoordinateRecord{{ID: "c", Position: models.Position{1, 2, 3}}}

	var buf bytes.Buffer
	require.NoError(t, GeoJSONCodec{}.Encode(&buf, doc))
	var raw struct {
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	require.Len(t, raw.Features, 1)
	assert.Equal(t, []float64{1, 3, 2}, raw.Features[0].Geometry.Coordinates)

	got, err := GeoJSONCodec{}.Decode(strings.NewReader(`{"type":"FeatureCollection","features":[
		{"type":"Feature","id":"c","geometry":{"type":"Point","coordinates":[1,3,2]},"properties":{"kind":"coordinate"}},
		{"type":"Feature","id":"flat","geometry":{"type":"Point","coordinates":[4,5]},"properties":{"kind":"coordinate"}}
	]}`))
	require.NoError(t, err)
	assert.Equal(t, models.Position{1, 2, 3}, got.Coordinates[0].Position)
	assert.Equal(t, models.Position{4, 0, 5}, got.Coordinates[1].Position)

	_, err = GeoJSONCodec{}.Decode(strings.NewReader(`{"type":"Feature"}`))
	assert.Error(t, err)
}

func TestValidateDocument(t *testing.T) {
	assert.NoError(t, ValidateDocument(sampleDocument()))

	doc := sampleDocument()
	doc.Coordinates = append(doc.Coordinates, doc.Coordinates[0])
	doc.Targets[0].CoordinateID = "coord_9_9_9"
	doc.Paths = append(doc.Paths, models.PathRecord{ID: "empty"}, models.PathRecord{ID: "arc", Shape: models.PathShapeCurve, LitTiles: []models.Position{{0, 0, 0}}})

	err := ValidateDocument(doc)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 4)
	assert.Contains(t, err.Error(), "duplicate coordinate id coord_0_0_0")
	assert.Contains(t, err.Error(), "unknown coordinate coord_9_9_9")
	assert.Contains(t, err.Error(), "path empty has no tiles")
	assert.Contains(t, err.Error(), "unsupported shape curve")

	assert.Error(t, ValidateDocument(nil))
}
