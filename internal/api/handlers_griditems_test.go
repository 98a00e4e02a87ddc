package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target-creator/backend/internal/griditems"
)

func TestGridItemsReferentialIntegrity(t *testing.T) {
	s := newTestServer(t)
	base := "/api/sessions/" + s.newSession(t) + "/grid-items"

	assertAPIError(t, s.do(t, http.MethodPost, base+"/targets", map[string]string{"label": "T", "pathId": "missing"}),
		http.StatusConflict, "CONFLICT")
	assertAPIError(t, s.do(t, http.MethodPost, base+"/targets", map[string]string{"label": "T"}),
		http.StatusBadRequest, "VALIDATION_ERROR")

	rec := s.do(t, http.MethodPost, base+"/paths", map[string]interface{}{
		"id":    "p1",
		"label": "Route",
		"coordinates": []map[string]interface{}{
			{"label": "A", "position": []float64{0, 0, 0}},
			{"label": "B", "position": []float64{1, 0, 0}},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	path := decode[griditems.Path](t, rec)
	require.Len(t, path.Coordinates, 2)

	assertAPIError(t, s.do(t, http.MethodPost, base+"/paths", map[string]interface{}{"id": "p1"}),
		http.StatusConflict, "CONFLICT")

	rec = s.do(t, http.MethodPost, base+"/targets", map[string]string{"id": "t1", "label": "Dock", "pathId": "p1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, base+"/paths/p1", nil)
	assert.Equal(t, "t1", decode[griditems.Path](t, rec).TargetID)

	// Existing position is reused
	rec = s.do(t, http.MethodPost, base+"/coordinates", map[string]interface{}{"label": "Again", "position": []float64{0, 0, 0}})
	assert.Equal(t, http.StatusOK, rec.Code)
	coordID := decode[griditems.Coordinate](t, rec).ID
	assert.Equal(t, path.Coordinates[0].ID, coordID)

	rec = s.do(t, http.MethodPost, base+"/coordinates", map[string]interface{}{"label": "New", "position": []float64{5, 0, 5}})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, base+"/coordinates/"+coordID+"/paths", nil)
	assert.Len(t, decode[[]griditems.Path](t, rec), 1)
	rec = s.do(t, http.MethodGet, base+"/coordinates/"+coordID+"/targets", nil)
	targets := decode[[]griditems.Target](t, rec)
	require.Len(t, targets, 1)
	assert.Equal(t, "t1", targets[0].ID)

	rec = s.do(t, http.MethodGet, base+"/targets/t1/start-coordinate", nil)
	assert.Equal(t, coordID, decode[griditems.Coordinate](t, rec).ID)

	rec = s.do(t, http.MethodPut, base+"/coordinates/"+coordID, map[string]string{"label": "Origin"})
	assert.Equal(t, "Origin", decode[griditems.Coordinate](t, rec).Label)

	// Deleting the path cascades to its target
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, base+"/paths/p1", nil).Code)
	assertAPIError(t, s.do(t, http.MethodGet, base+"/targets/t1", nil), http.StatusNotFound, "NOT_FOUND")
	assertAPIError(t, s.do(t, http.MethodDelete, base+"/paths/p1", nil), http.StatusNotFound, "NOT_FOUND")

	rec = s.do(t, http.MethodGet, base+"/coordinates", nil)
	assert.Len(t, decode[[]griditems.Coordinate](t, rec), 3)
}

func TestGridItemsUpdates(t *testing.T) {
	s := newTestServer(t)
	base := "/api/sessions/" + s.newSession(t) + "/grid-items"

	s.do(t, http.MethodPost, base+"/paths", map[string]interface{}{"id": "p1", "label": "One"})
	s.do(t, http.MethodPost, base+"/paths", map[string]interface{}{"id": "p2", "label": "Two"})
	s.do(t, http.MethodPost, base+"/targets", map[string]string{"id": "t1", "label": "T", "pathId": "p1"})

	rec := s.do(t, http.MethodPut, base+"/targets/t1", map[string]string{"pathId": "p2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "p2", decode[griditems.Target](t, rec).PathID)

	rec = s.do(t, http.MethodGet, base+"/paths/p2", nil)
	assert.Equal(t, "t1", decode[griditems.Path](t, rec).TargetID)

	assertAPIError(t, s.do(t, http.MethodPut, base+"/targets/t1", map[string]string{"pathId": "ghost"}),
		http.StatusNotFound, "NOT_FOUND")

	rec = s.do(t, http.MethodPut, base+"/paths/p1", map[string]interface{}{
		"label":       "Renamed",
		"coordinates": []map[string]interface{}{{"label": "C", "position": []float64{2, 0, 2}}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[griditems.Path](t, rec)
	assert.Equal(t, "Renamed", updated.Label)
	assert.Len(t, updated.Coordinates, 1)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, base+"/targets/t1", nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, base+"/coordinates/"+updated.Coordinates[0].ID, nil).Code)

	rec = s.do(t, http.MethodGet, base+"/paths/p1", nil)
	assert.Empty(t, decode[griditems.Path](t, rec).Coordinates)
}
