package exchange

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/target-creator/backend/internal/models"
)

// JSONCodec is the editor's native export format.
type JSONCodec struct{}

func (JSONCodec) Name() string         { return "json" }
func (JSONCodec) Extensions() []string { return []string{".json"} }
func (JSONCodec) ContentType() string  { return "application/json" }

func (JSONCodec) Encode(w io.Writer, doc *models.SceneDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func (JSONCodec) Decode(r io.Reader) (*models.SceneDocument, error) {
	var doc models.SceneDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode json scene: %w", err)
	}
	return normalize(&doc), nil
}
