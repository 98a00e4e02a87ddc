package exchange

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/target-creator/backend/internal/models"
)

// YAMLCodec writes documents as YAML.
type YAMLCodec struct{}

func (YAMLCodec) Name() string         { return "yaml" }
func (YAMLCodec) Extensions() []string { return []string{".yaml", ".yml"} }
func (YAMLCodec) ContentType() string  { return "application/yaml" }

func (YAMLCodec) Encode(w io.Writer, doc *models.SceneDocument) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func (YAMLCodec) Decode(r io.Reader) (*models.SceneDocument, error) {
	var doc models.SceneDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode yaml scene: %w", err)
	}
	return normalize(&doc), nil
}
