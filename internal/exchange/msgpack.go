package exchange

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/target-creator/backend/internal/models"
)

// MsgpackCodec writes documents as MessagePack.
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string         { return "msgpack" }
func (MsgpackCodec) Extensions() []string { return []string{".msgpack", ".mpk"} }
func (MsgpackCodec) ContentType() string  { return "application/msgpack" }

func (MsgpackCodec) Encode(w io.Writer, doc *models.SceneDocument) error {
	return msgpack.NewEncoder(w).Encode(doc)
}

func (MsgpackCodec) Decode(r io.Reader) (*models.SceneDocument, error) {
	var doc models.SceneDocument
	if err := msgpack.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode msgpack scene: %w", err)
	}
	return normalize(&doc), nil
}
