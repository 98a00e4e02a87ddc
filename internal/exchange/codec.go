// Package exchange converts scenes to and from file formats.
package exchange

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/target-creator/backend/internal/models"
)

// Codec encodes and decodes scene documents in one file format.
type Codec interface {
	// Name returns the unique name of the format.
	Name() string
	// Extensions lists file extensions (with leading dot) for this format.
	Extensions() []string
	// ContentType is the MIME type used when serving encoded documents.
	ContentType() string
	Encode(w io.Writer, doc *models.SceneDocument) error
	Decode(r io.Reader) (*models.SceneDocument, error)
}

// Registry holds the available codecs.
type Registry struct {
	codecs []Codec
}

// NewRegistry returns a registry with every built-in codec.
func NewRegistry() *Registry {
	return &Registry{
		codecs: []Codec{
			JSONCodec{},
			CSVCodec{},
			XMLCodec{},
			GeoJSONCodec{},
			YAMLCodec{},
			MsgpackCodec{},
			DuckDBCodec{},
		},
	}
}

// Register adds a codec to the registry, replacing any codec with the
// same name.
func (r *Registry) Register(c Codec) {
	for i, existing := range r.codecs {
		if existing.Name() == c.Name() {
			r.codecs[i] = c
			return
		}
	}
	r.codecs = append(r.codecs, c)
}

// ByName returns a codec by its name.
func (r *Registry) ByName(name string) (Codec, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range r.codecs {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("unknown format: %s", name)
}

// ForFile picks a codec from a file name's extension, ignoring a trailing
// .gz.
func (r *Registry) ForFile(fileName string) (Codec, error) {
	name := strings.ToLower(fileName)
	name = strings.TrimSuffix(name, ".gz")
	ext := filepath.Ext(name)
	for _, c := range r.codecs {
		for _, e := range c.Extensions() {
			if e == ext {
				return c, nil
			}
		}
	}
	return nil, fmt.Errorf("no format found for file: %s", fileName)
}

// Names returns the registered format names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.codecs))
	for _, c := range r.codecs {
		names = append(names, c.Name())
	}
	sort.Strings(names)
	return names
}

// Codecs returns the registered codecs in registration order.
func (r *Registry) Codecs() []Codec {
	return append([]Codec(nil), r.codecs...)
}

// FileName returns base with the codec's primary extension.
func FileName(base string, c Codec) string {
	return base + c.Extensions()[0]
}

// Decompress wraps r in a gzip reader when the stream starts with the gzip
// magic bytes. It reports whether decompression applies.
func Decompress(r io.Reader) (io.Reader, bool, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, false, err
	}
	if len(magic) < 2 || magic[0] != 0x1f || magic[1] != 0x8b {
		return br, false, nil
	}

	gz, err := gzip.NewReader(br)
	if err != nil {
		return nil, false, fmt.Errorf("invalid gzip stream: %w", err)
	}
	return gz, true, nil
}

// normalize fills the slices a decoded document may leave nil.
func normalize(doc *models.SceneDocument) *models.SceneDocument {
	if doc.Version == "" {
		doc.Version = models.SceneDocumentVersion
	}
	if doc.Coordinates == nil {
		doc.Coordinates = make([]models.CoordinateRecord, 0)
	}
	if doc.Targets == nil {
		doc.Targets = make([]models.TargetRecord, 0)
	}
	if doc.Paths == nil {
		doc.Paths = make([]models.PathRecord, 0)
	}
	return doc
}
