// handlers_exchange.go - Import, export and stored scene file handlers
package api

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/target-creator/backend/internal/exchange"
	"github.com/target-creator/backend/internal/models"
	"github.com/target-creator/backend/internal/storage"
	"github.com/target-creator/backend/internal/upload"
)

// ImportJobs starts and tracks asynchronous imports
type ImportJobs interface {
	StartJob(sessionID, fileID string, replace bool) *upload.Job
	GetJob(id string) (*upload.Job, bool)
}

// ExchangeHandlerImpl implements the ExchangeHandler interface
type ExchangeHandlerImpl struct {
	store    storage.Store
	sessions SessionManager
	jobs     ImportJobs
	codecs   *exchange.Registry
}

// NewExchangeHandler creates a new exchange handler
func NewExchangeHandler(store storage.Store, sessions SessionManager, jobs ImportJobs, codecs *exchange.Registry) ExchangeHandler {
	if codecs == nil {
		codecs = exchange.NewRegistry()
	}
	return &ExchangeHandlerImpl{
		store:    store,
		sessions: sessions,
		jobs:     jobs,
		codecs:   codecs,
	}
}

type formatInfo struct {
	Name        string   `json:"name"`
	Extensions  []string `json:"extensions"`
	ContentType string   `json:"contentType"`
}

// HandleFormats lists the supported import/export formats
func (h *ExchangeHandlerImpl) HandleFormats(c echo.Context) error {
	formats := make([]formatInfo, 0, len(h.codecs.Names()))
	for _, name := range h.codecs.Names() {
		codec, _ := h.codecs.ByName(name)
		formats = append(formats, formatInfo{
			Name:        codec.Name(),
			Extensions:  codec.Extensions(),
			ContentType: codec.ContentType(),
		})
	}
	return c.JSON(http.StatusOK, formats)
}

// HandleExport streams the session's scene encoded in the requested format
func (h *ExchangeHandlerImpl) HandleExport(c echo.Context) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	codec, err := h.codecFor(c.QueryParam("format"), "")
	if err != nil {
		return err
	}
	compress, _ := strconv.ParseBool(c.QueryParam("gzip"))

	data, err := encodeDocument(codec, sc.Document(), compress)
	if err != nil {
		return NewInternalError("failed to encode scene", err)
	}

	name := exchange.FileName(baseName(c.QueryParam("name")), codec)
	contentType := codec.ContentType()
	if compress {
		name += ".gz"
		contentType = "application/gzip"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, contentType, data)
}

// HandleSaveExport encodes the scene and keeps the result in file storage
func (h *ExchangeHandlerImpl) HandleSaveExport(c echo.Context) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	var req saveExportRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	codec, err := h.codecFor(req.Format, "")
	if err != nil {
		return err
	}

	data, err := encodeDocument(codec, sc.Document(), req.Gzip)
	if err != nil {
		return NewInternalError("failed to encode scene", err)
	}
	name := exchange.FileName(baseName(req.Name), codec)
	if req.Gzip {
		name += ".gz"
	}

	info, err := h.store.SaveBytes(name, storage.StatusExported, codec.Name(), data)
	if err != nil {
		return NewInternalError("failed to save export", err)
	}
	fmt.Printf("[Export %s] Saved %s (%d bytes)\n", info.ID[:8], name, info.Size)
	return c.JSON(http.StatusCreated, info)
}

// HandleImport decodes a base64 payload and applies it to the scene synchronously
func (h *ExchangeHandlerImpl) HandleImport(c echo.Context) error {
	sc, err := sceneFor(c, h.sessions)
	if err != nil {
		return err
	}
	var req importRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	decoded, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return NewBadRequestError("invalid base64 data", err)
	}
	codec, err := h.codecFor(req.Format, req.Name)
	if err != nil {
		return err
	}

	r, _, err := exchange.Decompress(bytes.NewReader(decoded))
	if err != nil {
		return NewBadRequestError("invalid compressed data", err)
	}
	doc, err := codec.Decode(r)
	if err != nil {
		return NewBadRequestError(fmt.Sprintf("failed to decode %s", codec.Name()), err)
	}
	if err := exchange.ValidateDocument(doc); err != nil {
		return fromDomainError(err)
	}

	summary, err := sc.Import(doc, req.Replace)
	if err != nil {
		return fromDomainError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

// HandleStartImportJob starts an asynchronous import of a stored file
func (h *ExchangeHandlerImpl) HandleStartImportJob(c echo.Context) error {
	sessionID := c.Param("sessionId")
	if _, ok := h.sessions.GetSession(sessionID); !ok {
		return NewNotFoundError("session", sessionID)
	}
	var req importJobRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.FileID == "" {
		return NewValidationError("fileId")
	}
	if _, err := h.store.Get(req.FileID); err != nil {
		return NewNotFoundError("file", req.FileID)
	}

	job := h.jobs.StartJob(sessionID, req.FileID, req.Replace)
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"jobId":  job.ID,
		"status": job.Status,
	})
}

// HandleGetImportJob returns the state of an import job
func (h *ExchangeHandlerImpl) HandleGetImportJob(c echo.Context) error {
	id := c.Param("jobId")
	job, ok := h.jobs.GetJob(id)
	if !ok {
		return NewNotFoundError("import job", id)
	}
	return c.JSON(http.StatusOK, job)
}

// HandleUploadFile accepts a scene file as multipart/form-data
func (h *ExchangeHandlerImpl) HandleUploadFile(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}
	if _, err := h.codecs.ForFile(file.Filename); err != nil {
		return NewBadRequestError("unsupported scene file", err)
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	info, err := h.store.Save(file.Filename, src)
	if err != nil {
		return NewInternalError("failed to save file", err)
	}
	return c.JSON(http.StatusCreated, info)
}

// HandleListFiles returns recently stored scene files
func (h *ExchangeHandlerImpl) HandleListFiles(c echo.Context) error {
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return NewValidationError("limit")
		}
		limit = n
	}
	files, err := h.store.List(limit)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}
	return c.JSON(http.StatusOK, files)
}

// HandleGetFile returns metadata for a specific file
func (h *ExchangeHandlerImpl) HandleGetFile(c echo.Context) error {
	id := c.Param("id")
	info, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}
	return c.JSON(http.StatusOK, info)
}

// HandleDownloadFile streams a stored file's contents
func (h *ExchangeHandlerImpl) HandleDownloadFile(c echo.Context) error {
	id := c.Param("id")
	rc, info, err := h.store.Open(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}
	defer rc.Close()

	contentType := echo.MIMEOctetStream
	if codec, err := h.codecs.ForFile(info.Name); err == nil {
		contentType = codec.ContentType()
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", info.Name))
	return c.Stream(http.StatusOK, contentType, rc)
}

// HandleRenameFile updates the name of a file
func (h *ExchangeHandlerImpl) HandleRenameFile(c echo.Context) error {
	id := c.Param("id")
	var req renameRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Name == "" {
		return NewValidationError("name")
	}
	info, err := h.store.Rename(id, req.Name)
	if err != nil {
		return NewNotFoundError("file", id)
	}
	return c.JSON(http.StatusOK, info)
}

// HandleDeleteFile deletes a stored file
func (h *ExchangeHandlerImpl) HandleDeleteFile(c echo.Context) error {
	id := c.Param("id")
	if err := h.store.Delete(id); err != nil {
		return NewNotFoundError("file", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// codecFor picks a codec by explicit format name, falling back to the file
// name and then to JSON.
func (h *ExchangeHandlerImpl) codecFor(format, fileName string) (exchange.Codec, error) {
	var (
		codec exchange.Codec
		err   error
	)
	switch {
	case format != "":
		codec, err = h.codecs.ByName(format)
	case fileName != "":
		codec, err = h.codecs.ForFile(fileName)
	default:
		codec, err = h.codecs.ByName("json")
	}
	if err != nil {
		return nil, NewBadRequestError("unsupported format", err)
	}
	return codec, nil
}

func encodeDocument(codec exchange.Codec, doc *models.SceneDocument, compress bool) ([]byte, error) {
	var buf bytes.Buffer
	if !compress {
		if err := codec.Encode(&buf, doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	zw := gzip.NewWriter(&buf)
	if err := codec.Encode(zw, doc); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func baseName(name string) string {
	if name == "" {
		return "scene"
	}
	return name
}

type saveExportRequest struct {
	Format string `json:"format"`
	Name   string `json:"name"`
	Gzip   bool   `json:"gzip"`
}

type importRequest struct {
	Format  string `json:"format"`
	Name    string `json:"name"`
	Data    string `json:"data"` // Base64-encoded content
	Replace bool   `json:"replace"`
}

func (r *importRequest) validate() error {
	if r.Data == "" {
		return NewValidationError("data")
	}
	return nil
}

type importJobRequest struct {
	FileID  string `json:"fileId"`
	Replace bool   `json:"replace"`
}
