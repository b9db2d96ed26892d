package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/sdgraph-backend/internal/http/response"
	"github.com/yungbote/sdgraph-backend/internal/ingestion/bundle"
	"github.com/yungbote/sdgraph-backend/internal/services"
)

const maxImportBytes = 32 << 20

type ImportHandler struct {
	imports services.ImportService
}

func NewImportHandler(imports services.ImportService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

// POST /api/import
//
// The body is a JSON or YAML bundle (table -> rows), or a single CSV table
// named by the "table" query parameter.
func (h *ImportHandler) Import(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	b, format, err := decodeBundle(c, body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondError(c, http.StatusRequestEntityTooLarge, "bundle_too_large", err)
			return
		}
		response.RespondFromError(c, err, "invalid_bundle")
		return
	}

	source := strings.TrimSpace(c.Query("source"))
	if source == "" {
		source = "api"
	}
	res, err := h.imports.Import(c.Request.Context(), services.ImportRequest{
		Source: source,
		Format: format,
		Bundle: b,
	})
	if err != nil {
		response.RespondFromError(c, err, "import_failed")
		return
	}
	response.RespondOK(c, res)
}

func decodeBundle(c *gin.Context, body io.Reader) (bundle.Bundle, string, error) {
	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		b, err := bundle.DecodeYAML(body)
		return b, bundle.FormatYAML, err
	case "text/csv":
		table := strings.TrimSpace(c.Query("table"))
		if table == "" {
			return nil, "", badRequest("csv import needs a table query parameter")
		}
		b, err := bundle.DecodeCSV(body, table)
		return b, bundle.FormatCSV, err
	default:
		b, err := bundle.DecodeJSON(body)
		return b, bundle.FormatJSON, err
	}
}

// GET /api/imports
func (h *ImportHandler) ListImports(c *gin.Context) {
	limit := 50
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
			return
		}
		limit = n
	}
	runs, err := h.imports.ListRuns(c.Request.Context(), limit)
	if err != nil {
		response.RespondFromError(c, err, "list_imports_failed")
		return
	}
	response.RespondOK(c, gin.H{"imports": runs})
}

// GET /api/imports/:id
func (h *ImportHandler) GetImport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_import_id", err)
		return
	}
	run, err := h.imports.GetRun(c.Request.Context(), id)
	if err != nil {
		response.RespondFromError(c, err, "load_import_failed")
		return
	}
	response.RespondOK(c, gin.H{"import": run})
}
