package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/sdgraph-backend/internal/http/response"
	"github.com/yungbote/sdgraph-backend/internal/services"
)

type GraphHandler struct {
	graph services.GraphService
}

func NewGraphHandler(graph services.GraphService) *GraphHandler {
	return &GraphHandler{graph: graph}
}

// GET /api/tables
func (h *GraphHandler) ListTables(c *gin.Context) {
	response.RespondOK(c, h.graph.Tables())
}

// GET /api/table/:name
func (h *GraphHandler) GetTable(c *gin.Context) {
	rows, err := h.graph.TableRows(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.RespondFromError(c, err, "load_table_failed")
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/graph-data
func (h *GraphHandler) GetGraphData(c *gin.Context) {
	data, err := h.graph.GraphData(c.Request.Context())
	if err != nil {
		response.RespondFromError(c, err, "load_graph_failed")
		return
	}
	response.RespondOK(c, data)
}
