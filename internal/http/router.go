package http

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/sdgraph-backend/internal/http/handlers"
	httpMW "github.com/yungbote/sdgraph-backend/internal/http/middleware"
	"github.com/yungbote/sdgraph-backend/internal/observability"
	"github.com/yungbote/sdgraph-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string
	StaticDir   string

	HealthHandler *httpH.HealthHandler
	GraphHandler  *httpH.GraphHandler
	ImportHandler *httpH.ImportHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "sdgraph-backend"
	}
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	if cfg.Metrics != nil {
		r.Use(httpMW.Metrics(cfg.Metrics))
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")
	{
		// Graph reads
		if cfg.GraphHandler != nil {
			api.GET("/tables", cfg.GraphHandler.ListTables)
			api.GET("/table/:name", cfg.GraphHandler.GetTable)
			api.GET("/graph-data", cfg.GraphHandler.GetGraphData)
		}

		// Imports
		if cfg.ImportHandler != nil {
			api.POST("/import", cfg.ImportHandler.Import)
			api.GET("/imports", cfg.ImportHandler.ListImports)
			api.GET("/imports/:id", cfg.ImportHandler.GetImport)
		}
	}

	mountStatic(r, cfg.StaticDir)
	return r
}

// mountStatic serves the frontend build for every path the API does not
// own, falling back to index.html for client-side routes.
func mountStatic(r *gin.Engine, dir string) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return
	}
	fs := http.Dir(dir)
	index := filepath.Join(dir, "index.html")
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusNotFound)
			return
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "route not found", "code": "not_found"}})
			return
		}
		if f, err := fs.Open(path.Clean(c.Request.URL.Path)); err == nil {
			st, statErr := f.Stat()
			_ = f.Close()
			if statErr == nil && !st.IsDir() {
				c.FileFromFS(c.Request.URL.Path, fs)
				return
			}
		}
		c.File(index)
	})
}
