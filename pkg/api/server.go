package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/platinummonkey/schema-registry/pkg/auth"
	"github.com/platinummonkey/schema-registry/pkg/httputil"
	"github.com/platinummonkey/schema-registry/pkg/middleware"
	"github.com/platinummonkey/schema-registry/pkg/observability"
	"github.com/platinummonkey/schema-registry/pkg/registry"
	"github.com/platinummonkey/schema-registry/pkg/storage"
	"github.com/platinummonkey/schema-registry/pkg/swagger"
)

// serverVersion is reported in the readiness probe body.
const serverVersion = "1.0.0"

// Server is the schema registry HTTP surface: a thin translation layer from
// the wire protocol to registry.Engine calls. It owns no schema state of its
// own beyond a read-through cache in front of GetByID.
type Server struct {
	engine  *registry.Engine
	router  *mux.Router
	logger  *observability.Logger
	store   storage.SnapshotStore // for readiness checks only; may be nil
	health  *observability.HealthChecker
	metrics *observability.Metrics
	auth    *middleware.AuthMiddleware

	idCache *lru.Cache[int, *registry.SchemaRecord]
}

// NewServer builds a Server wired to engine. cacheSize sizes the read-through
// GET-by-id cache (config.RegistryConfig.SchemaCacheSize); store, if
// non-nil, is consulted by the readiness probe. metrics, if non-nil, is
// instrumented on every request and exposed at /metrics.
func NewServer(engine *registry.Engine, cacheSize int, store storage.SnapshotStore, logger *observability.Logger, metrics *observability.Metrics) *Server {
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	if cacheSize <= 0 {
		cacheSize = 1000
	}
	cache, err := lru.New[int, *registry.SchemaRecord](cacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, already guarded above.
		panic(err)
	}

	s := &Server{
		engine:  engine,
		router:  mux.NewRouter(),
		logger:  logger,
		store:   store,
		health:  observability.NewHealthChecker(store, serverVersion),
		metrics: metrics,
		auth:    middleware.NewAuthMiddleware(auth.NewTokenManager(), true),
		idCache: cache,
	}
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(httputil.RecoveryMiddleware(s.logger))
	r.Use(s.requestContextMiddleware)
	r.Use(s.auth.Handler)
	if s.metrics != nil {
		r.Use(observability.HTTPMetricsMiddleware(s.metrics))
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	r.NotFoundHandler = http.HandlerFunc(s.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.methodNotAllowed)

	r.HandleFunc("/schemas/types", s.listSchemaTypes).Methods(http.MethodGet)
	r.HandleFunc("/schemas/ids/{id}", s.getSchemaByID).Methods(http.MethodGet)
	r.HandleFunc("/schemas/ids/{id}/schema", s.getSchemaTextByID).Methods(http.MethodGet)
	r.HandleFunc("/schemas/ids/{id}/subjects", s.getSubjectsForID).Methods(http.MethodGet)
	r.HandleFunc("/schemas/ids/{id}/versions", s.getVersionsForID).Methods(http.MethodGet)

	r.HandleFunc("/subjects", s.listSubjects).Methods(http.MethodGet)
	r.HandleFunc("/subjects/{subject}", s.lookupSchema).Methods(http.MethodPost)
	r.HandleFunc("/subjects/{subject}", s.deleteSubject).Methods(http.MethodDelete)
	r.HandleFunc("/subjects/{subject}/versions", s.registerSchema).Methods(http.MethodPost)
	r.HandleFunc("/subjects/{subject}/versions", s.listVersions).Methods(http.MethodGet)
	r.HandleFunc("/subjects/{subject}/versions/{version}", s.getVersion).Methods(http.MethodGet)
	r.HandleFunc("/subjects/{subject}/versions/{version}", s.deleteVersion).Methods(http.MethodDelete)
	r.HandleFunc("/subjects/{subject}/versions/{version}/schema", s.getVersionSchemaText).Methods(http.MethodGet)
	r.HandleFunc("/subjects/{subject}/versions/{version}/referencedby", s.getReferencedBy).Methods(http.MethodGet)

	r.HandleFunc("/compatibility/subjects/{subject}/versions/{version}", s.checkCompatibility).Methods(http.MethodPost)
	r.HandleFunc("/compatibility/subjects/{subject}/versions", s.checkCompatibility).Methods(http.MethodPost)

	r.HandleFunc("/config", s.getGlobalConfig).Methods(http.MethodGet)
	r.HandleFunc("/config", s.putGlobalConfig).Methods(http.MethodPut)
	r.HandleFunc("/config/{subject}", s.getSubjectConfig).Methods(http.MethodGet)
	r.HandleFunc("/config/{subject}", s.putSubjectConfig).Methods(http.MethodPut)
	r.HandleFunc("/config/{subject}", s.deleteSubjectConfig).Methods(http.MethodDelete)

	r.HandleFunc("/mode", s.getGlobalMode).Methods(http.MethodGet)
	r.HandleFunc("/mode", s.putGlobalMode).Methods(http.MethodPut)
	r.HandleFunc("/mode/{subject}", s.getSubjectMode).Methods(http.MethodGet)
	r.HandleFunc("/mode/{subject}", s.putSubjectMode).Methods(http.MethodPut)
	r.HandleFunc("/mode/{subject}", s.deleteSubjectMode).Methods(http.MethodDelete)

	r.HandleFunc("/contexts", s.listContexts).Methods(http.MethodGet)
	r.HandleFunc("/import/schemas", s.importSchemas).Methods(http.MethodPost)

	r.HandleFunc("/healthz", s.liveness).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.readiness).Methods(http.MethodGet)

	swagger.NewSwaggerHandlers().RegisterRoutes(r)
}

type contextKey string

const requestIDContextKey contextKey = "request_id"

// requestContextMiddleware stamps every request with a request id (reusing
// an inbound X-Request-ID if the caller supplied one) and binds a
// request-scoped logger to the context, in the copy-on-write WithField style
// every other package in this module logs through.
func (s *Server) requestContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := observability.WithRequestID(r.Context(), requestID)
		logger := s.logger.WithField("request_id", requestID).WithFields(map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		})
		ctx = observability.WithLogger(ctx, logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
