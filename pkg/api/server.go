package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/chatterbox/pkg/auth"
	"github.com/platinummonkey/chatterbox/pkg/httputil"
	"github.com/platinummonkey/chatterbox/pkg/middleware"
	"github.com/platinummonkey/chatterbox/pkg/observability"
)

// DefaultMaxUploadBytes bounds an upload request when Dependencies leaves it zero.
const DefaultMaxUploadBytes = 100 << 20

// Dependencies wires a Server. Store, Files, Keys and Logger are required.
type Dependencies struct {
	Store  Store
	Files  FileStore
	Keys   *auth.KeyPair
	Logger *observability.Logger

	// Membership answers the chat gate; nil uses Store.
	Membership middleware.MembershipChecker
	// Health mounts /health/live and /health/ready when set.
	Health *observability.HealthChecker
	// Metrics records HTTP, auth and signin metrics when set.
	Metrics *observability.Metrics
	// Registry mounts /metrics when set.
	Registry *prometheus.Registry
	// MaxUploadBytes caps POST /api/upload; zero uses DefaultMaxUploadBytes.
	MaxUploadBytes int64
}

// Server is the chat HTTP API.
type Server struct {
	store   Store
	files   FileStore
	signer  *auth.Signer
	logger  *observability.Logger
	audit   *auth.AuditLogger
	signins *prometheus.CounterVec

	router  *mux.Router
	handler http.Handler
}

// NewServer creates the server and its routes.
func NewServer(deps Dependencies) *Server {
	var rejections *prometheus.CounterVec
	s := &Server{
		store:  deps.Store,
		files:  deps.Files,
		signer: deps.Keys.Signer,
		logger: deps.Logger,
		router: mux.NewRouter(),
	}
	if deps.Metrics != nil {
		rejections = deps.Metrics.AuthRejectionsTotal
		s.signins = deps.Metrics.SigninsTotal
		s.router.Use(observability.HTTPMetricsMiddleware(deps.Metrics))
	}
	s.audit = auth.NewAuditLogger(deps.Logger, rejections)

	s.setupRoutes(deps)

	s.handler = otelhttp.NewHandler(httputil.Chain(
		middleware.RequestID,
		middleware.ServerTime,
		middleware.AccessLog(deps.Logger),
		httputil.RecoveryMiddleware(deps.Logger),
	)(s.router), "chatterbox")

	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes(deps Dependencies) {
	membership := deps.Membership
	if membership == nil {
		membership = deps.Store
	}
	maxUpload := deps.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}

	authn := middleware.NewAuthenticator(deps.Keys.Verifier, s.audit)
	member := middleware.NewChatMembership(membership, s.audit)
	identified := func(fn middleware.IdentityHandlerFunc) http.Handler {
		return authn.Wrap(fn)
	}
	chatMember := func(fn middleware.IdentityHandlerFunc) http.Handler {
		return authn.Wrap(member.Wrap(fn))
	}

	api := s.router.PathPrefix("/api").Subrouter()

	// Public
	api.HandleFunc("/signup", s.signup).Methods(http.MethodPost)
	api.HandleFunc("/signin", s.signin).Methods(http.MethodPost)

	// Authenticated
	api.Handle("/users", identified(s.listUsers)).Methods(http.MethodGet)
	api.Handle("/chats", identified(s.listChats)).Methods(http.MethodGet)
	api.Handle("/chats", identified(s.createChat)).Methods(http.MethodPost)
	api.Handle("/chats/{id}", identified(s.getChat)).Methods(http.MethodGet)
	api.Handle("/upload", httputil.MaxBytesMiddleware(maxUpload)(identified(s.upload))).Methods(http.MethodPost)
	api.Handle("/files/{ws}/{path:.+}", identified(s.download)).Methods(http.MethodGet)

	// Chat members only
	api.Handle("/chats/{id}/messages", chatMember(s.listMessages)).Methods(http.MethodGet)
	api.Handle("/chats/{id}/messages", chatMember(s.sendMessage)).Methods(http.MethodPost)

	if deps.Health != nil {
		s.router.HandleFunc("/health/live", deps.Health.Liveness).Methods(http.MethodGet)
		s.router.HandleFunc("/health/ready", deps.Health.Readiness).Methods(http.MethodGet)
	}
	if deps.Registry != nil {
		s.router.Handle("/metrics", observability.MetricsHandler(deps.Registry)).Methods(http.MethodGet)
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteNotFound(w, "route not found")
	})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Router exposes the bare router, without the outer middleware chain.
func (s *Server) Router() *mux.Router {
	return s.router
}
