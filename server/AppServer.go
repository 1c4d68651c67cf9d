package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"runtime/debug"
	"time"

	"github.com/karlseguin/ccache"
	"go.uber.org/zap"
	"golang.org/x/net/context"

	"github.com/deciphernow/contact-registry-server/config"
	"github.com/deciphernow/contact-registry-server/dao"
	"github.com/deciphernow/contact-registry-server/events"
	"github.com/deciphernow/contact-registry-server/performance"
	"github.com/deciphernow/contact-registry-server/services/zookeeper"
	"github.com/deciphernow/contact-registry-server/util"
)

// Constants serve as keys for setting values on a request-scoped Context.
const (
	CaptureGroupsVal = iota
	GEMVal
	Logger
	SessionID
	DAO
)

// responseCacheTTL bounds how long contact detail and stats responses are
// served from memory before the database is consulted again.
const responseCacheTTL = 10 * time.Second

// AppServer is an http.Handler implementation that holds most service dependencies.
type AppServer struct {
	// Port is the TCP port that the web server listens on.
	Port string
	// Bind is the network address that the web server will use.
	Bind string
	// Addr is the combined network address and port the server listens on.
	Addr string
	// RootDAO is the interface contract with the database.
	RootDAO dao.DAO
	// Conf is the configuration passed to the application.
	Conf config.ServerSettingsConfiguration
	// ServicePrefix is the base url. Used when matching routes.
	ServicePrefix string
	// EventQueue is a Publisher interface we use to publish our main event stream.
	EventQueue events.Publisher
	// Tracker captures throughput by endpoint.
	Tracker *performance.JobReporters
	// Routes holds the compiled regular expressions for request routing. See InitRegex.
	Routes *StaticRx
	// DefaultZK wraps a connection to the cluster where we announce ourselves.
	DefaultZK *zookeeper.ZKState
	// ResponseCache retains recent contact detail and stats responses,
	// pruning those least recently used as it fills.
	ResponseCache *ccache.Cache
}

// StaticRx statically references compiled regular expressions.
type StaticRx struct {
	APIDocumentation *regexp.Regexp
	Contacts         *regexp.Regexp
	Contact          *regexp.Regexp
	ContactStats     *regexp.Regexp
	Search           *regexp.Regexp
	Ping             *regexp.Regexp
	StatsObject      *regexp.Regexp
}

// NewAppServer creates an AppServer with compiled routes and a response cache.
func NewAppServer(conf config.ServerSettingsConfiguration) (*AppServer, error) {

	app := AppServer{
		Port:          conf.ListenPort,
		Bind:          conf.ListenBind,
		Addr:          conf.ListenBind + ":" + conf.ListenPort,
		Conf:          conf,
		Tracker:       performance.NewJobReporters(1024),
		ServicePrefix: regexp.QuoteMeta(conf.BasePath),
		ResponseCache: ccache.New(ccache.Configure().MaxSize(1000).ItemsToPrune(50)),
	}

	app.InitRegex()

	return &app, nil
}

// InitRegex compiles static regexes and initializes the AppServer Routes field.
func (h *AppServer) InitRegex() {
	route := func(path string) *regexp.Regexp {
		return regexp.MustCompile(h.ServicePrefix + path)
	}
	h.Routes = &StaticRx{
		// Service operations
		APIDocumentation: route("/?$"),
		Ping:             route("/ping$"),
		StatsObject:      route("/stats$"),
		// - contacts
		Contacts:     route("/contacts/?$"),
		Contact:      route("/contacts/(?P<contactId>[0-9]+)/?$"),
		ContactStats: route("/contacts/stats/?$"),
		// - search
		Search: route("/contacts/search/(?P<searchPhrase>.*)$"),
	}
}

// When there is a panic, all deferred functions get executed.
func logCrashInServeHTTP(logger *zap.Logger, w http.ResponseWriter) {
	if r := recover(); r != nil {
		logger.Error("registry panic", zap.Any("context", r), zap.String("stack", string(debug.Stack())))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// ServeHTTP handles the routing of requests
func (h AppServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {

	sessionID := newSessionID()
	w.Header().Add("sessionid", sessionID)

	logger := config.RootLogger.With(zap.String("session", sessionID))
	defer logCrashInServeHTTP(logger, w)

	gem := globalEventFromRequest(r)
	gem.Payload.SessionID = sessionID

	ctx := context.Background()
	ctx = ContextWithLogger(ctx, logger)
	ctx = ContextWithSession(ctx, sessionID)
	ctx = ContextWithDAO(ctx, h.RootDAO)
	ctx = ContextWithGEM(ctx, gem)

	logger.Info(
		"transaction start",
		zap.String("method", r.Method),
		zap.String("uri", r.RequestURI),
		zap.String("remote", r.RemoteAddr),
	)

	// CORS support - if the request specifies an origin, reflect back an access control origin
	if reqOrigin := r.Header.Get("Origin"); reqOrigin != "" {
		w.Header().Set("Access-Control-Allow-Origin", reqOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	w.Header().Set("Vary", "Origin")

	var uri = r.URL.Path
	var herr *AppError

	switch r.Method {
	case "OPTIONS":
		// Handle the pre-flight request here
		herr = h.cors(ctx, w, r)
	case "GET", "HEAD":
		switch {
		// Operations answered without touching the database
		case h.Routes.Ping.MatchString(uri):
			herr = h.ping(ctx, w, r)
		case h.Routes.StatsObject.MatchString(uri):
			herr = h.getStats(ctx, w, r)
		// Data operations. A request carrying the cancellation marker is
		// turned away before any database work begins.
		case h.Routes.ContactStats.MatchString(uri):
			if herr = checkCancelled(r); herr == nil {
				herr = h.getContactStats(ctx, w, r)
			} else {
				h.publishError(gem.WithAction("stats"), herr)
			}
		case h.Routes.Search.MatchString(uri):
			ctx = parseCaptureGroups(ctx, r.URL.Path, h.Routes.Search)
			if herr = checkCancelled(r); herr == nil {
				herr = h.searchContacts(ctx, w, r)
			} else {
				h.publishError(gem.WithAction("search"), herr)
			}
		case h.Routes.Contact.MatchString(uri):
			ctx = parseCaptureGroups(ctx, r.URL.Path, h.Routes.Contact)
			if herr = checkCancelled(r); herr == nil {
				herr = h.getContact(ctx, w, r)
			} else {
				h.publishError(gem.WithAction("get"), herr)
			}
		case h.Routes.Contacts.MatchString(uri):
			if herr = checkCancelled(r); herr == nil {
				herr = h.listContacts(ctx, w, r)
			} else {
				h.publishError(gem.WithAction("list"), herr)
			}
		case h.Routes.APIDocumentation.MatchString(uri):
			herr = h.docs(ctx, w, r)
		default:
			herr = do404(ctx, w, r)
			h.publishError(gem, herr)
		}
	case "POST":
		switch {
		// The listing operations also accept their paging state in a request
		// body, for parameter sets too large to carry on the query string.
		case h.Routes.Search.MatchString(uri):
			ctx = parseCaptureGroups(ctx, r.URL.Path, h.Routes.Search)
			if herr = checkCancelled(r); herr == nil {
				herr = h.searchContacts(ctx, w, r)
			} else {
				h.publishError(gem.WithAction("search"), herr)
			}
		case h.Routes.Contacts.MatchString(uri):
			if herr = checkCancelled(r); herr == nil {
				herr = h.listContacts(ctx, w, r)
			} else {
				h.publishError(gem.WithAction("list"), herr)
			}
		default:
			herr = do404(ctx, w, r)
			h.publishError(gem, herr)
		}
	default:
		herr = do404(ctx, w, r)
		h.publishError(gem, herr)
	}

	if herr != nil {
		sendAppErrorResponse(logger, &w, herr)
	} else {
		countOKResponse(logger)
	}
}

// ping answers liveness probes without touching any dependency.
func (h AppServer) ping(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","node":%q}`+"\n", config.NodeID)
	return nil
}

// checkCancelled honors the cancellation marker clients attach when they no
// longer want the answer. Bowing out here spares the database entirely.
func checkCancelled(r *http.Request) *AppError {
	if len(r.URL.Query().Get("_cancel")) == 0 {
		return nil
	}
	return NewAppError(StatusCancelled, nil, "Request cancelled")
}

func (h *AppServer) publishError(gem events.GEM, herr *AppError) {
	gem.Payload.StatusCode = herr.Code
	h.EventQueue.Publish(gem)
}

func (h *AppServer) publishSuccess(gem events.GEM, code int) {
	gem.Payload.StatusCode = code
	h.EventQueue.Publish(gem)
}

func newSessionID() string {
	return config.RandomID()
}

// ContextWithSession puts the sessionID on the context, used for log correlation
func ContextWithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionID, sessionID)
}

// ContextWithGEM attaches a GEM to the context object.
func ContextWithGEM(ctx context.Context, gem events.GEM) context.Context {
	return context.WithValue(ctx, GEMVal, gem)
}

// ContextWithDAO puts the DAO on the context so handlers can reach the database
func ContextWithDAO(ctx context.Context, d dao.DAO) context.Context {
	return context.WithValue(ctx, DAO, d)
}

// ContextWithLogger puts the logger on the context
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, Logger, logger)
}

// DAOFromContext returns the DAO associated with the context
func DAOFromContext(ctx context.Context) dao.DAO {
	d, ok := ctx.Value(DAO).(dao.DAO)
	if !ok {
		// Should be impossible: setting these up are preconditions in ServeHTTP
		LoggerFromContext(ctx).Error("cannot get dao from context")
	}
	return d
}

// GEMFromContext extracts a GEM from a context, if set.
func GEMFromContext(ctx context.Context) (events.GEM, bool) {
	gem, ok := ctx.Value(GEMVal).(events.GEM)
	return gem, ok
}

// SessionIDFromContext extracts the session id from the context, if set
func SessionIDFromContext(ctx context.Context) string {
	sessionID, ok := ctx.Value(SessionID).(string)
	if !ok {
		return "unknown"
	}
	return sessionID
}

// LoggerFromContext gets an uber zap logger from our context
func LoggerFromContext(ctx context.Context) *zap.Logger {
	logger, ok := ctx.Value(Logger).(*zap.Logger)
	if !ok {
		logger = config.RootLogger
	}
	return logger
}

func parseCaptureGroups(ctx context.Context, path string, regex *regexp.Regexp) context.Context {
	captured := util.GetRegexCaptureGroups(path, regex)
	return context.WithValue(ctx, CaptureGroupsVal, captured)
}

// CaptureGroupsFromContext extracts the capture groups from a context, if set
func CaptureGroupsFromContext(ctx context.Context) (map[string]string, bool) {
	captured, ok := ctx.Value(CaptureGroupsVal).(map[string]string)
	return captured, ok
}

func do404(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {
	msg := fmt.Sprintf("Resource not found: %s %s", r.Method, r.URL.Path)
	return NewAppError(http.StatusNotFound, nil, msg)
}

// jsonResponse writes a response, and should be called for all HTTP handlers that return JSON.
func jsonResponse(w http.ResponseWriter, i interface{}) {
	w.Header().Set("Content-Type", "application/json")
	jsonData, _ := json.MarshalIndent(i, "", "  ")
	w.Write(jsonData)
}
