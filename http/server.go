package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/fwojciec/pricewatch"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// DefaultRequestsPerSecond is the per-client API request rate.
const DefaultRequestsPerSecond = 5

// ShutdownTimeout bounds graceful shutdown of the API server.
const ShutdownTimeout = 10 * time.Second

// Server serves the tracked-URL, history and compare API.
type Server struct {
	router *mux.Router

	URLs    pricewatch.TrackedURLService
	History pricewatch.HistoryService
	Checker pricewatch.PriceChecker
	Logger  *slog.Logger

	// AllowedOrigins lists the CORS origins. Empty allows none.
	AllowedOrigins []string
	// RequestsPerSecond limits each client. Zero uses DefaultRequestsPerSecond.
	RequestsPerSecond float64
}

// NewServer creates a Server. Services are assigned before Handler is used.
func NewServer() *Server {
	s := &Server{router: mux.NewRouter()}

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/urls", s.handleListURLs).Methods(http.MethodGet)
	api.HandleFunc("/urls", s.handleAddURL).Methods(http.MethodPost)
	api.HandleFunc("/urls", s.handleUpdateURL).Methods(http.MethodPut)
	api.HandleFunc("/urls", s.handleDeleteURL).Methods(http.MethodDelete)
	api.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/compare", s.handleCompare).Methods(http.MethodPost)

	return s
}

// Handler returns the router wrapped in the CORS and rate limit middleware.
func (s *Server) Handler() http.Handler {
	rps := s.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	lmt := tollbooth.NewLimiter(rps, nil)
	lmt.SetMessageContentType("application/json")
	lmt.SetMessage(`{"error":"Too many requests."}`)

	c := cors.New(cors.Options{
		AllowedOrigins: s.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(tollbooth.LimitHandler(lmt, s.router))
}

// ListenAndServe serves on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger().Info("api listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListURLs(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("source"); raw != "" {
		source, err := pricewatch.ParseSource(raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		urls, err := s.URLs.FindURLsBySource(r.Context(), source)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if urls == nil {
			urls = []string{}
		}
		s.writeJSON(w, http.StatusOK, []pricewatch.SourceURLs{{Source: source, URLs: urls}})
		return
	}

	groups, err := s.URLs.FindAllURLs(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if groups == nil {
		groups = []pricewatch.SourceURLs{}
	}
	s.writeJSON(w, http.StatusOK, groups)
}

type urlRequest struct {
	Source string `json:"source"`
	URL    string `json:"url"`
	NewURL string `json:"newUrl,omitempty"`
}

// source resolves the request source, inferring it from the URL host when
// omitted.
func (req *urlRequest) source() (pricewatch.Source, error) {
	if req.Source != "" {
		return pricewatch.ParseSource(req.Source)
	}
	return pricewatch.SourceFromURL(req.URL)
}

func (s *Server) decodeURLRequest(w http.ResponseWriter, r *http.Request) (*urlRequest, pricewatch.Source, bool) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, pricewatch.Errorf(pricewatch.EINVALID, "Invalid JSON body."))
		return nil, "", false
	}
	if req.URL == "" {
		s.writeError(w, r, pricewatch.Errorf(pricewatch.EINVALID, "URL required."))
		return nil, "", false
	}
	source, err := req.source()
	if err != nil {
		s.writeError(w, r, err)
		return nil, "", false
	}
	return &req, source, true
}

func (s *Server) handleAddURL(w http.ResponseWriter, r *http.Request) {
	req, source, ok := s.decodeURLRequest(w, r)
	if !ok {
		return
	}

	added, err := s.URLs.AddURL(r.Context(), source, req.URL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	s.writeJSON(w, status, map[string]any{"source": source, "url": req.URL, "added": added})
}

func (s *Server) handleUpdateURL(w http.ResponseWriter, r *http.Request) {
	req, source, ok := s.decodeURLRequest(w, r)
	if !ok {
		return
	}
	if req.NewURL == "" {
		s.writeError(w, r, pricewatch.Errorf(pricewatch.EINVALID, "New URL required."))
		return
	}

	if err := s.URLs.UpdateURL(r.Context(), source, req.URL, req.NewURL); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"source": source, "url": req.NewURL})
}

func (s *Server) handleDeleteURL(w http.ResponseWriter, r *http.Request) {
	req, source, ok := s.decodeURLRequest(w, r)
	if !ok {
		return
	}

	if err := s.URLs.DeleteURL(r.Context(), source, req.URL); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter pricewatch.HistoryFilter
	if url := q.Get("url"); url != "" {
		filter.URL = &url
	}
	if raw := q.Get("source"); raw != "" {
		source, err := pricewatch.ParseSource(raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		filter.Source = &source
	}
	var err error
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		s.writeError(w, r, err)
		return
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		s.writeError(w, r, err)
		return
	}

	entries, err := s.History.FindEntries(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []*pricewatch.HistoryEntry{}
	}
	s.writeJSON(w, http.StatusOK, entries)
}

type compareResult struct {
	*pricewatch.CheckResult
	Decision string `json:"decision"`
	Error    string `json:"error,omitempty"`
}

type compareResponse struct {
	Summary string          `json:"summary"`
	Results []compareResult `json:"results"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	report, err := s.Checker.CheckAll(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := compareResponse{
		Summary: report.Summary(),
		Results: make([]compareResult, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		out := compareResult{CheckResult: res}
		if res.Compared() {
			out.Decision = res.Decision.String()
		}
		if res.Err != nil {
			out.Error = pricewatch.ErrorMessage(res.Err)
		}
		resp.Results = append(resp.Results, out)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, pricewatch.Errorf(pricewatch.EINVALID, "Invalid number: %q.", raw)
	}
	return n, nil
}

// statusCodes maps application error codes to HTTP status codes.
var statusCodes = map[string]int{
	pricewatch.EINVALID:  http.StatusBadRequest,
	pricewatch.ENOTFOUND: http.StatusNotFound,
	pricewatch.ECONFLICT: http.StatusConflict,
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := pricewatch.ErrorCode(err)
	status, ok := statusCodes[code]
	if !ok {
		status = http.StatusInternalServerError
		s.logger().Error("api request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": pricewatch.ErrorMessage(err)})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger().Debug("writing response", "err", err)
	}
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}
