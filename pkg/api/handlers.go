package api

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ssargent/actfast/pkg/actigraph"
	"github.com/ssargent/actfast/pkg/logstream"
	"github.com/ssargent/actfast/pkg/metrics"
	"github.com/ssargent/actfast/pkg/reader"
	"github.com/ssargent/actfast/pkg/sensors"
	"github.com/ssargent/actfast/pkg/storage"
	"github.com/ssargent/actfast/pkg/timing"
)

// Server holds the API server state
type Server struct {
	store   IResultStore
	config  ServerConfig
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewServer creates a new API server
func NewServer(store IResultStore, config ServerConfig, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewMetrics(prometheus.NewRegistry())
	}
	return &Server{
		store:   store,
		config:  config,
		metrics: m,
		logger:  logger,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

func queryBool(r *http.Request, name string, def bool) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}

func queryInt64(r *http.Request, name string, def int64) (int64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

// decodeStatus maps a decode failure to an HTTP status
func decodeStatus(err error) int {
	switch {
	case errors.Is(err, reader.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, reader.ErrIO),
		errors.Is(err, logstream.ErrFraming),
		errors.Is(err, timing.ErrConfig),
		errors.Is(err, sensors.ErrShapeMismatch),
		errors.Is(err, sensors.ErrColumnType),
		errors.Is(err, actigraph.ErrMissingLog):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// handleDecode decodes the request body. Query parameters: store, name,
// strict, hex_pages.
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	store, err := queryBool(r, "store", false)
	if err != nil {
		sendError(w, "Invalid store parameter", http.StatusBadRequest)
		return
	}
	strict, err := queryBool(r, "strict", s.config.Strict)
	if err != nil {
		sendError(w, "Invalid strict parameter", http.StatusBadRequest)
		return
	}
	hexPages, err := queryBool(r, "hex_pages", s.config.HexPages)
	if err != nil {
		sendError(w, "Invalid hex_pages parameter", http.StatusBadRequest)
		return
	}

	body := r.Body
	if s.config.MaxUploadSize > 0 {
		body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadSize)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	format := reader.Sniff(data).String()
	res, err := reader.DecodeBytes(data, reader.Options{
		Logger:   s.logger,
		Recorder: s.metrics,
		Strict:   strict,
		HexPages: hexPages,
	})
	s.metrics.RecordDecode(format, err == nil, time.Since(start))
	if err != nil {
		s.logger.Warn("decode failed", zap.String("format", format), zap.Error(err))
		sendError(w, err.Error(), decodeStatus(err))
		return
	}

	resp := DecodeResponse{Result: res}
	if store {
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "upload"
		}
		info, err := s.store.Save(name, res)
		s.metrics.RecordStoreOperation("save", err == nil)
		if err != nil {
			s.logger.Error("store result", zap.Error(err))
			sendError(w, "Failed to store result", http.StatusInternalServerError)
			return
		}
		resp.Info = &info
		s.refreshStoredResults()
	}

	sendSuccess(w, resp)
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List()
	s.metrics.RecordStoreOperation("list", err == nil)
	if err != nil {
		sendError(w, "Failed to list results", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []storage.ResultInfo{}
	}
	s.metrics.SetStoredResults(len(list))
	sendSuccess(w, list)
}

// handleGetResult returns a stored result, optionally restricted to the
// timestamps in [from, to).
func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	from, err := queryInt64(r, "from", math.MinInt64)
	if err != nil {
		sendError(w, "Invalid from parameter", http.StatusBadRequest)
		return
	}
	to, err := queryInt64(r, "to", math.MaxInt64)
	if err != nil {
		sendError(w, "Invalid to parameter", http.StatusBadRequest)
		return
	}

	res, err := s.store.Get(id)
	s.metrics.RecordStoreOperation("get", err == nil || errors.Is(err, storage.ErrNotFound))
	if errors.Is(err, storage.ErrNotFound) {
		sendError(w, "Result not found", http.StatusNotFound)
		return
	}
	if err != nil {
		sendError(w, "Failed to load result", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Has("from") || r.URL.Query().Has("to") {
		res, err = sensors.WindowResult(res, from, to)
		if err != nil {
			sendError(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	sendSuccess(w, res)
}

func (s *Server) handleDeleteResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := s.store.Delete(id)
	s.metrics.RecordStoreOperation("delete", err == nil || errors.Is(err, storage.ErrNotFound))
	if errors.Is(err, storage.ErrNotFound) {
		sendError(w, "Result not found", http.StatusNotFound)
		return
	}
	if err != nil {
		sendError(w, "Failed to delete result", http.StatusInternalServerError)
		return
	}

	s.refreshStoredResults()
	sendSuccess(w, map[string]string{"message": "Result deleted successfully"})
}

func (s *Server) refreshStoredResults() {
	list, err := s.store.List()
	if err != nil {
		s.logger.Warn("count stored results", zap.Error(err))
		return
	}
	s.metrics.SetStoredResults(len(list))
}
