// Package handler implements the HTTP and WebSocket handlers of the
// estimation service.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/gorilla/websocket"
	"github.com/m-lab/go/warnonerror"

	"github.com/m-lab/pprate/data"
	"github.com/m-lab/pprate/logging"
	"github.com/m-lab/pprate/metadata"
	"github.com/m-lab/pprate/metrics"
	"github.com/m-lab/pprate/pprate"
	"github.com/m-lab/pprate/redis"
	"github.com/m-lab/pprate/results"
	"github.com/m-lab/pprate/spec"
)

// RecordStore keeps records for later lookup. *redis.Client implements it.
type RecordStore interface {
	SetRecord(ctx context.Context, rec *data.CapacityRecord, ttl time.Duration) error
	GetRecord(ctx context.Context, uuid string) (*data.CapacityRecord, error)
}

// Handler serves estimation requests.
type Handler struct {
	// Config is the estimator configuration.
	Config pprate.Config

	// Upgrader is the WebSocket upgrader.
	Upgrader websocket.Upgrader

	// DataDir is the directory where records are saved. Records are not
	// saved when empty.
	DataDir  string
	Compress bool

	// Store is optional. Without it lookups always fail.
	Store RecordStore
}

// Request is the body of an estimation request. Sizes selects the
// variable-size mode and must then have one entry per inter-arrival time.
type Request struct {
	IATs  []float64 `json:"iats"`
	Size  int       `json:"size,omitempty"`
	Sizes []int     `json:"sizes,omitempty"`
}

// errBadRequest marks requests that cannot be decoded.
var errBadRequest = errors.New("bad request")

func decode(b []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(b, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if req.Size != 0 && req.Sizes != nil {
		return nil, fmt.Errorf("%w: both size and sizes given", errBadRequest)
	}
	return &req, nil
}

// status maps an estimation error to the HTTP status code.
func status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, errBadRequest), errors.Is(err, pprate.ErrInvalidInput):
		return http.StatusBadRequest
	case pprate.IsEstimationError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// estimate runs one estimation and archives its record.
func (h *Handler) estimate(ctx context.Context, source spec.Source, req *Request, md []metadata.NameValue) (*data.CapacityRecord, error) {
	in := pprate.Input{IATs: req.IATs, Size: req.Size, Sizes: req.Sizes}
	rec := data.NewRecord(data.Request{
		Source:   source,
		Size:     req.Size,
		Variable: in.Variable(),
		IATs:     len(req.IATs),
	})
	rec.ClientMetadata = md

	r, err := h.run(source, in)
	rec.Finish(r, err)
	metrics.Observe(source, r, err)

	logger := logging.Logger.WithFields(log.Fields{"uuid": rec.UUID, "source": source})
	if err != nil {
		logger.WithError(err).Info("estimation failed")
	} else {
		logger.WithFields(log.Fields{
			"capacity": r.Capacity,
			"phase":    r.Phase,
		}).Debug("estimated")
	}
	if h.DataDir != "" {
		if _, serr := results.Save(h.DataDir, h.Compress, rec); serr != nil {
			logger.WithError(serr).Warn("cannot save record")
		}
	}
	if h.Store != nil {
		if serr := h.Store.SetRecord(ctx, rec, spec.ResultTTL); serr != nil {
			logger.WithError(serr).Warn("cannot store record")
		}
	}
	return rec, err
}

// run estimates in while it is counted as active.
func (h *Handler) run(source spec.Source, in pprate.Input) (*pprate.Result, error) {
	active := metrics.ActiveEstimations.WithLabelValues(string(source))
	active.Inc()
	defer active.Dec()
	return pprate.Estimate(in, h.Config)
}

func writeJSON(writer http.ResponseWriter, code int, v interface{}) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(code)
	if err := json.NewEncoder(writer).Encode(v); err != nil {
		logging.Logger.WithError(err).Warn("cannot write response")
	}
}

// warnAndClose emits message as a warning and then sends a response with
// the given code to the client using writer.
func warnAndClose(writer http.ResponseWriter, code int, message string) {
	logging.Logger.Warn(message)
	writer.Header().Set("Connection", "Close")
	writer.WriteHeader(code)
}

// Capacity handles POST requests with inter-arrival times.
func (h *Handler) Capacity(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		warnAndClose(writer, http.StatusMethodNotAllowed, "Capacity: method "+request.Method)
		return
	}
	body, err := io.ReadAll(request.Body)
	if err != nil {
		warnAndClose(writer, http.StatusBadRequest, fmt.Sprintf("Capacity: cannot read body: %s", err))
		return
	}
	req, err := decode(body)
	if err != nil {
		warnAndClose(writer, http.StatusBadRequest, fmt.Sprintf("Capacity: %s", err))
		return
	}
	md := metadata.FromQuery(request.URL.Query())
	rec, err := h.estimate(request.Context(), spec.SourceHTTP, req, md)
	writeJSON(writer, status(err), rec)
}

// Lookup returns a stored record by UUID.
func (h *Handler) Lookup(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		warnAndClose(writer, http.StatusMethodNotAllowed, "Lookup: method "+request.Method)
		return
	}
	uuid := strings.TrimPrefix(request.URL.Path, spec.LookupURLPrefix)
	if uuid == "" || strings.Contains(uuid, "/") || h.Store == nil {
		http.NotFound(writer, request)
		return
	}
	rec, err := h.Store.GetRecord(request.Context(), uuid)
	if errors.Is(err, redis.ErrNotFound) {
		http.NotFound(writer, request)
		return
	}
	if err != nil {
		logging.Logger.WithError(err).Warn("Lookup: store failure")
		writer.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeJSON(writer, http.StatusOK, rec)
}

// WebSocket handles estimation requests sent as WebSocket text messages.
// Each message gets one record back.
func (h *Handler) WebSocket(writer http.ResponseWriter, request *http.Request) {
	logging.Logger.Debug("WebSocket: upgrading")
	if request.Header.Get("Sec-WebSocket-Protocol") != spec.SecWebSocketProtocol {
		warnAndClose(writer, http.StatusBadRequest, "WebSocket: missing Sec-WebSocket-Protocol in request")
		return
	}
	headers := http.Header{}
	headers.Add("Sec-WebSocket-Protocol", spec.SecWebSocketProtocol)
	conn, err := h.Upgrader.Upgrade(writer, request, headers)
	if err != nil {
		// The upgrader already replied.
		logging.Logger.WithError(err).Warn("WebSocket: cannot UPGRADE to WebSocket")
		return
	}
	defer warnonerror.Close(conn, "WebSocket: ignoring conn.Close result")
	conn.SetReadLimit(spec.MaxMessageSize)
	md := metadata.FromQuery(request.URL.Query())
	ctx := request.Context()
	for {
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Logger.WithError(err).Debug("WebSocket: read failed")
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		var rec *data.CapacityRecord
		req, err := decode(msg)
		if err != nil {
			rec = data.NewRecord(data.Request{Source: spec.SourceWebSocket})
			rec.Finish(nil, err)
		} else {
			rec, _ = h.estimate(ctx, spec.SourceWebSocket, req, md)
		}
		if err := conn.WriteJSON(rec); err != nil {
			logging.Logger.WithError(err).Debug("WebSocket: write failed")
			return
		}
	}
}

// Register adds the handlers to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc(spec.CapacityURLPath, h.Capacity)
	mux.HandleFunc(spec.LookupURLPrefix, h.Lookup)
	mux.HandleFunc(spec.WebSocketURLPath, h.WebSocket)
}
