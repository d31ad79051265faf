package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/amaumene/gowatchlist/internal/controllers"
	"github.com/amaumene/gowatchlist/internal/metrics"
	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Stream topics
const (
	TopicWatched   = "watched"
	TopicWatchlist = "watchlist"
	TopicSearch    = "search"
	TopicQuery     = "query"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamHandler pushes reactive state to websocket clients
type StreamHandler struct {
	tracking *controllers.TrackingController
	search   *controllers.SearchController
	metrics  *metrics.Metrics
	logger   *logrus.Logger
}

// NewStreamHandler creates a new stream handler. m may be nil.
func NewStreamHandler(tracking *controllers.TrackingController, search *controllers.SearchController, m *metrics.Metrics, logger *logrus.Logger) *StreamHandler {
	return &StreamHandler{
		tracking: tracking,
		search:   search,
		metrics:  m,
		logger:   logger,
	}
}

// ServeHTTP handles GET /api/stream/{topic}. The latest value is sent on
// connect, then every update, until either side goes away.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	topic := r.PathValue("topic")
	switch topic {
	case TopicWatched, TopicWatchlist, TopicSearch, TopicQuery:
	default:
		writeError(w, http.StatusNotFound, "unknown topic")
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Debug("Websocket upgrade failed")
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	logger := h.logger.WithFields(logrus.Fields{
		"topic":       topic,
		"remote_addr": r.RemoteAddr,
	})
	logger.Info("Stream client connected")
	h.trackClient(topic, 1)
	defer h.trackClient(topic, -1)

	// Keep connection alive (ignore incoming messages)
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	switch topic {
	case TopicWatched:
		err = pump(ctx, ws, h.subscribeList(ctx, models.ListWatched))
	case TopicWatchlist:
		err = pump(ctx, ws, h.subscribeList(ctx, models.ListWatchlist))
	case TopicSearch:
		err = pump(ctx, ws, h.search.Observe(ctx))
	case TopicQuery:
		err = pump(ctx, ws, h.search.ObserveQuery(ctx))
	}
	if err != nil {
		logger.WithError(err).Debug("Stream write failed")
	}

	_ = ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	logger.Info("Stream client disconnected")
}

func (h *StreamHandler) subscribeList(ctx context.Context, list models.List) <-chan []models.TrackingRecord {
	ch, err := h.tracking.Observe(ctx, list)
	if err != nil {
		closed := make(chan []models.TrackingRecord)
		close(closed)
		return closed
	}
	return ch
}

func (h *StreamHandler) trackClient(topic string, delta float64) {
	if h.metrics != nil {
		h.metrics.StreamClients.WithLabelValues(topic).Add(delta)
	}
}

// pump writes every value of ch as a JSON text message until ch closes or ctx is done
func pump[T any](ctx context.Context, ws *websocket.Conn, ch <-chan T) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case v, ok := <-ch:
			if !ok {
				return nil
			}
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteJSON(v); err != nil {
				return err
			}
		}
	}
}
