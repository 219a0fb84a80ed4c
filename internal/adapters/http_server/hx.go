package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"dineline_reviews/internal/domain"
)

// Client-side events the page's dialog controller listens for.
const (
	EventOpenEdit   = "open-edit-dialog"
	EventOpenReport = "open-report-dialog"
)

// hxResponse collects the page-level effects of one card action and turns
// them into htmx response headers. It is the card's DialogController and
// PageReloader for the lifetime of a request.
type hxResponse struct {
	mu       sync.Mutex
	triggers map[string]any
	refresh  bool
}

var (
	_ domain.DialogController = (*hxResponse)(nil)
	_ domain.PageReloader     = (*hxResponse)(nil)
)

func newHXResponse() *hxResponse { return &hxResponse{triggers: map[string]any{}} }

func (h *hxResponse) OpenEdit(_ context.Context, req domain.EditRequest) {
	h.mu.Lock()
	h.triggers[EventOpenEdit] = req
	h.mu.Unlock()
}

func (h *hxResponse) OpenReport(_ context.Context, t domain.ReportTarget) {
	h.mu.Lock()
	h.triggers[EventOpenReport] = t
	h.mu.Unlock()
}

func (h *hxResponse) Reload(context.Context) {
	h.mu.Lock()
	h.refresh = true
	h.mu.Unlock()
}

// apply writes the collected headers; call before WriteHeader.
func (h *hxResponse) apply(w http.ResponseWriter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.refresh {
		w.Header().Set("HX-Refresh", "true")
	}
	if len(h.triggers) == 0 {
		return
	}
	b, err := json.Marshal(h.triggers)
	if err != nil {
		log.Error().Err(err).Msg("marshal HX-Trigger failed")
		return
	}
	w.Header().Set("HX-Trigger", string(b))
}
