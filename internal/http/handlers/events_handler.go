package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nthung-2k5/eventsphere/internal/domain"
	"github.com/nthung-2k5/eventsphere/internal/http/response"
	"github.com/nthung-2k5/eventsphere/internal/service"
)

// PublicHandler serves the anonymous routes: the approved catalogue, feedback
// and the two verification endpoints.
type PublicHandler struct {
	Events       service.EventService
	Feedback     service.FeedbackService
	CheckIn      service.CheckInService
	Certificates service.CertificateService
}

func NewPublicHandler(ev service.EventService, fb service.FeedbackService, ci service.CheckInService, certs service.CertificateService) *PublicHandler {
	return &PublicHandler{Events: ev, Feedback: fb, CheckIn: ci, Certificates: certs}
}

func (h *PublicHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/events", h.listEvents)
	r.Get("/events/{id}", h.getEvent)
	r.Get("/events/{id}/feedback", h.listFeedback)
	r.Get("/events/{id}/feedback/stats", h.feedbackStats)
	r.Post("/qrcodes/validate", h.validateQRCode)
	r.Get("/certificates/verify/{code}", h.verifyCertificate)
	return r
}

func (h *PublicHandler) listEvents(w http.ResponseWriter, r *http.Request) {
	f, p, ok := eventFilter(r)
	if !ok {
		response.BadRequest(w, "invalid status or timing filter")
		return
	}
	f.Status = domain.EventApproved
	page, err := h.Events.ListEvents(r.Context(), f, p)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

// approved loads an event visible to anonymous callers. Pending and rejected
// events read as missing.
func (h *PublicHandler) approved(w http.ResponseWriter, r *http.Request) (*domain.EventView, bool) {
	id, ok := eventIDParam(w, r)
	if !ok {
		return nil, false
	}
	ev, err := h.Events.GetEvent(r.Context(), id)
	if err == nil && ev.Status != domain.EventApproved {
		err = domain.ErrNotFound
	}
	if err != nil {
		response.FromError(w, r, err)
		return nil, false
	}
	return ev, true
}

func (h *PublicHandler) getEvent(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.approved(w, r)
	if !ok {
		return
	}
	response.JSON(w, http.StatusOK, ev)
}

func (h *PublicHandler) listFeedback(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.approved(w, r)
	if !ok {
		return
	}
	list, err := h.Feedback.List(r.Context(), ev.ID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"items":   list,
		"average": domain.AverageRating(list),
	})
}

func (h *PublicHandler) feedbackStats(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.approved(w, r)
	if !ok {
		return
	}
	stats, err := h.Feedback.Stats(r.Context(), ev.ID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, stats)
}

func (h *PublicHandler) validateQRCode(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Data string `json:"data"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	response.JSON(w, http.StatusOK, h.CheckIn.Inspect(in.Data))
}

func (h *PublicHandler) verifyCertificate(w http.ResponseWriter, r *http.Request) {
	cert, err := h.Certificates.Verify(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, cert)
}
