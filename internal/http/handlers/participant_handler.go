package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nthung-2k5/eventsphere/internal/domain"
	"github.com/nthung-2k5/eventsphere/internal/http/response"
	"github.com/nthung-2k5/eventsphere/internal/service"
)

type ParticipantHandler struct {
	Auth         service.AuthService
	Events       service.EventService
	Feedback     service.FeedbackService
	CheckIn      service.CheckInService
	Certificates service.CertificateService
}

func NewParticipantHandler(
	auth service.AuthService,
	ev service.EventService,
	fb service.FeedbackService,
	ci service.CheckInService,
	certs service.CertificateService,
) *ParticipantHandler {
	return &ParticipantHandler{Auth: auth, Events: ev, Feedback: fb, CheckIn: ci, Certificates: certs}
}

// Routes expects RequireSession and RequireArea(participant) to be applied by the caller.
func (h *ParticipantHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/events", h.registeredEvents)
	r.Post("/events/{id}/register", h.register)
	r.Post("/events/{id}/feedback", h.submitFeedback)
	r.Post("/events/{id}/feedback/{feedbackID}/helpful", h.markHelpful)
	r.Post("/events/{id}/qrcode", h.qrCode)
	r.Get("/certificates", h.certificates)
	return r
}

func (h *ParticipantHandler) registeredEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.Events.ListRegistered(r.Context(), actor(r).Username)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"items": list})
}

func (h *ParticipantHandler) register(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	user, added, err := h.Auth.RegisterEvent(r.Context(), actor(r).Username, id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	response.JSON(w, status, map[string]any{
		"added": added,
		"user":  user.ToProfile(),
	})
}

func (h *ParticipantHandler) submitFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	var in domain.SubmitFeedbackRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	fb, err := h.Feedback.Submit(r.Context(), actor(r).Username, id, &in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, fb)
}

func (h *ParticipantHandler) markHelpful(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	fb, err := h.Feedback.MarkHelpful(r.Context(), actor(r).Username, id, chi.URLParam(r, "feedbackID"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, fb)
}

func (h *ParticipantHandler) qrCode(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	qr, err := h.CheckIn.Generate(r.Context(), actor(r).Username, id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, qr)
}

func (h *ParticipantHandler) certificates(w http.ResponseWriter, r *http.Request) {
	list, err := h.Certificates.ListForParticipant(r.Context(), actor(r).Username)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"items": list})
}
