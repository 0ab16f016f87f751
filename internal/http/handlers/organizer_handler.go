package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nthung-2k5/eventsphere/internal/domain"
	"github.com/nthung-2k5/eventsphere/internal/http/response"
	"github.com/nthung-2k5/eventsphere/internal/service"
)

type OrganizerHandler struct {
	Events       service.EventService
	CheckIn      service.CheckInService
	Certificates service.CertificateService
}

func NewOrganizerHandler(ev service.EventService, ci service.CheckInService, certs service.CertificateService) *OrganizerHandler {
	return &OrganizerHandler{Events: ev, CheckIn: ci, Certificates: certs}
}

// Routes expects RequireSession and RequireArea(organizer) to be applied by the caller.
func (h *OrganizerHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/events", h.list)
	r.Post("/events", h.create)
	r.Patch("/events/{id}", h.update)
	r.Delete("/events/{id}", h.delete)
	r.Get("/events/{id}/qrcodes", h.qrCodes)
	r.Get("/events/{id}/certificates", h.certificates)
	r.Post("/events/{id}/certificates", h.issueCertificate)
	r.Post("/checkin", h.checkInByPayload)
	r.Post("/qrcodes/{qrID}/checkin", h.checkIn)
	return r
}

// list shows the caller's own events in every status. Admins see everyone's
// unless they filter by organizer.
func (h *OrganizerHandler) list(w http.ResponseWriter, r *http.Request) {
	f, p, ok := eventFilter(r)
	if !ok {
		response.BadRequest(w, "invalid status or timing filter")
		return
	}
	a := actor(r)
	if a.Role != domain.RoleAdmin {
		f.Organizer = a.Username
	}
	page, err := h.Events.ListEvents(r.Context(), f, p)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

func (h *OrganizerHandler) create(w http.ResponseWriter, r *http.Request) {
	var in domain.CreateEventRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	ev, err := h.Events.AddEvent(r.Context(), actor(r).Username, &in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, ev)
}

func (h *OrganizerHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	var patch domain.EventPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	ev, err := h.Events.UpdateEvent(r.Context(), actor(r), id, patch)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, ev)
}

func (h *OrganizerHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	if err := h.Events.DeleteEvent(r.Context(), actor(r), id); err != nil {
		response.FromError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrganizerHandler) qrCodes(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	list, err := h.CheckIn.ListForEvent(r.Context(), actor(r), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"items": list})
}

func (h *OrganizerHandler) certificates(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	list, err := h.Certificates.ListForEvent(r.Context(), actor(r), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"items": list})
}

func (h *OrganizerHandler) issueCertificate(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	var in struct {
		ParticipantID string `json:"participantId"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.ParticipantID == "" {
		response.BadRequest(w, "participantId is required")
		return
	}
	cert, err := h.Certificates.Issue(r.Context(), actor(r), id, in.ParticipantID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, cert)
}

type checkInResult struct {
	QRCode    *domain.QRCode `json:"qrCode"`
	CheckedIn bool           `json:"checkedIn"`
}

func (h *OrganizerHandler) checkInByPayload(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Data string `json:"data"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	qr, ok, err := h.CheckIn.CheckInByPayload(r.Context(), actor(r), in.Data)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, checkInResult{QRCode: qr, CheckedIn: ok})
}

func (h *OrganizerHandler) checkIn(w http.ResponseWriter, r *http.Request) {
	qr, ok, err := h.CheckIn.CheckIn(r.Context(), actor(r), chi.URLParam(r, "qrID"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, checkInResult{QRCode: qr, CheckedIn: ok})
}
