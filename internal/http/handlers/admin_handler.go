package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nthung-2k5/eventsphere/internal/domain"
	"github.com/nthung-2k5/eventsphere/internal/http/response"
	"github.com/nthung-2k5/eventsphere/internal/service"
)

type AdminHandler struct {
	Auth         service.AuthService
	Events       service.EventService
	Certificates service.CertificateService
}

func NewAdminHandler(auth service.AuthService, ev service.EventService, certs service.CertificateService) *AdminHandler {
	return &AdminHandler{Auth: auth, Events: ev, Certificates: certs}
}

// Routes expects RequireSession and RequireArea(admin) to be applied by the caller.
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/events", h.listEvents)
	r.Post("/events/{id}/approve", h.approve)
	r.Post("/events/{id}/reject", h.reject)
	r.Delete("/events/{id}", h.deleteEvent)
	r.Get("/users", h.listUsers)
	r.Patch("/users/{username}", h.updateUser)
	r.Post("/certificates/{id}/revoke", h.revokeCertificate)
	return r
}

func (h *AdminHandler) listEvents(w http.ResponseWriter, r *http.Request) {
	f, p, ok := eventFilter(r)
	if !ok {
		response.BadRequest(w, "invalid status or timing filter")
		return
	}
	page, err := h.Events.ListEvents(r.Context(), f, p)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

func (h *AdminHandler) approve(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	ev, err := h.Events.ApproveEvent(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, ev)
}

func (h *AdminHandler) reject(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	ev, err := h.Events.RejectEvent(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, ev)
}

func (h *AdminHandler) deleteEvent(w http.ResponseWriter, r *http.Request) {
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

func (h *AdminHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	var role domain.Role
	if v := r.URL.Query().Get("role"); v != "" {
		parsed, ok := domain.ParseRole(v)
		if !ok {
			response.FromError(w, r, domain.ErrInvalidRole)
			return
		}
		role = parsed
	}
	users, err := h.Auth.ListUsers(r.Context(), role)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"items": users})
}

func (h *AdminHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	var in domain.UpdateUserRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		response.FromError(w, r, err)
		return
	}
	if username == actor(r).Username {
		response.Forbidden(w, "admins cannot change their own role or status")
		return
	}

	var (
		profile *domain.Profile
		err     error
	)
	if in.Role != nil {
		if profile, err = h.Auth.SetRole(r.Context(), username, *in.Role); err != nil {
			response.FromError(w, r, err)
			return
		}
	}
	if in.IsActive != nil {
		if profile, err = h.Auth.SetActive(r.Context(), username, *in.IsActive); err != nil {
			response.FromError(w, r, err)
			return
		}
	}
	response.JSON(w, http.StatusOK, profile)
}

func (h *AdminHandler) revokeCertificate(w http.ResponseWriter, r *http.Request) {
	cert, err := h.Certificates.Revoke(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, cert)
}
