package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nthung-2k5/eventsphere/internal/domain"
	mw "github.com/nthung-2k5/eventsphere/internal/http/middleware"
	"github.com/nthung-2k5/eventsphere/internal/http/response"
	"github.com/nthung-2k5/eventsphere/internal/service"
)

type AuthHandler struct {
	Auth    service.AuthService
	Session func(http.Handler) http.Handler
	Limiter func(http.Handler) http.Handler
}

func NewAuthHandler(auth service.AuthService, session, limiter func(http.Handler) http.Handler) *AuthHandler {
	return &AuthHandler{Auth: auth, Session: session, Limiter: limiter}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(h.Limiter).Post("/register", h.register)
	r.With(h.Limiter).Post("/login", h.login)
	r.Group(func(r chi.Router) {
		r.Use(h.Session)
		r.Post("/logout", h.logout)
		r.Get("/me", h.me)
	})
	return r
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var in domain.RegisterRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	res, err := h.Auth.Register(r.Context(), &in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, res)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var in domain.LoginRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	res, err := h.Auth.Login(r.Context(), &in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Logout(r.Context(), mw.SessionIDFrom(r)); err != nil {
		response.FromError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.Auth.GetUser(r.Context(), actor(r).Username)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, u.ToProfile())
}
