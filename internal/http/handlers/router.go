package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/nthung-2k5/eventsphere/internal/cache"
	"github.com/nthung-2k5/eventsphere/internal/domain"
	mw "github.com/nthung-2k5/eventsphere/internal/http/middleware"
	"github.com/nthung-2k5/eventsphere/internal/http/response"
	"github.com/nthung-2k5/eventsphere/internal/service"
	"github.com/nthung-2k5/eventsphere/pkg/config"
	pkgmw "github.com/nthung-2k5/eventsphere/pkg/middleware"
)

type Services struct {
	Auth         service.AuthService
	Events       service.EventService
	Feedback     service.FeedbackService
	CheckIn      service.CheckInService
	Certificates service.CertificateService
}

// NewRouter mounts the whole API under /v1 plus /healthz.
func NewRouter(svc Services, cfg *config.Config, c cache.Cache) http.Handler {
	r := chi.NewRouter()
	r.Use(pkgmw.ServiceName("eventsphere"))
	r.Use(pkgmw.RequestID)
	if cfg.Server.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(pkgmw.Logging)
	r.Use(chimw.Recoverer)
	r.Use(pkgmw.CORS(cfg.Server.AllowedOrigins))
	r.Use(pkgmw.Health)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "route not found")
	})

	session := mw.RequireSession(cfg.Auth.JWTSecret, svc.Auth)
	limiter := mw.NewRateLimiter(c, mw.RateLimitConfig{
		Requests: cfg.Auth.LoginRateLimit,
		Window:   cfg.Auth.LoginRateWindow,
		Scope:    "auth",
	}).Middleware()

	// Replays are keyed on the session, so they only apply behind the guard.
	idempotent := pkgmw.IdempotencyMiddleware(c, cfg.Auth.IdempotencyTTL, mw.SessionIDFrom)

	r.Route("/v1", func(r chi.Router) {
		r.Mount("/auth", NewAuthHandler(svc.Auth, session, limiter).Routes())
		r.Mount("/", NewPublicHandler(svc.Events, svc.Feedback, svc.CheckIn, svc.Certificates).Routes())

		area(r, "/participant", guard{session, idempotent}, domain.AreaParticipant,
			NewParticipantHandler(svc.Auth, svc.Events, svc.Feedback, svc.CheckIn, svc.Certificates).Routes())
		area(r, "/organizer", guard{session, idempotent}, domain.AreaOrganizer,
			NewOrganizerHandler(svc.Events, svc.CheckIn, svc.Certificates).Routes())
		area(r, "/admin", guard{session, idempotent}, domain.AreaAdmin,
			NewAdminHandler(svc.Auth, svc.Events, svc.Certificates).Routes())
	})
	return r
}

// guard is the per-request chain around an area: the session check runs
// before the area check, idempotent replay after it.
type guard struct {
	session    func(http.Handler) http.Handler
	idempotent func(http.Handler) http.Handler
}

func area(r chi.Router, prefix string, g guard, a domain.Area, routes chi.Router) {
	r.Route(prefix, func(r chi.Router) {
		r.Use(g.session, mw.RequireArea(a), g.idempotent)
		r.Mount("/", routes)
	})
}
