package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nthung-2k5/eventsphere/internal/domain"
	mw "github.com/nthung-2k5/eventsphere/internal/http/middleware"
	"github.com/nthung-2k5/eventsphere/internal/http/response"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.BadRequest(w, "invalid json")
		return false
	}
	return true
}

func eventIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "invalid event id")
		return 0, false
	}
	return id, true
}

// actor is always present behind RequireSession.
func actor(r *http.Request) domain.Actor {
	a, _ := mw.ActorFrom(r)
	return a
}

func eventFilter(r *http.Request) (domain.EventFilter, domain.Page, bool) {
	q := r.URL.Query()
	f := domain.EventFilter{
		Category:   q.Get("category"),
		Department: q.Get("department"),
		Organizer:  q.Get("organizer"),
		Search:     q.Get("search"),
	}
	if v := q.Get("status"); v != "" {
		s, ok := domain.ParseEventStatus(v)
		if !ok {
			return f, domain.Page{}, false
		}
		f.Status = s
	}
	if v := q.Get("timing"); v != "" {
		t, ok := domain.ParseTiming(v)
		if !ok {
			return f, domain.Page{}, false
		}
		f.Timing = t
	}
	var p domain.Page
	p.Number, _ = strconv.Atoi(q.Get("page"))
	p.Size, _ = strconv.Atoi(q.Get("pageSize"))
	return f, p, true
}
