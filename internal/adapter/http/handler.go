package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/aegis/userkit/internal/config"
	"github.com/aegis/userkit/internal/domain"
	"github.com/aegis/userkit/internal/port"
	"github.com/aegis/userkit/internal/usecase/account"
	"github.com/google/uuid"
)

type Handler struct {
	svc  *account.Service
	repo port.UserRepository
}

func NewHandler(svc *account.Service, repo port.UserRepository) *Handler {
	return &Handler{svc: svc, repo: repo}
}

// userResp never carries the password
type userResp struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Valid       bool   `json:"valid"`
}

func toResp(u *domain.User) userResp {
	return userResp{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		DisplayName: u.GetDisplayName(),
		Valid:       u.IsValid(),
	}
}

func (h *Handler) ServeVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": config.APIVersion})
}

func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"registered": h.svc.Registered()})
}

// Logging wraps next, tagging every request with an id
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set("X-Request-ID", id)
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s (%v)", id, r.Method, r.URL.Path, time.Since(start))
	})
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, errors.New("invalid user id")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, port.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, port.ErrAlreadyExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidUser):
		http.Error(w, "Invalid user data", http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
