package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/diewo77/crm-documents/auth"
	"github.com/diewo77/crm-documents/httpx"
	"github.com/diewo77/crm-documents/i18n"
	"github.com/diewo77/crm-documents/internal/logging"
	"github.com/diewo77/crm-documents/internal/middleware"
	"github.com/diewo77/crm-documents/validation"
)

type AuthHandler struct {
	Users    *auth.Directory
	Sessions *auth.Sessions
	Log      *slog.Logger
}

func NewAuthHandler(users *auth.Directory, sessions *auth.Sessions, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = logging.Discard()
	}
	return &AuthHandler{Users: users, Sessions: sessions, Log: log}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login: POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.Decode(r, &req); err != nil {
		badRequest(w, r, "invalid_json")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	v := validation.Violations{}
	validation.Required("username", req.Username, v)
	validation.Required("password", req.Password, v)
	lang := middleware.LangFrom(r)
	if !v.Empty() {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "validation_failed", i18n.T(lang, "validation_failed"), v)
		return
	}
	u, ok := h.Users.Authenticate(req.Username, req.Password)
	if !ok {
		h.Log.WarnContext(r.Context(), "login rejected", "username", req.Username)
		httpx.JSONErrorMessage(w, http.StatusUnauthorized, "invalid_credentials", i18n.T(lang, "invalid_credentials"), nil)
		return
	}
	if err := h.Sessions.CreateSession(w, u); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	h.Log.InfoContext(r.Context(), "login", "username", u.Username)
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "user": u})
}

// Logout: POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Session: GET /api/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, map[string]bool{"authenticated": false})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"authenticated": true, "user": u})
}
