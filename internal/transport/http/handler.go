package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gesher/internal/auth"
	"gesher/internal/profile"
	id "gesher/pkg/domain"
	dErrors "gesher/pkg/domain-errors"
	"gesher/pkg/platform/httputil"
	"gesher/pkg/platform/sentinel"
	"gesher/pkg/requestcontext"
)

// Service defines the interface for authentication operations.
type Service interface {
	SignIn(ctx context.Context, creds auth.Credentials) (*auth.SignInResult, error)
	Register(ctx context.Context, reg auth.Registration) (*auth.RegisterResult, error)
	SignOut(ctx context.Context) error
}

// TokenIssuer mints session tokens for authenticated phones.
type TokenIssuer interface {
	Generate(phone id.Phone) (string, error)
}

// AdminChecker reports whether a phone carries admin authority.
type AdminChecker interface {
	IsAdmin(rawPhone string) bool
}

// Handler wires authentication endpoints to the auth service.
type Handler struct {
	service  Service
	profiles profile.Store
	tokens   TokenIssuer
	admins   AdminChecker
	logger   *slog.Logger
}

// New constructs an auth handler with its dependencies.
func New(service Service, profiles profile.Store, tokens TokenIssuer, admins AdminChecker, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		profiles: profiles,
		tokens:   tokens,
		admins:   admins,
		logger:   logger,
	}
}

// Register mounts the public endpoints. Protected endpoints are mounted
// separately so the router can wrap them in the session middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/signin", h.HandleSignIn)
	r.Post("/auth/register", h.HandleRegister)
}

// RegisterProtected mounts endpoints that require a session token.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/auth/signout", h.HandleSignOut)
	r.Get("/auth/session", h.HandleSession)
	r.Get("/auth/admin", h.HandleAdminCheck)
}

type signInRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Phone        string `json:"phone"`
	DisplayPhone string `json:"display_phone"`
	FirstName    string `json:"first_name,omitempty"`
	FullName     string `json:"full_name,omitempty"`
	IsAdmin      bool   `json:"is_admin"`
	Token        string `json:"token,omitempty"`
}

// HandleSignIn handles POST /auth/signin requests.
func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.Decode[signInRequest](w, r)
	if !ok {
		return
	}

	result, err := h.service.SignIn(ctx, auth.Credentials{
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "sign-in rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	token, err := h.tokens.Generate(result.Phone)
	if err != nil {
		h.logger.ErrorContext(ctx, "session token generation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to establish session"))
		return
	}

	h.logger.InfoContext(ctx, "sign-in complete",
		"request_id", requestID,
		"stage", result.Stage,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, h.sessionBody(ctx, result.Phone, token))
}

type registerRequest struct {
	Phone      string `json:"phone"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Password   string `json:"password"`
	IsResident bool   `json:"is_resident"`
}

// HandleRegister handles POST /auth/register requests.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[registerRequest](w, r)
	if !ok {
		return
	}

	result, err := h.service.Register(ctx, auth.Registration{
		Phone:      req.Phone,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Password:   req.Password,
		IsResident: req.IsResident,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "registration rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	token, err := h.tokens.Generate(result.Phone)
	if err != nil {
		h.logger.ErrorContext(ctx, "session token generation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to establish session"))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, h.sessionBody(ctx, result.Phone, token))
}

// HandleSignOut handles POST /auth/signout requests.
func (h *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.service.SignOut(ctx); err != nil {
		h.logger.ErrorContext(ctx, "sign-out failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSession handles GET /auth/session requests. It resolves the current
// view for the token's phone; a missing profile still yields a bare-phone
// session rather than an error.
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	phone := requestcontext.Phone(ctx)
	if phone.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, h.sessionBody(ctx, phone, ""))
}

// HandleAdminCheck handles GET /auth/admin requests.
func (h *Handler) HandleAdminCheck(w http.ResponseWriter, r *http.Request) {
	phone := requestcontext.Phone(r.Context())
	if phone.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{
		"is_admin": h.admins.IsAdmin(phone.String()),
	})
}

func (h *Handler) sessionBody(ctx context.Context, phone id.Phone, token string) sessionResponse {
	body := sessionResponse{
		Phone:        phone.String(),
		DisplayPhone: phone.Display(),
		IsAdmin:      h.admins.IsAdmin(phone.String()),
		Token:        token,
	}

	p, err := h.profiles.Get(ctx, phone)
	switch {
	case err == nil:
		body.FirstName = p.FirstName
		body.FullName = p.FullName()
	case errors.Is(err, sentinel.ErrNotFound):
		// Legacy holders have no profile yet; the bare phone is the view.
	default:
		h.logger.ErrorContext(ctx, "profile lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	return body
}
