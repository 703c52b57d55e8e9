package handlers

import (
	"net/http"
	"strconv"
	"time"

	"ahkneemay/application/commands"
	"ahkneemay/application/commands/bus"
	"ahkneemay/application/queries"
	querybus "ahkneemay/application/queries/bus"
	"ahkneemay/domain/core/entities"
	"ahkneemay/interfaces/http/rest/middleware"
	"ahkneemay/pkg/auth"
	"ahkneemay/pkg/common"
	pkgerrors "ahkneemay/pkg/errors"
	"ahkneemay/pkg/utils"

	"go.uber.org/zap"
)

// MsgLoggedOut is returned after logout
const MsgLoggedOut = "You have been logged out."

const maxCredentialsBytes = 16 << 10

// SignUpRequest represents the sign-up form. Website is a honeypot field.
type SignUpRequest struct {
	Username        string `json:"username" validate:"max=256"`
	Password        string `json:"password" validate:"max=1024"`
	PasswordConfirm string `json:"passwordConfirm" validate:"max=1024"`
	Website         string `json:"website"`
}

// LoginRequest represents the login form
type LoginRequest struct {
	Username string `json:"username" validate:"max=256"`
	Password string `json:"password" validate:"max=1024"`
	Remember bool   `json:"remember"`
}

// SessionResponse is returned when a session is opened
type SessionResponse struct {
	Message   string    `json:"message,omitempty"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthHandler handles account and session endpoints
type AuthHandler struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	tokens       *auth.TokenManager
	errHandler   *pkgerrors.ErrorHandler
	secureCookie bool
	logger       *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	tokens *auth.TokenManager,
	errHandler *pkgerrors.ErrorHandler,
	secureCookie bool,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		tokens:       tokens,
		errHandler:   errHandler,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// SignUp handles POST /api/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if common.IsJSON(r) {
		if err := common.ParseJSONBody(w, r, &req, maxCredentialsBytes); err != nil {
			h.errHandler.Handle(w, r, pkgerrors.NewValidationError("Invalid request body").WithCause(err))
			return
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxCredentialsBytes)
		req = SignUpRequest{
			Username:        r.FormValue("username"),
			Password:        r.FormValue("password"),
			PasswordConfirm: r.FormValue("passwordConfirm"),
			Website:         r.FormValue("website"),
		}
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	message, err := h.commandBus.Send(r.Context(), commands.SignUpCommand{
		Username:        req.Username,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Honeypot:        req.Website,
	})
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	h.openSession(w, r, http.StatusCreated, message, req.Username, false)
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if common.IsJSON(r) {
		if err := common.ParseJSONBody(w, r, &req, maxCredentialsBytes); err != nil {
			h.errHandler.Handle(w, r, pkgerrors.NewValidationError("Invalid request body").WithCause(err))
			return
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxCredentialsBytes)
		remember, _ := strconv.ParseBool(r.FormValue("remember"))
		req = LoginRequest{
			Username: r.FormValue("username"),
			Password: r.FormValue("password"),
			Remember: remember || r.FormValue("remember") == "on",
		}
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	user, err := querybus.Ask[*entities.User](r.Context(), h.queryBus, queries.AuthenticateQuery{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	h.openSession(w, r, http.StatusOK, "", user.Username, req.Remember)
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w)
	common.RespondMessage(w, http.StatusOK, MsgLoggedOut)
}

// Me handles GET /api/me. A session whose user no longer exists is closed.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := querybus.Ask[*entities.User](r.Context(), h.queryBus, queries.GetUserQuery{
		Username: auth.Username(r.Context()),
	})
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			h.clearCookie(w)
			h.errHandler.Handle(w, r, pkgerrors.NewUnauthorizedError(commands.MsgLoginRequired))
			return
		}
		h.errHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, user)
}

// openSession issues a token and sets the session cookie. Only remembered
// logins get a persistent cookie.
func (h *AuthHandler) openSession(w http.ResponseWriter, r *http.Request, status int, message, username string, remember bool) {
	token, expiresAt, err := h.tokens.Issue(username)
	if err != nil {
		h.errHandler.Handle(w, r, pkgerrors.NewInternalError("failed to issue session token").WithCause(err))
		return
	}

	cookie := &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.Expires = expiresAt
		cookie.MaxAge = int(h.tokens.TTL().Seconds())
	}
	http.SetCookie(w, cookie)

	h.logger.Info("Session opened",
		zap.String("username", username),
		zap.Bool("remember", remember),
	)

	common.RespondJSON(w, status, SessionResponse{
		Message:   message,
		Username:  username,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
