package handlers

import (
	"Stockpile/internal/auth"
	"Stockpile/internal/model"
	"Stockpile/internal/service"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// UserHandler регистрация и вход.
type UserHandler struct {
	UserService *service.UserService
	Tokens      *auth.TokenManager
	Logger      *zap.SugaredLogger
}

func NewUserHandler(userService *service.UserService, tokens *auth.TokenManager, logger *zap.SugaredLogger) *UserHandler {
	return &UserHandler{UserService: userService, Tokens: tokens, Logger: logger}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Register регистрация пользователя
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("Register: invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.UserService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, "Register", req.Username, err)
		return
	}

	h.respondWithToken(w, user)
}

// Login вход пользователя
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("Login: invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.UserService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, "Login", req.Username, err)
		return
	}

	h.respondWithToken(w, user)
}

func (h *UserHandler) fail(w http.ResponseWriter, op, username string, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Errorw(op+": service error", "username", username, "error", err)
	} else {
		h.Logger.Infow(op+": rejected", "username", username, "error", err)
	}
	writeError(w, status, msg)
}

func (h *UserHandler) respondWithToken(w http.ResponseWriter, user *model.User) {
	token, err := h.Tokens.Issue(user)
	if err != nil {
		h.Logger.Errorw("Issue token failed", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}
