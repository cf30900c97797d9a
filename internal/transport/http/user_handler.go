package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"classquiz/internal/app"
	"classquiz/internal/domain"
)

// UserHandler exposes registration and profile routes.
type UserHandler struct {
	authn    *Authenticator
	users    *app.UserService
	validate *validator.Validate
	log      *logrus.Logger
}

func NewUserHandler(authn *Authenticator, users *app.UserService, log *logrus.Logger) *UserHandler {
	return &UserHandler{authn: authn, users: users, validate: validator.New(), log: log}
}

type registerRequest struct {
	Name  string `json:"name" validate:"required"`
	Role  string `json:"role" validate:"required,oneof=teacher student"`
	Class string `json:"class"`
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Class string `json:"class,omitempty"`
}

// Register creates (or refreshes) the caller's profile. It verifies the
// bearer token itself because the profile does not exist yet.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authn.identify(w, r)
	if !ok {
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, kindValidation, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	user, err := h.users.Register(r.Context(), identity.UID, identity.Email, app.RegisterInput{
		Name:  req.Name,
		Role:  domain.Role(req.Role),
		Class: req.Class,
	})
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	h.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user registered")
	writeJSON(w, http.StatusCreated, map[string]any{"user": viewOf(user)})
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	writeJSON(w, http.StatusOK, viewOf(principal))
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, kindValidation, "invalid request body")
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), principal, req.Name, req.Class)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "profile updated successfully", "user": viewOf(user)})
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	views := make([]userView, 0, len(users))
	for _, user := range users {
		views = append(views, viewOf(user))
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": views})
}

func viewOf(user domain.User) userView {
	return userView{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  string(user.Role),
		Class: user.Class,
	}
}
