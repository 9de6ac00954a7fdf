package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/openreach/cms-server/internal/common"
	"github.com/openreach/cms-server/internal/server/models"
	"github.com/openreach/cms-server/internal/server/rbac"
	"github.com/openreach/cms-server/internal/server/services"
)

// userResponse is the outward account shape; the password hash and lockout
// internals stay inside.
type userResponse struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	Role               string     `json:"role"`
	Active             bool       `json:"active"`
	MustChangePassword bool       `json:"mustChangePassword"`
	LastLoginAt        *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		Role:               string(u.Role),
		Active:             u.Active,
		MustChangePassword: u.MustChangePassword,
		LastLoginAt:        u.LastLoginAt,
		CreatedAt:          u.CreatedAt,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken        string       `json:"accessToken"`
	MustChangePassword bool         `json:"mustChangePassword"`
	User               userResponse `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body", common.ErrValidation))
		return
	}

	res, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken:        res.AccessToken,
		MustChangePassword: res.MustChangePassword,
		User:               toUserResponse(res.User),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		unauthenticated(w)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(p))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		unauthenticated(w)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body", common.ErrValidation))
		return
	}

	if err := s.auth.ChangePassword(r.Context(), p.ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type capabilitiesResponse struct {
	Role        string   `json:"role"`
	Resources   []string `json:"resources"`
	Permissions []string `json:"permissions"`
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		unauthenticated(w)
		return
	}

	resources := rbac.AccessibleResources(p.Role)
	perms := rbac.Permissions(p.Role)

	res := capabilitiesResponse{Role: string(p.Role), Resources: []string{}, Permissions: []string{}}
	for _, r := range resources {
		res.Resources = append(res.Resources, string(r))
	}
	for _, perm := range perms {
		res.Permissions = append(res.Permissions, fmt.Sprintf("%s:%s", perm.Resource, perm.Action))
	}
	writeJSON(w, http.StatusOK, res)
}

type createUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type createUserResponse struct {
	User userResponse `json:"user"`
	// TemporaryPassword is shown exactly once, in this response.
	TemporaryPassword string `json:"temporaryPassword"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		unauthenticated(w)
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body", common.ErrValidation))
		return
	}

	password, err := services.TemporaryPassword()
	if err != nil {
		writeError(w, common.ErrInternal)
		return
	}

	creator := p.ID
	user, err := s.users.CreateUser(r.Context(), req.Email, req.Name, rbac.Role(req.Role),
		password, true, &creator)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createUserResponse{
		User:              toUserResponse(user),
		TemporaryPassword: password,
	})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

type setRoleRequest struct {
	Role string `json:"role"`
}

func (s *Server) handleSetRole(w http.ResponseWriter, r *http.Request) {
	var req setRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body", common.ErrValidation))
		return
	}

	if err := s.users.SetRole(r.Context(), chi.URLParam(r, "id"), rbac.Role(req.Role)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (s *Server) handleSetActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body", common.ErrValidation))
		return
	}

	if err := s.users.SetActive(r.Context(), chi.URLParam(r, "id"), req.Active); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
