package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openreach/cms-server/internal/common"
	"github.com/openreach/cms-server/internal/server/models"
	"github.com/openreach/cms-server/internal/server/rbac"
	"github.com/openreach/cms-server/internal/server/services"
)

func doJSON(t *testing.T, router http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleLogin_Success(t *testing.T) {
	u := principal(rbac.RoleTechnician)
	u.MustChangePassword = true
	authOps := &fakeAuthOps{loginRes: &services.LoginResult{
		User:               u,
		AccessToken:        "signed-token",
		MustChangePassword: true,
	}}
	s, _ := newTestServer(t, authOps, &fakeUserOps{})
	router := s.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": "jane@example.org", "password": "Str0ng!Pass"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var res loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.AccessToken != "signed-token" || !res.MustChangePassword {
		t.Fatalf("unexpected response: %+v", res)
	}
	if res.User.Email != "jane@example.org" {
		t.Fatalf("unexpected user in response: %+v", res.User)
	}
	if strings.Contains(rec.Body.String(), "PasswordHash") || strings.Contains(rec.Body.String(), "passwordHash") {
		t.Fatalf("password hash must never appear in a response")
	}
}

func TestHandleLogin_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"invalid credential is generic 401", common.ErrInvalidCredential, http.StatusUnauthorized, "invalid email or password"},
		{"locked account is a distinct 403", common.ErrAccountLocked, http.StatusForbidden, "locked"},
		{"validation is 400", fmt.Errorf("%w: malformed email", common.ErrValidation), http.StatusBadRequest, "malformed email"},
		{"store down is 503", fmt.Errorf("%w: dial tcp", common.ErrStoreUnavailable), http.StatusServiceUnavailable, "unavailable"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestServer(t, &fakeAuthOps{loginErr: tc.err}, &fakeUserOps{})
			rec := doJSON(t, s.Router(), http.MethodPost, "/api/v1/auth/login", "",
				map[string]string{"email": "jane@example.org", "password": "x"})

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tc.wantBody) {
				t.Fatalf("expected body containing %q, got %s", tc.wantBody, rec.Body.String())
			}
		})
	}
}

func TestHandleLogin_MalformedBody(t *testing.T) {
	s, _ := newTestServer(t, &fakeAuthOps{}, &fakeUserOps{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestHandleMe(t *testing.T) {
	u := principal(rbac.RoleSupervisor)
	userOps := &fakeUserOps{byID: map[string]*models.User{u.ID: u}}
	s, tokens := newTestServer(t, &fakeAuthOps{}, userOps)

	rec := doJSON(t, s.Router(), http.MethodGet, "/api/v1/auth/me", bearerFor(t, tokens, u), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var res userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.ID != u.ID || res.Role != "supervisor" {
		t.Fatalf("unexpected principal echo: %+v", res)
	}
}

func TestHandleMe_RequiresToken(t *testing.T) {
	s, _ := newTestServer(t, &fakeAuthOps{}, &fakeUserOps{})

	rec := doJSON(t, s.Router(), http.MethodGet, "/api/v1/auth/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestHandleChangePassword(t *testing.T) {
	u := principal(rbac.RoleTechnician)
	userOps := &fakeUserOps{byID: map[string]*models.User{u.ID: u}}
	authOps := &fakeAuthOps{}
	s, tokens := newTestServer(t, authOps, userOps)

	rec := doJSON(t, s.Router(), http.MethodPut, "/api/v1/auth/password", bearerFor(t, tokens, u),
		map[string]string{"currentPassword": "Str0ng!Pass", "newPassword": "N3w!Passw0rd"})

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if authOps.changeCalls != 1 {
		t.Fatalf("expected one ChangePassword call, got %d", authOps.changeCalls)
	}
}

func TestHandleChangePassword_UnknownRoleFailsClosed(t *testing.T) {
	u := principal(rbac.Role("intern"))
	userOps := &fakeUserOps{byID: map[string]*models.User{u.ID: u}}
	s, tokens := newTestServer(t, &fakeAuthOps{}, userOps)

	rec := doJSON(t, s.Router(), http.MethodPut, "/api/v1/auth/password", bearerFor(t, tokens, u),
		map[string]string{"currentPassword": "a", "newPassword": "b"})

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unknown role, got %d", rec.Code)
	}
}

func TestHandleCapabilities(t *testing.T) {
	u := principal(rbac.RoleTechnician)
	userOps := &fakeUserOps{byID: map[string]*models.User{u.ID: u}}
	s, tokens := newTestServer(t, &fakeAuthOps{}, userOps)

	rec := doJSON(t, s.Router(), http.MethodGet, "/api/v1/auth/capabilities", bearerFor(t, tokens, u), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var res capabilitiesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Role != "technician" {
		t.Fatalf("unexpected role: %q", res.Role)
	}
	joined := strings.Join(res.Resources, ",")
	if !strings.Contains(joined, "content") || !strings.Contains(joined, "users") {
		t.Fatalf("unexpected resources: %v", res.Resources)
	}
	if strings.Contains(strings.Join(res.Permissions, ","), "users:delete") {
		t.Fatalf("technician must not see users:delete, got %v", res.Permissions)
	}
}

func TestHandleCreateUser_AdminOnly(t *testing.T) {
	admin := principal(rbac.RoleAdministrator)
	tech := principal(rbac.RoleTechnician)
	tech.ID = "u-2"
	userOps := &fakeUserOps{byID: map[string]*models.User{admin.ID: admin, tech.ID: tech}}
	s, tokens := newTestServer(t, &fakeAuthOps{}, userOps)
	router := s.Router()

	body := map[string]string{"email": "new@example.org", "name": "New Staffer", "role": "technician"}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/users/", bearerFor(t, tokens, tech), body)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("technician must not provision accounts, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/users/", bearerFor(t, tokens, admin), body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var res createUserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.TemporaryPassword == "" {
		t.Fatalf("expected the temporary password in the creation response")
	}
	if !res.User.MustChangePassword {
		t.Fatalf("provisioned accounts must carry the must-change flag")
	}
	if userOps.created == nil || userOps.created.CreatedBy == nil || *userOps.created.CreatedBy != admin.ID {
		t.Fatalf("expected creator reference to the provisioning admin")
	}
}

func TestHandleSetRole(t *testing.T) {
	admin := principal(rbac.RoleAdministrator)
	userOps := &fakeUserOps{byID: map[string]*models.User{admin.ID: admin}}
	s, tokens := newTestServer(t, &fakeAuthOps{}, userOps)

	rec := doJSON(t, s.Router(), http.MethodPut, "/api/v1/users/u-9/role", bearerFor(t, tokens, admin),
		map[string]string{"role": "supervisor"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleSetActive_SupervisorForbidden(t *testing.T) {
	sup := principal(rbac.RoleSupervisor)
	userOps := &fakeUserOps{byID: map[string]*models.User{sup.ID: sup}}
	s, tokens := newTestServer(t, &fakeAuthOps{}, userOps)

	rec := doJSON(t, s.Router(), http.MethodPut, "/api/v1/users/u-9/active", bearerFor(t, tokens, sup),
		map[string]bool{"active": false})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("supervisor must not toggle activation, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleListUsers(t *testing.T) {
	admin := principal(rbac.RoleAdministrator)
	other := principal(rbac.RoleTechnician)
	other.ID = "u-2"
	userOps := &fakeUserOps{
		byID:    map[string]*models.User{admin.ID: admin},
		listOut: []*models.User{admin, other},
	}
	s, tokens := newTestServer(t, &fakeAuthOps{}, userOps)

	rec := doJSON(t, s.Router(), http.MethodGet, "/api/v1/users/", bearerFor(t, tokens, admin), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var res []userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("expected 2 users, got %d", len(res))
	}
}

func TestRouter_SecurityHeadersEverywhere(t *testing.T) {
	s, _ := newTestServer(t, &fakeAuthOps{}, &fakeUserOps{})

	rec := doJSON(t, s.Router(), http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from healthz, got %d", rec.Code)
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("security headers must apply to every response")
	}
}
