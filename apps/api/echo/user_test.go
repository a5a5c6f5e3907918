package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/malezi/core/user"
)

func Test_userApi_login(t *testing.T) {
	env := setup(t)

	createUser(t, env.userRepo, "Parent", "parent", "parent@malezi.cd", "LePassword", user.RoleParent, true)
	createUser(t, env.userRepo, "Inactive", "inactive", "inactive@malezi.cd", "LePassword", user.RoleParent, false)

	tests := []httpTest{
		{
			name:     "login with username",
			body:     []byte(`{"username": "parent", "password": "LePassword"}`),
			wantCode: http.StatusOK,
		},
		{
			name:     "login with email",
			body:     []byte(`{"username": "parent@malezi.cd", "password": "LePassword"}`),
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong password",
			body:     []byte(`{"username": "parent", "password": "nope"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "unknown user",
			body:     []byte(`{"username": "ghost", "password": "LePassword"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "deactivated account",
			body:     []byte(`{"username": "inactive", "password": "LePassword"}`),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			env.server.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v; want %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			var resp LoginResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}
			if resp.Token == "" {
				t.Error("empty token")
			}
		})
	}
}

func Test_userApi_tokenRefresh(t *testing.T) {
	env := setup(t)

	usr := createUser(t, env.userRepo, "Parent", "parent", "parent@malezi.cd", "", user.RoleParent, true)

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", getToken(t, usr))
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if resp.Token == "" {
		t.Error("empty token")
	}
}

func Test_userApi_register(t *testing.T) {
	env := setup(t)

	admin := createUser(t, env.userRepo, "Admin", "admin1", "admin@malezi.cd", "", user.RoleAdmin, true)
	teacher := createUser(t, env.userRepo, "Teacher", "teacher", "teacher@malezi.cd", "", user.RoleTeacher, true)

	body := []byte(`{
		"name": "New Parent",
		"username": "newparent",
		"email": "newparent@malezi.cd",
		"password": "Str0ng&Secret",
		"password_confirm": "Str0ng&Secret",
		"role": "parent"
	}`)

	t.Run("non-admin cannot register users", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, teacher), body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("admin registers a user", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, admin), body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var usr user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if usr.Role != user.RoleParent {
			t.Errorf("Role = %v; want %v", usr.Role, user.RoleParent)
		}
		if !usr.IsActive {
			t.Error("new user not active")
		}
	})

	t.Run("duplicate username is rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, admin), body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})
}

func Test_userApi_query(t *testing.T) {
	env := setup(t)

	admin := createUser(t, env.userRepo, "Admin", "admin1", "admin@malezi.cd", "", user.RoleAdmin, true)
	teacher := createUser(t, env.userRepo, "Teacher", "teacher", "teacher@malezi.cd", "", user.RoleTeacher, true)
	parent := createUser(t, env.userRepo, "Parent", "parent", "parent@malezi.cd", "", user.RoleParent, true)

	tests := []httpTest{
		{
			name:     "anonymous is rejected",
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "non-admin is rejected",
			token:    getToken(t, parent),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "admin lists all users",
			path:     "/v1/users",
			token:    getToken(t, admin),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []user.User{admin, teacher, parent}),
		},
		{
			name:     "admin filters by role",
			path:     "/v1/users?role=teacher",
			token:    getToken(t, admin),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []user.User{teacher}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path
			if path == "" {
				path = "/v1/users"
			}
			req, rec := newAuthRequest(http.MethodGet, path, tt.token)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_update(t *testing.T) {
	env := setup(t)

	admin := createUser(t, env.userRepo, "Admin", "admin1", "admin@malezi.cd", "", user.RoleAdmin, true)
	parent := createUser(t, env.userRepo, "Parent", "parent", "parent@malezi.cd", "", user.RoleParent, true)
	other := createUser(t, env.userRepo, "Other", "otherparent", "other@malezi.cd", "", user.RoleParent, true)

	t.Run("self update", func(t *testing.T) {
		body := []byte(`{"name": "Parent Renamed"}`)
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+parent.ID, getToken(t, parent), body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var usr user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if usr.Name != "Parent Renamed" {
			t.Errorf("Name = %v; want Parent Renamed", usr.Name)
		}
	})

	t.Run("non-admin cannot change role", func(t *testing.T) {
		body := []byte(`{"role": "admin"}`)
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+parent.ID, getToken(t, parent), body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("non-admin cannot reach another profile", func(t *testing.T) {
		body := []byte(`{"name": "Hijacked"}`)
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+other.ID, getToken(t, parent), body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("admin changes role", func(t *testing.T) {
		body := []byte(`{"role": "teacher"}`)
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+other.ID, getToken(t, admin), body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		got, err := env.userRepo.GetUser(context.Background(), user.GetFilter{ID: other.ID})
		if err != nil {
			t.Fatalf("GetUser() failed: %v", err)
		}
		if got.Role != user.RoleTeacher {
			t.Errorf("Role = %v; want %v", got.Role, user.RoleTeacher)
		}
	})
}

func Test_userApi_destroy(t *testing.T) {
	env := setup(t)

	admin := createUser(t, env.userRepo, "Admin", "admin1", "admin@malezi.cd", "", user.RoleAdmin, true)
	parent := createUser(t, env.userRepo, "Parent", "parent", "parent@malezi.cd", "", user.RoleParent, true)

	token := getToken(t, admin)

	t.Run("admin cannot delete themselves", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+admin.ID, token)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("non-admin cannot delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+parent.ID, getToken(t, parent))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("admin deletes a user", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+parent.ID, token)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusNoContent, rec.Body.String())
		}
		if _, err := env.userRepo.GetUser(context.Background(), user.GetFilter{ID: parent.ID}); err == nil {
			t.Error("user still exists")
		}
	})
}

func Test_userApi_queryRoles(t *testing.T) {
	env := setup(t)

	admin := createUser(t, env.userRepo, "Admin", "admin1", "admin@malezi.cd", "", user.RoleAdmin, true)

	req, rec := newAuthRequest(http.MethodGet, "/v1/users/roles", getToken(t, admin))
	env.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marshallObj(t, user.Roles)}, rec)
}
