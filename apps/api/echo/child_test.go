package echoapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/malezi/core/child"
	"github.com/trezcool/malezi/core/user"
)

func Test_childApi_query_scoping(t *testing.T) {
	env := setup(t)

	admin := createUser(t, env.userRepo, "Admin", "admin", "admin@malezi.cd", "", user.RoleAdmin, true)
	teacher := createUser(t, env.userRepo, "Teacher", "teacher", "teacher@malezi.cd", "", user.RoleTeacher, true)
	parent := createUser(t, env.userRepo, "Parent", "parent", "parent@malezi.cd", "", user.RoleParent, true)
	parent2 := createUser(t, env.userRepo, "Parent Two", "parent2", "parent2@malezi.cd", "", user.RoleParent, true)

	c1 := createChild(t, env.childRepo, "Amina", parent.ID, teacher.ID)
	c2 := createChild(t, env.childRepo, "Baraka", parent2.ID, "")

	tests := []httpTest{
		{
			name:     "anonymous is rejected",
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "admin sees all children",
			token:    getToken(t, admin),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []child.Child{c1, c2}),
		},
		{
			name:     "teacher only sees assigned children",
			token:    getToken(t, teacher),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []child.Child{c1}),
		},
		{
			name:     "parent only sees own children",
			token:    getToken(t, parent2),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []child.Child{c2}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/children", tt.token)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_childApi_retrieve_deniedReadsAsAbsent(t *testing.T) {
	env := setup(t)

	teacher := createUser(t, env.userRepo, "Teacher", "teacher", "teacher@malezi.cd", "", user.RoleTeacher, true)
	parent := createUser(t, env.userRepo, "Parent", "parent", "parent@malezi.cd", "", user.RoleParent, true)
	parent2 := createUser(t, env.userRepo, "Parent Two", "parent2", "parent2@malezi.cd", "", user.RoleParent, true)

	c := createChild(t, env.childRepo, "Amina", parent.ID, "")

	tests := []httpTest{
		{
			name:     "owning parent retrieves",
			token:    getToken(t, parent),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, c),
		},
		{
			name:     "unassigned teacher gets 404",
			token:    getToken(t, teacher),
			wantCode: http.StatusNotFound,
		},
		{
			name:     "other parent gets 404",
			token:    getToken(t, parent2),
			wantCode: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/children/"+c.ID, tt.token)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_childApi_create(t *testing.T) {
	env := setup(t)

	teacher := createUser(t, env.userRepo, "Teacher", "teacher", "teacher@malezi.cd", "", user.RoleTeacher, true)
	parent := createUser(t, env.userRepo, "Parent", "parent", "parent@malezi.cd", "", user.RoleParent, true)

	dob := time.Now().UTC().AddDate(-1, 0, 0).Format(time.RFC3339)
	body := []byte(`{"first_name": "Neema", "last_name": "K", "date_of_birth": "` + dob + `", "gender": "F"}`)

	t.Run("parent creates own child", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/children", getToken(t, parent), body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}

		children, err := env.childRepo.QueryChildren(req.Context(), &child.QueryFilter{Access: child.AccessFilter{ParentID: parent.ID}}, nil)
		if err != nil {
			t.Fatalf("QueryChildren() failed: %v", err)
		}
		if len(children) != 1 {
			t.Fatalf("children = %d; want 1", len(children))
		}
		if children[0].ParentID != parent.ID {
			t.Errorf("ParentID = %v; want the creating parent %v", children[0].ParentID, parent.ID)
		}
	})

	t.Run("teacher cannot create children", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/children", getToken(t, teacher), body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})
}

func Test_childApi_update_teacherReassignmentIsAdminOnly(t *testing.T) {
	env := setup(t)

	admin := createUser(t, env.userRepo, "Admin", "admin", "admin@malezi.cd", "", user.RoleAdmin, true)
	teacher := createUser(t, env.userRepo, "Teacher", "teacher", "teacher@malezi.cd", "", user.RoleTeacher, true)
	teacher2 := createUser(t, env.userRepo, "Teacher Two", "teacher2", "teacher2@malezi.cd", "", user.RoleTeacher, true)
	parent := createUser(t, env.userRepo, "Parent", "parent", "parent@malezi.cd", "", user.RoleParent, true)

	c := createChild(t, env.childRepo, "Amina", parent.ID, teacher.ID)

	reassign := []byte(`{"teacher_id": "` + teacher2.ID + `"}`)

	t.Run("parent cannot reassign the teacher", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/children/"+c.ID, getToken(t, parent), reassign)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("assigned teacher cannot reassign either", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/children/"+c.ID, getToken(t, teacher), reassign)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("admin reassigns", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/children/"+c.ID, getToken(t, admin), reassign)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		got, err := env.childRepo.GetChildByID(req.Context(), c.ID)
		if err != nil {
			t.Fatalf("GetChildByID() failed: %v", err)
		}
		if !got.TeacherID.Valid || got.TeacherID.String != teacher2.ID {
			t.Errorf("TeacherID = %v; want %v", got.TeacherID, teacher2.ID)
		}
	})

	t.Run("parent edits other fields", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/children/"+c.ID, getToken(t, parent), []byte(`{"first_name": "Aminata"}`))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
	})
}

func Test_childApi_destroy(t *testing.T) {
	env := setup(t)

	teacher := createUser(t, env.userRepo, "Teacher", "teacher", "teacher@malezi.cd", "", user.RoleTeacher, true)
	parent := createUser(t, env.userRepo, "Parent", "parent", "parent@malezi.cd", "", user.RoleParent, true)

	c := createChild(t, env.childRepo, "Amina", parent.ID, teacher.ID)

	t.Run("assigned teacher cannot delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/children/"+c.ID, getToken(t, teacher))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("owning parent deletes", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/children/"+c.ID, getToken(t, parent))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusNoContent)
		}
		if _, err := env.childRepo.GetChildByID(req.Context(), c.ID); err == nil {
			t.Error("child still exists after delete")
		}
	})
}
