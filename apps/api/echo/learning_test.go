package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/malezi/core/learning"
	"github.com/trezcool/malezi/core/user"
)

func Test_learningApi_assign(t *testing.T) {
	env := setup(t)

	teacher := createUser(t, env.userRepo, "Teacher", "teacher", "teacher@malezi.cd", "", user.RoleTeacher, true)
	parent := createUser(t, env.userRepo, "Parent", "parent", "parent@malezi.cd", "", user.RoleParent, true)

	c := createChild(t, env.childRepo, "Amina", parent.ID, teacher.ID)
	act := createActivity(t, env.learningRepo, "Shape sorting", teacher.ID)

	body := []byte(`{"child_id": "` + c.ID + `", "activity_id": "` + act.ID + `"}`)
	token := getToken(t, teacher)

	req, rec := newAuthRequest(http.MethodPost, "/v1/assignments", token, body)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("assign code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var asg learning.Assignment
	if err := json.Unmarshal(rec.Body.Bytes(), &asg); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if asg.Status != learning.StatusAssigned {
		t.Errorf("Status = %v; want %v", asg.Status, learning.StatusAssigned)
	}
	if asg.AssignedBy != teacher.ID {
		t.Errorf("AssignedBy = %v; want %v", asg.AssignedBy, teacher.ID)
	}

	t.Run("duplicate assignment is rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/assignments", token, body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("parent cannot assign", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/assignments", getToken(t, parent), body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})
}

func Test_learningApi_startAndContinue(t *testing.T) {
	env := setup(t)

	teacher := createUser(t, env.userRepo, "Teacher", "teacher", "teacher@malezi.cd", "", user.RoleTeacher, true)
	parent := createUser(t, env.userRepo, "Parent", "parent", "parent@malezi.cd", "", user.RoleParent, true)

	c := createChild(t, env.childRepo, "Amina", parent.ID, teacher.ID)
	act := createActivity(t, env.learningRepo, "Shape sorting", teacher.ID)
	asg := createAssignment(t, env.learningRepo, c.ID, act.ID, teacher.ID, learning.StatusAssigned)

	token := getToken(t, parent)

	t.Run("continue before start is rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/assignments/"+asg.ID+"/continue", token)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})

	t.Run("start from assigned", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/assignments/"+asg.ID+"/start", token)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var got learning.Assignment
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if got.Status != learning.StatusInProgress {
			t.Errorf("Status = %v; want %v", got.Status, learning.StatusInProgress)
		}
		if !got.StartedAt.Valid {
			t.Error("StartedAt not stamped")
		}
	})

	t.Run("second start is rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/assignments/"+asg.ID+"/start", token)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("continue once in progress", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/assignments/"+asg.ID+"/continue", token)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
	})
}

func Test_learningApi_assignmentScoping(t *testing.T) {
	env := setup(t)

	teacher := createUser(t, env.userRepo, "Teacher", "teacher", "teacher@malezi.cd", "", user.RoleTeacher, true)
	parent := createUser(t, env.userRepo, "Parent", "parent", "parent@malezi.cd", "", user.RoleParent, true)
	parent2 := createUser(t, env.userRepo, "Parent Two", "parent2", "parent2@malezi.cd", "", user.RoleParent, true)

	c1 := createChild(t, env.childRepo, "Amina", parent.ID, teacher.ID)
	c2 := createChild(t, env.childRepo, "Baraka", parent2.ID, "")
	act := createActivity(t, env.learningRepo, "Shape sorting", teacher.ID)
	asg1 := createAssignment(t, env.learningRepo, c1.ID, act.ID, teacher.ID, learning.StatusAssigned)
	asg2 := createAssignment(t, env.learningRepo, c2.ID, act.ID, teacher.ID, learning.StatusAssigned)

	tests := []httpTest{
		{
			name:     "teacher sees assignments of assigned children",
			token:    getToken(t, teacher),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []learning.Assignment{asg1}),
		},
		{
			name:     "parent sees own children's assignments",
			token:    getToken(t, parent2),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []learning.Assignment{asg2}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/assignments", tt.token)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("other parent's assignment reads as absent", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/assignments/"+asg1.ID, getToken(t, parent2))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
		}
	})
}

func Test_learningApi_badges(t *testing.T) {
	env := setup(t)

	admin := createUser(t, env.userRepo, "Admin", "admin", "admin@malezi.cd", "", user.RoleAdmin, true)
	teacher := createUser(t, env.userRepo, "Teacher", "teacher", "teacher@malezi.cd", "", user.RoleTeacher, true)
	parent := createUser(t, env.userRepo, "Parent", "parent", "parent@malezi.cd", "", user.RoleParent, true)

	c := createChild(t, env.childRepo, "Amina", parent.ID, teacher.ID)

	badgeBody := []byte(`{"name": "First Steps", "description": "Completed a first activity", "type": "milestone"}`)

	t.Run("teacher cannot create badges", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/badges", getToken(t, teacher), badgeBody)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	req, rec := newAuthRequest(http.MethodPost, "/v1/badges", getToken(t, admin), badgeBody)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create badge code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var badge learning.Badge
	if err := json.Unmarshal(rec.Body.Bytes(), &badge); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if badge.Color == "" {
		t.Error("badge color not defaulted")
	}

	awardBody := []byte(`{"child_id": "` + c.ID + `", "badge_id": "` + badge.ID + `"}`)

	t.Run("assigned teacher awards once", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/badges/award", getToken(t, teacher), awardBody)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("award code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodPost, "/v1/badges/award", getToken(t, teacher), awardBody)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("second award code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("parent sees the earned badge", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/badges/earned", getToken(t, parent))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
		}
		var earned []learning.ChildBadge
		if err := json.Unmarshal(rec.Body.Bytes(), &earned); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if len(earned) != 1 || earned[0].ChildID != c.ID {
			t.Errorf("earned = %+v; want one badge for %v", earned, c.ID)
		}
	})
}

func Test_learningApi_dashboard(t *testing.T) {
	env := setup(t)

	teacher := createUser(t, env.userRepo, "Teacher", "teacher", "teacher@malezi.cd", "", user.RoleTeacher, true)
	parent := createUser(t, env.userRepo, "Parent", "parent", "parent@malezi.cd", "", user.RoleParent, true)
	parent2 := createUser(t, env.userRepo, "Parent Two", "parent2", "parent2@malezi.cd", "", user.RoleParent, true)

	c1 := createChild(t, env.childRepo, "Amina", parent.ID, teacher.ID)
	c2 := createChild(t, env.childRepo, "Baraka", parent2.ID, "")
	act := createActivity(t, env.learningRepo, "Shape sorting", teacher.ID)
	createAssignment(t, env.learningRepo, c1.ID, act.ID, teacher.ID, learning.StatusInProgress)
	createAssignment(t, env.learningRepo, c2.ID, act.ID, teacher.ID, learning.StatusCompleted)

	req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard", getToken(t, parent))
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var stats learning.DashboardStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if stats.ChildrenTracked != 1 {
		t.Errorf("ChildrenTracked = %d; want 1", stats.ChildrenTracked)
	}
	if stats.ActiveAssignments != 1 {
		t.Errorf("ActiveAssignments = %d; want 1", stats.ActiveAssignments)
	}
	if stats.CompletedAssignments != 0 {
		t.Errorf("CompletedAssignments = %d; want 0", stats.CompletedAssignments)
	}
	if stats.TotalActivities != 1 {
		t.Errorf("TotalActivities = %d; want 1", stats.TotalActivities)
	}
}
