package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/malezi/core/care"
	"github.com/trezcool/malezi/core/user"
)

func Test_careApi_createAssessment(t *testing.T) {
	env := setup(t)

	teacher := createUser(t, env.userRepo, "Teacher", "teacher", "teacher@malezi.cd", "", user.RoleTeacher, true)
	teacher2 := createUser(t, env.userRepo, "Teacher Two", "teacher2", "teacher2@malezi.cd", "", user.RoleTeacher, true)
	parent := createUser(t, env.userRepo, "Parent", "parent", "parent@malezi.cd", "", user.RoleParent, true)

	c := createChild(t, env.childRepo, "Amina", parent.ID, teacher.ID)

	date := time.Now().UTC().Format(time.RFC3339)
	body := []byte(`{"child_id": "` + c.ID + `", "type": "motor", "date": "` + date + `", "motor_score": 4, "cognitive_score": 2}`)

	t.Run("assigned teacher creates; overall score is the mean", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/assessments", getToken(t, teacher), body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}

		var got care.Assessment
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if got.AssessorID != teacher.ID {
			t.Errorf("AssessorID = %v; want the creating teacher %v", got.AssessorID, teacher.ID)
		}
		if !got.OverallScore.Valid || got.OverallScore.Float64 != 3 {
			t.Errorf("OverallScore = %v; want 3", got.OverallScore)
		}
	})

	t.Run("unassigned teacher cannot see the child", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/assessments", getToken(t, teacher2), body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("parent sees the child but cannot assess", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/assessments", getToken(t, parent), body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})
}

func Test_careApi_updateAssessment_assessorIdentity(t *testing.T) {
	env := setup(t)

	admin := createUser(t, env.userRepo, "Admin", "admin", "admin@malezi.cd", "", user.RoleAdmin, true)
	teacher := createUser(t, env.userRepo, "Teacher", "teacher", "teacher@malezi.cd", "", user.RoleTeacher, true)
	teacher2 := createUser(t, env.userRepo, "Teacher Two", "teacher2", "teacher2@malezi.cd", "", user.RoleTeacher, true)
	parent := createUser(t, env.userRepo, "Parent", "parent", "parent@malezi.cd", "", user.RoleParent, true)

	// teacher2 authored the assessment while assigned; the child has since
	// been reassigned to teacher
	c := createChild(t, env.childRepo, "Amina", parent.ID, teacher.ID)
	asmt := createAssessment(t, env.careRepo, c.ID, teacher2.ID)

	body := []byte(`{"notes": "updated"}`)

	t.Run("author keeps edit rights after reassignment", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/assessments/"+asmt.ID, getToken(t, teacher2), body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("failed! code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
	})

	t.Run("current teacher can view but not edit another author's assessment", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/assessments/"+asmt.ID, getToken(t, teacher))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("retrieve code = %v; want %v", rec.Code, http.StatusOK)
		}

		req, rec = newAuthRequest(http.MethodPut, "/v1/assessments/"+asmt.ID, getToken(t, teacher), body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("update code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("admin edits regardless", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/assessments/"+asmt.ID, getToken(t, admin), body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("failed! code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
	})

	t.Run("parent can view but not edit", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/assessments/"+asmt.ID, getToken(t, parent))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("retrieve code = %v; want %v", rec.Code, http.StatusOK)
		}

		req, rec = newAuthRequest(http.MethodPut, "/v1/assessments/"+asmt.ID, getToken(t, parent), body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("update code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("teacher cannot delete; admin can", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/assessments/"+asmt.ID, getToken(t, teacher))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("teacher delete code = %v; want %v", rec.Code, http.StatusForbidden)
		}

		req, rec = newAuthRequest(http.MethodDelete, "/v1/assessments/"+asmt.ID, getToken(t, admin))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("admin delete code = %v; want %v", rec.Code, http.StatusNoContent)
		}
	})
}

func Test_careApi_supportPlan_onePerChild(t *testing.T) {
	env := setup(t)

	teacher := createUser(t, env.userRepo, "Teacher", "teacher", "teacher@malezi.cd", "", user.RoleTeacher, true)
	parent := createUser(t, env.userRepo, "Parent", "parent", "parent@malezi.cd", "", user.RoleParent, true)

	c := createChild(t, env.childRepo, "Amina", parent.ID, teacher.ID)

	body := []byte(`{"child_id": "` + c.ID + `", "goals": "walk unaided", "strategies": "daily exercises"}`)

	token := getToken(t, teacher)

	req, rec := newAuthRequest(http.MethodPost, "/v1/support-plans", token, body)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var plan care.SupportPlan
	if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if plan.Status != care.PlanDraft {
		t.Errorf("Status = %v; want %v", plan.Status, care.PlanDraft)
	}

	req, rec = newAuthRequest(http.MethodPost, "/v1/support-plans", token, body)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("second create code = %v; want %v", rec.Code, http.StatusBadRequest)
	}
}

func Test_careApi_supportPlan_statusTransitionsUnconstrained(t *testing.T) {
	env := setup(t)

	teacher := createUser(t, env.userRepo, "Teacher", "teacher", "teacher@malezi.cd", "", user.RoleTeacher, true)
	parent := createUser(t, env.userRepo, "Parent", "parent", "parent@malezi.cd", "", user.RoleParent, true)

	c := createChild(t, env.childRepo, "Amina", parent.ID, teacher.ID)

	token := getToken(t, teacher)
	body := []byte(`{"child_id": "` + c.ID + `", "goals": "speak in sentences", "strategies": "reading time"}`)

	req, rec := newAuthRequest(http.MethodPost, "/v1/support-plans", token, body)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create code = %v; want %v", rec.Code, http.StatusCreated)
	}
	var plan care.SupportPlan
	if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}

	// any recognized status is reachable from any other
	for _, status := range []string{care.PlanCompleted, care.PlanDraft, care.PlanSuspended, care.PlanActive} {
		req, rec = newAuthRequest(http.MethodPut, "/v1/support-plans/"+plan.ID, token, []byte(`{"status": "`+status+`"}`))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("update to %q code = %v; want %v; body %s", status, rec.Code, http.StatusOK, rec.Body.String())
		}
	}

	req, rec = newAuthRequest(http.MethodPut, "/v1/support-plans/"+plan.ID, token, []byte(`{"status": "bogus"}`))
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("update to unknown status code = %v; want %v", rec.Code, http.StatusBadRequest)
	}
}

func Test_careApi_progressReport_authorOverride(t *testing.T) {
	env := setup(t)

	teacher := createUser(t, env.userRepo, "Teacher", "teacher", "teacher@malezi.cd", "", user.RoleTeacher, true)
	parent := createUser(t, env.userRepo, "Parent", "parent", "parent@malezi.cd", "", user.RoleParent, true)

	c := createChild(t, env.childRepo, "Amina", parent.ID, teacher.ID)

	date := time.Now().UTC().Format(time.RFC3339)
	body := []byte(`{"child_id": "` + c.ID + `", "title": "Term 1", "type": "monthly", "date": "` + date + `", "summary": "Doing well"}`)

	req, rec := newAuthRequest(http.MethodPost, "/v1/progress-reports", getToken(t, teacher), body)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var report care.ProgressReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}

	t.Run("parent reads but cannot edit", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/progress-reports/"+report.ID, getToken(t, parent))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("retrieve code = %v; want %v", rec.Code, http.StatusOK)
		}

		req, rec = newAuthRequest(http.MethodPut, "/v1/progress-reports/"+report.ID, getToken(t, parent), []byte(`{"summary": "nope"}`))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("update code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("author edits own report", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/progress-reports/"+report.ID, getToken(t, teacher), []byte(`{"summary": "Doing very well"}`))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("update code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
	})
}
