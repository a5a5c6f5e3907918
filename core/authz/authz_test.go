package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core/care"
	"github.com/trezcool/malezi/core/child"
	"github.com/trezcool/malezi/core/user"
)

var (
	admin     = ActorFrom(user.User{ID: "admin-1", Role: user.RoleAdmin})
	superuser = ActorFrom(user.User{ID: "super-1", IsSuperuser: true})
	teacher   = ActorFrom(user.User{ID: "teacher-1", Role: user.RoleTeacher})
	teacher2  = ActorFrom(user.User{ID: "teacher-2", Role: user.RoleTeacher})
	parent    = ActorFrom(user.User{ID: "parent-1", Role: user.RoleParent})
	parent2   = ActorFrom(user.User{ID: "parent-2", Role: user.RoleParent})
	childUser = ActorFrom(user.User{ID: "child-1", Role: user.RoleChild})
	roleless  = ActorFrom(user.User{ID: "nobody-1"})
	anon      = Anonymous()

	// c1: parent-1's child, assigned to teacher-1. c2: parent-2's child, no teacher.
	c1 = child.Child{ID: "c1", ParentID: "parent-1", TeacherID: null.StringFrom("teacher-1")}
	c2 = child.Child{ID: "c2", ParentID: "parent-2"}
)

func TestCanViewChild(t *testing.T) {
	tests := []struct {
		name  string
		actor Actor
		child child.Child
		want  bool
	}{
		{"admin sees any child", admin, c2, true},
		{"superuser without role sees any child", superuser, c2, true},
		{"assigned teacher", teacher, c1, true},
		{"unassigned teacher", teacher, c2, false},
		{"other teacher", teacher2, c1, false},
		{"owning parent", parent, c1, true},
		{"other parent", parent, c2, false},
		{"child role never", childUser, c1, false},
		{"roleless user", roleless, c1, false},
		{"unauthenticated", anon, c1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanViewChild(tt.actor, tt.child))
		})
	}
}

func TestCanEditChild_matchesView(t *testing.T) {
	for _, a := range []Actor{admin, superuser, teacher, teacher2, parent, parent2, childUser, roleless, anon} {
		for _, c := range []child.Child{c1, c2} {
			assert.Equal(t, CanViewChild(a, c), CanEditChild(a, c))
		}
	}
}

func TestCanDeleteChild(t *testing.T) {
	tests := []struct {
		name  string
		actor Actor
		child child.Child
		want  bool
	}{
		{"admin", admin, c1, true},
		{"assigned teacher denied", teacher, c1, false},
		{"owning parent", parent, c1, true},
		{"other parent", parent2, c1, false},
		{"unauthenticated", anon, c1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanDeleteChild(tt.actor, tt.child))
		})
	}
}

func TestCanCreateChild(t *testing.T) {
	assert.True(t, CanCreateChild(admin))
	assert.True(t, CanCreateChild(superuser))
	assert.True(t, CanCreateChild(parent))
	assert.False(t, CanCreateChild(teacher))
	assert.False(t, CanCreateChild(childUser))
	assert.False(t, CanCreateChild(roleless))
	assert.False(t, CanCreateChild(anon))
}

func TestCanCreateAssessment(t *testing.T) {
	tests := []struct {
		name  string
		actor Actor
		child child.Child
		want  bool
	}{
		{"admin", admin, c2, true},
		{"assigned teacher", teacher, c1, true},
		{"unassigned teacher", teacher, c2, false},
		{"parent denied even for own child", parent, c1, false},
		{"unauthenticated", anon, c1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanCreateAssessment(tt.actor, tt.child))
		})
	}
}

func TestCanEditAssessment(t *testing.T) {
	byTeacher1 := care.Assessment{ID: "a1", ChildID: "c1", AssessorID: "teacher-1"}

	tests := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"admin", admin, true},
		{"assessor", teacher, true},
		{"other teacher", teacher2, false},
		{"parent of the child", parent, false},
		{"unauthenticated", anon, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanEditAssessment(tt.actor, byTeacher1))
		})
	}
}

// The assessor keeps edit rights after losing the child assignment; a
// replacement teacher does not gain them.
func TestCanEditAssessment_survivesReassignment(t *testing.T) {
	asmt := care.Assessment{ID: "a1", ChildID: "c1", AssessorID: "teacher-1"}
	reassigned := c1
	reassigned.TeacherID = null.StringFrom("teacher-2")

	assert.True(t, CanEditAssessment(teacher, asmt))
	assert.False(t, CanViewChild(teacher, reassigned))
	assert.False(t, CanEditAssessment(teacher2, asmt))
}

func TestCanDeleteAssessment_adminOnly(t *testing.T) {
	assert.True(t, CanDeleteAssessment(admin))
	assert.True(t, CanDeleteAssessment(superuser))
	assert.False(t, CanDeleteAssessment(teacher))
	assert.False(t, CanDeleteAssessment(parent))
	assert.False(t, CanDeleteAssessment(anon))
}

func TestCanEditSupportPlan(t *testing.T) {
	plan := care.SupportPlan{ID: "p1", ChildID: "c1", CreatedBy: "teacher-1"}
	byOther := care.SupportPlan{ID: "p2", ChildID: "c1", CreatedBy: "teacher-2"}

	tests := []struct {
		name  string
		actor Actor
		plan  care.SupportPlan
		child child.Child
		want  bool
	}{
		{"admin", admin, plan, c1, true},
		{"creator", teacher, plan, c1, true},
		{"assigned teacher on someone else's plan", teacher, byOther, c1, true},
		{"creator after reassignment", teacher2, byOther, c1, true},
		{"uninvolved teacher", teacher2, plan, c2, false},
		{"parent denied", parent, plan, c1, false},
		{"unauthenticated", anon, plan, c1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanEditSupportPlan(tt.actor, tt.plan, tt.child))
		})
	}
}

func TestCanViewSupportPlan(t *testing.T) {
	assert.True(t, CanViewSupportPlan(parent, c1))
	assert.True(t, CanViewSupportPlan(teacher, c1))
	assert.False(t, CanViewSupportPlan(parent2, c1))
	assert.False(t, CanViewSupportPlan(childUser, c1))
}

func TestCanDeleteSupportPlan_adminOnly(t *testing.T) {
	assert.True(t, CanDeleteSupportPlan(admin))
	assert.False(t, CanDeleteSupportPlan(teacher))
	assert.False(t, CanDeleteSupportPlan(parent))
}

func TestCanViewProgressReport(t *testing.T) {
	rpt := care.ProgressReport{ID: "r1", ChildID: "c1", CreatedBy: "teacher-1"}
	reassigned := c1
	reassigned.TeacherID = null.StringFrom("teacher-2")

	tests := []struct {
		name  string
		actor Actor
		child child.Child
		want  bool
	}{
		{"admin", admin, c1, true},
		{"assigned teacher", teacher, c1, true},
		{"creator after reassignment", teacher, reassigned, true},
		{"uninvolved teacher", teacher2, c1, false},
		{"owning parent", parent, c1, true},
		{"other parent", parent2, c1, false},
		{"unauthenticated", anon, c1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanViewProgressReport(tt.actor, rpt, tt.child))
		})
	}
}

func TestCanEditProgressReport(t *testing.T) {
	rpt := care.ProgressReport{ID: "r1", ChildID: "c1", CreatedBy: "teacher-1"}

	assert.True(t, CanEditProgressReport(admin, rpt))
	assert.True(t, CanEditProgressReport(teacher, rpt))
	assert.False(t, CanEditProgressReport(teacher2, rpt))
	assert.False(t, CanEditProgressReport(parent, rpt))
	assert.False(t, CanEditProgressReport(anon, rpt))
}

func TestAccessibleChildren(t *testing.T) {
	tests := []struct {
		name  string
		actor Actor
		want  child.AccessFilter
	}{
		{"admin gets all", admin, child.AccessFilter{All: true}},
		{"superuser gets all", superuser, child.AccessFilter{All: true}},
		{"parent scoped to own children", parent, child.AccessFilter{ParentID: "parent-1"}},
		{"teacher scoped to assigned children", teacher, child.AccessFilter{TeacherID: "teacher-1"}},
		{"child role gets none", childUser, child.AccessFilter{None: true}},
		{"roleless gets none", roleless, child.AccessFilter{None: true}},
		{"unauthenticated gets none", anon, child.AccessFilter{None: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AccessibleChildren(tt.actor))
		})
	}
}

func TestAccessibleChildren_filtersLoadedRecords(t *testing.T) {
	assert.True(t, AccessibleChildren(parent).Allows(c1))
	assert.False(t, AccessibleChildren(parent).Allows(c2))
	assert.True(t, AccessibleChildren(teacher).Allows(c1))
	assert.False(t, AccessibleChildren(teacher).Allows(c2))
	assert.True(t, AccessibleChildren(admin).Allows(c2))
	assert.False(t, AccessibleChildren(anon).Allows(c1))
}
