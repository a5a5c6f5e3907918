// Package authz decides, for a given actor and target record, whether an
// operation is permitted. Every predicate is a pure function of its inputs:
// all ownership checks compare foreign-key ids on records the caller has
// already loaded, so no predicate ever touches storage.
//
// Rules shared by every predicate:
//   - an unauthenticated actor is denied before any entity logic runs
//   - an admin or superuser is allowed before any entity logic runs
//   - an authenticated actor with no role falls through every role switch
//     and is denied
package authz

import (
	"github.com/trezcool/malezi/core/care"
	"github.com/trezcool/malezi/core/child"
	"github.com/trezcool/malezi/core/user"
)

// Actor is the resolved identity an operation runs as. The zero value is the
// unauthenticated actor and is denied everywhere.
type Actor struct {
	user.User

	Authenticated bool
}

// ActorFrom wraps an authenticated user.
func ActorFrom(usr user.User) Actor {
	return Actor{User: usr, Authenticated: true}
}

// Anonymous is the unauthenticated actor.
func Anonymous() Actor { return Actor{} }

func (a Actor) allAccess() bool { return a.Authenticated && a.IsStaff() }

func (a Actor) ownsChild(c child.Child) bool { return c.ParentID == a.ID }

func (a Actor) teaches(c child.Child) bool {
	return c.TeacherID.Valid && c.TeacherID.String == a.ID
}

// ---------------------------------------------------------------------------
// Child

func CanViewChild(a Actor, c child.Child) bool {
	if !a.Authenticated {
		return false
	}
	if a.allAccess() {
		return true
	}
	switch a.Role {
	case user.RoleTeacher:
		return a.teaches(c)
	case user.RoleParent:
		return a.ownsChild(c)
	}
	return false
}

// CanEditChild mirrors CanViewChild: the assigned teacher and the owning
// parent may both modify the record.
func CanEditChild(a Actor, c child.Child) bool {
	return CanViewChild(a, c)
}

func CanDeleteChild(a Actor, c child.Child) bool {
	if !a.Authenticated {
		return false
	}
	if a.allAccess() {
		return true
	}
	return a.Role == user.RoleParent && a.ownsChild(c)
}

// CanCreateChild takes no target: a child record does not exist yet. A parent
// creates children of their own; a teacher never creates children.
func CanCreateChild(a Actor) bool {
	if !a.Authenticated {
		return false
	}
	return a.allAccess() || a.Role == user.RoleParent
}

// ---------------------------------------------------------------------------
// Assessment
//
// Rights over an assessment derive from rights over the owning child, except
// editing: that is an author-identity override, so a teacher keeps edit
// rights on assessments they authored even after losing the child assignment.

func CanViewAssessment(a Actor, c child.Child) bool {
	return CanViewChild(a, c)
}

func CanCreateAssessment(a Actor, c child.Child) bool {
	if !a.Authenticated {
		return false
	}
	if a.allAccess() {
		return true
	}
	return a.Role == user.RoleTeacher && a.teaches(c)
}

// CanEditAssessment checks assessor identity only, independent of the actor's
// current access to the owning child.
func CanEditAssessment(a Actor, asmt care.Assessment) bool {
	if !a.Authenticated {
		return false
	}
	if a.allAccess() {
		return true
	}
	return a.Role == user.RoleTeacher && asmt.AssessorID == a.ID
}

func CanDeleteAssessment(a Actor) bool {
	return a.allAccess()
}

// ---------------------------------------------------------------------------
// SupportPlan

func CanViewSupportPlan(a Actor, c child.Child) bool {
	return CanViewChild(a, c)
}

func CanCreateSupportPlan(a Actor, c child.Child) bool {
	if !a.Authenticated {
		return false
	}
	if a.allAccess() {
		return true
	}
	return a.Role == user.RoleTeacher && a.teaches(c)
}

// CanEditSupportPlan allows the plan's creator and the child's currently
// assigned teacher.
func CanEditSupportPlan(a Actor, p care.SupportPlan, c child.Child) bool {
	if !a.Authenticated {
		return false
	}
	if a.allAccess() {
		return true
	}
	return a.Role == user.RoleTeacher && (p.CreatedBy == a.ID || a.teaches(c))
}

func CanDeleteSupportPlan(a Actor) bool {
	return a.allAccess()
}

// ---------------------------------------------------------------------------
// ProgressReport

// CanViewProgressReport grants through child access for teachers and parents,
// plus an author override so a reassigned teacher can still read their own
// reports.
func CanViewProgressReport(a Actor, r care.ProgressReport, c child.Child) bool {
	if !a.Authenticated {
		return false
	}
	if a.allAccess() {
		return true
	}
	switch a.Role {
	case user.RoleTeacher:
		return a.teaches(c) || r.CreatedBy == a.ID
	case user.RoleParent:
		return a.ownsChild(c)
	}
	return false
}

func CanCreateProgressReport(a Actor, c child.Child) bool {
	if !a.Authenticated {
		return false
	}
	if a.allAccess() {
		return true
	}
	return a.Role == user.RoleTeacher && a.teaches(c)
}

func CanEditProgressReport(a Actor, r care.ProgressReport) bool {
	if !a.Authenticated {
		return false
	}
	if a.allAccess() {
		return true
	}
	return a.Role == user.RoleTeacher && r.CreatedBy == a.ID
}

func CanDeleteProgressReport(a Actor) bool {
	return a.allAccess()
}

// ---------------------------------------------------------------------------
// Accessible set

// AccessibleChildren returns the filter every child-scoped list query must be
// narrowed by. It never returns the zero filter: callers get an explicit
// all, parent-scoped, teacher-scoped or empty set.
func AccessibleChildren(a Actor) child.AccessFilter {
	if !a.Authenticated {
		return child.AccessFilter{None: true}
	}
	if a.allAccess() {
		return child.AccessFilter{All: true}
	}
	switch a.Role {
	case user.RoleParent:
		return child.AccessFilter{ParentID: a.ID}
	case user.RoleTeacher:
		return child.AccessFilter{TeacherID: a.ID}
	}
	return child.AccessFilter{None: true}
}
