// Package sqlxrepos implements the domain repositories over PostgreSQL.
// Every repository holds a default executor and accepts a per-call override
// so services can run several calls inside one transaction.
package sqlxrepos

import (
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/child"
)

func getExec(db *sqlx.DB, svcExec []core.DBExecutor) sqlx.ExtContext {
	if len(svcExec) > 0 {
		if ext, ok := svcExec[0].(sqlx.ExtContext); ok {
			return ext
		}
	}
	return db
}

func orderBy(ordering []core.DBOrdering) string {
	if len(ordering) == 0 {
		return ""
	}
	clauses := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		clauses = append(clauses, ord.String())
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}

// accessClause renders an AccessFilter as a WHERE fragment against the given
// child table alias. The caller appends the returned args in order.
func accessClause(access child.AccessFilter, alias string) (string, []interface{}) {
	switch {
	case access.None:
		return "FALSE", nil
	case access.All:
		return "TRUE", nil
	case access.ParentID != "":
		return alias + ".parent_id = ?", []interface{}{access.ParentID}
	case access.TeacherID != "":
		return alias + ".teacher_id = ?", []interface{}{access.TeacherID}
	}
	// the zero filter grants nothing
	return "FALSE", nil
}
