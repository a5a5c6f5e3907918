// Package dummydb provides in-memory repositories for tests. They mirror the
// PostgreSQL repositories' semantics closely enough that services and API
// handlers can be exercised without a database.
package dummydb

import (
	"sync"

	"github.com/trezcool/malezi/core/care"
	"github.com/trezcool/malezi/core/child"
	"github.com/trezcool/malezi/core/learning"
	"github.com/trezcool/malezi/core/messaging"
	"github.com/trezcool/malezi/core/user"
)

type (
	DB struct {
		user     *table[user.User]
		child    *table[child.Child]
		asmt     *table[care.Assessment]
		plan     *table[care.SupportPlan]
		report   *table[care.ProgressReport]
		activity *table[learning.Activity]
		asg      *table[learning.Assignment]
		badge    *table[learning.Badge]
		earned   *table[learning.ChildBadge]
		message  *table[messaging.Message]
		notif    *table[messaging.Notification]
	}

	table[T any] struct {
		sync.RWMutex
		rows map[string]*T
	}
)

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

func (t *table[T]) all() []T {
	res := make([]T, 0, len(t.rows))
	for _, r := range t.rows {
		res = append(res, *r)
	}
	return res
}

func Open() (*DB, error) {
	db := &DB{
		user:     newTable[user.User](),
		child:    newTable[child.Child](),
		asmt:     newTable[care.Assessment](),
		plan:     newTable[care.SupportPlan](),
		report:   newTable[care.ProgressReport](),
		activity: newTable[learning.Activity](),
		asg:      newTable[learning.Assignment](),
		badge:    newTable[learning.Badge](),
		earned:   newTable[learning.ChildBadge](),
		message:  newTable[messaging.Message](),
		notif:    newTable[messaging.Notification](),
	}
	return db, nil
}
