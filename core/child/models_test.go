package child

import (
	"testing"
	"time"

	"github.com/volatiletech/null/v8"
)

func TestChild_AgeInMonths(t *testing.T) {
	tests := []struct {
		name string
		dob  time.Time
		at   time.Time
		want int
	}{
		{
			name: "newborn",
			dob:  time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
			at:   time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "one year",
			dob:  time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC),
			at:   time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
			want: 12,
		},
		{
			name: "across year boundary",
			dob:  time.Date(2022, time.November, 20, 0, 0, 0, 0, time.UTC),
			at:   time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC),
			want: 15,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Child{DateOfBirth: tt.dob}
			if got := c.AgeInMonths(tt.at); got != tt.want {
				t.Errorf("AgeInMonths() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccessFilter_Allows(t *testing.T) {
	c := Child{
		ID:        "c1",
		ParentID:  "p1",
		TeacherID: null.StringFrom("t1"),
	}
	unassigned := Child{ID: "c2", ParentID: "p2"}

	tests := []struct {
		name   string
		access AccessFilter
		child  Child
		want   bool
	}{
		{name: "all", access: AccessFilter{All: true}, child: c, want: true},
		{name: "none", access: AccessFilter{None: true}, child: c, want: false},
		{name: "zero value denies", access: AccessFilter{}, child: c, want: false},
		{name: "owning parent", access: AccessFilter{ParentID: "p1"}, child: c, want: true},
		{name: "other parent", access: AccessFilter{ParentID: "p2"}, child: c, want: false},
		{name: "assigned teacher", access: AccessFilter{TeacherID: "t1"}, child: c, want: true},
		{name: "other teacher", access: AccessFilter{TeacherID: "t2"}, child: c, want: false},
		{name: "teacher vs unassigned child", access: AccessFilter{TeacherID: "t1"}, child: unassigned, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.access.Allows(tt.child); got != tt.want {
				t.Errorf("Allows() = %v, want %v", got, tt.want)
			}
		})
	}
}
