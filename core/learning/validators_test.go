package learning

import "testing"

func TestNewActivity_Validate_type(t *testing.T) {
	na := NewActivity{
		Title:             "Shape sorting",
		Description:       "Sort wooden shapes by form.",
		DifficultyLevel:   2,
		Instructions:      "Hand the child the sorter box.",
		EstimatedDuration: 15,
		AgeRangeMin:       12,
		AgeRangeMax:       36,
	}

	for _, typ := range AllActivityTypes {
		na.Type = typ
		if err := na.Validate(); err != nil {
			t.Errorf("Validate() with type %q: %v", typ, err)
		}
	}

	na.Type = "juggling"
	if err := na.Validate(); err == nil {
		t.Error("Validate() accepted an unknown activity type")
	}
}

func TestNewBadge_Validate_type(t *testing.T) {
	nb := NewBadge{
		Name:        "First Steps",
		Description: "Completed a first activity.",
	}

	for _, typ := range AllBadgeTypes {
		nb.Type = typ
		if err := nb.Validate(); err != nil {
			t.Errorf("Validate() with type %q: %v", typ, err)
		}
	}

	nb.Type = "legendary"
	if err := nb.Validate(); err == nil {
		t.Error("Validate() accepted an unknown badge type")
	}
}
