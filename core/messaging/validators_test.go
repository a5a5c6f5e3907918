package messaging

import "testing"

func TestNewNotification_Validate_type(t *testing.T) {
	nn := NewNotification{
		UserID:  "3b49e441-4f3e-4146-9e7e-83258b8d4a9a",
		Title:   "Heads up",
		Message: "Something happened.",
	}

	for _, typ := range AllNotificationTypes {
		nn.Type = typ
		if err := nn.Validate(); err != nil {
			t.Errorf("Validate() with type %q: %v", typ, err)
		}
	}

	nn.Type = "carrier-pigeon"
	if err := nn.Validate(); err == nil {
		t.Error("Validate() accepted an unknown notification type")
	}
}
