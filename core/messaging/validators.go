package messaging

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/malezi/core"
)

func init() {
	_ = core.Validate.RegisterValidation("notification_type", notificationTypeValidation)
	core.RegisterCustomTranslation("notification_type", "{0} is not a valid notification type")
}

func notificationTypeValidation(fl validator.FieldLevel) bool {
	for _, t := range AllNotificationTypes {
		if t == fl.Field().String() {
			return true
		}
	}
	return false
}
