package learning

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/malezi/core"
)

func init() {
	_ = core.Validate.RegisterValidation("activity_type", activityTypeValidation)
	core.RegisterCustomTranslation("activity_type", "{0} is not a valid activity type")

	_ = core.Validate.RegisterValidation("badge_type", badgeTypeValidation)
	core.RegisterCustomTranslation("badge_type", "{0} is not a valid badge type")
}

func activityTypeValidation(fl validator.FieldLevel) bool {
	return contains(AllActivityTypes, fl.Field().String())
}

func badgeTypeValidation(fl validator.FieldLevel) bool {
	return contains(AllBadgeTypes, fl.Field().String())
}

func contains(vals []string, s string) bool {
	for _, v := range vals {
		if v == s {
			return true
		}
	}
	return false
}
