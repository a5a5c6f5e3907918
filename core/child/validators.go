package child

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/malezi/core"
)

var (
	genderTag  = "gender"
	genderText = "invalid gender"
)

func init() {
	_ = core.Validate.RegisterValidation(genderTag, genderValidation)
	core.RegisterCustomTranslation(genderTag, genderText)
}

// genderValidation checks that the provided gender is one of AllGenders
func genderValidation(fl validator.FieldLevel) bool {
	g := fl.Field().String()
	for _, gender := range AllGenders {
		if g == gender {
			return true
		}
	}
	return false
}
