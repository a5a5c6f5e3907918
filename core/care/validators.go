package care

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/malezi/core"
)

func init() {
	_ = core.Validate.RegisterValidation("assessment_type", assessmentTypeValidation)
	core.RegisterCustomTranslation("assessment_type", "{0} is not a valid assessment type")

	_ = core.Validate.RegisterValidation("plan_status", planStatusValidation)
	core.RegisterCustomTranslation("plan_status", "{0} is not a valid status")

	_ = core.Validate.RegisterValidation("report_type", reportTypeValidation)
	core.RegisterCustomTranslation("report_type", "{0} is not a valid report type")
}

func assessmentTypeValidation(fl validator.FieldLevel) bool {
	return contains(AllAssessmentTypes, fl.Field().String())
}

func planStatusValidation(fl validator.FieldLevel) bool {
	return contains(AllPlanStatuses, fl.Field().String())
}

func reportTypeValidation(fl validator.FieldLevel) bool {
	return contains(AllReportTypes, fl.Field().String())
}

func contains(vals []string, s string) bool {
	for _, v := range vals {
		if v == s {
			return true
		}
	}
	return false
}
