package access

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/alama/core"
)

var (
	// custom validation tags & texts
	roleTag  = "role"
	roleText = "must be one of ADMIN, LECTURER or STUDENT"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)
}

// roleValidation checks that the field holds a known role.
func roleValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, role := range AllRoles {
		if val == role {
			return true
		}
	}
	return false
}
