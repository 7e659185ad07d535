package utils

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	_ = validate.RegisterValidation("push_platform", validatePushPlatform)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validatePushPlatform(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "ios", "android":
		return true
	}
	return false
}
