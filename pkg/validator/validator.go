package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var bloodTypes = map[string]struct{}{
	"A+": {}, "A-": {},
	"B+": {}, "B-": {},
	"AB+": {}, "AB-": {},
	"O+": {}, "O-": {},
}

// Register installs custom validations on gin's binding engine. Call once at
// startup before any request binding runs.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("bloodtype", validateBloodType)
}

func validateBloodType(fl validator.FieldLevel) bool {
	_, ok := bloodTypes[fl.Field().String()]
	return ok
}
