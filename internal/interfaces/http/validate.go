package http

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate instancia compartida del validador de structs (tags `validate:`).
var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct valida el DTO y devuelve un mensaje apto para el cliente con
// el primer campo inválido.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		return fmt.Errorf("campo %s no cumple la regla %s", fe.Field(), fe.Tag())
	}
	return err
}
