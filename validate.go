package apidesc

import "github.com/go-playground/validator/v10"

var validate = validator.New(validator.WithRequiredStructEnabled())

// check validates v and converts failures into a ValidationError for object.
func check(object string, v any) error {
	if err := validate.Struct(v); err != nil {
		return fromValidator(object, err)
	}
	return nil
}
