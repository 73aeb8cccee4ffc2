package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"rdcshop/backend/models"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator
)

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Report JSON field names rather than Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.ValidRole(fl.Field().String())
	})
	_ = Validate.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return models.ValidPaymentMethod(fl.Field().String())
	})
	_ = Validate.RegisterValidation("payment_status", func(fl validator.FieldLevel) bool {
		return models.ValidPaymentStatus(fl.Field().String())
	})
}

// FormatValidationErrors maps each failing field to a readable message.
// It returns nil when err is not a validation error.
func FormatValidationErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg := fe.Translate(Translator)
		if msg == fe.Error() {
			msg = fe.Field() + " is invalid"
		}
		out[fe.Field()] = msg
	}
	return out
}

// ParseAndValidate decodes the request body into dest and validates it,
// writing the error response itself when it is not. Handlers return the
// error as-is when ok is false.
func ParseAndValidate(c *fiber.Ctx, dest interface{}) (bool, error) {
	if err := c.BodyParser(dest); err != nil {
		return false, BadRequest(c, "Cannot parse JSON")
	}
	if err := Validate.Struct(dest); err != nil {
		if fields := FormatValidationErrors(err); fields != nil {
			return false, ValidationError(c, fields)
		}
		return false, BadRequest(c, err.Error())
	}
	return true, nil
}
