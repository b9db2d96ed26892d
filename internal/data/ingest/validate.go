package ingest

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/sdgraph-backend/internal/domain/level"
	apperr "github.com/yungbote/sdgraph-backend/internal/pkg/errors"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared payload validator. Field names in errors
// are the JSON/column names, and the "level" rule accepts only the five
// canonical Level values.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("level", func(fl validator.FieldLevel) bool {
			l, ok := fl.Field().Interface().(level.Level)
			return ok && l.Valid()
		})
		validate = v
	})
	return validate
}

func validatePayload(kind Kind, rec Record) error {
	err := Validator().Struct(rec)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return apperr.Validationf(string(kind), fe.Field(), "is required")
		case "level":
			return apperr.Validationf(string(kind), fe.Field(), "%q is not one of %v", fe.Value(), level.All)
		default:
			return apperr.Validationf(string(kind), fe.Field(), "failed %q check", fe.Tag())
		}
	}
	return apperr.Validation(string(kind), "", err)
}
