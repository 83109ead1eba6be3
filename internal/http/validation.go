package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"budget/internal/core"
)

var (
	validatorsOnce sync.Once
	validatorsErr  error
)

// registerValidators adds the budget binding tags to gin's validator:
// isodate, trans_type and entry_type. Errors name fields by their JSON key.
func registerValidators() error {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			validatorsErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})

		tags := map[string]validator.Func{
			"isodate": func(fl validator.FieldLevel) bool {
				return core.Date(strings.TrimSpace(fl.Field().String())).Validate() == nil
			},
			"trans_type": func(fl validator.FieldLevel) bool {
				return core.TransType(strings.TrimSpace(fl.Field().String())).Valid()
			},
			"entry_type": func(fl validator.FieldLevel) bool {
				return core.EntryType(strings.TrimSpace(fl.Field().String())).Valid()
			},
		}
		for tag, fn := range tags {
			if err := v.RegisterValidation(tag, fn); err != nil {
				validatorsErr = fmt.Errorf("register %s: %w", tag, err)
				return
			}
		}
	})
	return validatorsErr
}

func isValidationError(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

// validationMessage renders validator errors as one readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "isodate":
			msgs = append(msgs, field+" must be a YYYY-MM-DD date")
		case "trans_type":
			msgs = append(msgs, field+" must be income or expense")
		case "entry_type":
			msgs = append(msgs, field+" must be to_give or to_receive")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
