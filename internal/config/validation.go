package config

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"git.home.luguber.info/inful/continuity/internal/foundation/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct-level constraints and returns a validation error
// naming every offending field.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.WrapError(err, errors.CategoryValidation, "invalid configuration").Fatal().Build()
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", strings.TrimPrefix(fe.Namespace(), "Config."), fe.Tag()))
	}
	return errors.ValidationError("invalid configuration: " + strings.Join(fields, ", ")).
		WithContext("fields", fields).
		Build()
}
