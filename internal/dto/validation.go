package dto

import (
	"fmt"
	"regexp"

	"summarizer-session-be/internal/entity"
	"summarizer-session-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

// Topics end up on the engine command line and below its data directory.
var topicPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("topic", func(fl validator.FieldLevel) bool {
		return topicPattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("interaction_value", func(fl validator.FieldLevel) bool {
		_, err := entity.ParseInteractionValue(fl.Field().String())
		return err == nil
	})
}

// Validate checks any request struct in this package. Failures wrap apperror.ErrInvalidInput.
func Validate(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrInvalidInput, err)
	}
	return nil
}

// ValidateTopic applies the topic rule to a bare value.
func ValidateTopic(topic string) error {
	if err := validate.Var(topic, "required,topic"); err != nil {
		return fmt.Errorf("%w: topic %q: %v", apperror.ErrInvalidInput, topic, err)
	}
	return nil
}
