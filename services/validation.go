package services

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	apperrors "skillswap-server/utils/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	// Report fields by their wire names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// UserInput is the writable part of a user profile, used for registration and updates.
type UserInput struct {
	Name          string   `json:"name" validate:"notblank,min=2,max=100"`
	ProfilePhoto  string   `json:"profilePhoto"`
	Location      string   `json:"location" validate:"notblank,max=200"`
	Availability  []string `json:"availability" validate:"required,min=1,dive,notblank"`
	SkillsOffered []string `json:"skillsOffered" validate:"required,min=1,dive,notblank"`
	SkillsWanted  []string `json:"skillsWanted" validate:"required,min=1,dive,notblank"`
	PublicProfile *bool    `json:"publicProfile" validate:"required"`
	About         string   `json:"about" validate:"max=1000"`
}

type SwapInput struct {
	FromUserID   string `json:"fromUserId" validate:"notblank"`
	ToUserID     string `json:"toUserId" validate:"notblank"`
	SkillOffered string `json:"skillOffered" validate:"notblank,max=100"`
	SkillWanted  string `json:"skillWanted" validate:"notblank,max=100"`
	Message      string `json:"message" validate:"max=500"`
}

// validateStruct runs the struct tags of in and folds every violation into a
// single ValidationError.
func validateStruct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Validation("%v", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return apperrors.Validation("%s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	isList := fe.Kind() == reflect.Slice
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		if isList {
			return fmt.Sprintf("%s must not be empty", fe.Field())
		}
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
