package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type signupInput struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6" errorMsg:"Password must be at least 6 characters"`
	PageSize int    `validate:"gte=1"`
}

func TestValidateStruct(t *testing.T) {
	v := New()
	errs := ValidateStruct(v, &signupInput{Name: "   ", Email: "nope", Password: "123", PageSize: 0})
	assert.Equal(t, map[string]string{
		"name":      "This field is required",
		"email":     "Value must be a valid email address",
		"password":  "Password must be at least 6 characters",
		"page_size": "Value should be greater than or equal to 1",
	}, errs)

	errs = ValidateStruct(v, signupInput{Name: "Ann", Email: "ann@example.com", Password: "secret1", PageSize: 1})
	assert.Nil(t, errs)
}
