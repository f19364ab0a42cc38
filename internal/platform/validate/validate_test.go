// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

package validate_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novagate/account-portal/internal/platform/apperr"
	"github.com/novagate/account-portal/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "full_name", "Nguyễn Văn An", false},
		{"empty_string", "full_name", "", true},
		{"whitespace_only", "full_name", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, http.StatusBadRequest, ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Username checks the sign-up username schema:
4-32 characters, letters and digits only.
*/
func TestValidator_Username(t *testing.T) {
	tests := []struct {
		name     string
		username string
		isValid  bool
	}{
		{"valid_short", "an99", true},
		{"valid_long", "nguyenvanan2026", true},
		{"too_short", "ab", false},
		{"too_long", "a234567890123456789012345678901234567890", false},
		{"underscore", "an_99", false},
		{"diacritics", "ănvàn", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Username("username", tt.username)

			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Password checks the shared password schema: 8-128 characters
with lowercase, uppercase, digit, and special character classes.
*/
func TestValidator_Password(t *testing.T) {
	tests := []struct {
		name     string
		password string
		isValid  bool
	}{
		{"valid", "Matkhau1!", true},
		{"valid_bracket_special", "Matkhau1[", true},
		{"too_short", "Mk1!", false},
		{"no_lowercase", "MATKHAU1!", false},
		{"no_uppercase", "matkhau1!", false},
		{"no_digit", "Matkhau!!", false},
		{"no_special", "Matkhau11", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Password("password", tt.password)

			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Match verifies password confirmation matching.
*/
func TestValidator_Match(t *testing.T) {
	v := &validate.Validator{}
	v.Match("password_confirmation", "Matkhau1!", "Matkhau1?")

	err := v.Err()
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "password_confirmation", ae.Details[0].Field)
}

/*
TestValidator_PhoneVN checks the Vietnamese mobile number rule used by the
sign-up form.
*/
func TestValidator_PhoneVN(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		isValid bool
	}{
		{"zero_prefix", "0901234567", true},
		{"plus84_prefix", "+84901234567", true},
		{"bare_84_prefix", "84901234567", true},
		{"viettel_3x", "0351234567", true},
		{"invalid_carrier", "0141234567", false},
		{"too_short", "090123456", false},
		{"too_long", "09012345678", false},
		{"formatted", "090 123 4567", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.PhoneVN("phone", tt.phone)

			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_PhoneLoose checks the relaxed dial-string rule used by the
change-phone form.
*/
func TestValidator_PhoneLoose(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		isValid bool
	}{
		{"plain", "0901234567", true},
		{"formatted", "+84 (90) 123-4567", true},
		{"letters", "phone123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.PhoneLoose("phone", tt.phone)

			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_OTP checks the one-time code rule: exactly n alphanumeric
characters.
*/
func TestValidator_OTP(t *testing.T) {
	tests := []struct {
		name    string
		otp     string
		isValid bool
	}{
		{"valid_digits", "123456", true},
		{"valid_mixed", "A1B2C3", true},
		{"too_short", "12345", false},
		{"too_long", "1234567", false},
		{"punctuation", "12-456", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.OTP("otp", tt.otp, 6)

			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_DateAdult checks the birth date rules of the sign-up form.
*/
func TestValidator_DateAdult(t *testing.T) {
	tests := []struct {
		name    string
		dob     string
		isValid bool
	}{
		{"adult", "1990-05-20", true},
		{"minor", "2020-01-01", false},
		{"not_a_date", "20/05/1990", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Date("dob", tt.dob).Adult("dob", tt.dob)

			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	// Multi-rule validation
	err := v.
		Username("username", "nguyenan").
		Password("password", "Matkhau1!").
		Match("password_confirmation", "Matkhau1!", "Matkhau1!").
		Email("email", "an@novagate.studio").
		PhoneVN("phone", "0901234567").
		OneOf("gender", "male", "male", "female", "prefer-not-to-say").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	// Every rule below fails: short username, weak password, bad email,
	// unknown gender.
	err := v.
		Username("username", "ab").
		Password("password", "weak").
		Email("email", "not-an-email").
		OneOf("gender", "other", "male", "female", "prefer-not-to-say").
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate all 4 errors
	assert.Len(t, ae.Details, 4)
}
