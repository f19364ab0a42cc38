// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// This package mirrors the browser-side form schemas: every rule carries the
// exact localized message the user would have seen in the form, and a failed
// chain guarantees that no upstream network call is issued for the request.
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/novagate/account-portal/internal/platform/apperr"
)

var (
	// usernameRegex allows letters and digits only.
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

	// phoneRegex matches Vietnamese mobile numbers (0, 84 or +84 prefix).
	phoneRegex = regexp.MustCompile(`^(\+84|84|0)[35789][0-9]{8}$`)

	// phoneLooseRegex matches a generic dial string (digits, +, -, spaces, parens).
	phoneLooseRegex = regexp.MustCompile(`^[0-9+\-\s()]+$`)

	// otpRegex matches a one-time code of letters and digits.
	otpRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

	passwordLower   = regexp.MustCompile(`[a-z]`)
	passwordUpper   = regexp.MustCompile(`[A-Z]`)
	passwordDigit   = regexp.MustCompile(`[0-9]`)
	passwordSpecial = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
)

// ErrInvalidJSON is returned when the request body cannot be decoded.
var ErrInvalidJSON = apperr.InvalidJSON()

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, apperr.Localized{
			EN: "This field is required",
			VI: "Trường này không được để trống",
		})
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, apperr.Localized{
			EN: fmt.Sprintf("Maximum %d characters", max),
			VI: fmt.Sprintf("Không được vượt quá %d ký tự", max),
		})
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, apperr.Localized{
			EN: fmt.Sprintf("Minimum %d characters", min),
			VI: fmt.Sprintf("Phải có ít nhất %d ký tự", min),
		})
	}
	return v
}

// Username enforces the sign-up form's username schema: 4-32 characters,
// letters and digits only.
func (v *Validator) Username(field, value string) *Validator {
	if utf8.RuneCountInString(value) < 4 {
		v.add(field, apperr.Localized{
			EN: "Username must be at least 4 characters",
			VI: "Tên đăng nhập phải có ít nhất 4 ký tự",
		})
		return v
	}
	if utf8.RuneCountInString(value) > 32 {
		v.add(field, apperr.Localized{
			EN: "Username must not exceed 32 characters",
			VI: "Tên đăng nhập không được vượt quá 32 ký tự",
		})
		return v
	}
	if !usernameRegex.MatchString(value) {
		v.add(field, apperr.Localized{
			EN: "Username may only contain letters and digits",
			VI: "Tên đăng nhập chỉ được chứa chữ cái và số",
		})
	}
	return v
}

// Password enforces the shared password schema: 8-128 characters with at
// least one lowercase letter, one uppercase letter, one digit, and one
// special character.
func (v *Validator) Password(field, value string) *Validator {
	switch {
	case utf8.RuneCountInString(value) < 8:
		v.add(field, apperr.Localized{
			EN: "Password must be at least 8 characters",
			VI: "Mật khẩu phải có ít nhất 8 ký tự",
		})
	case utf8.RuneCountInString(value) > 128:
		v.add(field, apperr.Localized{
			EN: "Password must not exceed 128 characters",
			VI: "Mật khẩu không được vượt quá 128 ký tự",
		})
	case !passwordLower.MatchString(value):
		v.add(field, apperr.Localized{
			EN: "Password must contain at least one lowercase letter",
			VI: "Mật khẩu phải chứa ít nhất một chữ cái thường",
		})
	case !passwordUpper.MatchString(value):
		v.add(field, apperr.Localized{
			EN: "Password must contain at least one uppercase letter",
			VI: "Mật khẩu phải chứa ít nhất một chữ cái hoa",
		})
	case !passwordDigit.MatchString(value):
		v.add(field, apperr.Localized{
			EN: "Password must contain at least one digit",
			VI: "Mật khẩu phải chứa ít nhất một số",
		})
	case !passwordSpecial.MatchString(value):
		v.add(field, apperr.Localized{
			EN: "Password must contain at least one special character",
			VI: "Mật khẩu phải chứa ít nhất một ký tự đặc biệt",
		})
	}
	return v
}

// Match fails if value and confirmation differ. Used for password
// confirmation fields; the error lands on the confirmation field.
func (v *Validator) Match(field, value, confirmation string) *Validator {
	if value != confirmation {
		v.add(field, apperr.Localized{
			EN: "Confirmation does not match",
			VI: "Mật khẩu xác nhận không khớp",
		})
	}
	return v
}

// Email fails if the value is not a valid RFC 5322 email address.
func (v *Validator) Email(field, value string) *Validator {
	if _, err := mail.ParseAddress(value); err != nil {
		v.add(field, apperr.Localized{
			EN: "Must be a valid email address",
			VI: "Email không hợp lệ",
		})
	}
	return v
}

// PhoneVN fails unless the value is a Vietnamese mobile number
// (e.g. 0901234567, +84901234567).
func (v *Validator) PhoneVN(field, value string) *Validator {
	if !phoneRegex.MatchString(value) {
		v.add(field, apperr.Localized{
			EN: "Invalid phone number (e.g. 0901234567, +84901234567)",
			VI: "Số điện thoại không hợp lệ (VD: 0901234567, +84901234567)",
		})
	}
	return v
}

// PhoneLoose fails unless the value looks like a dial string. The change-phone
// form accepts looser input than sign-up because legacy accounts carry
// formatted numbers.
func (v *Validator) PhoneLoose(field, value string) *Validator {
	if !phoneLooseRegex.MatchString(value) {
		v.add(field, apperr.Localized{
			EN: "Invalid phone number",
			VI: "Số điện thoại không hợp lệ",
		})
	}
	return v
}

// OTP fails unless the value is an alphanumeric code of exactly n characters.
func (v *Validator) OTP(field, value string, n int) *Validator {
	if utf8.RuneCountInString(value) != n || !otpRegex.MatchString(value) {
		v.add(field, apperr.Localized{
			EN: "Please enter a valid OTP code",
			VI: "Vui lòng nhập mã OTP hợp lệ",
		})
	}
	return v
}

// Date fails unless the value is a calendar date in YYYY-MM-DD form.
func (v *Validator) Date(field, value string) *Validator {
	if _, err := time.Parse("2006-01-02", value); err != nil {
		v.add(field, apperr.Localized{
			EN: "Please select a valid date",
			VI: "Vui lòng chọn ngày hợp lệ",
		})
	}
	return v
}

// Adult fails unless the YYYY-MM-DD value is at least 18 years in the past.
// Call after [Validator.Date]; an unparsable value is already reported there.
func (v *Validator) Adult(field, value string) *Validator {
	dob, err := time.Parse("2006-01-02", value)
	if err != nil {
		return v
	}
	if dob.AddDate(18, 0, 0).After(time.Now()) {
		v.add(field, apperr.Localized{
			EN: "You must be at least 18 years old",
			VI: "Bạn phải đủ 18 tuổi",
		})
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, apperr.Localized{
		EN: fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")),
		VI: fmt.Sprintf("Phải là một trong: %s", strings.Join(allowed, ", ")),
	})
	return v
}

// Custom adds a failure with a custom localized message if the condition is true.
func (v *Validator) Custom(field string, failed bool, message apperr.Localized) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a validation [apperr.AppError] if any rules failed,
// or nil if all rules passed.
//
// This is the only output method — call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError(v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field string, message apperr.Localized) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}
