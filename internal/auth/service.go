// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/novagate/account-portal/internal/platform/apperr"
	"github.com/novagate/account-portal/internal/platform/validate"
	"github.com/novagate/account-portal/internal/upstream"
	"github.com/novagate/account-portal/pkg/vntext"
)

// # Service Layer

// Service validates sign-in and sign-up input and orchestrates the upstream
// calls. A failed validation chain guarantees that no upstream request is
// issued for the operation.
type Service struct {
	client *Client
	logger *slog.Logger
}

// NewService constructs an auth [Service].
func NewService(client *Client, logger *slog.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// Credentials is the payload of a successful login or registration.
//
// User stays raw: the portal relays it for display without interpreting it.
type Credentials struct {
	User  json.RawMessage `json:"user"`
	Token string          `json:"token"`
}

// LoginInput is the sign-in form.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

/*
Login exchanges the sign-in form for a bearer credential.

Parameters:
  - ctx: context.Context
  - input: LoginInput

Returns:
  - *Credentials: Token plus the upstream user object
  - error: Validation failure, relayed upstream rejection, or transport failure
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*Credentials, error) {
	// The sign-in form only checks lengths; the full character-class rules
	// apply to sign-up, where the values are first created.
	v := &validate.Validator{}
	v.Required("username", input.Username).
		MinLen("username", input.Username, 4).
		Required("password", input.Password).
		MinLen("password", input.Password, 8)
	if err := v.Err(); err != nil {
		return nil, err
	}

	envelope, err := service.client.Login(ctx, input.Username, input.Password)
	if err != nil {
		return nil, apperr.Transport(err)
	}
	if appErr := envelope.AppError(); appErr != nil {
		return nil, appErr
	}

	return decodeCredentials(envelope)
}

// CheckUsername reports whether the username is still available.
// A nil error means available; an upstream rejection is relayed verbatim.
func (service *Service) CheckUsername(ctx context.Context, username string) error {
	v := &validate.Validator{}
	v.Username("username", username)
	if err := v.Err(); err != nil {
		return err
	}

	envelope, err := service.client.CheckUsername(ctx, username)
	if err != nil {
		return apperr.Transport(err)
	}
	if appErr := envelope.AppError(); appErr != nil {
		return appErr
	}
	return nil
}

// CheckEmail reports whether the email address is still available.
func (service *Service) CheckEmail(ctx context.Context, email string) error {
	v := &validate.Validator{}
	v.Required("email", email).Email("email", email)
	if err := v.Err(); err != nil {
		return err
	}

	envelope, err := service.client.CheckEmail(ctx, email)
	if err != nil {
		return apperr.Transport(err)
	}
	if appErr := envelope.AppError(); appErr != nil {
		return appErr
	}
	return nil
}

// SendOTP requests a one-time code for the sign-up phone number.
func (service *Service) SendOTP(ctx context.Context, phone string) error {
	phone = vntext.NormalizePhone(phone)

	v := &validate.Validator{}
	v.Required("phone_number", phone).PhoneVN("phone_number", phone)
	if err := v.Err(); err != nil {
		return err
	}

	envelope, err := service.client.SendOTP(ctx, phone)
	if err != nil {
		return apperr.Transport(err)
	}
	if appErr := envelope.AppError(); appErr != nil {
		return appErr
	}
	return nil
}

// RegisterInput is the complete sign-up form, collected across both steps
// of the dialog (profile fields plus the delivered OTP).
type RegisterInput struct {
	FullName             string `json:"full_name"`
	Username             string `json:"username"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Phone                string `json:"phone"`
	DOB                  string `json:"dob"`
	Gender               string `json:"gender"`
	Address              string `json:"address"`
	Email                string `json:"email"`
	OTP                  string `json:"otp"`
}

/*
Register submits the sign-up form and returns the fresh credential.

Description: Input is normalized (NFC names, canonical dial string, uppercase
OTP) before validation, mirroring what the sign-up dialog sent. The upstream
rejects duplicates and wrong OTPs with its own envelope codes, which are
relayed untouched.

Parameters:
  - ctx: context.Context
  - input: RegisterInput

Returns:
  - *Credentials: Token plus the upstream user object
  - error: Validation failure, relayed upstream rejection, or transport failure
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*Credentials, error) {
	input.FullName = vntext.Normalize(input.FullName)
	input.Address = vntext.Normalize(input.Address)
	input.Phone = vntext.NormalizePhone(input.Phone)
	input.OTP = vntext.NormalizeOTP(input.OTP)

	v := &validate.Validator{}
	v.Required("full_name", input.FullName).
		Username("username", input.Username).
		Password("password", input.Password).
		Match("password_confirmation", input.Password, input.PasswordConfirmation).
		PhoneVN("phone", input.Phone).
		Required("email", input.Email).
		Email("email", input.Email).
		Date("dob", input.DOB).
		Adult("dob", input.DOB).
		OneOf("gender", input.Gender, "male", "female", "prefer-not-to-say").
		Required("address", input.Address).
		MinLen("address", input.Address, 5).
		OTP("otp", input.OTP, 6)
	if err := v.Err(); err != nil {
		return nil, err
	}

	envelope, err := service.client.Register(ctx, RegisterForm{
		FullName:             input.FullName,
		Username:             input.Username,
		Password:             input.Password,
		PasswordConfirmation: input.PasswordConfirmation,
		Phone:                input.Phone,
		DOB:                  input.DOB,
		Gender:               input.Gender,
		Address:              input.Address,
		Email:                input.Email,
		OTP:                  input.OTP,
	})
	if err != nil {
		return nil, apperr.Transport(err)
	}
	if appErr := envelope.AppError(); appErr != nil {
		return nil, appErr
	}

	return decodeCredentials(envelope)
}

// decodeCredentials extracts the token payload from an accepted envelope.
func decodeCredentials(envelope *upstream.Envelope) (*Credentials, error) {
	credentials := &Credentials{}
	if err := envelope.DecodeData(credentials); err != nil {
		return nil, apperr.Transport(err)
	}
	if credentials.Token == "" {
		return nil, apperr.Transport(fmt.Errorf("auth: accepted envelope carries no token"))
	}
	return credentials, nil
}
