// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/novagate/account-portal/internal/platform/apperr"
	"github.com/novagate/account-portal/internal/platform/ctxutil"
	"github.com/novagate/account-portal/internal/platform/validate"
	"github.com/novagate/account-portal/internal/profile"
	"github.com/novagate/account-portal/internal/upstream"
	"github.com/novagate/account-portal/internal/verification"
	"github.com/novagate/account-portal/pkg/pagination"
	"github.com/novagate/account-portal/pkg/vntext"
)

// # Service Layer

// Service orchestrates the authenticated account operations: profile reads
// through the cache, challenge-guarded mutations through the flow registry,
// and the activity log.
type Service struct {
	client *Client
	flows  *verification.Registry
	cache  *profile.Cache
	logger *slog.Logger
}

// NewService constructs an account [Service].
func NewService(client *Client, flows *verification.Registry, cache *profile.Cache, logger *slog.Logger) *Service {
	return &Service{client: client, flows: flows, cache: cache, logger: logger}
}

// # Profile

// Profile returns the signed-in user's record, served from the cache when
// warm.
func (service *Service) Profile(ctx context.Context) (*profile.Profile, error) {
	credential, ok := ctxutil.GetCredential(ctx)
	if !ok {
		return nil, apperr.Unauthorized(apperr.SessionExpired)
	}
	return service.cache.Get(ctx, credential)
}

// RefreshProfile forces a fresh fetch, replacing the cached slot wholesale.
func (service *Service) RefreshProfile(ctx context.Context) (*profile.Profile, error) {
	credential, ok := ctxutil.GetCredential(ctx)
	if !ok {
		return nil, apperr.Unauthorized(apperr.SessionExpired)
	}
	return service.cache.Refresh(ctx, credential)
}

// # Verification Flows

// OpenFlow creates a verification flow with its first challenge loaded.
func (service *Service) OpenFlow(ctx context.Context) (*verification.Flow, error) {
	return service.flows.Open(ctx)
}

// FindFlow returns an open flow by ID.
func (service *Service) FindFlow(ctx context.Context, id string) (*verification.Flow, error) {
	return service.flows.Find(ctx, id)
}

// RefreshFlow replaces a flow's challenge. Backs the "reload code" button.
func (service *Service) RefreshFlow(ctx context.Context, id string) (*verification.Flow, error) {
	return service.flows.Refresh(ctx, id)
}

// # Guarded Mutations

// ChangeEmailInput is the change-email form.
type ChangeEmailInput struct {
	Email    string `json:"email"`
	NewEmail string `json:"new_email"`
	Captcha  string `json:"captcha"`
}

// ChangeEmail replaces the account's email address through its flow.
func (service *Service) ChangeEmail(ctx context.Context, flowID string, input ChangeEmailInput) error {
	input.Captcha = strings.TrimSpace(input.Captcha)

	v := &validate.Validator{}
	v.Required("email", input.Email).
		Email("email", input.Email).
		Required("new_email", input.NewEmail).
		Email("new_email", input.NewEmail).
		Required("captcha", input.Captcha)
	if err := v.Err(); err != nil {
		return err
	}

	envelope, err := service.flows.Submit(ctx, flowID, func(ctx context.Context) (*upstream.Envelope, error) {
		return service.client.ChangeEmail(ctx, ChangeEmailPayload{
			Email:    input.Email,
			NewEmail: input.NewEmail,
			Captcha:  input.Captcha,
		})
	})
	return relay(envelope, err)
}

// ChangePhoneInput is the change-phone form. Both numbers take the loose
// dial-string shape because legacy accounts carry formatted values.
type ChangePhoneInput struct {
	Phone    string `json:"phone"`
	NewPhone string `json:"new_phone"`
	Captcha  string `json:"captcha"`
}

// ChangePhone replaces the account's phone number through its flow.
func (service *Service) ChangePhone(ctx context.Context, flowID string, input ChangePhoneInput) error {
	input.Captcha = strings.TrimSpace(input.Captcha)

	v := &validate.Validator{}
	v.Required("phone", input.Phone).
		PhoneLoose("phone", input.Phone).
		Required("new_phone", input.NewPhone).
		PhoneLoose("new_phone", input.NewPhone).
		Required("captcha", input.Captcha)
	if err := v.Err(); err != nil {
		return err
	}

	envelope, err := service.flows.Submit(ctx, flowID, func(ctx context.Context) (*upstream.Envelope, error) {
		return service.client.ChangePhone(ctx, ChangePhonePayload{
			Phone:    vntext.NormalizePhone(input.Phone),
			NewPhone: vntext.NormalizePhone(input.NewPhone),
			Captcha:  input.Captcha,
		})
	})
	return relay(envelope, err)
}

// ChangePasswordInput is the change-password form.
type ChangePasswordInput struct {
	OldPassword          string `json:"old_password"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Captcha              string `json:"captcha"`
}

/*
ChangePassword replaces the account's password through its flow.

Description: An accepted change invalidates the current credential upstream,
so the caller must clear the session and send the user back to the login
entry point. The service only reports success; cookie teardown is the
handler's step.

Parameters:
  - ctx: context.Context
  - flowID: string
  - input: ChangePasswordInput

Returns:
  - error: Validation failure, relayed upstream rejection, or transport failure
*/
func (service *Service) ChangePassword(ctx context.Context, flowID string, input ChangePasswordInput) error {
	input.Captcha = strings.TrimSpace(input.Captcha)

	v := &validate.Validator{}
	v.Required("old_password", input.OldPassword).
		Password("password", input.Password).
		Required("password_confirmation", input.PasswordConfirmation).
		Match("password_confirmation", input.Password, input.PasswordConfirmation).
		Required("captcha", input.Captcha)
	if err := v.Err(); err != nil {
		return err
	}

	envelope, err := service.flows.Submit(ctx, flowID, func(ctx context.Context) (*upstream.Envelope, error) {
		return service.client.ChangePassword(ctx, ChangePasswordPayload{
			OldPassword:          input.OldPassword,
			Password:             input.Password,
			PasswordConfirmation: input.PasswordConfirmation,
			Captcha:              input.Captcha,
		})
	})
	if err := relay(envelope, err); err != nil {
		return err
	}

	// The old credential is dead upstream; drop the stale profile with it.
	if credential, ok := ctxutil.GetCredential(ctx); ok {
		service.cache.Invalidate(ctx, credential)
	}
	return nil
}

// UpdateProfileInput is the personal-information form.
type UpdateProfileInput struct {
	FullName string `json:"full_name"`
	DOB      string `json:"dob"`
	Gender   string `json:"gender"`
	Address  string `json:"address"`
	Captcha  string `json:"captcha"`
}

// UpdateProfile replaces the account's personal information through its flow.
// On success the cached profile is refreshed so the next read shows the new
// values.
func (service *Service) UpdateProfile(ctx context.Context, flowID string, input UpdateProfileInput) (*profile.Profile, error) {
	input.FullName = vntext.Normalize(input.FullName)
	input.Address = vntext.Normalize(input.Address)
	input.Captcha = strings.TrimSpace(input.Captcha)

	v := &validate.Validator{}
	v.Required("full_name", input.FullName).
		Date("dob", input.DOB).
		OneOf("gender", input.Gender, profile.GenderMale, profile.GenderFemale, profile.GenderUndisclosed).
		Required("address", input.Address).
		Required("captcha", input.Captcha)
	if err := v.Err(); err != nil {
		return nil, err
	}

	envelope, err := service.flows.Submit(ctx, flowID, func(ctx context.Context) (*upstream.Envelope, error) {
		return service.client.UpdateProfile(ctx, UpdateProfilePayload{
			FullName: input.FullName,
			DOB:      input.DOB,
			Gender:   input.Gender,
			Address:  input.Address,
			Captcha:  input.Captcha,
		})
	})
	if err := relay(envelope, err); err != nil {
		return nil, err
	}

	return service.RefreshProfile(ctx)
}

// AddDocumentInput is the identity-document form.
type AddDocumentInput struct {
	DocumentNumber string `json:"document_number"`
	DocumentType   string `json:"document_type"`
	PlaceOfIssue   string `json:"place_of_issue"`
	IssueDate      string `json:"issue_date"`
	Captcha        string `json:"captcha"`
}

/*
AddIdentityDocument attaches an identity paper to the account.

Description: This mutation is two-phase inside its flow: the captcha answer
is verified standalone first, and only an accepted answer lets the document
call go out. A rejected answer relays the upstream code and the document
endpoint is never touched. Both phases together consume one challenge.

Parameters:
  - ctx: context.Context
  - flowID: string
  - input: AddDocumentInput

Returns:
  - *profile.Profile: The refreshed profile including the new document
  - error: Validation failure, relayed upstream rejection, or transport failure
*/
func (service *Service) AddIdentityDocument(ctx context.Context, flowID string, input AddDocumentInput) (*profile.Profile, error) {
	input.PlaceOfIssue = vntext.Normalize(input.PlaceOfIssue)
	input.Captcha = strings.TrimSpace(input.Captcha)

	v := &validate.Validator{}
	v.Required("document_number", input.DocumentNumber).
		OneOf("document_type", input.DocumentType, profile.DocumentTypeNationalID, profile.DocumentTypePassport).
		Required("place_of_issue", input.PlaceOfIssue).
		Date("issue_date", input.IssueDate).
		Required("captcha", input.Captcha)
	if err := v.Err(); err != nil {
		return nil, err
	}

	envelope, err := service.flows.Submit(ctx, flowID, func(ctx context.Context) (*upstream.Envelope, error) {
		verified, err := service.client.VerifyCaptcha(ctx, input.Captcha)
		if err != nil || !verified.OK() {
			return verified, err
		}
		return service.client.AddIdentityDocument(ctx, AddDocumentPayload{
			DocumentNumber: input.DocumentNumber,
			DocumentType:   input.DocumentType,
			PlaceOfIssue:   input.PlaceOfIssue,
			IssueDate:      input.IssueDate,
			Captcha:        input.Captcha,
		})
	})
	if err := relay(envelope, err); err != nil {
		return nil, err
	}

	return service.RefreshProfile(ctx)
}

// # Phone Verification

// SendPhoneOTP requests a one-time code for the account's own phone number.
// Not flow-guarded; the upstream rate-limits delivery itself.
func (service *Service) SendPhoneOTP(ctx context.Context) error {
	envelope, err := service.client.SendPhoneOTP(ctx)
	return relay(envelope, err)
}

// VerifyPhoneInput is the phone-activation form.
type VerifyPhoneInput struct {
	OTP     string `json:"otp"`
	Captcha string `json:"captcha"`
}

// VerifyPhone confirms the account's phone number through its flow. On
// success the cached profile is refreshed so the activation banner clears.
func (service *Service) VerifyPhone(ctx context.Context, flowID string, input VerifyPhoneInput) (*profile.Profile, error) {
	input.OTP = vntext.NormalizeOTP(input.OTP)
	input.Captcha = strings.TrimSpace(input.Captcha)

	v := &validate.Validator{}
	v.OTP("otp", input.OTP, 6).
		Required("captcha", input.Captcha)
	if err := v.Err(); err != nil {
		return nil, err
	}

	envelope, err := service.flows.Submit(ctx, flowID, func(ctx context.Context) (*upstream.Envelope, error) {
		return service.client.VerifyPhone(ctx, VerifyPhonePayload{
			OTP:     input.OTP,
			Captcha: input.Captcha,
		})
	})
	if err := relay(envelope, err); err != nil {
		return nil, err
	}

	return service.RefreshProfile(ctx)
}

// # Activity Log

// Activities returns one page of the account's security activity history,
// newest first as delivered upstream, with display labels attached.
func (service *Service) Activities(ctx context.Context, params pagination.Params) ([]Activity, pagination.Meta, error) {
	logs, err := service.client.ActivityLogs(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	start, end := params.Window(len(logs))
	page := make([]Activity, 0, end-start)
	for _, activity := range logs[start:end] {
		activity.ActionLabel = ActionLabel(activity.Action)
		page = append(page, activity)
	}

	return page, pagination.NewMeta(params.Page, params.Limit, len(logs)), nil
}

// relay folds a submit result into the service's error taxonomy: flow and
// validation errors pass through, credential revocation keeps its sentinel
// in the chain, transport failures are wrapped, and a rejected envelope is
// relayed verbatim.
func relay(envelope *upstream.Envelope, err error) error {
	if err != nil {
		if apperr.IsAppError(err) {
			return err
		}
		if errors.Is(err, upstream.ErrCredentialRevoked) {
			appErr := apperr.Unauthorized(apperr.SessionExpired)
			appErr.Cause = err
			return appErr
		}
		return apperr.Transport(err)
	}
	if appErr := envelope.AppError(); appErr != nil {
		return appErr
	}
	return nil
}
