// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

package account

import (
	"context"

	"github.com/novagate/account-portal/internal/platform/apperr"
	"github.com/novagate/account-portal/internal/profile"
	"github.com/novagate/account-portal/internal/upstream"
	"github.com/novagate/account-portal/internal/verification"
	"github.com/novagate/account-portal/pkg/uuid"
)

// # Upstream Paths

const (
	pathGetProfile     = "/api/v2/auth/getProfile"
	pathChangeEmail    = "/api/v2/auth/changeEmail"
	pathChangePhone    = "/api/v2/auth/changePhone"
	pathChangePassword = "/api/v2/auth/changePassword"
	pathUpdateProfile  = "/api/v2/auth/updateProfile"
	pathAddDocument    = "/api/v2/auth/addIdentityDocument"
	pathSendPhoneOTP   = "/api/v2/auth/sendOTPForVerifyPhone"
	pathVerifyPhone    = "/api/v2/auth/verifyPhone"
	pathCaptcha        = "/api/v2/captcha"
	pathVerifyCaptcha  = "/api/v2/captcha/verify"
	pathActivityLogs   = "/api/v2/userActivityLogs"
)

// Client holds the typed authenticated operations of the upstream account
// API. The credential rides in the request context; this client never
// touches it directly.
//
// Client implements [profile.Source] and [verification.ChallengeFetcher].
type Client struct {
	gateway *upstream.Client
}

// NewClient constructs an account [Client] on top of the request gateway.
func NewClient(gateway *upstream.Client) *Client {
	return &Client{gateway: gateway}
}

// # Profile

// FetchProfile retrieves the signed-in user's record.
func (c *Client) FetchProfile(ctx context.Context) (*profile.Profile, error) {
	envelope, err := c.gateway.Get(ctx, pathGetProfile, nil)
	if err != nil {
		// A dead credential must still reach the cache layer, which clears
		// the slot before the error propagates.
		if appErr := relayRevoked(envelope, err); appErr != nil {
			return nil, appErr
		}
		return nil, apperr.Transport(err)
	}
	if appErr := envelope.AppError(); appErr != nil {
		return nil, appErr
	}

	record := &profile.Profile{}
	if err := envelope.DecodeData(record); err != nil {
		return nil, apperr.Transport(err)
	}
	return record, nil
}

// # Challenges

// FetchChallenge retrieves a fresh captcha image and tags it with a local ID.
// The upstream issues anonymous blobs; the ID exists so the portal can tell
// one challenge from the next.
func (c *Client) FetchChallenge(ctx context.Context) (*verification.Challenge, error) {
	image, contentType, err := c.gateway.FetchImage(ctx, pathCaptcha)
	if err != nil {
		return nil, err
	}
	return &verification.Challenge{
		ID:          uuid.New(),
		Image:       image,
		ContentType: contentType,
	}, nil
}

// VerifyCaptcha submits a captcha answer for standalone verification.
// Only the identity-document flow uses this two-phase shape.
func (c *Client) VerifyCaptcha(ctx context.Context, answer string) (*upstream.Envelope, error) {
	return c.gateway.PostJSON(ctx, pathVerifyCaptcha, map[string]string{
		"captcha": answer,
	})
}

// # Mutations

// ChangeEmailPayload is the upstream body of the change-email endpoint.
type ChangeEmailPayload struct {
	Email    string `json:"email"`
	NewEmail string `json:"new_email"`
	Captcha  string `json:"captcha"`
}

// ChangeEmail replaces the account's email address.
func (c *Client) ChangeEmail(ctx context.Context, payload ChangeEmailPayload) (*upstream.Envelope, error) {
	return c.gateway.PostJSON(ctx, pathChangeEmail, payload)
}

// ChangePhonePayload is the upstream body of the change-phone endpoint.
type ChangePhonePayload struct {
	Phone    string `json:"phone"`
	NewPhone string `json:"new_phone"`
	Captcha  string `json:"captcha"`
}

// ChangePhone replaces the account's phone number.
func (c *Client) ChangePhone(ctx context.Context, payload ChangePhonePayload) (*upstream.Envelope, error) {
	return c.gateway.PostJSON(ctx, pathChangePhone, payload)
}

// ChangePasswordPayload is the upstream body of the change-password endpoint.
type ChangePasswordPayload struct {
	OldPassword          string `json:"old_password"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Captcha              string `json:"captcha"`
}

// ChangePassword replaces the account's password. An accepted change
// invalidates the current credential upstream.
func (c *Client) ChangePassword(ctx context.Context, payload ChangePasswordPayload) (*upstream.Envelope, error) {
	return c.gateway.PostJSON(ctx, pathChangePassword, payload)
}

// UpdateProfilePayload is the upstream body of the update-profile endpoint.
type UpdateProfilePayload struct {
	FullName string `json:"full_name"`
	DOB      string `json:"dob"`
	Gender   string `json:"gender"`
	Address  string `json:"address"`
	Captcha  string `json:"captcha"`
}

// UpdateProfile replaces the account's personal information.
func (c *Client) UpdateProfile(ctx context.Context, payload UpdateProfilePayload) (*upstream.Envelope, error) {
	return c.gateway.PostJSON(ctx, pathUpdateProfile, payload)
}

// AddDocumentPayload is the upstream body of the add-identity-document
// endpoint. The captcha was already consumed by VerifyCaptcha by the time
// this call is issued.
type AddDocumentPayload struct {
	DocumentNumber string `json:"document_number"`
	DocumentType   string `json:"document_type"`
	PlaceOfIssue   string `json:"place_of_issue"`
	IssueDate      string `json:"issue_date"`
	Captcha        string `json:"captcha"`
}

// AddIdentityDocument attaches an identity paper to the account.
func (c *Client) AddIdentityDocument(ctx context.Context, payload AddDocumentPayload) (*upstream.Envelope, error) {
	return c.gateway.PostJSON(ctx, pathAddDocument, payload)
}

// # Phone Verification

// SendPhoneOTP requests a one-time code for the account's own phone number.
// The upstream derives the number from the credential; there is no body.
func (c *Client) SendPhoneOTP(ctx context.Context) (*upstream.Envelope, error) {
	return c.gateway.PostJSON(ctx, pathSendPhoneOTP, struct{}{})
}

// VerifyPhonePayload is the upstream body of the phone-verification endpoint.
type VerifyPhonePayload struct {
	OTP     string `json:"otp"`
	Captcha string `json:"captcha"`
}

// VerifyPhone confirms the account's phone number with the delivered code.
func (c *Client) VerifyPhone(ctx context.Context, payload VerifyPhonePayload) (*upstream.Envelope, error) {
	return c.gateway.PostJSON(ctx, pathVerifyPhone, payload)
}

// # Activity Log

// activityLogsData is the data payload of the activity-log endpoint.
type activityLogsData struct {
	Logs []Activity `json:"user_activity_logs"`
}

// ActivityLogs retrieves the full security activity history. The upstream
// returns the whole array; paging happens portal-side.
func (c *Client) ActivityLogs(ctx context.Context) ([]Activity, error) {
	envelope, err := c.gateway.Get(ctx, pathActivityLogs, nil)
	if err != nil {
		if appErr := relayRevoked(envelope, err); appErr != nil {
			return nil, appErr
		}
		return nil, apperr.Transport(err)
	}
	if appErr := envelope.AppError(); appErr != nil {
		return nil, appErr
	}

	data := &activityLogsData{}
	if err := envelope.DecodeData(data); err != nil {
		return nil, apperr.Transport(err)
	}
	return data.Logs, nil
}

// relayRevoked wraps a credential-revocation result so that errors.Is still
// finds [upstream.ErrCredentialRevoked] under the [apperr.AppError] shell.
// It returns nil for ordinary transport failures.
func relayRevoked(envelope *upstream.Envelope, err error) *apperr.AppError {
	if envelope == nil {
		return nil
	}
	appErr := envelope.AppError()
	if appErr == nil {
		return nil
	}
	appErr.Cause = err
	return appErr
}
