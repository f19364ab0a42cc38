// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

/*
Package account provides the HTTP delivery layer for the signed-in area:
profile reads, challenge-guarded mutations, phone activation, and the
security activity log.

# Security

All endpoints require the credential cookie, enforced by the
RequireCredential middleware in front of this router. When the upstream
revokes the credential mid-request the handler clears the cookie before
answering; the frontend performs its own redirect to the login entry point.
*/
package account

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/novagate/account-portal/internal/platform/request"
	"github.com/novagate/account-portal/internal/platform/respond"
	"github.com/novagate/account-portal/internal/platform/validate"
	"github.com/novagate/account-portal/internal/session"
	"github.com/novagate/account-portal/internal/upstream"
	"github.com/novagate/account-portal/internal/verification"
	"github.com/novagate/account-portal/pkg/pagination"
)

// Handler implements the HTTP layer for the signed-in account area.
type Handler struct {
	accountService *Service
	sessions       *session.Store
}

// NewHandler constructs an account [Handler].
func NewHandler(service *Service, sessions *session.Store) *Handler {
	return &Handler{accountService: service, sessions: sessions}
}

// Routes returns a [chi.Router] configured with the account domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Profile
	router.Get("/profile", handler.getProfile)
	router.Post("/profile/refresh", handler.refreshProfile)
	router.Post("/profile", handler.updateProfile)

	// Verification Flows
	router.Post("/captcha/flows", handler.openFlow)
	router.Get("/captcha/flows/{id}", handler.getFlow)
	router.Get("/captcha/flows/{id}/image", handler.getFlowImage)
	router.Post("/captcha/flows/{id}/refresh", handler.refreshFlow)

	// Guarded Mutations
	router.Post("/email", handler.changeEmail)
	router.Post("/phone", handler.changePhone)
	router.Post("/password", handler.changePassword)
	router.Post("/identity-documents", handler.addIdentityDocument)

	// Phone Activation
	router.Post("/phone/send-otp", handler.sendPhoneOTP)
	router.Post("/phone/verify", handler.verifyPhone)

	// Activity Log
	router.Get("/activities", handler.listActivities)

	return router
}

// fail writes an error response. Credential revocation additionally clears
// the session cookie; the redirect stays a separate frontend step.
func (handler *Handler) fail(writer http.ResponseWriter, request *http.Request, err error) {
	if errors.Is(err, upstream.ErrCredentialRevoked) {
		handler.sessions.Clear(writer)
	}
	respond.Error(writer, request, err)
}

// # Profile Endpoints

/*
GET /api/v1/account/profile.

Description: Retrieves the signed-in user's record, served from the
per-session cache when warm.

Response:
  - 200: Profile
  - 401: Session expired (cookie cleared on revocation)
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	record, err := handler.accountService.Profile(request.Context())
	if err != nil {
		handler.fail(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

/*
POST /api/v1/account/profile/refresh.

Description: Forces a fresh upstream fetch, replacing the cached slot
wholesale. Backs the refresh that authenticated views perform on mount.

Response:
  - 200: Profile
  - 401: Session expired (cookie cleared on revocation)
*/
func (handler *Handler) refreshProfile(writer http.ResponseWriter, request *http.Request) {
	record, err := handler.accountService.RefreshProfile(request.Context())
	if err != nil {
		handler.fail(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

// # Verification Flow Endpoints

// flowView is the client-facing projection of a flow. The image itself is
// served by the dedicated image endpoint, never inlined.
type flowView struct {
	ID          string             `json:"id"`
	State       verification.State `json:"state"`
	ChallengeID string             `json:"challenge_id,omitempty"`
	FetchCount  int                `json:"fetch_count"`
}

func newFlowView(flow *verification.Flow) flowView {
	view := flowView{
		ID:         flow.ID,
		State:      flow.State,
		FetchCount: flow.FetchCount,
	}
	if flow.Challenge != nil {
		view.ChallengeID = flow.Challenge.ID
	}
	return view
}

/*
POST /api/v1/account/captcha/flows.

Description: Opens a verification flow for one mutation form and loads its
first challenge. Each form owns exactly one flow.

Response:
  - 200: flowView in ChallengeReady state
  - 502: Challenge fetch failure (the form shows a retry affordance)
*/
func (handler *Handler) openFlow(writer http.ResponseWriter, request *http.Request) {
	flow, err := handler.accountService.OpenFlow(request.Context())
	if err != nil {
		handler.fail(writer, request, err)
		return
	}
	respond.OK(writer, newFlowView(flow))
}

/*
GET /api/v1/account/captcha/flows/{id}.

Description: Returns the flow's current state.

Response:
  - 200: flowView
  - 404: Flow expired or unknown
*/
func (handler *Handler) getFlow(writer http.ResponseWriter, request *http.Request) {
	flow, err := handler.accountService.FindFlow(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		handler.fail(writer, request, err)
		return
	}
	respond.OK(writer, newFlowView(flow))
}

/*
GET /api/v1/account/captcha/flows/{id}/image.

Description: Serves the flow's current challenge image. The bytes are held
with the flow record, so rendering the form never consumes an extra upstream
fetch.

Response:
  - 200: Raw image bytes, Cache-Control: no-store
  - 404: Flow unknown, or no challenge currently loaded
*/
func (handler *Handler) getFlowImage(writer http.ResponseWriter, request *http.Request) {
	flow, err := handler.accountService.FindFlow(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		handler.fail(writer, request, err)
		return
	}
	if flow.Challenge == nil {
		http.NotFound(writer, request)
		return
	}
	respond.Image(writer, flow.Challenge.ContentType, flow.Challenge.Image)
}

/*
POST /api/v1/account/captcha/flows/{id}/refresh.

Description: Replaces the flow's challenge with a fresh one. Backs the
"reload code" button; counts as one challenge fetch.

Response:
  - 200: flowView with a new challenge
  - 404: Flow expired or unknown
  - 409: A submission is currently running
  - 502: Challenge fetch failure (flow back to Idle, retry possible)
*/
func (handler *Handler) refreshFlow(writer http.ResponseWriter, request *http.Request) {
	flow, err := handler.accountService.RefreshFlow(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		handler.fail(writer, request, err)
		return
	}
	respond.OK(writer, newFlowView(flow))
}

// # Guarded Mutation Endpoints

// requireFlowID validates the flow reference every guarded mutation carries.
func requireFlowID(flowID string) error {
	v := &validate.Validator{}
	v.Required("flow_id", flowID)
	return v.Err()
}

// changeEmailRequest is the change-email form plus its flow reference.
type changeEmailRequest struct {
	FlowID string `json:"flow_id"`
	ChangeEmailInput
}

/*
POST /api/v1/account/email.

Description: Replaces the account's email address. The flow's challenge is
consumed no matter how the upstream answers; the response's flow state
carries a fresh challenge ID.

Request:
  - body: changeEmailRequest

Response:
  - 200: Empty envelope on success
  - 400: Validation failure (no upstream call issued)
  - 409: Duplicate submission dropped
  - 200 with code != 200: Relayed upstream rejection (wrong captcha included)
*/
func (handler *Handler) changeEmail(writer http.ResponseWriter, request *http.Request) {
	var input changeEmailRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := requireFlowID(input.FlowID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.ChangeEmail(request.Context(), input.FlowID, input.ChangeEmailInput); err != nil {
		handler.fail(writer, request, err)
		return
	}
	respond.OK(writer, nil)
}

// changePhoneRequest is the change-phone form plus its flow reference.
type changePhoneRequest struct {
	FlowID string `json:"flow_id"`
	ChangePhoneInput
}

/*
POST /api/v1/account/phone.

Description: Replaces the account's phone number.

Request:
  - body: changePhoneRequest

Response:
  - 200: Empty envelope on success
  - 400: Validation failure (no upstream call issued)
  - 409: Duplicate submission dropped
  - 200 with code != 200: Relayed upstream rejection
*/
func (handler *Handler) changePhone(writer http.ResponseWriter, request *http.Request) {
	var input changePhoneRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := requireFlowID(input.FlowID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.ChangePhone(request.Context(), input.FlowID, input.ChangePhoneInput); err != nil {
		handler.fail(writer, request, err)
		return
	}
	respond.OK(writer, nil)
}

// changePasswordRequest is the change-password form plus its flow reference.
type changePasswordRequest struct {
	FlowID string `json:"flow_id"`
	ChangePasswordInput
}

/*
POST /api/v1/account/password.

Description: Replaces the account's password. On success the credential
cookie is cleared here, because the upstream has already invalidated the
token; the frontend then redirects to the login entry point as its own step.

Request:
  - body: changePasswordRequest

Response:
  - 200: Empty envelope on success, cookie cleared
  - 400: Validation failure (no upstream call issued)
  - 409: Duplicate submission dropped
  - 200 with code != 200: Relayed upstream rejection
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := requireFlowID(input.FlowID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.ChangePassword(request.Context(), input.FlowID, input.ChangePasswordInput); err != nil {
		handler.fail(writer, request, err)
		return
	}

	handler.sessions.Clear(writer)
	respond.OK(writer, nil)
}

// addDocumentRequest is the identity-document form plus its flow reference.
type addDocumentRequest struct {
	FlowID string `json:"flow_id"`
	AddDocumentInput
}

/*
POST /api/v1/account/identity-documents.

Description: Attaches an identity paper to the account. The captcha answer
is verified standalone first; a rejected answer means the document endpoint
is never touched.

Request:
  - body: addDocumentRequest

Response:
  - 200: Refreshed Profile including the new document
  - 400: Validation failure (no upstream call issued)
  - 409: Duplicate submission dropped
  - 200 with code != 200: Relayed upstream rejection
*/
func (handler *Handler) addIdentityDocument(writer http.ResponseWriter, request *http.Request) {
	var input addDocumentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := requireFlowID(input.FlowID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.accountService.AddIdentityDocument(request.Context(), input.FlowID, input.AddDocumentInput)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

// updateProfileRequest is the personal-information form plus its flow reference.
type updateProfileRequest struct {
	FlowID string `json:"flow_id"`
	UpdateProfileInput
}

/*
POST /api/v1/account/profile.

Description: Replaces the account's personal information (name, birth date,
gender, address). On success the cached profile is refreshed and returned.

Request:
  - body: updateProfileRequest

Response:
  - 200: Refreshed Profile
  - 400: Validation failure (no upstream call issued)
  - 409: Duplicate submission dropped
  - 200 with code != 200: Relayed upstream rejection
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := requireFlowID(input.FlowID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.accountService.UpdateProfile(request.Context(), input.FlowID, input.UpdateProfileInput)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

// # Phone Activation Endpoints

/*
POST /api/v1/account/phone/send-otp.

Description: Requests a one-time code for the account's own phone number.
The upstream derives the number from the credential; there is no body.

Response:
  - 200: Empty envelope
  - 200 with code != 200: Relayed upstream rejection
*/
func (handler *Handler) sendPhoneOTP(writer http.ResponseWriter, request *http.Request) {
	if err := handler.accountService.SendPhoneOTP(request.Context()); err != nil {
		handler.fail(writer, request, err)
		return
	}
	respond.OK(writer, nil)
}

// verifyPhoneRequest is the phone-activation form plus its flow reference.
type verifyPhoneRequest struct {
	FlowID string `json:"flow_id"`
	VerifyPhoneInput
}

/*
POST /api/v1/account/phone/verify.

Description: Confirms the account's phone number with the delivered code.
On success the refreshed profile shows phone_verified and the activation
banner clears.

Request:
  - body: verifyPhoneRequest

Response:
  - 200: Refreshed Profile
  - 400: Validation failure (no upstream call issued)
  - 409: Duplicate submission dropped
  - 200 with code != 200: Relayed upstream rejection
*/
func (handler *Handler) verifyPhone(writer http.ResponseWriter, request *http.Request) {
	var input verifyPhoneRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := requireFlowID(input.FlowID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.accountService.VerifyPhone(request.Context(), input.FlowID, input.VerifyPhoneInput)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

// # Activity Log Endpoints

/*
GET /api/v1/account/activities?page=&limit=.

Description: Returns one page of the security activity history. The upstream
delivers the whole array newest first; paging happens portal-side.

Response:
  - 200: []Activity with pagination metadata
  - 401: Session expired (cookie cleared on revocation)
*/
func (handler *Handler) listActivities(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	page, metadata, err := handler.accountService.Activities(request.Context(), params)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}
	respond.Paginated(writer, page, metadata)
}
