// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

/*
Package auth provides the HTTP delivery layer for sign-in and sign-up.

All endpoints here are anonymous. A successful login or registration sets the
session cookie; everything behind the account routes then rides on it.
*/
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/novagate/account-portal/internal/platform/request"
	"github.com/novagate/account-portal/internal/platform/respond"
	"github.com/novagate/account-portal/internal/session"
)

// Handler implements the HTTP layer for authentication.
type Handler struct {
	authService *Service
	sessions    *session.Store
}

// NewHandler constructs an auth [Handler].
func NewHandler(service *Service, sessions *session.Store) *Handler {
	return &Handler{authService: service, sessions: sessions}
}

// Routes returns a [chi.Router] configured with the auth domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Session
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)

	// Registration
	router.Get("/register/check-username", handler.checkUsername)
	router.Get("/register/check-email", handler.checkEmail)
	router.Post("/register/send-otp", handler.sendOTP)
	router.Post("/register", handler.register)

	return router
}

// # Session Endpoints

/*
POST /api/v1/auth/login.

Description: Exchanges a username and password for a session. On success the
credential cookie is set and the upstream user object is returned; the raw
token never appears in the response body.

Request:
  - body: LoginInput

Response:
  - 200: user: The upstream user object
  - 400: Validation failure (no upstream call issued)
  - 200 with code != 200: Relayed upstream rejection
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input LoginInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	credentials, err := handler.authService.Login(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.sessions.Set(writer, credentials.Token)
	respond.OK(writer, map[string]interface{}{"user": credentials.User})
}

/*
POST /api/v1/auth/logout.

Description: Clears the credential cookie. No upstream call is made; the
frontend performs its own redirect to the login entry point afterwards.

Response:
  - 200: Empty envelope
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	handler.sessions.Clear(writer)
	respond.OK(writer, nil)
}

// # Registration Endpoints

/*
GET /api/v1/auth/register/check-username?username=.

Description: Availability probe used by the sign-up form's async validation.

Response:
  - 200: {available: true}
  - 400: Validation failure
  - 200 with code != 200: Username taken (relayed upstream rejection)
*/
func (handler *Handler) checkUsername(writer http.ResponseWriter, request *http.Request) {
	username := request.URL.Query().Get("username")

	if err := handler.authService.CheckUsername(request.Context(), username); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"available": true})
}

/*
GET /api/v1/auth/register/check-email?email=.

Description: Availability probe used by the sign-up form's async validation.

Response:
  - 200: {available: true}
  - 400: Validation failure
  - 200 with code != 200: Email taken (relayed upstream rejection)
*/
func (handler *Handler) checkEmail(writer http.ResponseWriter, request *http.Request) {
	email := request.URL.Query().Get("email")

	if err := handler.authService.CheckEmail(request.Context(), email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"available": true})
}

// sendOTPRequest is the payload for the sign-up OTP delivery.
type sendOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
}

/*
POST /api/v1/auth/register/send-otp.

Description: Requests a one-time code for the sign-up phone number, opening
the verification step of the dialog.

Request:
  - body: sendOTPRequest

Response:
  - 200: Empty envelope
  - 400: Validation failure
  - 200 with code != 200: Relayed upstream rejection
*/
func (handler *Handler) sendOTP(writer http.ResponseWriter, request *http.Request) {
	var input sendOTPRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.SendOTP(request.Context(), input.PhoneNumber); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, nil)
}

/*
POST /api/v1/auth/register.

Description: Submits the complete sign-up form with the delivered OTP. On
success the account is created, the credential cookie is set, and the user
lands signed in.

Request:
  - body: RegisterInput

Response:
  - 200: user: The created user object
  - 400: Validation failure (no upstream call issued)
  - 200 with code != 200: Relayed upstream rejection (duplicate, wrong OTP)
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input RegisterInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	credentials, err := handler.authService.Register(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.sessions.Set(writer, credentials.Token)
	respond.OK(writer, map[string]interface{}{"user": credentials.User})
}
