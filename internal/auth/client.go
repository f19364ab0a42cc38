// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

package auth

import (
	"context"
	"net/url"

	"github.com/novagate/account-portal/internal/upstream"
)

// # Upstream Paths

const (
	pathLogin         = "/api/v2/auth/login"
	pathCheckUsername = "/api/v2/auth/register/checkUsername"
	pathCheckEmail    = "/api/v2/auth/register/checkEmail"
	pathSendOTP       = "/api/v2/auth/register/sendOtp"
	pathRegister      = "/api/v2/auth/register"
)

// Client holds the typed sign-in and sign-up operations of the upstream
// account API. All endpoints here are anonymous; no credential is attached.
type Client struct {
	gateway *upstream.Client
}

// NewClient constructs an auth [Client] on top of the request gateway.
func NewClient(gateway *upstream.Client) *Client {
	return &Client{gateway: gateway}
}

// Login exchanges a username and password for a bearer credential.
func (c *Client) Login(ctx context.Context, username, password string) (*upstream.Envelope, error) {
	return c.gateway.PostJSON(ctx, pathLogin, map[string]string{
		"username": username,
		"password": password,
	})
}

// CheckUsername asks whether a username is still available.
// Code 200 means available; any other code carries the rejection reason.
func (c *Client) CheckUsername(ctx context.Context, username string) (*upstream.Envelope, error) {
	query := url.Values{}
	query.Set("username", username)
	return c.gateway.Get(ctx, pathCheckUsername, query)
}

// CheckEmail asks whether an email address is still available.
func (c *Client) CheckEmail(ctx context.Context, email string) (*upstream.Envelope, error) {
	query := url.Values{}
	query.Set("email", email)
	return c.gateway.Get(ctx, pathCheckEmail, query)
}

// SendOTP requests a one-time code delivered to the phone number.
func (c *Client) SendOTP(ctx context.Context, phone string) (*upstream.Envelope, error) {
	return c.gateway.PostJSON(ctx, pathSendOTP, map[string]string{
		"phone_number": phone,
	})
}

// RegisterForm is the multipart field set of the sign-up endpoint. The
// upstream accepts this endpoint only as a form, not as JSON.
type RegisterForm struct {
	FullName             string
	Username             string
	Password             string
	PasswordConfirmation string
	Phone                string
	DOB                  string
	Gender               string
	Address              string
	Email                string
	OTP                  string
}

// Register submits the sign-up form.
func (c *Client) Register(ctx context.Context, form RegisterForm) (*upstream.Envelope, error) {
	fields := map[string]string{
		"full_name":             form.FullName,
		"username":              form.Username,
		"password":              form.Password,
		"password_confirmation": form.PasswordConfirmation,
		"phone":                 form.Phone,
		"dob":                   form.DOB,
		"gender":                form.Gender,
		"address":               form.Address,
		"email":                 form.Email,
		"otp":                   form.OTP,
	}
	return c.gateway.PostMultipart(ctx, pathRegister, fields)
}
