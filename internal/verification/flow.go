// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

/*
Package verification implements the challenge/submit cycle shared by every
sensitive-mutation form (password, email, phone, profile, identity document,
phone-verify OTP).

# State Machine

Each form owns one flow instance walking:

	Idle → ChallengeLoading → ChallengeReady → Submitting → (Succeeded | Failed)

A challenge (server-issued captcha image) is valid for exactly one submission
and is consumed by it regardless of outcome, so after every submission the
flow re-enters ChallengeLoading and fetches a fresh challenge. A failed
challenge fetch drops the flow back to Idle with a surfaced error, leaving
the UI able to retry.

# Re-entrancy

Submission is guarded by a single in-flight marker per flow: a second submit
while one is running is dropped, not queued.

# Known Race

If the user triggers a refresh while an older challenge fetch is still in
flight, whichever fetch resolves last wins — there is no sequence numbering.
This mirrors the original forms and is accepted; a consumed or mismatched
answer simply fails upstream and triggers another refresh.
*/
package verification

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/novagate/account-portal/internal/platform/apperr"
	"github.com/novagate/account-portal/internal/upstream"
	"github.com/novagate/account-portal/pkg/uuid"
)

// State identifies a flow's position in the verification cycle.
type State string

const (
	StateIdle             State = "idle"
	StateChallengeLoading State = "challenge_loading"
	StateChallengeReady   State = "challenge_ready"
	StateSubmitting       State = "submitting"
	StateSucceeded        State = "succeeded"
	StateFailed           State = "failed"
)

// Challenge is a single-use captcha artifact. The image is stored with the
// flow so that serving it to the browser does not consume another upstream
// fetch.
type Challenge struct {
	ID          string `json:"id"`
	Image       []byte `json:"image"`
	ContentType string `json:"content_type"`
}

// Flow is the serializable record of one verification flow.
type Flow struct {
	ID         string     `json:"id"`
	State      State      `json:"state"`
	Challenge  *Challenge `json:"challenge,omitempty"`
	FetchCount int        `json:"fetch_count"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ChallengeFetcher acquires a fresh challenge from the upstream API.
// Implemented by the account client.
type ChallengeFetcher interface {
	FetchChallenge(ctx context.Context) (*Challenge, error)
}

// Action is the mutating upstream call guarded by a flow. It receives the
// request context (credential included) and returns the upstream envelope.
type Action func(ctx context.Context) (*upstream.Envelope, error)

// # User-Facing Errors

var (
	errFlowNotFound = apperr.Localized{
		EN: "This verification session has expired. Please reload the form.",
		VI: "Phiên xác thực đã hết hạn. Vui lòng tải lại biểu mẫu.",
	}
	errNoChallenge = apperr.Localized{
		EN: "No verification code is active. Please refresh the code.",
		VI: "Chưa có mã xác thực. Vui lòng tải lại mã.",
	}
	errDuplicateSubmit = apperr.Localized{
		EN: "The form is already being submitted.",
		VI: "Biểu mẫu đang được gửi, vui lòng chờ.",
	}
)

// # Registry

// Registry creates, looks up, and drives verification flows.
//
// It is the only writer of flow records; stores are dumb persistence.
type Registry struct {
	store   Store
	fetcher ChallengeFetcher
	log     *slog.Logger
}

// NewRegistry constructs a [Registry].
func NewRegistry(store Store, fetcher ChallengeFetcher, logger *slog.Logger) *Registry {
	return &Registry{store: store, fetcher: fetcher, log: logger}
}

// Open creates a new flow and immediately loads its first challenge.
//
// The returned flow is in ChallengeReady state, or an error is returned and
// nothing is persisted (the form shows a retry affordance).
func (r *Registry) Open(ctx context.Context) (*Flow, error) {
	now := time.Now()
	flow := &Flow{
		ID:        uuid.New(),
		State:     StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.loadChallenge(ctx, flow); err != nil {
		return nil, err
	}

	if err := r.store.Save(ctx, flow); err != nil {
		return nil, apperr.Internal(err)
	}

	return flow, nil
}

// Find returns the flow with the given ID.
func (r *Registry) Find(ctx context.Context, id string) (*Flow, error) {
	flow, err := r.store.Find(ctx, id)
	if err != nil {
		return nil, apperr.NotFound(errFlowNotFound)
	}
	return flow, nil
}

// Refresh explicitly replaces the flow's challenge with a fresh one.
//
// Used by the form's "reload code" button. Counts as one challenge fetch.
func (r *Registry) Refresh(ctx context.Context, id string) (*Flow, error) {
	flow, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if flow.State == StateSubmitting {
		return nil, apperr.Conflict(errDuplicateSubmit)
	}

	if err := r.loadChallenge(ctx, flow); err != nil {
		// Fetch failure: back to Idle, error surfaced, retry stays possible.
		flow.State = StateIdle
		flow.Challenge = nil
		flow.UpdatedAt = time.Now()
		_ = r.store.Save(ctx, flow)
		return nil, err
	}

	if err := r.store.Save(ctx, flow); err != nil {
		return nil, apperr.Internal(err)
	}

	return flow, nil
}

// Submit runs the guarded mutation for the flow.
//
// The challenge is consumed no matter how the action ends: after the action
// returns, a fresh challenge is always fetched before the flow settles in
// ChallengeReady. The action's envelope and error pass through untouched so
// callers can relay upstream codes and react to credential revocation.
func (r *Registry) Submit(ctx context.Context, id string, action Action) (*upstream.Envelope, error) {
	flow, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if flow.State != StateChallengeReady || flow.Challenge == nil {
		if flow.State == StateSubmitting {
			return nil, apperr.Conflict(errDuplicateSubmit)
		}
		return nil, &apperr.AppError{
			Code:       http.StatusConflict,
			Errors:     errNoChallenge,
			HTTPStatus: http.StatusConflict,
		}
	}

	// Re-entrancy guard: one in-flight submission per flow; duplicates are
	// dropped, not queued.
	acquired, err := r.store.AcquireSubmit(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !acquired {
		return nil, apperr.Conflict(errDuplicateSubmit)
	}

	flow.State = StateSubmitting
	flow.UpdatedAt = time.Now()
	if err := r.store.Save(ctx, flow); err != nil {
		_ = r.store.ReleaseSubmit(ctx, id)
		return nil, apperr.Internal(err)
	}

	envelope, actionErr := action(ctx)

	accepted := actionErr == nil && envelope != nil && envelope.OK()
	if accepted {
		flow.State = StateSucceeded
	} else {
		flow.State = StateFailed
	}
	flow.UpdatedAt = time.Now()

	if err := r.store.ReleaseSubmit(ctx, id); err != nil {
		r.log.WarnContext(ctx, "flow_submit_release_failed",
			slog.String("flow_id", id), slog.Any("error", err))
	}

	// The just-used challenge cannot be reused; replace it on both the
	// success and the failure path.
	if err := r.loadChallenge(ctx, flow); err != nil {
		flow.State = StateIdle
		flow.Challenge = nil
		r.log.WarnContext(ctx, "flow_challenge_refresh_failed",
			slog.String("flow_id", id), slog.Any("error", err))
	}

	if err := r.store.Save(ctx, flow); err != nil {
		r.log.WarnContext(ctx, "flow_save_failed",
			slog.String("flow_id", id), slog.Any("error", err))
	}

	return envelope, actionErr
}

// loadChallenge drives Idle/Ready/Settled → ChallengeLoading → ChallengeReady.
// The flow is not persisted here; callers decide when to save.
func (r *Registry) loadChallenge(ctx context.Context, flow *Flow) error {
	flow.State = StateChallengeLoading
	flow.UpdatedAt = time.Now()

	challenge, err := r.fetcher.FetchChallenge(ctx)
	if err != nil {
		return &apperr.AppError{
			Code:       http.StatusBadGateway,
			Errors:     apperr.ChallengeLoadFailure,
			HTTPStatus: http.StatusBadGateway,
			Cause:      err,
		}
	}

	flow.Challenge = challenge
	flow.FetchCount++
	flow.State = StateChallengeReady
	flow.UpdatedAt = time.Now()
	return nil
}
