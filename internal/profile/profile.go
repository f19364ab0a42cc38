// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

/*
Package profile holds the read model of the signed-in user and its
per-session cache.

The profile is a mirror of the upstream record: fetched fresh on mount of any
authenticated view, replaced wholesale on refresh, and never partially
merged. It exists only for display and form prefill; the upstream remains
the single source of truth.
*/
package profile

// Profile is the upstream user record as served by getProfile.
type Profile struct {
	ID              string             `json:"id"`
	Phone           string             `json:"phone"`
	FullName        string             `json:"full_name"`
	Email           string             `json:"email"`
	DOB             string             `json:"dob"`
	Gender          string             `json:"gender"`
	Username        string             `json:"username"`
	Address         string             `json:"address"`
	CreatedAt       string             `json:"created_at"`
	UpdatedAt       string             `json:"updated_at"`
	Status          string             `json:"status"`
	PhoneVerified   bool               `json:"phone_verified"`
	PhoneVerifiedAt string             `json:"phone_verified_at"`
	Documents       []IdentityDocument `json:"user_identity_documents"`
}

// IdentityDocument is one entry of the user's identity papers (national ID
// card or passport).
type IdentityDocument struct {
	DocumentNumber string `json:"document_number"`
	DocumentType   string `json:"document_type"`
	PlaceOfIssue   string `json:"place_of_issue"`
	IssueDate      string `json:"issue_date"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// # Document Types

const (
	// DocumentTypeNationalID is the Vietnamese citizen identity card (CCCD).
	DocumentTypeNationalID = "cccd"

	// DocumentTypePassport is an international passport.
	DocumentTypePassport = "passport"
)

// # Gender Values

const (
	GenderMale        = "male"
	GenderFemale      = "female"
	GenderUndisclosed = "prefer-not-to-say"
)
