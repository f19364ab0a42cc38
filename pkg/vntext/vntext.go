// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

/*
Package vntext provides normalization helpers for Vietnamese user input.

Form fields like full name and address arrive from a mix of IMEs, some of
which emit decomposed Unicode (NFD). The upstream account API compares these
values byte-wise, so the portal canonicalizes everything to NFC before any
submission.
*/
package vntext

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize trims surrounding whitespace, collapses internal runs of spaces,
// and canonicalizes the text to Unicode NFC.
func Normalize(s string) string {
	fields := strings.Fields(s)
	return norm.NFC.String(strings.Join(fields, " "))
}

// NormalizeOTP canonicalizes a one-time code the way the sign-up dialog did:
// surrounding space stripped, letters uppercased.
func NormalizeOTP(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizePhone strips spaces, hyphens, and parentheses from a dial string.
// The leading plus sign is preserved.
func NormalizePhone(s string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
