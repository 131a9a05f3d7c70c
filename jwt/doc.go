// Package jwt issues and validates signed session tokens. Tokens carry the
// subject's email and username plus an mfa flag that records whether the
// session completed a second factor.
package jwt
