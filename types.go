package authgate

import (
	"context"
	"time"

	"github.com/kesparza-dev/authgate/jwt"
)

// UserRecord is the account document held by the credential store, keyed by
// email. The MFA secret is base32-encoded and immutable after registration;
// the password hash is replaced on reset.
type UserRecord struct {
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	MFASecret    string    `json:"mfa_secret"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// CredentialStore is the document store the engine persists accounts in.
// Implementations must provide strong read-after-write consistency for a
// single document and atomic create-if-absent semantics for Create.
//
// Get and Update return [ErrUserNotFound] when no document exists for the
// email; Create returns [ErrAccountExists] when one already does.
type CredentialStore interface {
	Get(ctx context.Context, email string) (UserRecord, error)
	Create(ctx context.Context, record UserRecord) error
	Update(ctx context.Context, record UserRecord) error
}

// Claims is the decoded session token claim set.
type Claims = jwt.SessionClaims

// RegisterResult is returned by [Engine.Register]. The raw MFA secret is
// never exposed; clients enroll through the provisioning URI once.
type RegisterResult struct {
	Email           string
	Username        string
	ProvisioningURI string
}

// LoginResult is returned by [Engine.Login]. The token is a signed session
// token whose mfa claim is false; RequiresMFA tells the client that
// VerifyMFA must complete before the session is fully authenticated.
type LoginResult struct {
	Token       string
	Username    string
	RequiresMFA bool
}

// MFAResult is returned by [Engine.VerifyMFA] on success. Token is a fresh
// session token with the mfa claim set.
type MFAResult struct {
	Token string
}

// RecoveryResult is returned by [Engine.VerifyRecoveryOTP]. RecoveryToken
// is an opaque single-use credential accepted by [Engine.ResetPassword]
// until it expires or is consumed.
type RecoveryResult struct {
	RecoveryToken string
}
