// Package internal holds entropy and token-encoding helpers shared by the
// root engine package.
package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

// A recovery token on the wire is id||secret, base64url without padding.
// The id addresses the Redis record; only the SHA-256 of the secret is
// stored, so a leaked record cannot be replayed.
const (
	recoveryIDSize       = 16
	recoverySecretSize   = 32
	recoveryTokenRawSize = recoveryIDSize + recoverySecretSize
)

// RecoveryID addresses a stored recovery record.
type RecoveryID [recoveryIDSize]byte

func NewRecoveryID() (RecoveryID, error) {
	var id RecoveryID
	_, err := rand.Read(id[:])
	return id, err
}

func (id RecoveryID) String() string {
	return base64.RawURLEncoding.EncodeToString(id[:])
}

func ParseRecoveryID(s string) (RecoveryID, error) {
	var id RecoveryID

	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(raw) != len(id) {
		return id, errors.New("invalid recovery id size")
	}

	copy(id[:], raw)
	return id, nil
}

func NewRecoverySecret() ([recoverySecretSize]byte, error) {
	var secret [recoverySecretSize]byte
	_, err := rand.Read(secret[:])
	return secret, err
}

func HashRecoverySecret(secret [recoverySecretSize]byte) [32]byte {
	return sha256.Sum256(secret[:])
}

func EncodeRecoveryToken(id RecoveryID, secret [recoverySecretSize]byte) string {
	var raw [recoveryTokenRawSize]byte
	copy(raw[:len(id)], id[:])
	copy(raw[len(id):], secret[:])

	return base64.RawURLEncoding.EncodeToString(raw[:])
}

func DecodeRecoveryToken(token string) (RecoveryID, [recoverySecretSize]byte, error) {
	var (
		id     RecoveryID
		secret [recoverySecretSize]byte
	)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return id, secret, err
	}
	if len(raw) != recoveryTokenRawSize {
		return id, secret, errors.New("invalid recovery token size")
	}

	copy(id[:], raw[:len(id)])
	copy(secret[:], raw[len(id):])

	return id, secret, nil
}
