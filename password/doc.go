// Package password provides Argon2id hashing and verification using the
// PHC string format. Verification reads the cost parameters from the
// encoded hash, so old hashes keep verifying after costs are raised.
package password
