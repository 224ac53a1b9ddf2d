/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// hashPassword returns the hex-encoded SHA-256 digest of plain.
func hashPassword(plain string) string {
	sum := sha256.Sum256([]byte(plain))

	return hex.EncodeToString(sum[:])
}

func verifyPassword(plain, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(hashPassword(plain)), []byte(digest)) == 1
}
