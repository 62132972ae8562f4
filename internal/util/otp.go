package util

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strconv"
)

const (
	otpMin = 100000
	otpMax = 999999

	resetTokenBytes = 32
)

// GenerateOTP returns a 6-digit code sampled uniformly from
// [100000, 999999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(otpMin+n.Int64(), 10), nil
}

// GenerateResetToken returns 32 random bytes hex-encoded (64 characters).
func GenerateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
