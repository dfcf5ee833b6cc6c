package auth

import (
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTP generates and validates RFC 6238 one-time codes.
type TOTP struct {
	issuer string
	skew   uint
}

// NewTOTP creates a TOTP provider. Codes from one adjacent 30s window are accepted.
func NewTOTP(issuer string) *TOTP {
	return &TOTP{issuer: issuer, skew: 1}
}

// Generate creates a new secret for account and its otpauth:// provisioning URI.
func (t *TOTP) Generate(account string) (string, string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      t.issuer,
		AccountName: account,
		Algorithm:   otp.AlgorithmSHA1,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		return "", "", fmt.Errorf("generate totp secret: %w", err)
	}
	return key.Secret(), key.URL(), nil
}

// Validate reports whether code is valid for secret at the given time.
func (t *TOTP) Validate(code, secret string, at time.Time) bool {
	if code == "" || secret == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, at.UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      t.skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
