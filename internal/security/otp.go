package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"errors"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// DefaultOTPPeriod is how long a login code stays valid.
const DefaultOTPPeriod = 300 * time.Second

// ErrInvalidCode is returned when a login code does not verify.
var ErrInvalidCode = errors.New("invalid or expired code")

// PhoneOTP issues and verifies per-phone login codes without storing them.
// The TOTP seed of each phone is HMAC(secret, phone).
type PhoneOTP struct {
	secret []byte
	period time.Duration
}

// NewPhoneOTP builds a PhoneOTP. A zero period uses DefaultOTPPeriod.
func NewPhoneOTP(secret string, period time.Duration) (*PhoneOTP, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("otp: empty secret")
	}
	if period <= 0 {
		period = DefaultOTPPeriod
	}
	return &PhoneOTP{secret: []byte(secret), period: period}, nil
}

// Period returns the code lifetime.
func (p *PhoneOTP) Period() time.Duration { return p.period }

func (p *PhoneOTP) seed(phone string) string {
	mac := hmac.New(sha256.New, p.secret)
	mac.Write([]byte(strings.TrimSpace(phone)))
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(mac.Sum(nil))
}

func (p *PhoneOTP) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    uint(p.period / time.Second),
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// Code returns the current code for phone at t.
func (p *PhoneOTP) Code(phone string, t time.Time) (string, error) {
	return totp.GenerateCodeCustom(p.seed(phone), t, p.opts())
}

// Verify checks code for phone at t, allowing one period of skew.
func (p *PhoneOTP) Verify(phone, code string, t time.Time) error {
	ok, err := totp.ValidateCustom(strings.TrimSpace(code), p.seed(phone), t, p.opts())
	if err != nil || !ok {
		return ErrInvalidCode
	}
	return nil
}
