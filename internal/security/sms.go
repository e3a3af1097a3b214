package security

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// CodeSender delivers a login code to a phone.
type CodeSender interface {
	SendLoginCode(ctx context.Context, phone, code string, ttl time.Duration) error
}

// LogCodeSender writes codes to the log. Used when no SMS gateway is configured.
type LogCodeSender struct{}

// SendLoginCode implements CodeSender.
func (LogCodeSender) SendLoginCode(_ context.Context, phone, code string, ttl time.Duration) error {
	log.WithFields(log.Fields{
		"phone": MaskPhone(phone),
		"code":  code,
		"ttl":   ttl.String(),
	}).Info("sms login code issued")
	return nil
}

// MaskPhone keeps the last four digits of phone.
func MaskPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if len(phone) <= 4 {
		return strings.Repeat("*", len(phone))
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
