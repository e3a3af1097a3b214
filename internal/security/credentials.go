package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// PlaceholderAccount is a generated login for a ticket. It is not provisioned anywhere.
type PlaceholderAccount struct {
	Username string
	Password string
}

// randomHex returns n random hex characters.
func randomHex(n int) (string, error) {
	buf := make([]byte, (n+1)/2)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", fmt.Errorf("generate random string: %w", err)
	}
	return hex.EncodeToString(buf)[:n], nil
}

// NewPlaceholderAccount builds user_<8 hex>@domain / pass_<12 hex>.
func NewPlaceholderAccount(domain string) (PlaceholderAccount, error) {
	domain = strings.TrimPrefix(strings.TrimSpace(domain), "@")
	if domain == "" {
		return PlaceholderAccount{}, fmt.Errorf("generate account: empty domain")
	}
	user, err := randomHex(8)
	if err != nil {
		return PlaceholderAccount{}, err
	}
	pass, err := randomHex(12)
	if err != nil {
		return PlaceholderAccount{}, err
	}
	return PlaceholderAccount{
		Username: "user_" + user + "@" + domain,
		Password: "pass_" + pass,
	}, nil
}
