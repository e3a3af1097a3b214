package settings

// Runtime setting keys and their fallbacks.
const (
	// SiteNameKey is the storefront display name returned by /api/config.
	SiteNameKey = "SITE_NAME"
	// DefaultSiteName is used until an admin stores SITE_NAME.
	DefaultSiteName = "StreamTicket"
	// TicketAccountDomainKey is the email domain of generated ticket accounts.
	TicketAccountDomainKey = "TICKET_ACCOUNT_DOMAIN"
	// DefaultTicketAccountDomain is used until an admin stores TICKET_ACCOUNT_DOMAIN.
	DefaultTicketAccountDomain = "netflix.com"
)

// knownKeys lists the keys accepted by the admin settings endpoint.
var knownKeys = map[string]struct{}{
	SiteNameKey:            {},
	TicketAccountDomainKey: {},
}

// IsKnownKey reports whether key may be written through the admin API.
func IsKnownKey(key string) bool {
	_, ok := knownKeys[key]
	return ok
}
