package handlers

import (
	"encoding/json"
	"strings"

	"github.com/aifahao/streamticket/internal/apperr"
	"github.com/aifahao/streamticket/internal/http/response"
	"github.com/aifahao/streamticket/internal/logging"
	"github.com/aifahao/streamticket/internal/settings"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SettingHandler reads and writes runtime settings.
type SettingHandler struct {
	db *gorm.DB
}

// NewSettingHandler constructs a SettingHandler.
func NewSettingHandler(db *gorm.DB) *SettingHandler {
	return &SettingHandler{db: db}
}

// List returns every stored setting with the effective values of known keys.
func (h *SettingHandler) List(c *gin.Context) {
	response.OK(c, gin.H{
		"settings":   settings.All(),
		"updated_at": settings.UpdatedAt(),
		"effective": gin.H{
			settings.SiteNameKey:            settings.SiteName(),
			settings.TicketAccountDomainKey: settings.TicketAccountDomain(),
		},
	})
}

type putSettingRequest struct {
	Value json.RawMessage `json:"value"`
}

// Put stores a string setting and refreshes the in-memory snapshot.
func (h *SettingHandler) Put(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if !settings.IsKnownKey(key) {
		response.Fail(c, apperr.NotFound("unknown setting %q", key))
		return
	}
	var body putSettingRequest
	if errBind := bindPatch(c, &body); errBind != nil {
		response.Fail(c, errBind)
		return
	}
	var value string
	if errDecode := json.Unmarshal(body.Value, &value); errDecode != nil || strings.TrimSpace(value) == "" {
		response.Fail(c, apperr.Validation("value must be a non-empty string"))
		return
	}
	raw, errMarshal := json.Marshal(strings.TrimSpace(value))
	if errMarshal != nil {
		response.Fail(c, apperr.Internal(errMarshal, "encode setting"))
		return
	}
	if errPut := settings.Put(c.Request.Context(), h.db, key, raw); errPut != nil {
		response.Fail(c, apperr.FromStorage(errPut, "setting"))
		return
	}
	logging.FromContext(c).WithField("key", key).Info("admin updated setting")
	response.OK(c, gin.H{"key": key, "value": strings.TrimSpace(value)})
}
