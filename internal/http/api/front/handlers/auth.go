package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/aifahao/streamticket/internal/apperr"
	"github.com/aifahao/streamticket/internal/config"
	"github.com/aifahao/streamticket/internal/http/api/view"
	"github.com/aifahao/streamticket/internal/http/response"
	"github.com/aifahao/streamticket/internal/logging"
	"github.com/aifahao/streamticket/internal/models"
	"github.com/aifahao/streamticket/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthHandler handles user authentication endpoints.
type AuthHandler struct {
	db     *gorm.DB
	jwtCfg config.JWTConfig
	otp    *security.PhoneOTP
	sender security.CodeSender
}

// NewAuthHandler constructs an AuthHandler. A nil sender logs codes instead of sending them.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig, otp *security.PhoneOTP, sender security.CodeSender) *AuthHandler {
	if sender == nil {
		sender = security.LogCodeSender{}
	}
	return &AuthHandler{db: db, jwtCfg: jwtCfg, otp: otp, sender: sender}
}

// registerRequest defines the request body for user registration.
type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

// Register creates a new user account.
func (h *AuthHandler) Register(c *gin.Context) {
	var body registerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.Fail(c, apperr.Validation("invalid json"))
		return
	}
	username := strings.TrimSpace(body.Username)
	if username == "" || body.Password == "" {
		response.Fail(c, apperr.Validation("username and password are required"))
		return
	}
	if len(body.Password) < security.MinPasswordLength {
		response.Fail(c, apperr.Validation("%s", security.ErrWeakPassword.Error()))
		return
	}
	email := strings.TrimSpace(body.Email)
	if email == "" && strings.Contains(username, "@") {
		email = username
	}
	nickname := strings.TrimSpace(body.Nickname)
	if nickname == "" {
		nickname = username
	}

	ctx := c.Request.Context()
	var count int64
	if errCount := h.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; errCount != nil {
		response.Fail(c, apperr.FromStorage(errCount, "user"))
		return
	}
	if count > 0 {
		response.Fail(c, apperr.Conflict("username already exists"))
		return
	}

	hash, errHash := security.HashPassword(body.Password)
	if errHash != nil {
		response.Fail(c, apperr.Internal(errHash, "hash password"))
		return
	}
	user := models.User{
		Username: username,
		Email:    email,
		Nickname: nickname,
		Password: hash,
	}
	if errCreate := h.db.WithContext(ctx).Create(&user).Error; errCreate != nil {
		response.Fail(c, apperr.FromStorage(errCreate, "user"))
		return
	}
	logging.FromContext(c).WithField("user_id", user.ID).Info("user registered")
	response.OK(c, gin.H{"user": view.User(&user)})
}

// loginRequest defines the request body for login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates a user by password and issues a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.Fail(c, apperr.Validation("invalid json"))
		return
	}
	username := strings.TrimSpace(body.Username)
	if username == "" || body.Password == "" {
		response.Fail(c, apperr.Validation("username and password are required"))
		return
	}

	var user models.User
	errFind := h.db.WithContext(c.Request.Context()).
		Where("username = ? OR (email = ? AND email <> '')", username, username).
		Order("id ASC").
		First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.Fail(c, apperr.Unauthenticated("invalid credentials"))
			return
		}
		response.Fail(c, apperr.FromStorage(errFind, "user"))
		return
	}
	if !security.CheckPassword(user.Password, body.Password) {
		response.Fail(c, apperr.Unauthenticated("invalid credentials"))
		return
	}
	if user.Disabled {
		response.Fail(c, apperr.Forbidden("user disabled"))
		return
	}
	h.respondWithUserToken(c, &user)
}

// smsCodeRequest defines the request body for sending a login code.
type smsCodeRequest struct {
	Phone string `json:"phone"`
}

// SendSMSCode issues a login code for a phone number.
func (h *AuthHandler) SendSMSCode(c *gin.Context) {
	var body smsCodeRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.Fail(c, apperr.Validation("invalid json"))
		return
	}
	phone := strings.TrimSpace(body.Phone)
	if phone == "" {
		response.Fail(c, apperr.Validation("phone number is required"))
		return
	}
	code, errCode := h.otp.Code(phone, time.Now())
	if errCode != nil {
		response.Fail(c, apperr.Internal(errCode, "generate code"))
		return
	}
	if errSend := h.sender.SendLoginCode(c.Request.Context(), phone, code, h.otp.Period()); errSend != nil {
		response.Fail(c, &apperr.Error{Kind: apperr.KindUnavailable, Message: "send code failed, retry later", Err: errSend})
		return
	}
	response.OK(c, gin.H{"expire_time": int(h.otp.Period() / time.Second)})
}

// smsLoginRequest defines the request body for SMS login.
type smsLoginRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// LoginSMS verifies a phone code and issues a JWT, creating the user on first login.
func (h *AuthHandler) LoginSMS(c *gin.Context) {
	var body smsLoginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.Fail(c, apperr.Validation("invalid json"))
		return
	}
	phone := strings.TrimSpace(body.Phone)
	code := strings.TrimSpace(body.Code)
	if phone == "" || code == "" {
		response.Fail(c, apperr.Validation("phone and code are required"))
		return
	}
	if errVerify := h.otp.Verify(phone, code, time.Now()); errVerify != nil {
		response.Fail(c, apperr.Unauthenticated("%s", errVerify.Error()))
		return
	}

	user, errUser := h.findOrCreatePhoneUser(c, phone)
	if errUser != nil {
		response.Fail(c, errUser)
		return
	}
	if user.Disabled {
		response.Fail(c, apperr.Forbidden("user disabled"))
		return
	}
	h.respondWithUserToken(c, user)
}

func (h *AuthHandler) findOrCreatePhoneUser(c *gin.Context, phone string) (*models.User, error) {
	ctx := c.Request.Context()
	var user models.User
	errFind := h.db.WithContext(ctx).Where("phone = ?", phone).Order("id ASC").First(&user).Error
	if errFind == nil {
		return &user, nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, apperr.FromStorage(errFind, "user")
	}

	username := phone
	var taken int64
	if errCount := h.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&taken).Error; errCount != nil {
		return nil, apperr.FromStorage(errCount, "user")
	}
	if taken > 0 {
		username = phone + "_" + uuid.NewString()[:8]
	}
	nickname := "User_" + phone
	if len(phone) > 4 {
		nickname = "User_" + phone[len(phone)-4:]
	}
	user = models.User{Username: username, Phone: phone, Nickname: nickname}
	if errCreate := h.db.WithContext(ctx).Create(&user).Error; errCreate != nil {
		return nil, apperr.FromStorage(errCreate, "user")
	}
	logging.FromContext(c).WithFields(map[string]any{
		"user_id": user.ID,
		"phone":   security.MaskPhone(phone),
	}).Info("user created by sms login")
	return &user, nil
}

// respondWithUserToken issues a JWT for the user and writes the response.
func (h *AuthHandler) respondWithUserToken(c *gin.Context, user *models.User) {
	token, errToken := security.GenerateToken(h.jwtCfg.Secret, user.ID, user.Username, h.jwtCfg.Expiry)
	if errToken != nil {
		response.Fail(c, apperr.Internal(errToken, "generate token"))
		return
	}
	response.OK(c, gin.H{
		"token":      token,
		"expires_at": time.Now().Add(h.jwtCfg.Expiry).UTC(),
		"user":       view.User(user),
	})
}
