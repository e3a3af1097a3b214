package app

import (
	"context"
	"errors"
	"strings"

	"github.com/aifahao/streamticket/internal/config"
	"github.com/aifahao/streamticket/internal/db"
	"github.com/aifahao/streamticket/internal/models"
	"github.com/aifahao/streamticket/internal/security"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreateAdminParams holds inputs for administrator creation.
type CreateAdminParams struct {
	Username string
	Password string
	Email    string
}

// demoProducts is the catalog written by Seed.
func demoProducts() []models.Product {
	spec := func(duration, region, quality string, maxUsers int) datatypes.JSONType[models.ProductSpecifications] {
		return datatypes.NewJSONType(models.ProductSpecifications{
			Duration: duration,
			Region:   region,
			Quality:  quality,
			MaxUsers: maxUsers,
		})
	}
	return []models.Product{
		{
			Title:          "Netflix 4K 高级车位 (月付)",
			Description:    "4K UHD画质，独立Profile，支持杜比视界/全景声，正规车队，翻车包赔。",
			Price:          decimal.RequireFromString("18.00"),
			OriginalPrice:  decimal.RequireFromString("25.00"),
			Category:       "hot-sale",
			Tag:            "拼车",
			CoverImage:     "https://images.unsplash.com/photo-1574375927938-d5a98e8efe30?q=80&w=800&auto=format&fit=crop",
			Specifications: spec("30天", "土耳其", "4K HDR", 5),
			DurationPlan:   models.DurationPlanMonthly,
			Stock:          100,
			IsActive:       true,
		},
		{
			Title:          "Netflix 4K 独享账号 (月付)",
			Description:    "个人独享完整账号，5个Profile全归你，可改密，适合家庭/朋友共享。",
			Price:          decimal.RequireFromString("98.00"),
			OriginalPrice:  decimal.RequireFromString("120.00"),
			Category:       "solo",
			Tag:            "独享",
			CoverImage:     "https://images.unsplash.com/photo-1522869635100-1f4d06ee51c3?q=80&w=800&auto=format&fit=crop",
			Specifications: spec("30天", "土耳其", "4K HDR", 5),
			DurationPlan:   models.DurationPlanMonthly,
			Stock:          50,
			IsActive:       true,
		},
		{
			Title:          "Netflix 4K 长期车位 (年付)",
			Description:    "一次购买管一年，省心省力，优先客服支持。",
			Price:          decimal.RequireFromString("198.00"),
			OriginalPrice:  decimal.RequireFromString("300.00"),
			Category:       "hot-sale",
			Tag:            "拼车",
			CoverImage:     "https://images.unsplash.com/photo-1626814026160-2237a95fc5a0?q=80&w=800&auto=format&fit=crop",
			Specifications: spec("365天", "巴基斯坦", "4K HDR", 5),
			DurationPlan:   models.DurationPlanYearly,
			Stock:          200,
			IsActive:       true,
		},
		{
			Title:          "Disney+ 独享账号",
			Description:    "漫威、星战、皮克斯大片随意看，支持4K，家庭共享首选。",
			Price:          decimal.RequireFromString("45.00"),
			OriginalPrice:  decimal.RequireFromString("55.00"),
			Category:       "solo",
			Tag:            "独享",
			CoverImage:     "https://images.unsplash.com/photo-1616097970275-1e187b4ce59f?q=80&w=800&auto=format&fit=crop",
			Specifications: spec("30天", "全球", "4K", 7),
			DurationPlan:   models.DurationPlanMonthly,
			Stock:          30,
			IsActive:       true,
		},
	}
}

// Seed writes the demo catalog. Products are matched by title, so reruns add nothing.
func Seed(ctx context.Context, cfg config.AppConfig) error {
	_, conn, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close(conn)
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	_, err = seedProducts(ctx, conn)
	return err
}

// seedProducts inserts missing demo products and returns how many were created.
func seedProducts(ctx context.Context, conn *gorm.DB) (int, error) {
	created := 0
	for _, p := range demoProducts() {
		var count int64
		if errCount := conn.WithContext(ctx).Model(&models.Product{}).Where("title = ?", p.Title).Count(&count).Error; errCount != nil {
			return created, errCount
		}
		if count > 0 {
			log.WithField("title", p.Title).Info("seed: product exists")
			continue
		}
		product := p
		if errCreate := conn.WithContext(ctx).Create(&product).Error; errCreate != nil {
			return created, errCreate
		}
		created++
		log.WithFields(log.Fields{"id": product.ID, "title": product.Title}).Info("seed: product created")
	}
	return created, nil
}

// CreateAdmin creates an administrator, or promotes and resets the password of an existing user.
func CreateAdmin(ctx context.Context, cfg config.AppConfig, params CreateAdminParams) error {
	_, conn, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close(conn)
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	_, err = createAdmin(ctx, conn, params)
	return err
}

func createAdmin(ctx context.Context, conn *gorm.DB, params CreateAdminParams) (*models.User, error) {
	username := strings.TrimSpace(params.Username)
	if username == "" {
		return nil, errors.New("create-admin: username is required")
	}
	if len(params.Password) < security.MinPasswordLength {
		return nil, security.ErrWeakPassword
	}
	hash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	var user models.User
	errFind := conn.WithContext(ctx).Where("username = ?", username).First(&user).Error
	switch {
	case errFind == nil:
		updates := map[string]any{"is_admin": true, "disabled": false, "password": hash}
		if email := strings.TrimSpace(params.Email); email != "" {
			updates["email"] = email
		}
		if errUpdate := conn.WithContext(ctx).Model(&user).Updates(updates).Error; errUpdate != nil {
			return nil, errUpdate
		}
		log.WithField("user_id", user.ID).Info("create-admin: promoted existing user")
	case errors.Is(errFind, gorm.ErrRecordNotFound):
		email := strings.TrimSpace(params.Email)
		if email == "" && strings.Contains(username, "@") {
			email = username
		}
		user = models.User{
			Username: username,
			Email:    email,
			Nickname: "Super Admin",
			Password: hash,
			IsAdmin:  true,
		}
		if errCreate := conn.WithContext(ctx).Create(&user).Error; errCreate != nil {
			return nil, errCreate
		}
		log.WithField("user_id", user.ID).Info("create-admin: created administrator")
	default:
		return nil, errFind
	}
	if errReload := conn.WithContext(ctx).First(&user, user.ID).Error; errReload != nil {
		return nil, errReload
	}
	return &user, nil
}
