package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SeSAC-PrePair/prepair/models"
	"github.com/SeSAC-PrePair/prepair/utils"
)

// purchaseValidity is how long an issued gifticon stays redeemable.
const purchaseValidity = 30 * 24 * time.Hour

const rewardCatalogCacheKey = "cache:rewards:catalog"

// RewardController handles the reward catalog and point redemption.
type RewardController struct {
	db *gorm.DB
}

// NewRewardController creates a new controller instance.
func NewRewardController(db *gorm.DB) *RewardController {
	return &RewardController{db: db}
}

// List returns the caller's point balance, the reward catalog, and past
// purchases. Purchases past their expiry are flipped lazily on read.
func (r *RewardController) List(ctx *gin.Context) {
	user, ok := loadUser(ctx, r.db)
	if !ok {
		return
	}

	// The catalog changes rarely; serve it from Redis when available.
	var rewards []models.Reward
	if b, ok := utils.CacheGetBytes(rewardCatalogCacheKey); ok {
		_ = json.Unmarshal(b, &rewards)
	}
	if len(rewards) == 0 {
		if err := r.db.Order("cost ASC").Find(&rewards).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50050, "리워드 목록을 불러오지 못했습니다.")
			return
		}
		utils.CacheSetJSON(rewardCatalogCacheKey, rewards, 10*time.Minute)
	}

	var purchases []models.Purchase
	if err := r.db.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&purchases).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "구매 내역을 불러오지 못했습니다.")
		return
	}

	now := time.Now()
	for i := range purchases {
		p := &purchases[i]
		if p.Status == models.PurchaseReady && now.After(p.ExpiresAt) {
			p.Status = models.PurchaseExpired
			if err := r.db.Model(p).Update("status", models.PurchaseExpired).Error; err != nil {
				utils.Sugar.Warnf("purchase expiry update failed purchase=%d err=%v", p.ID, err)
			}
		}
	}

	utils.Success(ctx, gin.H{
		"points":    user.Points,
		"tier":      user.Tier(),
		"rewards":   rewards,
		"purchases": purchases,
	})
}

// Redeem exchanges points for a catalog item. The balance check and deduction
// run inside one locked transaction so concurrent redemptions cannot overdraw.
func (r *RewardController) Redeem(ctx *gin.Context) {
	user, ok := loadUser(ctx, r.db)
	if !ok {
		return
	}

	var req struct {
		RewardID uint `json:"reward_id" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "교환할 리워드를 선택해주세요.")
		return
	}

	var reward models.Reward
	if err := r.db.First(&reward, req.RewardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40450, "존재하지 않는 리워드입니다.")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50052, "리워드 정보를 불러오지 못했습니다.")
		return
	}

	var (
		purchase  models.Purchase
		remaining int
	)
	errInsufficient := errors.New("insufficient points")

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var locked models.User
		if err := lockForUpdate(tx).First(&locked, user.ID).Error; err != nil {
			return err
		}
		if locked.Points < reward.Cost {
			return errInsufficient
		}

		purchase = models.Purchase{
			UserID:     locked.ID,
			RewardID:   reward.ID,
			RewardName: reward.Name,
			Cost:       reward.Cost,
			OrderNo:    utils.NewOrderNo(),
			Barcode:    utils.NewBarcode(),
			PIN:        utils.NewPIN(),
			Status:     models.PurchaseReady,
			ExpiresAt:  time.Now().Add(purchaseValidity),
		}
		if err := tx.Create(&purchase).Error; err != nil {
			return err
		}

		locked.Points -= reward.Cost
		remaining = locked.Points
		return tx.Save(&locked).Error
	})
	if err != nil {
		if errors.Is(err, errInsufficient) {
			utils.Error(ctx, http.StatusBadRequest, 40051, "포인트가 부족합니다.")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50053, "리워드 교환에 실패했습니다.")
		return
	}

	utils.Success(ctx, gin.H{
		"purchase":         purchase,
		"remaining_points": remaining,
	})
}
