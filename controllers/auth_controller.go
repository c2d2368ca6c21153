package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/kakao"
	"gorm.io/gorm"

	"github.com/SeSAC-PrePair/prepair/config"
	"github.com/SeSAC-PrePair/prepair/dispatch"
	"github.com/SeSAC-PrePair/prepair/models"
	"github.com/SeSAC-PrePair/prepair/utils"
)

// AuthController handles authentication, account lifecycle and profile endpoints.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// SignIn verifies user credentials and returns the identity used in X-User-ID.
func (a *AuthController) SignIn(ctx *gin.Context) {
	type request struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "이메일과 비밀번호를 입력해주세요.")
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", strings.TrimSpace(req.Email)).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "이메일 또는 비밀번호가 올바르지 않습니다.")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "이메일 또는 비밀번호가 올바르지 않습니다.")
		return
	}

	utils.Success(ctx, gin.H{
		"user_id": user.ID,
		"user":    sanitizeUserResponse(user),
	})
}

// SignUp handles account registration with bcrypt hashing and an email code check.
func (a *AuthController) SignUp(ctx *gin.Context) {
	type request struct {
		Name     string   `json:"name" binding:"required,min=2,max=64"`
		Email    string   `json:"email" binding:"required,email"`
		Password string   `json:"password" binding:"required,min=6,max=18"`
		Code     string   `json:"code" binding:"required"`
		JobTrack string   `json:"job_track"`
		Position string   `json:"position"`
		Channels []string `json:"channels"`
		Cadence  string   `json:"cadence"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "입력값을 확인해주세요.")
		return
	}

	email := strings.TrimSpace(req.Email)

	var existing models.User
	if err := a.db.Where("email = ?", email).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40901, "이미 가입된 이메일입니다.")
		return
	}

	if !validPassword(req.Password) {
		utils.Error(ctx, http.StatusBadRequest, 40002, "비밀번호는 6-18자의 영문, 숫자, -_. 만 사용할 수 있습니다.")
		return
	}

	cadence := strings.ToLower(strings.TrimSpace(req.Cadence))
	if cadence == "" {
		cadence = models.CadenceDaily
	}
	if cadence != models.CadenceDaily && cadence != models.CadenceWeekly {
		utils.Error(ctx, http.StatusBadRequest, 40003, "지원하지 않는 발송 주기입니다.")
		return
	}

	channels := normalizeChannels(req.Channels)
	if len(channels) == 0 {
		channels = []string{models.ChannelEmail}
	}

	if !utils.VerifyAndConsumeCode(email, strings.TrimSpace(req.Code)) {
		utils.Error(ctx, http.StatusBadRequest, 40004, "인증번호가 올바르지 않거나 만료되었습니다.")
		return
	}

	// Anti-abuse: cooldown, per-IP daily limit, ban check
	ip := ctx.ClientIP()
	if utils.SignupIsBanned(ip) {
		utils.Error(ctx, http.StatusTooManyRequests, 42920, "현재 IP에서 가입이 일시적으로 제한되었습니다.")
		return
	}
	if !utils.SignupCooldownTry(ip) {
		utils.Error(ctx, http.StatusTooManyRequests, 42910, "요청이 너무 잦습니다. 잠시 후 다시 시도해주세요.")
		return
	}
	if !utils.SignupDailyLimitCheck(ip) {
		utils.Error(ctx, http.StatusTooManyRequests, 42921, "오늘 가입 가능 횟수를 초과했습니다.")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "비밀번호 처리에 실패했습니다.")
		return
	}

	cfg := config.Get()
	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		JobTrack:     strings.ToLower(strings.TrimSpace(req.JobTrack)),
		Position:     strings.TrimSpace(req.Position),
		Channels:     strings.Join(channels, ","),
		Cadence:      cadence,
		Points:       cfg.SignupStartingPoints,
	}

	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "회원가입에 실패했습니다.")
		fails := utils.SignupFailRecord(ip)
		if fails >= maxOf(cfg.SignupFailedMaxPerIPPerHour, 1) {
			utils.SignupBan(ip)
		}
		return
	}

	utils.SignupDailyIncrement(ip)

	// The Kakao channel needs an external channel-add verification before we
	// can deliver, so the first question waits until that completes.
	var first *models.Dispatch
	if !utils.ContainsString(channels, models.ChannelKakao) {
		if d, err := dispatch.Create(a.db, &user); err != nil {
			if !errors.Is(err, dispatch.ErrNoQuestion) {
				utils.Sugar.Warnf("first dispatch failed user=%d err=%v", user.ID, err)
			}
		} else {
			first = d
		}
	}

	utils.Success(ctx, gin.H{
		"user_id":        user.ID,
		"user":           sanitizeUserResponse(user),
		"first_dispatch": first,
	})
}

// RequestEmailCode sends a verification code to the given address.
func (a *AuthController) RequestEmailCode(ctx *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "이메일을 입력해주세요.")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "이메일을 입력해주세요.")
		return
	}
	// basic cooldown: per-email 60s
	if !utils.EmailCooldownTrySet(email, 60*time.Second) {
		utils.Error(ctx, http.StatusTooManyRequests, 42911, "요청이 너무 잦습니다. 잠시 후 다시 시도해주세요.")
		return
	}
	code := utils.GenerateVerificationCode(6)
	subject := "PrePair 이메일 인증번호"
	body := fmt.Sprintf("인증번호는 %s 입니다.\n10분 내에 입력해주세요.", code)
	if err := utils.SendMail(email, subject, body); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "인증번호 발송에 실패했습니다. 잠시 후 다시 시도해주세요.")
		return
	}
	// Store the code only after the mail went out so dead codes don't pile up.
	utils.SaveCode(email, code, 10*time.Minute)
	utils.Success(ctx, gin.H{"message": "인증번호를 발송했습니다."})
}

// VerifyEmailCode checks a code without consuming it, used for client-side
// validation before the signup form is submitted.
func (a *AuthController) VerifyEmailCode(ctx *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40042, "이메일과 인증번호를 입력해주세요.")
		return
	}
	if !utils.PeekCodeValid(strings.TrimSpace(req.Email), strings.TrimSpace(req.Code)) {
		utils.Error(ctx, http.StatusBadRequest, 40043, "인증번호가 올바르지 않거나 만료되었습니다.")
		return
	}
	utils.Success(ctx, gin.H{"verified": true})
}

// ResetPassword replaces the password after an email code verification.
func (a *AuthController) ResetPassword(ctx *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		Code        string `json:"code" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=6,max=18"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40044, "입력값을 확인해주세요.")
		return
	}
	if !validPassword(req.NewPassword) {
		utils.Error(ctx, http.StatusBadRequest, 40044, "비밀번호는 6-18자의 영문, 숫자, -_. 만 사용할 수 있습니다.")
		return
	}

	email := strings.TrimSpace(req.Email)
	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40411, "가입되지 않은 이메일입니다.")
		return
	}

	if !utils.VerifyAndConsumeCode(email, strings.TrimSpace(req.Code)) {
		utils.Error(ctx, http.StatusBadRequest, 40045, "인증번호가 올바르지 않거나 만료되었습니다.")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "비밀번호 처리에 실패했습니다.")
		return
	}
	if err := a.db.Model(&user).Update("password_hash", hash).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "비밀번호 변경에 실패했습니다.")
		return
	}

	utils.Success(ctx, gin.H{"message": "비밀번호가 변경되었습니다."})
}

// KakaoRedirect generates the Kakao authorization URL for the channel handoff.
func (a *AuthController) KakaoRedirect(ctx *gin.Context) {
	cfg, err := a.kakaoConfig()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40005, err.Error())
		return
	}

	state := uuid.NewString()
	utils.SaveState(state, 10*time.Minute)

	authURL := cfg.AuthCodeURL(state)
	utils.Success(ctx, gin.H{"authorization_url": authURL, "state": state})
}

// KakaoCallback exchanges the authorization code, links or creates the user,
// and redirects back to the app with a one-time handoff ticket.
func (a *AuthController) KakaoCallback(ctx *gin.Context) {
	code := ctx.Query("code")
	state := ctx.Query("state")

	if code == "" || state == "" {
		utils.Error(ctx, http.StatusBadRequest, 40006, "missing code or state")
		return
	}
	if !utils.ConsumeState(state) {
		utils.Error(ctx, http.StatusBadRequest, 40007, "invalid or expired state")
		return
	}

	oc, err := a.kakaoConfig()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40005, err.Error())
		return
	}

	token, err := oc.Exchange(context.Background(), code)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40008, "failed to exchange code")
		return
	}

	info, err := fetchKakaoUser(token)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50005, err.Error())
		return
	}

	user, err := a.findOrCreateKakaoUser(info)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to persist user")
		return
	}

	ticket, err := utils.GenerateTicket(user.ID, user.Email, 5*time.Minute)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50007, "failed to issue ticket")
		return
	}

	base := config.Get().OAuthRedirectBase
	if base == "" {
		utils.Success(ctx, gin.H{"ticket": ticket})
		return
	}
	ctx.Redirect(http.StatusFound, fmt.Sprintf("%s/auth/kakao?ticket=%s", strings.TrimRight(base, "/"), url.QueryEscape(ticket)))
}

// KakaoExchange trades a one-time handoff ticket for the user identity.
func (a *AuthController) KakaoExchange(ctx *gin.Context) {
	var req struct {
		Ticket string `json:"ticket" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40009, "invalid request payload")
		return
	}

	if utils.IsTicketUsed(req.Ticket) {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "이미 사용된 인증 티켓입니다.")
		return
	}

	claims, err := utils.ParseTicket(req.Ticket)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "유효하지 않은 인증 티켓입니다.")
		return
	}

	expiresAt := time.Now().Add(5 * time.Minute)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	utils.MarkTicketUsed(req.Ticket, expiresAt)

	var user models.User
	if err := a.db.First(&user, claims.UserID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40412, "존재하지 않는 사용자입니다.")
		return
	}

	utils.Success(ctx, gin.H{
		"user_id": user.ID,
		"user":    sanitizeUserResponse(user),
	})
}

// Me returns the current authenticated user's information.
func (a *AuthController) Me(ctx *gin.Context) {
	user, ok := loadUser(ctx, a.db)
	if !ok {
		return
	}
	utils.Success(ctx, sanitizeUserResponse(*user))
}

// UpdateProfile allows the authenticated user to update settings fields.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	user, ok := loadUser(ctx, a.db)
	if !ok {
		return
	}

	var req struct {
		Name     *string   `json:"name"`
		JobTrack *string   `json:"job_track"`
		Position *string   `json:"position"`
		Intro    *string   `json:"intro"`
		Channels *[]string `json:"channels"`
		Cadence  *string   `json:"cadence"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "입력값을 확인해주세요.")
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.JobTrack != nil {
		user.JobTrack = strings.ToLower(strings.TrimSpace(*req.JobTrack))
	}
	if req.Position != nil {
		user.Position = strings.TrimSpace(*req.Position)
	}
	if req.Intro != nil {
		intro := utils.Sanitize(strings.TrimSpace(*req.Intro))
		if rs := []rune(intro); len(rs) > 255 {
			intro = string(rs[:255])
		}
		user.Intro = intro
	}
	if req.Channels != nil {
		chs := normalizeChannels(*req.Channels)
		if len(chs) == 0 {
			utils.Error(ctx, http.StatusBadRequest, 40031, "알림 채널을 하나 이상 선택해주세요.")
			return
		}
		user.Channels = strings.Join(chs, ",")
	}
	if req.Cadence != nil {
		c := strings.ToLower(strings.TrimSpace(*req.Cadence))
		if c != models.CadenceDaily && c != models.CadenceWeekly {
			utils.Error(ctx, http.StatusBadRequest, 40032, "지원하지 않는 발송 주기입니다.")
			return
		}
		user.Cadence = c
	}

	if err := a.db.Save(user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "설정 저장에 실패했습니다.")
		return
	}

	utils.Success(ctx, sanitizeUserResponse(*user))
}

// DeleteAccount removes the account and all session-scoped data. The operation
// is password-gated and fails loudly on a wrong password.
func (a *AuthController) DeleteAccount(ctx *gin.Context) {
	user, ok := loadUser(ctx, a.db)
	if !ok {
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40033, "비밀번호를 입력해주세요.")
		return
	}

	// Kakao-linked accounts without a local password cannot be deleted this way.
	if user.PasswordHash == "" || !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "비밀번호가 일치하지 않습니다.")
		return
	}

	err := a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Dispatch{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Purchase{}).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "회원 탈퇴에 실패했습니다.")
		return
	}

	utils.Success(ctx, gin.H{"message": "탈퇴가 완료되었습니다."})
}

func (a *AuthController) kakaoConfig() (*oauth2.Config, error) {
	cfg := config.Get()
	if cfg.KakaoClientID == "" {
		return nil, fmt.Errorf("kakao oauth not configured")
	}
	return &oauth2.Config{
		ClientID:     cfg.KakaoClientID,
		ClientSecret: cfg.KakaoClientSecret,
		RedirectURL:  fmt.Sprintf("%s/api/auth/kakao/callback", cfg.OAuthRedirectBase),
		Scopes:       []string{"profile_nickname", "account_email"},
		Endpoint:     kakao.Endpoint,
	}, nil
}

type kakaoUser struct {
	ID       string
	Nickname string
	Email    string
}

func fetchKakaoUser(token *oauth2.Token) (*kakaoUser, error) {
	req, _ := http.NewRequest("GET", "https://kapi.kakao.com/v2/user/me", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kakao user info request failed: %s", resp.Status)
	}

	var payload struct {
		ID      int64 `json:"id"`
		Account struct {
			Email   string `json:"email"`
			Profile struct {
				Nickname string `json:"nickname"`
			} `json:"profile"`
		} `json:"kakao_account"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	return &kakaoUser{
		ID:       fmt.Sprintf("%d", payload.ID),
		Nickname: payload.Account.Profile.Nickname,
		Email:    payload.Account.Email,
	}, nil
}

func (a *AuthController) findOrCreateKakaoUser(data *kakaoUser) (*models.User, error) {
	var user models.User
	err := a.db.Where("provider = ? AND provider_id = ?", "kakao", data.ID).First(&user).Error
	if err == nil {
		if strings.TrimSpace(data.Email) != "" && user.Email != data.Email {
			_ = a.db.Model(&user).Update("email", strings.TrimSpace(data.Email)).Error
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	name := strings.TrimSpace(data.Nickname)
	if name == "" {
		name = "kakao_" + data.ID
	}
	user = models.User{
		Name:       name,
		Email:      strings.TrimSpace(data.Email),
		Provider:   "kakao",
		ProviderID: data.ID,
		Channels:   models.ChannelKakao,
		Cadence:    models.CadenceDaily,
		Points:     config.Get().SignupStartingPoints,
	}
	if err := a.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func normalizeChannels(in []string) []string {
	out := make([]string, 0, len(in))
	for _, ch := range in {
		ch = strings.ToLower(strings.TrimSpace(ch))
		if ch != models.ChannelEmail && ch != models.ChannelKakao {
			continue
		}
		if !utils.ContainsString(out, ch) {
			out = append(out, ch)
		}
	}
	return out
}

func validPassword(s string) bool {
	for _, r := range s {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '-' || r == '_' || r == '.' {
			continue
		}
		return false
	}
	return true
}

func maxOf(a, b int) int {
	if a > b {
		return a
	}
	return b
}
