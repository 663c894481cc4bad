package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/aquasentra/api-go/config"
	"github.com/aquasentra/api-go/models"
	"github.com/aquasentra/api-go/services"
	"github.com/aquasentra/api-go/utils"
	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL  = 7 * 24 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

type AuthController struct {
	DB       *gorm.DB
	JWT      config.JWTConfig
	Notifier *services.Notifier
	Log      *zap.Logger
}

func NewAuthController(db *gorm.DB, jwtCfg config.JWTConfig, notifier *services.Notifier, log *zap.Logger) *AuthController {
	return &AuthController{DB: db, JWT: jwtCfg, Notifier: notifier, Log: log}
}

func (ac *AuthController) signTokens(user *models.User) (access string, refresh string, err error) {
	accessBase := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(accessTokenTTL).Unix(),
	})
	refreshBase := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(refreshTokenTTL).Unix(),
	})

	access, err = accessBase.SignedString([]byte(ac.JWT.Secret))
	if err != nil {
		return "", "", err
	}
	refresh, err = refreshBase.SignedString([]byte(ac.JWT.Secret))
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (ac *AuthController) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, ac.Log, err)
		return
	}

	user := models.User{
		Name:          strings.TrimSpace(input.Name),
		Email:         strings.ToLower(strings.TrimSpace(input.Email)),
		Password:      string(hashedPassword),
		Role:          models.RoleCitizen,
		AccountStatus: models.AccountActive,
	}

	if err := ac.DB.Create(&user).Error; err != nil {
		respondBadRequest(c, "Email already registered")
		return
	}

	// Welcome email is best effort; never fails the registration.
	go ac.Notifier.Welcome(context.Background(), &user)

	respondMessage(c, http.StatusCreated, gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	}, "User registered successfully")
}

func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	var user models.User
	if err := ac.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "Invalid credentials"})
		return
	}

	if user.AccountStatus == models.AccountSuspended || user.AccountStatus == models.AccountInactive {
		c.JSON(http.StatusForbidden, StandardResponse{Success: false, Message: "Account is not active"})
		return
	}

	access, refresh, err := ac.signTokens(&user)
	if err != nil {
		respondError(c, ac.Log, err)
		return
	}

	ac.DB.Create(&models.RefreshToken{
		UserID:         user.ID,
		Token:          refresh,
		ExpirationDate: time.Now().Add(refreshTokenTTL),
	})

	now := time.Now()
	ac.DB.Model(&user).Update("last_active_at", now)

	respondData(c, http.StatusOK, gin.H{
		"token_type":    "Bearer",
		"access_token":  access,
		"refresh_token": refresh,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

func (ac *AuthController) RefreshToken(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	var refreshToken models.RefreshToken
	if err := ac.DB.Where("token = ?", input.RefreshToken).First(&refreshToken).Error; err != nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "Invalid refresh token"})
		return
	}

	if time.Now().After(refreshToken.ExpirationDate) {
		ac.DB.Delete(&refreshToken)
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "Refresh token expired"})
		return
	}

	var user models.User
	if err := ac.DB.First(&user, refreshToken.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "User not found"})
		return
	}

	access, refresh, err := ac.signTokens(&user)
	if err != nil {
		respondError(c, ac.Log, err)
		return
	}

	refreshToken.Token = refresh
	refreshToken.ExpirationDate = time.Now().Add(refreshTokenTTL)
	ac.DB.Save(&refreshToken)

	respondData(c, http.StatusOK, gin.H{
		"token_type":    "Bearer",
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (ac *AuthController) Logout(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	ac.DB.Where("token = ?", input.RefreshToken).Delete(&models.RefreshToken{})
	respondMessage(c, http.StatusOK, nil, "Logged out successfully")
}

func (ac *AuthController) Me(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "User not found in context"})
		return
	}

	var dbUser models.User
	if err := ac.DB.First(&dbUser, user.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, StandardResponse{Success: false, Message: "User not found"})
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"id":                 dbUser.ID,
		"name":               dbUser.Name,
		"email":              dbUser.Email,
		"role":               dbUser.Role,
		"account_status":     dbUser.AccountStatus,
		"verification_level": dbUser.VerificationLevel,
		"created_at":         dbUser.CreatedAt,
	})
}
