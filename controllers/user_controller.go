package controllers

import (
	"fmt"
	"net/http"

	"github.com/aquasentra/api-go/models"
	"github.com/aquasentra/api-go/services"
	"github.com/aquasentra/api-go/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewUserController(db *gorm.DB, log *zap.Logger) *UserController {
	return &UserController{DB: db, Log: log}
}

func (uc *UserController) List(c *gin.Context) {
	var filters struct {
		Role     string `form:"role"`
		Status   string `form:"status"`
		Page     int    `form:"page,default=1"`
		PageSize int    `form:"page_size,default=20"`
	}
	if err := c.ShouldBindQuery(&filters); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if filters.Role != "" && !models.ValidRole(filters.Role) {
		respondBadRequest(c, "Unknown role")
		return
	}
	if filters.Status != "" && !models.ValidAccountStatus(filters.Status) {
		respondBadRequest(c, "Unknown account status")
		return
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}

	db := uc.DB.Model(&models.User{})
	if filters.Role != "" {
		db = db.Where("role = ?", filters.Role)
	}
	if filters.Status != "" {
		db = db.Where("account_status = ?", filters.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		respondError(c, uc.Log, err)
		return
	}

	var users []models.User
	err := db.Order("created_at DESC").
		Offset((filters.Page - 1) * filters.PageSize).
		Limit(filters.PageSize).
		Find(&users).Error
	if err != nil {
		respondError(c, uc.Log, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    users,
		Pagination: &PaginationMeta{
			CurrentPage: filters.Page,
			PageSize:    filters.PageSize,
			TotalItems:  total,
			TotalPages:  int((total + int64(filters.PageSize) - 1) / int64(filters.PageSize)),
		},
	})
}

func (uc *UserController) Get(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Invalid user id")
		return
	}

	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		respondError(c, uc.Log, services.ErrNotFound)
		return
	}
	respondData(c, http.StatusOK, user)
}

// UpdateRole changes a user's role. An admin may not demote themselves.
func (uc *UserController) UpdateRole(c *gin.Context) {
	actor := utils.GetUser(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "User not found in context"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Invalid user id")
		return
	}

	var input struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if !models.ValidRole(input.Role) {
		respondBadRequest(c, "Unknown role")
		return
	}

	if !services.CanAdministerUser(actorFrom(actor), id, services.AdminChangeRole, input.Role) {
		respondError(c, uc.Log, services.ErrForbidden)
		return
	}

	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		respondError(c, uc.Log, services.ErrNotFound)
		return
	}

	if err := uc.DB.Model(&user).Update("role", input.Role).Error; err != nil {
		respondError(c, uc.Log, err)
		return
	}
	respondMessage(c, http.StatusOK, user, "Role updated")
}

// UpdateStatus changes a user's account status. An admin may not suspend
// their own account.
func (uc *UserController) UpdateStatus(c *gin.Context) {
	actor := utils.GetUser(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "User not found in context"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Invalid user id")
		return
	}

	var input struct {
		AccountStatus string `json:"account_status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if !models.ValidAccountStatus(input.AccountStatus) {
		respondBadRequest(c, "Unknown account status")
		return
	}

	if !services.CanAdministerUser(actorFrom(actor), id, services.AdminChangeStatus, input.AccountStatus) {
		respondError(c, uc.Log, services.ErrForbidden)
		return
	}

	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		respondError(c, uc.Log, services.ErrNotFound)
		return
	}

	if err := uc.DB.Model(&user).Update("account_status", input.AccountStatus).Error; err != nil {
		respondError(c, uc.Log, err)
		return
	}
	respondMessage(c, http.StatusOK, user, "Account status updated")
}

// Delete deactivates an account. Rows are never hard-deleted; the email is
// scrambled so it can be re-registered.
func (uc *UserController) Delete(c *gin.Context) {
	actor := utils.GetUser(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "User not found in context"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Invalid user id")
		return
	}

	if !services.CanAdministerUser(actorFrom(actor), id, services.AdminDeleteUser, "") {
		respondError(c, uc.Log, services.ErrForbidden)
		return
	}

	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		respondError(c, uc.Log, services.ErrNotFound)
		return
	}

	scrambled := fmt.Sprintf("deleted-%d-%s@invalid.local", user.ID, uuid.NewString()[:8])
	err = uc.DB.Model(&user).Updates(map[string]interface{}{
		"account_status": models.AccountInactive,
		"email":          scrambled,
	}).Error
	if err != nil {
		respondError(c, uc.Log, err)
		return
	}

	uc.DB.Where("user_id = ?", user.ID).Delete(&models.RefreshToken{})
	respondMessage(c, http.StatusOK, nil, "Account deactivated")
}
