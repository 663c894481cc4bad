package controllers

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aquasentra/api-go/config"
	"github.com/aquasentra/api-go/models"
	"github.com/aquasentra/api-go/services"
	"github.com/aquasentra/api-go/storage"
	"github.com/aquasentra/api-go/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ReportController struct {
	DB        *gorm.DB
	Lifecycle *services.LifecycleService
	Query     *services.QueryService
	Storage   storage.Storage
	Upload    config.UploadConfig
	Notifier  *services.Notifier
	Log       *zap.Logger
}

func NewReportController(db *gorm.DB, store storage.Storage, upload config.UploadConfig, notifier *services.Notifier, log *zap.Logger) *ReportController {
	return &ReportController{
		DB:        db,
		Lifecycle: services.NewLifecycleService(db),
		Query:     services.NewQueryService(db),
		Storage:   store,
		Upload:    upload,
		Notifier:  notifier,
		Log:       log,
	}
}

func actorFrom(user *utils.UserClaims) services.Actor {
	return services.Actor{UserID: user.UserID, Role: user.Role}
}

// Create accepts either a JSON body or a multipart form with up to
// MaxFiles media attachments.
func (rc *ReportController) Create(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "User not found in context"})
		return
	}

	var input services.CreateReportInput
	var files []*multipart.FileHeader

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := rc.bindMultipart(c, &input); err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		form, err := c.MultipartForm()
		if err != nil {
			respondBadRequest(c, "Invalid multipart form")
			return
		}
		files = form.File["media"]
		if len(files) > rc.Upload.MaxFiles {
			respondBadRequest(c, "Too many media files")
			return
		}
		for _, fh := range files {
			if fh.Size > rc.Upload.MaxFileSize {
				respondBadRequest(c, "File exceeds maximum size: "+fh.Filename)
				return
			}
			if !rc.allowedMIME(fh.Header.Get("Content-Type")) {
				respondBadRequest(c, "Unsupported file type: "+fh.Filename)
				return
			}
		}
	} else {
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBadRequest(c, err.Error())
			return
		}
	}

	report, err := rc.Lifecycle.Create(c.Request.Context(), user.UserID, &input)
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}

	for _, fh := range files {
		media, err := rc.saveAttachment(c, report.ID, fh)
		if err != nil {
			rc.Log.Warn("media upload failed",
				zap.Uint("report_id", report.ID),
				zap.String("file", fh.Filename),
				zap.Error(err))
			continue
		}
		report.Media = append(report.Media, *media)
	}

	respondMessage(c, http.StatusCreated, report, "Report submitted")
}

func (rc *ReportController) bindMultipart(c *gin.Context, input *services.CreateReportInput) error {
	input.HazardType = c.PostForm("hazard_type")
	input.Severity = c.PostForm("severity")
	input.Urgency = c.PostForm("urgency")
	input.Description = c.PostForm("description")
	input.Address = c.PostForm("address")
	input.Visibility = c.PostForm("visibility")

	lat, err := strconv.ParseFloat(c.PostForm("latitude"), 64)
	if err != nil {
		return errInvalidCoordinate
	}
	lng, err := strconv.ParseFloat(c.PostForm("longitude"), 64)
	if err != nil {
		return errInvalidCoordinate
	}
	input.Latitude = lat
	input.Longitude = lng

	if raw := c.PostForm("tags"); raw != "" {
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			tags = strings.Split(raw, ",")
		}
		for i := range tags {
			tags[i] = strings.TrimSpace(tags[i])
		}
		input.Tags = tags
	}
	return nil
}

func (rc *ReportController) allowedMIME(mime string) bool {
	mime = strings.ToLower(strings.TrimSpace(mime))
	for _, allowed := range rc.Upload.AllowedMIMEs {
		if mime == allowed {
			return true
		}
	}
	return false
}

func (rc *ReportController) saveAttachment(c *gin.Context, reportID uint, fh *multipart.FileHeader) (*models.ReportMedia, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	key := storage.GenerateKey(reportID, fh.Filename)
	url, err := rc.Storage.Save(c.Request.Context(), key, f, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	media := &models.ReportMedia{
		ReportID:     reportID,
		FileName:     filepath.Base(url),
		OriginalName: fh.Filename,
		MimeType:     fh.Header.Get("Content-Type"),
		SizeBytes:    fh.Size,
		URL:          url,
	}
	if err := rc.DB.Create(media).Error; err != nil {
		return nil, err
	}
	return media, nil
}

func (rc *ReportController) List(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "User not found in context"})
		return
	}

	var filters services.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	page, err := rc.Query.List(c.Request.Context(), actorFrom(user), &filters)
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    page.Reports,
		Pagination: &PaginationMeta{
			CurrentPage: page.Page,
			PageSize:    page.PageSize,
			TotalItems:  page.Total,
			TotalPages:  page.TotalPages,
		},
	})
}

func (rc *ReportController) Get(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "User not found in context"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Invalid report id")
		return
	}

	report, err := rc.Query.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}

	if !services.CanPerform(actorFrom(user), report, services.ActionView) {
		respondError(c, rc.Log, services.ErrForbidden)
		return
	}

	respondData(c, http.StatusOK, report)
}

func (rc *ReportController) GetByPublicCode(c *gin.Context) {
	report, err := rc.Query.GetByPublicCode(c.Request.Context(), c.Param("publicId"))
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	respondData(c, http.StatusOK, report)
}

func (rc *ReportController) Update(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "User not found in context"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Invalid report id")
		return
	}

	var input services.UpdateReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	report, err := rc.Lifecycle.Update(c.Request.Context(), actorFrom(user), id, &input)
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	respondMessage(c, http.StatusOK, report, "Report updated")
}

func (rc *ReportController) Delete(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "User not found in context"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Invalid report id")
		return
	}

	if err := rc.Lifecycle.SoftDelete(c.Request.Context(), actorFrom(user), id); err != nil {
		respondError(c, rc.Log, err)
		return
	}
	respondMessage(c, http.StatusOK, nil, "Report deleted")
}

func (rc *ReportController) Verify(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "User not found in context"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Invalid report id")
		return
	}

	report, err := rc.Lifecycle.Verify(c.Request.Context(), actorFrom(user), id)
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}

	rc.notifyOwner(report, func(email string) {
		rc.Notifier.ReportVerified(context.Background(), email, report)
	})

	respondMessage(c, http.StatusOK, report, "Report verified")
}

func (rc *ReportController) Reject(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "User not found in context"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Invalid report id")
		return
	}

	var input struct {
		Reason string `json:"rejection_reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	report, err := rc.Lifecycle.Reject(c.Request.Context(), actorFrom(user), id, input.Reason)
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}

	rc.notifyOwner(report, func(email string) {
		rc.Notifier.ReportRejected(context.Background(), email, report, input.Reason)
	})

	respondMessage(c, http.StatusOK, report, "Report rejected")
}

func (rc *ReportController) Resolve(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "User not found in context"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Invalid report id")
		return
	}

	report, err := rc.Lifecycle.Resolve(c.Request.Context(), actorFrom(user), id)
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	respondMessage(c, http.StatusOK, report, "Report resolved")
}

func (rc *ReportController) MarkUnderReview(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "User not found in context"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Invalid report id")
		return
	}

	report, err := rc.Lifecycle.MarkUnderReview(c.Request.Context(), actorFrom(user), id)
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	respondMessage(c, http.StatusOK, report, "Report marked under review")
}

// ServeMedia streams a locally stored attachment. With the S3 backend,
// media URLs point at the bucket and never hit this route.
func (rc *ReportController) ServeMedia(c *gin.Context) {
	local, ok := rc.Storage.(*storage.LocalStorage)
	if !ok {
		c.JSON(http.StatusNotFound, StandardResponse{Success: false, Message: "Media served from object storage"})
		return
	}
	c.File(local.Path(c.Param("filename")))
}

func (rc *ReportController) notifyOwner(report *models.HazardReport, send func(email string)) {
	var owner models.User
	if err := rc.DB.First(&owner, report.UserID).Error; err != nil {
		rc.Log.Warn("owner lookup for notification failed", zap.Uint("report_id", report.ID), zap.Error(err))
		return
	}
	go send(owner.Email)
}
