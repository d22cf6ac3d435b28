// Package scholarship provides HTTP handlers for the scholarship catalog and
// per-student scholarship applications.
package scholarship

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"UniTrack-backend/internal/database"
	"UniTrack-backend/internal/model"
	"UniTrack-backend/internal/policy"
	"UniTrack-backend/internal/utilities"
)

// ScholarshipController handles scholarship related endpoints
type ScholarshipController struct {
	DB *database.DBinstanceStruct
}

// NewScholarshipController creates a new instance of ScholarshipController with the provided database connection.
func NewScholarshipController(db *database.DBinstanceStruct) *ScholarshipController {
	return &ScholarshipController{
		DB: db,
	}
}

type scholarshipRequest struct {
	Name         string                        `json:"name" binding:"required"`
	University   string                        `json:"university" binding:"required"`
	Amount       float64                       `json:"amount" binding:"required"`
	Type         string                        `json:"type" binding:"required,oneof=Merit-based Need-based Research Athletic Other"`
	Deadline     time.Time                     `json:"deadline" binding:"required"`
	Status       string                        `json:"status" binding:"omitempty,oneof=Open Closed 'In Review'"`
	Requirements model.ScholarshipRequirements `json:"requirements"`
	Description  string                        `json:"description"`
	Featured     bool                          `json:"featured"`
}

type scholarshipAppRequest struct {
	ScholarshipID uuid.UUID        `json:"scholarship_id" binding:"required"`
	Status        string           `json:"status" binding:"omitempty"`
	Progress      *int             `json:"progress" binding:"omitempty,gte=0,lte=100"`
	Documents     []model.Document `json:"documents"`
	NextStep      string           `json:"nextStep"`
	Notes         string           `json:"notes"`
}

// GetScholarships lists the scholarship catalog.
// @Summary List scholarships
// @Tags Scholarship
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} model.Scholarship
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /scholarships [get]
func (sc *ScholarshipController) GetScholarships(c *gin.Context) {
	var scholarships []model.Scholarship
	if err := sc.DB.Order("created_at DESC").Find(&scholarships).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch scholarships: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, scholarships)
}

// CreateScholarship adds a catalog entry.
// @Summary Create a scholarship
// @Description Only admin can access this endpoint
// @Tags Scholarship
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param scholarship body scholarshipRequest true "Scholarship fields"
// @Success 201 {object} model.Scholarship
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /scholarships [post]
func (sc *ScholarshipController) CreateScholarship(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	if !policy.CanPerform(user.Role, policy.ScholarshipManage, user.ID, user.ID) {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "Only admins can manage scholarships",
		})
		return
	}

	var req scholarshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	status := req.Status
	if status == "" {
		status = "Open"
	}

	scholarship := model.Scholarship{
		Name:         req.Name,
		University:   req.University,
		Amount:       req.Amount,
		Type:         req.Type,
		Deadline:     req.Deadline,
		Status:       status,
		Requirements: req.Requirements,
		Description:  req.Description,
		Featured:     req.Featured,
	}

	if err := sc.DB.Create(&scholarship).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to create scholarship: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, scholarship)
}

// UpdateScholarship replaces catalog entry fields.
// @Summary Update a scholarship
// @Description Only admin can access this endpoint
// @Tags Scholarship
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "Scholarship id"
// @Param scholarship body scholarshipRequest true "Scholarship fields"
// @Success 200 {object} model.Scholarship
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 404 {object} utilities.ErrorResponse "Scholarship not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /scholarships/{id} [put]
func (sc *ScholarshipController) UpdateScholarship(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	if !policy.CanPerform(user.Role, policy.ScholarshipManage, user.ID, user.ID) {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "Only admins can manage scholarships",
		})
		return
	}

	scholarship := model.Scholarship{}
	if err := sc.DB.Where("id = ?", c.Param("id")).First(&scholarship).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Scholarship not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve scholarship: %s", err.Error()),
		})
		return
	}

	var req scholarshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	scholarship.Name = req.Name
	scholarship.University = req.University
	scholarship.Amount = req.Amount
	scholarship.Type = req.Type
	scholarship.Deadline = req.Deadline
	if req.Status != "" {
		scholarship.Status = req.Status
	}
	scholarship.Requirements = req.Requirements
	scholarship.Description = req.Description
	scholarship.Featured = req.Featured

	if err := sc.DB.Save(&scholarship).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update scholarship: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, scholarship)
}

// DeleteScholarship removes a catalog entry.
// @Summary Delete a scholarship
// @Description Only admin can access this endpoint
// @Tags Scholarship
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "Scholarship id"
// @Success 200 {object} utilities.MessageResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 404 {object} utilities.ErrorResponse "Scholarship not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /scholarships/{id} [delete]
func (sc *ScholarshipController) DeleteScholarship(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	if !policy.CanPerform(user.Role, policy.ScholarshipManage, user.ID, user.ID) {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "Only admins can manage scholarships",
		})
		return
	}

	scholarship := model.Scholarship{}
	if err := sc.DB.Where("id = ?", c.Param("id")).First(&scholarship).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Scholarship not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve scholarship: %s", err.Error()),
		})
		return
	}

	if err := sc.DB.Delete(&scholarship).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to delete scholarship: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Scholarship deleted successfully"})
}

// GetMyScholarshipApplications lists the calling student's scholarship
// applications, newest first, with the catalog entry preloaded.
// @Summary List the calling student's scholarship applications
// @Tags Scholarship
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} model.ScholarshipApplication
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /scholarships/applications [get]
func (sc *ScholarshipController) GetMyScholarshipApplications(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var applications []model.ScholarshipApplication
	if err := sc.DB.Preload("Scholarship").
		Where("student_id = ?", user.ID).
		Order("created_at DESC").
		Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch scholarship applications: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, applications)
}

// CreateScholarshipApplication creates a scholarship application for the
// calling student.
// @Summary Apply to a scholarship
// @Description Only students can access this endpoint
// @Tags Scholarship
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param application body scholarshipAppRequest true "Application fields"
// @Success 201 {object} model.ScholarshipApplication
// @Failure 400 {object} utilities.ErrorResponse "Invalid body or scholarship reference"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /scholarships/applications [post]
func (sc *ScholarshipController) CreateScholarshipApplication(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	if !policy.CanPerform(user.Role, policy.ScholarshipAppCreate, user.ID, user.ID) {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "User doesn't have permission to access",
		})
		return
	}

	var req scholarshipAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	status := req.Status
	if status == "" {
		status = "Draft"
	}
	if !model.IsValidScholarshipAppStatus(status) {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid status: %q", status),
		})
		return
	}
	if !validDocuments(c, req.Documents) {
		return
	}
	for i := range req.Documents {
		if req.Documents[i].Status == "" {
			req.Documents[i].Status = "Pending"
		}
	}

	progress := 0
	if req.Progress != nil {
		progress = *req.Progress
	}

	application := model.ScholarshipApplication{
		ScholarshipID:   req.ScholarshipID,
		StudentID:       user.ID,
		Status:          status,
		Progress:        progress,
		ApplicationDate: time.Now(),
		Documents:       req.Documents,
		NextStep:        req.NextStep,
		Notes:           req.Notes,
	}

	if err := sc.DB.Create(&application).Error; err != nil {
		var pgErr *pgconn.PgError
		// 23503: scholarship_id does not reference a catalog entry
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: "Scholarship not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to create scholarship application: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, application)
}

// UpdateScholarshipApplication replaces fields of a student's own
// scholarship application. Unlike college applications there is no timeline
// state machine here; fields are plain replacements after enum validation.
// @Summary Update a scholarship application
// @Description Students can update only their own applications
// @Tags Scholarship
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "Scholarship application id"
// @Param application body scholarshipAppRequest true "Fields to replace"
// @Success 200 {object} model.ScholarshipApplication
// @Failure 400 {object} utilities.ErrorResponse "Invalid body or status"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owning student"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /scholarships/applications/{id} [put]
func (sc *ScholarshipController) UpdateScholarshipApplication(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	application, ok := sc.findScholarshipApplication(c, c.Param("id"))
	if !ok {
		return
	}

	if !policy.CanPerform(user.Role, policy.ScholarshipAppUpdate, application.StudentID, user.ID) {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "You are not allowed to update this application",
		})
		return
	}

	var req struct {
		Status    *string          `json:"status"`
		Progress  *int             `json:"progress" binding:"omitempty,gte=0,lte=100"`
		Documents []model.Document `json:"documents"`
		NextStep  *string          `json:"nextStep"`
		Notes     *string          `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	if req.Status != nil {
		if !model.IsValidScholarshipAppStatus(*req.Status) {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: fmt.Sprintf("Invalid status: %q", *req.Status),
			})
			return
		}
		application.Status = *req.Status
	}
	if req.Progress != nil {
		application.Progress = *req.Progress
	}
	if req.Documents != nil {
		if !validDocuments(c, req.Documents) {
			return
		}
		application.Documents = req.Documents
	}
	if req.NextStep != nil {
		application.NextStep = *req.NextStep
	}
	if req.Notes != nil {
		application.Notes = *req.Notes
	}

	if err := sc.DB.Save(&application).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update scholarship application: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, application)
}

// DeleteScholarshipApplication removes a student's own scholarship application.
// @Summary Delete a scholarship application
// @Description Students can delete only their own applications
// @Tags Scholarship
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "Scholarship application id"
// @Success 200 {object} utilities.MessageResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owning student"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /scholarships/applications/{id} [delete]
func (sc *ScholarshipController) DeleteScholarshipApplication(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	application, ok := sc.findScholarshipApplication(c, c.Param("id"))
	if !ok {
		return
	}

	if !policy.CanPerform(user.Role, policy.ScholarshipAppDelete, application.StudentID, user.ID) {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "You are not allowed to delete this application",
		})
		return
	}

	if err := sc.DB.Delete(&application).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to delete scholarship application: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Application deleted successfully"})
}

func (sc *ScholarshipController) findScholarshipApplication(c *gin.Context, id string) (model.ScholarshipApplication, bool) {
	application := model.ScholarshipApplication{}
	if err := sc.DB.Where("id = ?", id).First(&application).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Application not found"})
			return application, false
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve application: %s", err.Error()),
		})
		return application, false
	}
	return application, true
}

// validDocuments rejects documents with out-of-enum statuses. Writes the
// error response itself and reports whether validation passed.
func validDocuments(c *gin.Context, docs []model.Document) bool {
	for _, d := range docs {
		status := d.Status
		if status == "" {
			continue
		}
		if !model.IsValidDocumentStatus(status) {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: fmt.Sprintf("Invalid document status: %q", status),
			})
			return false
		}
	}
	return true
}
