// Package application provides HTTP handlers for college application operations.
package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"UniTrack-backend/internal/database"
	"UniTrack-backend/internal/model"
	"UniTrack-backend/internal/policy"
	"UniTrack-backend/internal/utilities"
)

// ApplicationController handles college application related endpoints
type ApplicationController struct {
	DB *database.DBinstanceStruct
}

// NewApplicationController creates a new instance of ApplicationController with the provided database connection.
func NewApplicationController(db *database.DBinstanceStruct) *ApplicationController {
	return &ApplicationController{
		DB: db,
	}
}

type createApplicationRequest struct {
	University string `json:"university" binding:"required"`
	Program    string `json:"program" binding:"required"`
}

// updateApplicationRequest carries partial fields. A status change runs the
// timeline state machine; caller-supplied timeline entries are appended,
// never replacing existing history.
type updateApplicationRequest struct {
	University *string               `json:"university"`
	Program    *string               `json:"program"`
	Status     *string               `json:"status"`
	Progress   *int                  `json:"progress" binding:"omitempty,gte=0,lte=100"`
	Timeline   []model.TimelineEvent `json:"timeline"`
}

type noteRequest struct {
	Note string `json:"note" binding:"required"`
	Date string `json:"date"`
}

// GetAllApplications returns every application, newest first.
// @Summary List all applications
// @Description Only admin can access this endpoint
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} model.Application
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications/all [get]
func (ac *ApplicationController) GetAllApplications(c *gin.Context) {
	var applications []model.Application
	if err := ac.DB.Order("created_at DESC").Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch applications: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, applications)
}

// GetAgentApplications returns applications visible to agents, newest first.
// Currently every record is visible; agent-specific filtering is not
// implemented.
// @Summary List applications for agents
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} model.Application
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as agent"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications/agent [get]
func (ac *ApplicationController) GetAgentApplications(c *gin.Context) {
	var applications []model.Application
	if err := ac.DB.Order("created_at DESC").Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch applications: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, applications)
}

// GetMyApplications returns the calling student's applications, newest first.
// Identity always comes from the validated token, never from a fixed id.
// @Summary List the calling student's applications
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} model.Application
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications [get]
func (ac *ApplicationController) GetMyApplications(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var applications []model.Application
	if err := ac.DB.Where("student_id = ?", user.ID).
		Order("created_at DESC").
		Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch applications: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, applications)
}

// CreateApplication creates a new application for the calling student with
// status Pending, zero progress and an empty timeline.
// @Summary Create a college application
// @Description Only students can access this endpoint
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param application body createApplicationRequest true "University and program"
// @Success 201 {object} model.Application
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications [post]
func (ac *ApplicationController) CreateApplication(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var req createApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	if !policy.CanPerform(user.Role, policy.ApplicationCreate, user.ID, user.ID) {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "User doesn't have permission to access",
		})
		return
	}

	today := model.DateStamp(time.Now())
	application := model.Application{
		University:    req.University,
		Program:       req.Program,
		Status:        model.StatusPending,
		Progress:      0,
		SubmittedDate: today,
		LastUpdated:   today,
		Timeline:      model.Timeline{},
		AgentNotes:    model.AgentNotes{},
		StudentID:     user.ID,
	}

	if err := ac.DB.Create(&application).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to create application: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, application)
}

// GetApplication returns a single application by id.
// @Summary Get one application
// @Description Students see only their own records; agents and admins see any
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "Application id"
// @Success 200 {object} model.Application
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owning student"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications/{id} [get]
func (ac *ApplicationController) GetApplication(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	application, ok := ac.findApplication(c, c.Param("id"))
	if !ok {
		return
	}

	if !policy.CanPerform(user.Role, policy.ApplicationRead, application.StudentID, user.ID) {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "You are not allowed to view this application",
		})
		return
	}

	c.JSON(http.StatusOK, application)
}

// UpdateApplication merges partial fields into an application. A status
// change is validated against the closed status set, appends exactly one
// timeline event with a derived icon, and stamps lastUpdated with the
// current date. Caller-supplied timeline entries are appended after the
// status event; existing history is never replaced. All appends use a
// single atomic jsonb concatenation so concurrent writers cannot lose
// events.
// @Summary Update an application
// @Description Admins update any record, students only their own
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "Application id"
// @Param application body updateApplicationRequest true "Partial fields"
// @Success 200 {object} model.Application
// @Failure 400 {object} utilities.ErrorResponse "Invalid body, status or progress"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "No permission to update"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications/{id} [put]
func (ac *ApplicationController) UpdateApplication(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	application, ok := ac.findApplication(c, c.Param("id"))
	if !ok {
		return
	}

	if !policy.CanPerform(user.Role, policy.ApplicationUpdate, application.StudentID, user.ID) {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "You are not allowed to update this application",
		})
		return
	}

	var req updateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	// Inbound fields are untrusted: reject out-of-enum values before
	// anything is persisted.
	if req.Status != nil && !model.IsValidStatus(*req.Status) {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid status: %q", *req.Status),
		})
		return
	}
	for _, event := range req.Timeline {
		if !model.IsValidIcon(event.Icon) {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: fmt.Sprintf("Invalid timeline icon: %q", event.Icon),
			})
			return
		}
	}

	now := time.Now()
	updates := map[string]interface{}{}
	var newEvents []model.TimelineEvent

	if req.University != nil {
		updates["university"] = *req.University
	}
	if req.Program != nil {
		updates["program"] = *req.Program
	}
	if req.Progress != nil {
		updates["progress"] = *req.Progress
	}
	if req.Status != nil {
		updates["status"] = *req.Status
		updates["last_updated"] = model.DateStamp(now)
		newEvents = append(newEvents, model.NewStatusEvent(*req.Status, now))
	}
	newEvents = append(newEvents, req.Timeline...)

	if len(newEvents) > 0 {
		payload, err := json.Marshal(newEvents)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to encode timeline events: %s", err.Error()),
			})
			return
		}
		// Atomic append: jsonb concatenation inside the UPDATE keeps the
		// timeline append-only even under concurrent writers.
		updates["timeline"] = gorm.Expr("timeline || ?::jsonb", string(payload))
	}

	if len(updates) > 0 {
		if err := ac.DB.Model(&model.Application{}).
			Where("id = ?", application.ID).
			Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to update application: %s", err.Error()),
			})
			return
		}
	}

	// Reload to return the latest data
	if err := ac.DB.Where("id = ?", application.ID).First(&application).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve updated application: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, application)
}

// DeleteApplication hard-deletes an application.
// @Summary Delete an application
// @Description Admins delete any record, students only their own
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "Application id"
// @Success 200 {object} utilities.MessageResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "No permission to delete"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications/{id} [delete]
func (ac *ApplicationController) DeleteApplication(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	application, ok := ac.findApplication(c, c.Param("id"))
	if !ok {
		return
	}

	if !policy.CanPerform(user.Role, policy.ApplicationDelete, application.StudentID, user.ID) {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "You are not allowed to delete this application",
		})
		return
	}

	if err := ac.DB.Delete(&application).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to delete application: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Application deleted successfully"})
}

// AddNote appends an agent note to an application together with a timeline
// entry tagged review carrying the note text as comment. Both appends go
// through one atomic jsonb UPDATE.
// @Summary Attach an agent note
// @Description Only agents can access this endpoint
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "Application id"
// @Param note body noteRequest true "Note text and optional date"
// @Success 200 {object} model.Application
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as agent"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications/{id}/note [post]
func (ac *ApplicationController) AddNote(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	application, ok := ac.findApplication(c, c.Param("id"))
	if !ok {
		return
	}

	if !policy.CanPerform(user.Role, policy.ApplicationAddNote, application.StudentID, user.ID) {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "You are not allowed to add notes to this application",
		})
		return
	}

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	if req.Date == "" {
		req.Date = model.DateStamp(time.Now())
	}

	note := model.AgentNote{
		Note:    req.Note,
		Date:    req.Date,
		AgentID: user.ID,
	}
	notePayload, err := json.Marshal([]model.AgentNote{note})
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to encode note: %s", err.Error()),
		})
		return
	}
	eventPayload, err := json.Marshal([]model.TimelineEvent{model.NewNoteEvent(req.Note, req.Date)})
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to encode timeline event: %s", err.Error()),
		})
		return
	}

	if err := ac.DB.Model(&model.Application{}).
		Where("id = ?", application.ID).
		Updates(map[string]interface{}{
			"agent_notes": gorm.Expr("agent_notes || ?::jsonb", string(notePayload)),
			"timeline":    gorm.Expr("timeline || ?::jsonb", string(eventPayload)),
		}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to add note: %s", err.Error()),
		})
		return
	}

	if err := ac.DB.Where("id = ?", application.ID).First(&application).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve updated application: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, application)
}

// findApplication fetches one application and writes the 404/500 response
// itself when the lookup fails.
func (ac *ApplicationController) findApplication(c *gin.Context, id string) (model.Application, bool) {
	application := model.Application{}
	if err := ac.DB.Where("id = ?", id).First(&application).Error; err != nil {
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
