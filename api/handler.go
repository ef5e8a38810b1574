package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"mio/models"
	"mio/repository"
	"mio/services"
	"mio/utils"

	"github.com/gin-gonic/gin"
)

// APIHandler holds all dependencies for API handlers.
type APIHandler struct {
	classificationService services.ClassificationService
	catalogService        services.ProtocolCatalogService
	slotService           services.SlotService
	completionService     services.CompletionService
	progressService       services.ProgressService
	recommendationService services.RecommendationService
	notificationOutbox    repository.NotificationOutbox
}

// NewAPIHandler creates a new APIHandler with necessary dependencies.
func NewAPIHandler(
	classificationService services.ClassificationService,
	catalogService services.ProtocolCatalogService,
	slotService services.SlotService,
	completionService services.CompletionService,
	progressService services.ProgressService,
	recommendationService services.RecommendationService,
	notificationOutbox repository.NotificationOutbox,
) *APIHandler {
	return &APIHandler{
		classificationService: classificationService,
		catalogService:        catalogService,
		slotService:           slotService,
		completionService:     completionService,
		progressService:       progressService,
		recommendationService: recommendationService,
		notificationOutbox:    notificationOutbox,
	}
}

// GetQuestionsHandler returns the assessment questionnaire for rendering.
func (h *APIHandler) GetQuestionsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"questions": h.classificationService.Questions()})
}

type classifyRequest struct {
	UserID  string                    `json:"user_id" binding:"required"`
	Answers []models.AssessmentAnswer `json:"answers" binding:"required"`
}

// ClassifyHandler scores a completed answer set and persists the result.
func (h *APIHandler) ClassifyHandler(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request body.", err)
		return
	}

	result, err := h.classificationService.ClassifyAndStore(req.UserID, req.Answers)
	if err != nil {
		if errors.Is(err, services.ErrIncompleteAnswerSet) {
			// The presentation layer should have blocked submission; tell it
			// exactly which precondition failed so it can re-prompt.
			utils.SendJSONError(c, http.StatusUnprocessableEntity, "Assessment is incomplete.", err, err.Error())
			return
		}
		utils.SendJSONError(c, http.StatusInternalServerError, "Failed to process assessment.", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetLatestResultHandler returns the user's most recent assessment result.
func (h *APIHandler) GetLatestResultHandler(c *gin.Context) {
	userID := c.Param("userID")
	result, err := h.classificationService.GetLatestResult(userID)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "Failed to load assessment result.", err)
		return
	}
	if result == nil {
		utils.SendJSONError(c, http.StatusNotFound, "No assessment result found for this user.", nil)
		return
	}
	c.JSON(http.StatusOK, result)
}

type assignRequest struct {
	UserID     string      `json:"user_id" binding:"required"`
	Slot       models.Slot `json:"slot" binding:"required"`
	ProtocolID uint        `json:"protocol_id" binding:"required"`
}

// AssignHandler places a protocol into one of the user's slots.
func (h *APIHandler) AssignHandler(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request body.", err)
		return
	}

	assignment, err := h.slotService.Assign(req.UserID, req.Slot, req.ProtocolID)
	if err != nil {
		var occupied *services.SlotOccupiedError
		if errors.As(err, &occupied) {
			utils.SendJSONError(c, http.StatusConflict, "This slot already has an active protocol.", err)
			return
		}
		utils.SendJSONError(c, http.StatusInternalServerError, "Failed to create assignment.", err)
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

type autoAssignRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// AutoAssignHandler assigns the recommended protocol for the user's latest
// assessment result into the primary slot.
func (h *APIHandler) AutoAssignHandler(c *gin.Context) {
	var req autoAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request body.", err)
		return
	}

	assignment, err := h.recommendationService.AutoAssign(req.UserID)
	if err != nil {
		var occupied *services.SlotOccupiedError
		if errors.As(err, &occupied) {
			utils.SendJSONError(c, http.StatusConflict, "The primary slot already has an active protocol.", err)
			return
		}
		if errors.Is(err, services.ErrNoRecommendation) {
			utils.SendJSONError(c, http.StatusUnprocessableEntity, "Could not auto-assign a protocol.", err, err.Error())
			return
		}
		utils.SendJSONError(c, http.StatusInternalServerError, "Failed to auto-assign a protocol.", err)
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

type completeRequest struct {
	TaskID uint   `json:"task_id" binding:"required"`
	Notes  string `json:"notes"`
}

// CompleteTaskHandler applies a task completion to an assignment. Safe to
// retry with the identical payload.
func (h *APIHandler) CompleteTaskHandler(c *gin.Context) {
	assignmentID, err := parseUintParam(c, "assignmentID")
	if err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid assignment ID.", err)
		return
	}

	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request body.", err)
		return
	}

	outcome, err := h.completionService.Complete(assignmentID, req.TaskID, req.Notes)
	if err != nil {
		var invalidTask *services.InvalidTaskError
		if errors.As(err, &invalidTask) {
			utils.SendJSONError(c, http.StatusUnprocessableEntity, "Something went wrong, please retry.", err, invalidTask.Reason)
			return
		}
		utils.SendJSONError(c, http.StatusInternalServerError, "Failed to record completion.", err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// GetProgressHandler returns the read-only progress summary for an
// assignment.
func (h *APIHandler) GetProgressHandler(c *gin.Context) {
	assignmentID, err := parseUintParam(c, "assignmentID")
	if err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid assignment ID.", err)
		return
	}

	summary, err := h.progressService.GetProgress(assignmentID)
	if err != nil {
		utils.SendJSONError(c, http.StatusNotFound, "Assignment not found.", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetUserAssignmentsHandler returns the user's active assignments per slot
// together with progress summaries.
func (h *APIHandler) GetUserAssignmentsHandler(c *gin.Context) {
	userID := c.Param("userID")

	progress, err := h.progressService.GetUserProgress(userID)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "Failed to load assignments.", err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// GetAssignmentHistoryHandler returns all of the user's assignments,
// including completed ones, newest first.
func (h *APIHandler) GetAssignmentHistoryHandler(c *gin.Context) {
	userID := c.Param("userID")

	history, err := h.slotService.GetAssignmentHistory(userID)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "Failed to load assignment history.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": history})
}

// GetNotificationsHandler returns the user's pending milestone notices for
// the delivery layer to drain.
func (h *APIHandler) GetNotificationsHandler(c *gin.Context) {
	userID := c.Param("userID")

	notifications, err := h.notificationOutbox.GetNotificationsByUserID(userID)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "Failed to load notifications.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// GetProtocolHandler returns one catalog protocol with its task list.
func (h *APIHandler) GetProtocolHandler(c *gin.Context) {
	protocolID, err := parseUintParam(c, "protocolID")
	if err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid protocol ID.", err)
		return
	}

	protocol, err := h.catalogService.GetProtocol(protocolID)
	if err != nil {
		utils.SendJSONError(c, http.StatusNotFound, "Protocol not found.", err)
		return
	}
	c.JSON(http.StatusOK, protocol)
}

// ListProtocolsHandler returns the full protocol catalog.
func (h *APIHandler) ListProtocolsHandler(c *gin.Context) {
	protocols, err := h.catalogService.ListProtocols()
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "Failed to load protocol catalog.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"protocols": protocols})
}

// parseUintParam parses a numeric path parameter.
func parseUintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		log.Printf("WARN: [APIHandler] Invalid %s path parameter '%s': %v", name, raw, err)
		return 0, err
	}
	return uint(value), nil
}
