package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tracklite-dev/tracklite/db"
	"github.com/tracklite-dev/tracklite/internal/models"
	"github.com/tracklite-dev/tracklite/internal/services"
	"github.com/tracklite-dev/tracklite/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectSummary struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

type TicketTypeSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type TicketResponse struct {
	ID                uint                `json:"id"`
	ProjectID         uint                `json:"project_id"`
	Project           *ProjectSummary     `json:"project,omitempty"`
	Type              *TicketTypeSummary  `json:"type,omitempty"`
	Title             string              `json:"title"`
	Description       string              `json:"description"`
	Status            string              `json:"status"`
	Assignees         []UserSummary       `json:"assignees"`
	EstimatedTime     float64             `json:"estimated_time"`
	EstimatedTimeUnit string              `json:"estimated_time_unit"`
	CreatedBy         UserSummary         `json:"created_by"`
	CreatedOn         time.Time           `json:"created_on"`
	UpdatedOn         time.Time           `json:"updated_on"`
	Attachments       []models.Attachment `json:"attachments"`
}

// ticketWritableFields is the single whitelist both the create and update
// flows consume. Anything else in the payload is dropped, which is what
// keeps created_by, project_id and attachments out of reach of form input.
var ticketWritableFields = []string{
	"title",
	"type",
	"description",
	"status",
	"assignees",
	"estimatedTime",
	"estimatedTimeUnit",
}

func applyTicketField(ctx *gin.Context, ticket *models.Ticket, field string) error {
	switch field {
	case "title":
		if value, ok := ctx.GetPostForm("title"); ok {
			value = strings.TrimSpace(value)

			if value == "" {
				return errors.New("Title cannot be empty")
			}

			ticket.Title = value
		}
	case "type":
		if value, ok := ctx.GetPostForm("type"); ok {
			typeID, err := utils.ParseID(value)

			if err != nil {
				return errors.New("Invalid ticket type")
			}

			ticket.TypeID = typeID
		}
	case "description":
		if value, ok := ctx.GetPostForm("description"); ok {
			ticket.Description = value
		}
	case "status":
		if value, ok := ctx.GetPostForm("status"); ok {
			if !models.ValidStatus(value) {
				return errors.New("Invalid ticket status")
			}

			ticket.Status = value
		}
	case "assignees":
		if values := ctx.PostFormArray("assignees"); len(values) > 0 {
			assignees := utils.NormalizeAssignees(values)

			assigneesJSON, err := json.Marshal(assignees)

			if err != nil {
				return errors.New("Invalid assignees")
			}

			ticket.Assignees = datatypes.JSON(assigneesJSON)
		}
	case "estimatedTime":
		if value, ok := ctx.GetPostForm("estimatedTime"); ok {
			estimate, err := strconv.ParseFloat(value, 64)

			if err != nil || estimate < 0 {
				return errors.New("Invalid estimated time")
			}

			ticket.EstimatedTime = estimate
		}
	case "estimatedTimeUnit":
		if value, ok := ctx.GetPostForm("estimatedTimeUnit"); ok {
			if !models.ValidEstimateUnit(value) {
				return errors.New("Invalid estimated time unit")
			}

			ticket.EstimatedTimeUnit = value
		}
	}

	return nil
}

func applyTicketFields(ctx *gin.Context, ticket *models.Ticket) error {
	for _, field := range ticketWritableFields {
		if err := applyTicketField(ctx, ticket, field); err != nil {
			return err
		}
	}

	return nil
}

func buildTicketResponse(ticket models.Ticket, includeAssigneeRoles bool) TicketResponse {
	response := TicketResponse{
		ID:                ticket.ID,
		ProjectID:         ticket.ProjectID,
		Title:             ticket.Title,
		Description:       ticket.Description,
		Status:            ticket.Status,
		Assignees:         resolveUsers(ticket.AssigneeIDs(), includeAssigneeRoles),
		EstimatedTime:     ticket.EstimatedTime,
		EstimatedTimeUnit: ticket.EstimatedTimeUnit,
		CreatedBy:         UserSummary{ID: ticket.CreatedBy},
		CreatedOn:         ticket.CreatedAt,
		UpdatedOn:         ticket.UpdatedAt,
		Attachments:       models.DecodeAttachments(ticket.Attachments),
	}

	if response.Attachments == nil {
		response.Attachments = []models.Attachment{}
	}

	var project models.Project

	if err := db.DB.First(&project, ticket.ProjectID).Error; err == nil {
		response.Project = &ProjectSummary{ID: project.ID, Title: project.Title}
	}

	if ticket.TypeID != 0 {
		var ticketType models.TicketType

		if err := db.DB.First(&ticketType, ticket.TypeID).Error; err == nil {
			response.Type = &TicketTypeSummary{
				ID:    ticketType.ID,
				Name:  ticketType.Name,
				Icon:  ticketType.Icon,
				Color: ticketType.Color,
			}
		}
	}

	var creator models.User

	if err := db.DB.First(&creator, ticket.CreatedBy).Error; err == nil {
		response.CreatedBy.FirstName = creator.FirstName
		response.CreatedBy.LastName = creator.LastName
	}

	return response
}

func GetUserTickets(ctx *gin.Context) {
	userID, err := utils.ParseID(ctx.Param("userId"))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var tickets []models.Ticket

	if err := db.DB.Find(&tickets).Error; err != nil {
		log.Printf("Failed to retrieve tickets: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tickets"})
		return
	}

	response := []TicketResponse{}

	for _, ticket := range tickets {
		if ticket.HasAssignee(userID) {
			response = append(response, buildTicketResponse(ticket, false))
		}
	}

	ctx.JSON(http.StatusOK, response)
}

func GetProjectTickets(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.ParseID(ctx.Param("projectId"))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
		return
	}

	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			log.Printf("Failed to retrieve project %d: %v", projectID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	if !project.CanAccess(user.ID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to get project tickets"})
		return
	}

	var tickets []models.Ticket

	if err := db.DB.Where("project_id = ?", projectID).Find(&tickets).Error; err != nil {
		log.Printf("Failed to retrieve tickets for project %d: %v", projectID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tickets"})
		return
	}

	response := []TicketResponse{}

	for _, ticket := range tickets {
		response = append(response, buildTicketResponse(ticket, true))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetTicketInfo(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ticketID, err := utils.ParseID(ctx.Param("ticketId"))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket id"})
		return
	}

	var ticket models.Ticket

	if err := db.DB.First(&ticket, ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Ticket does not exist"})
		} else {
			log.Printf("Failed to retrieve ticket %d: %v", ticketID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve ticket"})
		}
		return
	}

	// A deleted parent project makes its tickets unreachable: the missing
	// project is folded into the authorization failure here.
	var project models.Project

	if err := db.DB.First(&project, ticket.ProjectID).Error; err != nil || !project.CanAccess(user.ID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to view the ticket"})
		return
	}

	ctx.JSON(http.StatusOK, buildTicketResponse(ticket, false))
}

func CreateTicket(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.ParseID(ctx.Param("projectId"))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
		return
	}

	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			log.Printf("Failed to retrieve project %d: %v", projectID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	if !project.CanAccess(user.ID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to add tickets to a project"})
		return
	}

	ticket := models.Ticket{
		ProjectID: project.ID,
		Status:    models.StatusOpen,
		CreatedBy: user.ID,
	}

	if err := applyTicketFields(ctx, &ticket); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if ticket.Title == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	if !appendUploadedAttachment(ctx, &ticket.Attachments) {
		return
	}

	if err := db.DB.Create(&ticket).Error; err != nil {
		log.Printf("Failed to create ticket: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create ticket"})
		return
	}

	go services.NotifyTicketEvent(services.TicketEvent{
		Event:     "ticket.created",
		ProjectID: ticket.ProjectID,
		TicketID:  ticket.ID,
		Title:     ticket.Title,
		Status:    ticket.Status,
		ActorID:   user.ID,
	})
	BroadcastRefresh(utils.FormatID(project.ID))

	ctx.JSON(http.StatusCreated, buildTicketResponse(ticket, false))
}

func UpdateTicket(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.ParseID(ctx.Param("projectId"))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
		return
	}

	ticketID, err := utils.ParseID(ctx.PostForm("_id"))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket id"})
		return
	}

	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			log.Printf("Failed to retrieve project %d: %v", projectID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	if !project.CanAccess(user.ID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to update tickets in this project"})
		return
	}

	var ticket models.Ticket

	if err := db.DB.First(&ticket, ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Ticket does not exist"})
		} else {
			log.Printf("Failed to retrieve ticket %d: %v", ticketID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve ticket"})
		}
		return
	}

	if err := applyTicketFields(ctx, &ticket); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Stamped server-side; any client-supplied value is ignored.
	ticket.UpdatedAt = time.Now()

	if !appendUploadedAttachment(ctx, &ticket.Attachments) {
		return
	}

	if err := db.DB.Save(&ticket).Error; err != nil {
		log.Printf("Failed to update ticket %d: %v", ticketID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update ticket"})
		return
	}

	BroadcastRefresh(utils.FormatID(project.ID))

	ctx.JSON(http.StatusOK, buildTicketResponse(ticket, false))
}

func DeleteTicket(ctx *gin.Context) {
	ticketID, err := utils.ParseID(ctx.Param("ticketId"))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket id"})
		return
	}

	// No membership re-check here; see DESIGN.md.
	result := db.DB.Delete(&models.Ticket{}, ticketID)

	if result.Error != nil {
		log.Printf("Failed to delete ticket %d: %v", ticketID, result.Error)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete ticket"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Ticket does not exist"})
		return
	}

	ctx.Status(http.StatusOK)
}

func ListTicketTypes(ctx *gin.Context) {
	var ticketTypes []models.TicketType

	if err := db.DB.Find(&ticketTypes).Error; err != nil {
		log.Printf("Failed to retrieve ticket types: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve ticket types"})
		return
	}

	response := make([]TicketTypeSummary, 0, len(ticketTypes))

	for _, ticketType := range ticketTypes {
		response = append(response, TicketTypeSummary{
			ID:    ticketType.ID,
			Name:  ticketType.Name,
			Icon:  ticketType.Icon,
			Color: ticketType.Color,
		})
	}

	ctx.JSON(http.StatusOK, response)
}
