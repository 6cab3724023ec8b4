package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tracklite-dev/tracklite/db"
	"github.com/tracklite-dev/tracklite/internal/models"
	"github.com/tracklite-dev/tracklite/internal/storage"
	"github.com/tracklite-dev/tracklite/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserSummary struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role,omitempty"`
}

type ProjectResponse struct {
	ID          uint                `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	AuthorID    uint                `json:"author_id"`
	Author      UserSummary         `json:"author"`
	Assignees   []UserSummary       `json:"assignees"`
	Attachments []models.Attachment `json:"attachments"`
	CreatedOn   time.Time           `json:"created_on"`
	UpdatedOn   time.Time           `json:"updated_on"`
}

type ProjectStatsResponse struct {
	ProjectID       uint             `json:"project_id"`
	Title           string           `json:"title"`
	TicketsTotal    int64            `json:"tickets_total"`
	TicketsByStatus map[string]int64 `json:"tickets_by_status"`
}

// resolveUsers maps stored assignee ids to display fields. Ids that no
// longer resolve to a user are skipped rather than failing the request.
func resolveUsers(ids []string, includeRole bool) []UserSummary {
	summaries := make([]UserSummary, 0, len(ids))

	for _, raw := range ids {
		id, err := utils.ParseID(raw)

		if err != nil {
			continue
		}

		var user models.User

		if err := db.DB.First(&user, id).Error; err != nil {
			continue
		}

		summary := UserSummary{ID: user.ID, FirstName: user.FirstName, LastName: user.LastName}

		if includeRole {
			summary.Role = user.Role
		}

		summaries = append(summaries, summary)
	}

	return summaries
}

func buildProjectResponse(project models.Project) ProjectResponse {
	author := UserSummary{ID: project.AuthorID}

	var user models.User

	if err := db.DB.First(&user, project.AuthorID).Error; err == nil {
		author.FirstName = user.FirstName
		author.LastName = user.LastName
	}

	attachments := models.DecodeAttachments(project.Attachments)

	if attachments == nil {
		attachments = []models.Attachment{}
	}

	return ProjectResponse{
		ID:          project.ID,
		Title:       project.Title,
		Description: project.Description,
		AuthorID:    project.AuthorID,
		Author:      author,
		Assignees:   resolveUsers(project.AssigneeIDs(), false),
		Attachments: attachments,
		CreatedOn:   project.CreatedAt,
		UpdatedOn:   project.UpdatedAt,
	}
}

func ListProjects(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var projects []models.Project

	if err := db.DB.Find(&projects).Error; err != nil {
		log.Printf("Failed to retrieve projects: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	response := []ProjectResponse{}

	for _, project := range projects {
		if project.CanAccess(user.ID) {
			response = append(response, buildProjectResponse(project))
		}
	}

	ctx.JSON(http.StatusOK, response)
}

func GetProjectInfo(ctx *gin.Context) {
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
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to view the project"})
		return
	}

	ctx.JSON(http.StatusOK, buildProjectResponse(project))
}

func GetProjectStat(ctx *gin.Context) {
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
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to view project statistics"})
		return
	}

	type statusCount struct {
		Status string
		Count  int64
	}

	var rows []statusCount

	if err := db.DB.Model(&models.Ticket{}).
		Select("status, COUNT(*) as count").
		Where("project_id = ?", projectID).
		Group("status").
		Scan(&rows).Error; err != nil {
		log.Printf("Failed to aggregate tickets for project %d: %v", projectID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project statistics"})
		return
	}

	stats := ProjectStatsResponse{
		ProjectID:       project.ID,
		Title:           project.Title,
		TicketsByStatus: make(map[string]int64),
	}

	for _, row := range rows {
		stats.TicketsTotal += row.Count
		stats.TicketsByStatus[row.Status] = row.Count
	}

	ctx.JSON(http.StatusOK, stats)
}

func CreateProject(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	title := strings.TrimSpace(ctx.PostForm("title"))

	if title == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	assignees := utils.NormalizeAssignees(ctx.PostFormArray("assignees"))

	if len(assignees) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "At least one assignee is required"})
		return
	}

	assigneesJSON, err := json.Marshal(assignees)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server issue"})
		return
	}

	project := models.Project{
		Title:       title,
		Description: ctx.PostForm("description"),
		AuthorID:    user.ID,
		Assignees:   datatypes.JSON(assigneesJSON),
	}

	if !appendUploadedAttachment(ctx, &project.Attachments) {
		return
	}

	if err := db.DB.Create(&project).Error; err != nil {
		log.Printf("Failed to create project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	ctx.JSON(http.StatusCreated, buildProjectResponse(project))
}

func UpdateProject(ctx *gin.Context) {
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
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to update the project"})
		return
	}

	// Identity fields are author-only. A non-author member's effective
	// whitelist is empty, so submitted fields are dropped and only an
	// attachment upload takes effect.
	if project.IsAuthor(user.ID) {
		if title, ok := ctx.GetPostForm("title"); ok {
			title = strings.TrimSpace(title)

			if title == "" {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Title cannot be empty"})
				return
			}

			project.Title = title
		}

		if description, ok := ctx.GetPostForm("description"); ok {
			project.Description = description
		}

		if values := ctx.PostFormArray("assignees"); len(values) > 0 {
			assignees := utils.NormalizeAssignees(values)

			assigneesJSON, err := json.Marshal(assignees)

			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server issue"})
				return
			}

			project.Assignees = datatypes.JSON(assigneesJSON)
		}
	}

	if !appendUploadedAttachment(ctx, &project.Attachments) {
		return
	}

	if err := db.DB.Save(&project).Error; err != nil {
		log.Printf("Failed to update project %d: %v", projectID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	BroadcastRefresh(utils.FormatID(project.ID))

	ctx.JSON(http.StatusOK, buildProjectResponse(project))
}

func DeleteProject(ctx *gin.Context) {
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

	if !project.IsAuthor(user.ID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete the project"})
		return
	}

	// Tickets under the project are not cascaded; they become unreachable
	// through the membership re-check on reads.
	if err := db.DB.Delete(&project).Error; err != nil {
		log.Printf("Failed to delete project %d: %v", projectID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	ctx.Status(http.StatusOK)
}

func AddProjectAttachment(ctx *gin.Context) {
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
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to update the project"})
		return
	}

	file, err := ctx.FormFile("attachment")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Attachment file is required"})
		return
	}

	record, err := storage.Save(file)

	if err != nil {
		if errors.Is(err, storage.ErrFileTypeNotAllowed) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed"})
		} else {
			log.Printf("Failed to store attachment for project %d: %v", projectID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store attachment"})
		}
		return
	}

	attachments, err := models.AppendAttachment(project.Attachments, record)

	if err != nil {
		log.Printf("Failed to append attachment for project %d: %v", projectID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server issue"})
		return
	}

	project.Attachments = attachments

	if err := db.DB.Save(&project).Error; err != nil {
		log.Printf("Failed to update project %d: %v", projectID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	ctx.JSON(http.StatusOK, record)
}

// appendUploadedAttachment saves an optional single "attachment" file and
// appends its record to the given column. It writes the error response and
// returns false when the request must stop.
func appendUploadedAttachment(ctx *gin.Context, column *datatypes.JSON) bool {
	file, err := ctx.FormFile("attachment")

	if err != nil {
		return true
	}

	record, err := storage.Save(file)

	if err != nil {
		if errors.Is(err, storage.ErrFileTypeNotAllowed) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed"})
		} else {
			log.Printf("Failed to store attachment: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store attachment"})
		}
		return false
	}

	updated, err := models.AppendAttachment(*column, record)

	if err != nil {
		log.Printf("Failed to append attachment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server issue"})
		return false
	}

	*column = updated
	return true
}
