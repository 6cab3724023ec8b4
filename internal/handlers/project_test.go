package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tracklite-dev/tracklite/internal/handlers"
	"github.com/tracklite-dev/tracklite/internal/models"
	"github.com/tracklite-dev/tracklite/internal/utils"
)

func TestCreateProjectAndAuthorOnlyDelete(t *testing.T) {
	r := setupServer(t)

	author := createUser(t, "Alice", "manager")
	member := createUser(t, "Bob", "manager")

	project := createProject(t, r, author, "P1", []models.User{author, member})

	assert.Equal(t, author.ID, project.AuthorID)
	require.Len(t, project.Assignees, 2)
	assert.Equal(t, author.ID, project.Assignees[0].ID)
	assert.Equal(t, member.ID, project.Assignees[1].ID)

	target := fmt.Sprintf("/project/%d", project.ID)

	// A non-author member cannot delete, even with the capability.
	rec := doRequest(t, r, http.MethodDelete, target, authHeader(t, member))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, r, http.MethodDelete, target, authHeader(t, author))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, r, http.MethodGet, target, authHeader(t, author))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjectVisibilityRequiresMembership(t *testing.T) {
	r := setupServer(t)

	author := createUser(t, "Alice", "manager")
	member := createUser(t, "Bob", "developer")
	outsider := createUser(t, "Carol", "admin")

	project := createProject(t, r, author, "P1", []models.User{author, member})
	target := fmt.Sprintf("/project/%d", project.ID)

	rec := doRequest(t, r, http.MethodGet, target, authHeader(t, member))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Role-level capabilities do not matter without membership.
	rec = doRequest(t, r, http.MethodGet, target, authHeader(t, outsider))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, r, http.MethodGet, fmt.Sprintf("/ticket/project/%d", project.ID), authHeader(t, outsider))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	list := decodeBody[[]handlers.ProjectResponse](t, doRequest(t, r, http.MethodGet, "/project", authHeader(t, outsider)))
	assert.Empty(t, list)

	list = decodeBody[[]handlers.ProjectResponse](t, doRequest(t, r, http.MethodGet, "/project", authHeader(t, member)))
	require.Len(t, list, 1)
	assert.Equal(t, "P1", list[0].Title)
}

func TestCreateProjectRequiresCapability(t *testing.T) {
	r := setupServer(t)

	developer := createUser(t, "Dave", "developer")

	rec := doMultipart(t, r, http.MethodPost, "/project", authHeader(t, developer),
		[][2]string{{"title", "P1"}, {"assignees", utils.FormatID(developer.ID)}}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateProjectRejectsEmptyAssignees(t *testing.T) {
	r := setupServer(t)

	author := createUser(t, "Alice", "manager")

	rec := doMultipart(t, r, http.MethodPost, "/project", authHeader(t, author),
		[][2]string{{"title", "P1"}}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNonAuthorUpdateDropsIdentityFields(t *testing.T) {
	r := setupServer(t)

	author := createUser(t, "Alice", "manager")
	member := createUser(t, "Bob", "manager")

	project := createProject(t, r, author, "P1", []models.User{author, member})
	target := fmt.Sprintf("/project/%d", project.ID)

	rec := doMultipart(t, r, http.MethodPatch, target, authHeader(t, member),
		[][2]string{{"title", "Hijacked"}}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "P1", decodeBody[handlers.ProjectResponse](t, rec).Title)

	rec = doMultipart(t, r, http.MethodPatch, target, authHeader(t, author),
		[][2]string{{"title", "P1 renamed"}}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "P1 renamed", decodeBody[handlers.ProjectResponse](t, rec).Title)
}

func TestProjectStat(t *testing.T) {
	r := setupServer(t)

	author := createUser(t, "Alice", "manager")
	project := createProject(t, r, author, "P1", []models.User{author})

	self := utils.FormatID(author.ID)
	createTicket(t, r, author, project.ID, [][2]string{{"title", "T1"}, {"assignees", self}})
	createTicket(t, r, author, project.ID, [][2]string{{"title", "T2"}, {"assignees", self}})
	createTicket(t, r, author, project.ID, [][2]string{{"title", "T3"}, {"status", "Done"}, {"assignees", self}})

	rec := doRequest(t, r, http.MethodGet, fmt.Sprintf("/project/stat/%d", project.ID), authHeader(t, author))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stats := decodeBody[handlers.ProjectStatsResponse](t, rec)
	assert.Equal(t, int64(3), stats.TicketsTotal)
	assert.Equal(t, int64(2), stats.TicketsByStatus["Open"])
	assert.Equal(t, int64(1), stats.TicketsByStatus["Done"])

	outsider := createUser(t, "Carol", "manager")
	rec = doRequest(t, r, http.MethodGet, fmt.Sprintf("/project/stat/%d", project.ID), authHeader(t, outsider))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProjectAttachmentAppendOnly(t *testing.T) {
	r := setupServer(t)

	author := createUser(t, "Alice", "manager")
	member := createUser(t, "Bob", "developer")
	project := createProject(t, r, author, "P1", []models.User{author, member})

	target := fmt.Sprintf("/project/%d/attachment", project.ID)

	upload := func(user models.User, name string) *httptest.ResponseRecorder {
		return doMultipart(t, r, http.MethodPost, target, authHeader(t, user), nil,
			&formFile{field: "attachment", name: name, contentType: "image/png", content: []byte("png-bytes")})
	}

	rec := upload(member, "one.png")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	fetched := decodeBody[handlers.ProjectResponse](t,
		doRequest(t, r, http.MethodGet, fmt.Sprintf("/project/%d", project.ID), authHeader(t, author)))
	require.Len(t, fetched.Attachments, 1)
	first := fetched.Attachments[0]

	rec = upload(author, "two.png")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	fetched = decodeBody[handlers.ProjectResponse](t,
		doRequest(t, r, http.MethodGet, fmt.Sprintf("/project/%d", project.ID), authHeader(t, author)))
	require.Len(t, fetched.Attachments, 2)
	assert.Equal(t, first, fetched.Attachments[0])

	outsider := createUser(t, "Carol", "manager")
	rec = upload(outsider, "three.png")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProjectAttachmentRejectsDisallowedType(t *testing.T) {
	r := setupServer(t)

	author := createUser(t, "Alice", "manager")
	project := createProject(t, r, author, "P1", []models.User{author})

	rec := doMultipart(t, r, http.MethodPost, fmt.Sprintf("/project/%d/attachment", project.ID),
		authHeader(t, author), nil,
		&formFile{field: "attachment", name: "x.zip", contentType: "application/zip", content: []byte("zip")})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	r := setupServer(t)

	rec := doRequest(t, r, http.MethodGet, "/project", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, r, http.MethodGet, "/project", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
