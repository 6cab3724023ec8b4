package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/tracklite-dev/tracklite/db"
	"github.com/tracklite-dev/tracklite/internal/auth"
	"github.com/tracklite-dev/tracklite/internal/handlers"
	"github.com/tracklite-dev/tracklite/internal/models"
	"github.com/tracklite-dev/tracklite/internal/router"
	"github.com/tracklite-dev/tracklite/internal/storage"
	"github.com/tracklite-dev/tracklite/internal/utils"
	"gorm.io/gorm"
)

var emailSeq atomic.Uint64

func setupServer(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// One connection keeps every query on the same in-memory database.
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db.DB = database
	require.NoError(t, db.MigrateDatabase())
	require.NoError(t, db.SeedTicketTypes())

	require.NoError(t, storage.Init(t.TempDir()))

	t.Setenv("JWT_SECRET", "test-secret")
	require.NoError(t, auth.InitJWTSecret())

	return router.NewRouter()
}

func createUser(t *testing.T, firstName, role string) models.User {
	t.Helper()

	user := models.User{
		FirstName:    firstName,
		LastName:     "Tester",
		Email:        fmt.Sprintf("%s-%d@example.com", firstName, emailSeq.Add(1)),
		PasswordHash: "not-a-real-hash",
		Role:         role,
	}

	require.NoError(t, db.DB.Create(&user).Error)
	return user
}

func authHeader(t *testing.T, user models.User) string {
	t.Helper()

	token, err := auth.GenerateJWT(user.ID, user.Email)
	require.NoError(t, err)
	return "Bearer " + token
}

type formFile struct {
	field       string
	name        string
	contentType string
	content     []byte
}

// multipartBody builds a multipart form from ordered field pairs (repeated
// keys stay repeated) and an optional file part.
func multipartBody(t *testing.T, fields [][2]string, file *formFile) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, field := range fields {
		require.NoError(t, writer.WriteField(field[0], field[1]))
	}

	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`, file.field, file.name))
		header.Set("Content-Type", file.contentType)

		part, err := writer.CreatePart(header)
		require.NoError(t, err)

		_, err = part.Write(file.content)
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func doMultipart(t *testing.T, r *gin.Engine, method, target, token string, fields [][2]string, file *formFile) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, fields, file)
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", token)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func doRequest(t *testing.T, r *gin.Engine, method, target, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)

	if token != "" {
		req.Header.Set("Authorization", token)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// createProject drives the real create endpoint and returns the response.
func createProject(t *testing.T, r *gin.Engine, author models.User, title string, assignees []models.User) handlers.ProjectResponse {
	t.Helper()

	fields := [][2]string{{"title", title}}

	for _, assignee := range assignees {
		fields = append(fields, [2]string{"assignees", utils.FormatID(assignee.ID)})
	}

	rec := doMultipart(t, r, http.MethodPost, "/project", authHeader(t, author), fields, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[handlers.ProjectResponse](t, rec)
}

func createTicket(t *testing.T, r *gin.Engine, user models.User, projectID uint, fields [][2]string) handlers.TicketResponse {
	t.Helper()

	target := fmt.Sprintf("/ticket/project/%d", projectID)
	rec := doMultipart(t, r, http.MethodPost, target, authHeader(t, user), fields, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[handlers.TicketResponse](t, rec)
}
