package controllers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/menuportal/onboarding-api/config"
	"github.com/menuportal/onboarding-api/middleware"
	"github.com/menuportal/onboarding-api/models"
	"github.com/menuportal/onboarding-api/services"
)

// setupControllerTest prepares an isolated database, data directory and mock
// email service for one test.
func setupControllerTest(t *testing.T) (*config.Config, *services.MockEmailService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Submission{}))
	config.SetDB(db)

	cfg := &config.Config{
		Port:           "3001",
		DataDir:        t.TempDir(),
		RetentionHours: 72,
		AdminToken:     "test-admin-token",
	}

	mockEmail := services.NewMockEmailService()
	mockEmail.SetAsMockForTesting()

	return cfg, mockEmail
}

// newTestRouter wires the same route surface the server uses
func newTestRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()

	submission := router.Group("/api/submission")
	{
		submission.POST("/create", CreateSubmission(cfg))

		authorized := submission.Group("", middleware.SubmissionAuth())
		authorized.POST("/upload-logo", UploadLogo(cfg))
		authorized.POST("/upload-images", UploadImages(cfg))
		authorized.GET("/images", ListImages(cfg))
		authorized.GET("/info", GetSubmissionInfo(cfg))
		authorized.POST("/save-menu", SaveMenu(cfg))
		authorized.POST("/save-location", SaveLocation(cfg))
		authorized.POST("/submit", SubmitSubmission(cfg))
	}

	docs := router.Group("/api/docs")
	{
		docs.POST("/create", CreateDocsSubmission(cfg))

		authorized := docs.Group("", middleware.SubmissionAuth())
		authorized.GET("/info", GetDocsInfo(cfg))
		authorized.POST("/upload", UploadDocuments(cfg))
		authorized.GET("/preview/:filename", PreviewDocument(cfg))
		authorized.DELETE("/delete", DeleteDocument(cfg))
		authorized.POST("/submit", SubmitDocuments(cfg))
	}

	download := router.Group("/download/:submissionId", middleware.DownloadAuth())
	{
		download.GET("/package.zip", DownloadPackageZip(cfg))
		download.GET("/menu.xlsx", DownloadMenuExcel(cfg))
		download.GET("/image/:filename", ServeProductImage(cfg))
		download.GET("/logo/:filename", ServeLogo(cfg))
	}

	router.GET("/dl/docs/:token", DownloadDocsPackage(cfg))

	admin := router.Group("/admin", middleware.AdminAuth(cfg))
	admin.GET("/submissions", ListSubmissions(cfg))
	admin.POST("/cleanup", TriggerCleanup(cfg))

	return router
}

// apiResponse mirrors the JSON envelope for decoding in assertions
type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func postJSON(router *gin.Engine, url string, payload interface{}, headers map[string]string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, payload interface{}) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func getRequest(router *gin.Engine, url string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", url, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// dbFind loads a submission row by id
func dbFind(dest *models.Submission, id string) error {
	return config.GetDB().First(dest, "id = ?", id).Error
}

// testUpload describes one file part in a multipart request
type testUpload struct {
	Field       string
	Filename    string
	ContentType string
	Content     []byte
}

// postMultipart builds a multipart/form-data request with explicit part
// content types, since the default octet-stream would fail validation.
func postMultipart(t *testing.T, router *gin.Engine, url string, fields map[string]string, uploads []testUpload, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, u := range uploads {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+u.Field+`"; filename="`+u.Filename+`"`)
		h.Set("Content-Type", u.ContentType)
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(u.Content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", url, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// makePNG encodes a width x height PNG
func makePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// createTestSubmission drives the create endpoint and returns the issued
// credentials as auth headers plus the submission id.
func createTestSubmission(t *testing.T, router *gin.Engine, brandName string) (string, map[string]string) {
	t.Helper()

	w := postJSON(router, "/api/submission/create", gin.H{"brandName": brandName}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	var data struct {
		SubmissionID string `json:"submissionId"`
		AccessToken  string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.NotEmpty(t, data.SubmissionID)
	require.NotEmpty(t, data.AccessToken)

	return data.SubmissionID, map[string]string{
		"X-Submission-Id": data.SubmissionID,
		"X-Access-Token":  data.AccessToken,
	}
}

// createTestDocsSubmission drives the docs create endpoint
func createTestDocsSubmission(t *testing.T, router *gin.Engine, brandName, businessType string) (string, map[string]string) {
	t.Helper()

	w := postJSON(router, "/api/docs/create", gin.H{
		"brandName":    brandName,
		"businessType": businessType,
		"contactEmail": "owner@example.com",
		"contactPhone": "+97450000000",
		"categories":   []string{"Food"},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	var data struct {
		SubmissionID string `json:"submissionId"`
		AccessToken  string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))

	return data.SubmissionID, map[string]string{
		"X-Submission-Id": data.SubmissionID,
		"X-Access-Token":  data.AccessToken,
	}
}
