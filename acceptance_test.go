package main

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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/menuportal/onboarding-api/config"
	"github.com/menuportal/onboarding-api/models"
	"github.com/menuportal/onboarding-api/services"
)

// setupTestServer boots the full router against an in-memory database
func setupTestServer(t *testing.T) (*gin.Engine, *config.Config) {
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
		AdminToken:     "acceptance-admin",
	}
	services.NewMockEmailService().SetAsMockForTesting()

	return setupRouter(cfg), cfg
}

func TestHealthCheck(t *testing.T) {
	router, _ := setupTestServer(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestMerchantJourney(t *testing.T) {
	router, _ := setupTestServer(t)

	// Create a submission
	body, _ := json.Marshal(gin.H{"brandName": "Acceptance Cafe", "businessType": "restaurants_cafes"})
	req := httptest.NewRequest("POST", "/api/submission/create", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var created struct {
		Data struct {
			SubmissionID string `json:"submissionId"`
			AccessToken  string `json:"accessToken"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	auth := func(r *http.Request) {
		r.Header.Set("X-Submission-Id", created.Data.SubmissionID)
		r.Header.Set("X-Access-Token", created.Data.AccessToken)
	}

	// Upload a product image
	img := image.NewRGBA(image.Rect(0, 0, 1100, 1100))
	img.Set(0, 0, color.RGBA{B: 255, A: 255})
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))

	var formBuf bytes.Buffer
	writer := multipart.NewWriter(&formBuf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="images"; filename="shawarma.png"`)
	h.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(pngBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req = httptest.NewRequest("POST", "/api/submission/upload-images", &formBuf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	auth(req)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var uploaded struct {
		Data []struct {
			Filename string `json:"filename"`
			Error    string `json:"error"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploaded))
	require.Len(t, uploaded.Data, 1)
	require.Empty(t, uploaded.Data[0].Error)

	// Save the menu and submit
	body, _ = json.Marshal(gin.H{"items": []gin.H{
		{"item_name_en": "Shawarma", "price": "15", "image": uploaded.Data[0].Filename},
	}})
	req = httptest.NewRequest("POST", "/api/submission/save-menu", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	auth(req)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("POST", "/api/submission/submit", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	auth(req)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var submitted struct {
		Data struct {
			ZipDownloadURL string `json:"zipDownloadUrl"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	require.NotEmpty(t, submitted.Data.ZipDownloadURL)

	// The capability URL works without auth headers
	req = httptest.NewRequest("GET", submitted.Data.ZipDownloadURL, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".zip")

	// The admin surface sees the submitted record under both prefixes
	for _, path := range []string{"/admin/submissions", "/api/admin/submissions"} {
		req = httptest.NewRequest("GET", path, nil)
		req.Header.Set("X-Admin-Token", "acceptance-admin")
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Acceptance Cafe")
	}
}

func TestUnknownRoutes(t *testing.T) {
	router, _ := setupTestServer(t)

	req := httptest.NewRequest("GET", "/api/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
