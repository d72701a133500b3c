package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"ai-tools-backend/internal/apperr"
	"ai-tools-backend/internal/entitlement"
	"ai-tools-backend/internal/fallback"
	"ai-tools-backend/internal/handlers"
	"ai-tools-backend/internal/middleware"
	"ai-tools-backend/internal/models"
	"ai-tools-backend/internal/providers"
	"ai-tools-backend/internal/services"
	"ai-tools-backend/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJSONLimit = 64 << 10

var pngMagic = []byte("\x89PNG\r\n\x1a\n0000000000")

type server struct {
	router    *gin.Engine
	text      *testutil.FakeText
	ledger    *testutil.FakeLedger
	store     *testutil.FakeStore
	primary   *testutil.FakeProvider
	secondary *testutil.FakeProvider
	remover   *testutil.FakeProvider
	publisher *testutil.FakePublisher
}

func newServer(t *testing.T, premiumOnly ...models.OperationType) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()

	s := &server{
		text:      &testutil.FakeText{Reply: "generated"},
		ledger:    testutil.NewFakeLedger(),
		store:     testutil.NewFakeStore(),
		primary:   &testutil.FakeProvider{ProviderName: "primary", Block: true},
		secondary: testutil.ImageProvider("secondary"),
		remover:   testutil.FailingProvider("remover", apperr.KindProviderRejected),
		publisher: &testutil.FakePublisher{},
	}

	chains := map[models.OperationType]services.ChainRunner{
		models.OperationImage: fallback.New("image", []providers.Provider{s.primary, s.secondary}, providers.Placeholder{}, s.store,
			fallback.WithAttemptTimeout(50*time.Millisecond), fallback.WithLogger(logger)),
		models.OperationBgRemoval: fallback.New("bg-removal", nil,
			providers.Passthrough{Effect: providers.EffectBackgroundRemoval}, s.store, fallback.WithLogger(logger)),
		models.OperationObjectRemoval: fallback.New("object-removal", []providers.Provider{s.remover},
			providers.Passthrough{Effect: providers.EffectObjectRemoval}, s.store, fallback.WithLogger(logger)),
	}
	gate := entitlement.NewGate(entitlement.NewMemoryUsageStore(), 10, premiumOnly)
	svc := services.NewOperationService(s.text, chains, s.ledger, gate, logger, services.WithPublisher(s.publisher))

	ops := handlers.NewOperationsHandler(svc, services.DefaultLimits(), logger)
	creations := handlers.NewCreationsHandler(s.ledger, s.publisher, logger)

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, c.GetHeader("X-Test-User"))
		if tier := c.GetHeader("X-Test-Tier"); tier != "" {
			c.Set(middleware.TierKey, models.Tier(tier))
		}
		c.Next()
	})
	gated := func(op models.OperationType) gin.HandlerFunc { return middleware.RequireEntitlement(gate, op, logger) }
	api.POST("/operations/article", middleware.BodyLimit(testJSONLimit), gated(models.OperationArticle), ops.GenerateArticle)
	api.POST("/operations/blog-title", gated(models.OperationBlogTitle), ops.GenerateBlogTitle)
	api.POST("/operations/image", gated(models.OperationImage), ops.GenerateImage)
	api.POST("/operations/bg-removal", gated(models.OperationBgRemoval), ops.RemoveBackground)
	api.POST("/operations/object-removal", gated(models.OperationObjectRemoval), ops.RemoveObject)
	api.POST("/operations/resume-review", gated(models.OperationResumeReview), ops.ReviewResume)
	api.GET("/creations", creations.ListMine)
	api.GET("/creations/published", creations.ListPublished)
	api.POST("/creations/:id/toggle-like", creations.ToggleLike)
	s.router = router
	return s
}

func (s *server) do(t *testing.T, req *http.Request, user string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req.Header.Set("X-Test-User", user)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w, body
}

func jsonRequest(path string, payload interface{}) *http.Request {
	b, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, path, field, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if data != nil {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func typedPartRequest(t *testing.T, path, field, filename, contentType string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestArticle(t *testing.T) {
	s := newServer(t)

	w, body := s.do(t, jsonRequest("/api/v1/operations/article", map[string]interface{}{"prompt": "go", "length": 500}), "u1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "generated", body["data"])
	assert.Equal(t, 500, s.text.MaxTokens)
}

func TestArticle_MissingPrompt(t *testing.T) {
	s := newServer(t)

	w, body := s.do(t, jsonRequest("/api/v1/operations/article", map[string]interface{}{"length": 500}), "u1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "prompt is required", body["message"])
	assert.Zero(t, s.text.Calls())
}

func TestArticle_WrongFieldTypeIsNotReportedAsMissingPrompt(t *testing.T) {
	s := newServer(t)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/operations/article", strings.NewReader(`{"prompt":"x","length":"long"}`))
	req.Header.Set("Content-Type", "application/json")

	w, body := s.do(t, req, "u1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request body", body["message"])
	assert.Zero(t, s.text.Calls())
}

func TestArticle_OversizeBody(t *testing.T) {
	s := newServer(t)

	w, body := s.do(t, jsonRequest("/api/v1/operations/article", map[string]string{"prompt": strings.Repeat("a", testJSONLimit)}), "u1")

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Zero(t, s.text.Calls())
}

func TestBlogTitle_ProviderFailureIsGeneric(t *testing.T) {
	s := newServer(t)
	s.text.Err = apperr.New(apperr.KindProviderRejected, "llm request failed with status 400: secret detail")

	w, body := s.do(t, jsonRequest("/api/v1/operations/blog-title", map[string]string{"prompt": "hiking"}), "u1")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "ai provider failed", body["message"])
}

func TestImage_PrimaryTimesOutSecondaryStored(t *testing.T) {
	s := newServer(t)

	w, body := s.do(t, jsonRequest("/api/v1/operations/image", map[string]interface{}{"prompt": "fox", "publish": true}), "u1")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []byte("png-from-secondary"), s.store.Stored().Data)
	assert.Contains(t, body["content"], "https://store.test/image/u1/")
	assert.Equal(t, body["content"], body["data"])
	assert.Equal(t, 1, s.primary.Calls())
	assert.Equal(t, 1, s.secondary.Calls())
	assert.Len(t, s.publisher.Created, 1)
}

func TestImage_AllProvidersFailYieldsPlaceholder(t *testing.T) {
	s := newServer(t)
	s.secondary.Artifact = nil
	s.secondary.Err = apperr.New(apperr.KindProviderUnavailable, "down")

	w, body := s.do(t, jsonRequest("/api/v1/operations/image", map[string]string{"prompt": "lighthouse"}), "u1")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "image/svg+xml", s.store.Stored().MimeKind)
}

func TestImage_StoreFailure(t *testing.T) {
	s := newServer(t)
	s.store.PutErr = assert.AnError

	w, body := s.do(t, jsonRequest("/api/v1/operations/image", map[string]string{"prompt": "fox"}), "u1")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "failed to store result", body["message"])
	assert.Zero(t, s.ledger.Count())
}

func TestBackgroundRemoval_EffectRejectedReturnsOriginal(t *testing.T) {
	s := newServer(t)
	s.store.EffectErr = apperr.New(apperr.KindEffectRejected, "not enabled")

	w, body := s.do(t, multipartRequest(t, "/api/v1/operations/bg-removal", "image", "cat.png", pngMagic, nil), "u1")

	require.Equal(t, http.StatusOK, w.Code)
	content, _ := body["content"].(string)
	assert.NotContains(t, content, "effect=")
	assert.Equal(t, "image/png", s.store.Stored().MimeKind)
}

func TestBackgroundRemoval_EffectApplied(t *testing.T) {
	s := newServer(t)

	w, body := s.do(t, multipartRequest(t, "/api/v1/operations/bg-removal", "image", "cat.png", pngMagic, nil), "u1")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body["content"], "?effect=background_removal")
	assert.Equal(t, body["content"], body["data"])
}

func TestBackgroundRemoval_NonImageRejected(t *testing.T) {
	s := newServer(t)

	w, _ := s.do(t, multipartRequest(t, "/api/v1/operations/bg-removal", "image", "notes.txt", []byte("just some text"), nil), "u1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, s.store.Count())
}

func TestBackgroundRemoval_OversizeImage(t *testing.T) {
	s := newServer(t)
	img := append(append([]byte{}, pngMagic...), bytes.Repeat([]byte("x"), 10<<20)...)

	w, _ := s.do(t, multipartRequest(t, "/api/v1/operations/bg-removal", "image", "big.png", img, nil), "u1")

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Zero(t, s.store.Count())
}

func TestBackgroundRemoval_MissingFile(t *testing.T) {
	s := newServer(t)

	w, body := s.do(t, multipartRequest(t, "/api/v1/operations/bg-removal", "image", "", nil, nil), "u1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No image file uploaded", body["message"])
}

func TestObjectRemoval_MultiWordLabel(t *testing.T) {
	s := newServer(t)

	w, _ := s.do(t, multipartRequest(t, "/api/v1/operations/object-removal", "image", "car.png", pngMagic,
		map[string]string{"object": "red car"}), "u1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, s.remover.Calls())
	assert.Zero(t, s.store.Count())
}

func TestObjectRemoval_PDFDeclaredAsPNG(t *testing.T) {
	s := newServer(t)

	w, body := s.do(t, typedPartRequest(t, "/api/v1/operations/object-removal", "image", "car.png", "image/png",
		[]byte("%PDF-1.4\n1 0 obj\n"), map[string]string{"object": "car"}), "u1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Zero(t, s.remover.Calls())
	assert.Zero(t, s.store.Count())
}

func TestBackgroundRemoval_TextDeclaredAsImage(t *testing.T) {
	s := newServer(t)

	w, _ := s.do(t, typedPartRequest(t, "/api/v1/operations/bg-removal", "image", "cat.jpg", "image/jpeg",
		[]byte("plain text pretending to be a photo"), nil), "u1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, s.store.Count())
}

func TestBackgroundRemoval_DeclaredTypeMatchesContent(t *testing.T) {
	s := newServer(t)

	w, _ := s.do(t, typedPartRequest(t, "/api/v1/operations/bg-removal", "image", "cat.png", "image/png", pngMagic, nil), "u1")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", s.store.Stored().MimeKind)
}

func TestObjectRemoval_FallsBackToHostEffect(t *testing.T) {
	s := newServer(t)

	w, body := s.do(t, multipartRequest(t, "/api/v1/operations/object-removal", "image", "car.png", pngMagic,
		map[string]string{"object": "car"}), "u1")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, s.remover.Calls())
	assert.Contains(t, body["content"], "?effect=object_removal:car")

	list, err := s.ledger.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Removed car from image", list[0].Prompt)
}

func TestResumeReview_OversizePDF(t *testing.T) {
	s := newServer(t)
	pdf := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 5<<20)...)

	w, body := s.do(t, multipartRequest(t, "/api/v1/operations/resume-review", "resume", "cv.pdf", pdf, nil), "u1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["message"], "5MB")
	assert.Zero(t, s.text.Calls())
}

func TestResumeReview_NotPDF(t *testing.T) {
	s := newServer(t)

	w, _ := s.do(t, multipartRequest(t, "/api/v1/operations/resume-review", "resume", "cv.png", pngMagic, nil), "u1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, s.text.Calls())
}

func TestEntitlement_PremiumOnlyDeniedBeforeProviders(t *testing.T) {
	s := newServer(t, models.OperationImage)

	w, body := s.do(t, jsonRequest("/api/v1/operations/image", map[string]string{"prompt": "fox"}), "u1")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Zero(t, s.primary.Calls())
	assert.Zero(t, s.secondary.Calls())
}

func TestEntitlement_PremiumBypassesGate(t *testing.T) {
	s := newServer(t, models.OperationBlogTitle)
	req := jsonRequest("/api/v1/operations/blog-title", map[string]string{"prompt": "p"})
	req.Header.Set("X-Test-Tier", string(models.TierPremium))

	w, _ := s.do(t, req, "u1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, s.text.Calls())
}

func TestEntitlement_FreeQuotaExhausted(t *testing.T) {
	s := newServer(t)
	for i := 0; i < 10; i++ {
		w, _ := s.do(t, jsonRequest("/api/v1/operations/blog-title", map[string]string{"prompt": "p"}), "u1")
		require.Equal(t, http.StatusOK, w.Code)
	}

	w, body := s.do(t, jsonRequest("/api/v1/operations/blog-title", map[string]string{"prompt": "p"}), "u1")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Limit reached. Upgrade to continue.", body["message"])
	assert.Equal(t, 10, s.text.Calls())
}

func TestCreations_PublishedAndToggleLike(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()
	older, _ := s.ledger.CreateCreation(ctx, &models.Creation{UserID: "a", Prompt: "p1", Content: "c1", Type: models.OperationImage, Publish: true})
	_, _ = s.ledger.CreateCreation(ctx, &models.Creation{UserID: "a", Prompt: "p2", Content: "c2", Type: models.OperationImage})
	newer, _ := s.ledger.CreateCreation(ctx, &models.Creation{UserID: "b", Prompt: "p3", Content: "c3", Type: models.OperationImage, Publish: true})

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/creations/published", nil)
	w, body := s.do(t, req, "u1")
	require.Equal(t, http.StatusOK, w.Code)
	list := body["creations"].([]interface{})
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID.String(), list[0].(map[string]interface{})["id"])
	assert.Equal(t, older.ID.String(), list[1].(map[string]interface{})["id"])

	path := "/api/v1/creations/" + older.ID.String() + "/toggle-like"
	req, _ = http.NewRequest(http.MethodPost, path, nil)
	w, body = s.do(t, req, "u1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["liked"])
	assert.Equal(t, "Creation liked", body["message"])

	req, _ = http.NewRequest(http.MethodPost, path, nil)
	w, body = s.do(t, req, "u1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["liked"])
	assert.Equal(t, "Creation unliked", body["message"])
	assert.EqualValues(t, 0, body["likes"])
	assert.Equal(t, []bool{true, false}, s.publisher.Liked)
}

func TestCreations_ToggleLikeMissing(t *testing.T) {
	s := newServer(t)

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/creations/"+uuid.NewString()+"/toggle-like", nil)
	w, body := s.do(t, req, "u1")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Creation not found", body["message"])
}

func TestCreations_ToggleLikeBadID(t *testing.T) {
	s := newServer(t)

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/creations/not-a-uuid/toggle-like", nil)
	w, _ := s.do(t, req, "u1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreations_ListMine(t *testing.T) {
	s := newServer(t)
	_, _ = s.ledger.CreateCreation(context.Background(), &models.Creation{UserID: "u1", Prompt: "p", Content: "c", Type: models.OperationArticle})
	_, _ = s.ledger.CreateCreation(context.Background(), &models.Creation{UserID: "u2", Prompt: "p", Content: "c", Type: models.OperationArticle})

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/creations", nil)
	w, body := s.do(t, req, "u1")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["creations"], 1)
}
