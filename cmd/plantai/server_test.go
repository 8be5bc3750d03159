package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantai/plantai"
	"github.com/plantai/plantai/diagnosis"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, token string, endpoints []string) http.Handler {
	t.Helper()
	d, err := plantai.Init(plantai.InitOptions{
		Token:     token,
		Endpoints: endpoints,
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)
	return (&Server{d: d, logger: zerolog.Nop()}).serveHandler()
}

// pngBytes returns a small valid PNG.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func multipartBody(t *testing.T, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="leaf.png"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return body, mw.FormDataContentType()
}

func TestRoot(t *testing.T) {
	h := newTestServer(t, "tok", nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome to the PlantAI Backend")
}

func TestApp(t *testing.T) {
	h := newTestServer(t, "tok", nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "PlantAI")
}

func TestPredict(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"generated_text": "a leaf with powdery white patches"}]`))
	}))
	defer upstream.Close()

	h := newTestServer(t, "tok", []string{upstream.URL})

	body, ct := multipartBody(t, "image/png", pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/predict", body)
	req.Header.Set("Content-Type", ct)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res diagnosis.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "AI Analysis", res.DiseaseName)
	assert.Equal(t, 0.90, res.Confidence)
	assert.Contains(t, res.Description, "'a leaf with powdery white patches'")
}

func TestPredictRejectsNonImageContentType(t *testing.T) {
	h := newTestServer(t, "tok", nil)

	body, ct := multipartBody(t, "text/plain", []byte("not an image"))
	req := httptest.NewRequest(http.MethodPost, "/predict", body)
	req.Header.Set("Content-Type", ct)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not a valid image")
}

func TestPredictRejectsCorruptImage(t *testing.T) {
	h := newTestServer(t, "tok", nil)

	body, ct := multipartBody(t, "image/png", []byte("definitely not png bytes"))
	req := httptest.NewRequest(http.MethodPost, "/predict", body)
	req.Header.Set("Content-Type", ct)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or corrupted image file")
}

func TestPredictRejectsMissingFile(t *testing.T) {
	h := newTestServer(t, "tok", nil)

	req := httptest.NewRequest(http.MethodPost, "/predict", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictUnauthorizedWithoutToken(t *testing.T) {
	h := newTestServer(t, "", nil)

	body, ct := multipartBody(t, "image/png", pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/predict", body)
	req.Header.Set("Content-Type", ct)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "HUGGING_FACE_TOKEN")
}
