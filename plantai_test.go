package plantai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantai/plantai/describer"
)

type fakeClassifier struct {
	scores []describer.Score
	err    error
}

func (f *fakeClassifier) Name() string    { return "fake" }
func (f *fakeClassifier) IsHealthy() bool { return true }

func (f *fakeClassifier) Classify(ctx context.Context, image []byte, labels []string) ([]describer.Score, error) {
	return f.scores, f.err
}

func TestInitRejectsMultipleCaptioningBackends(t *testing.T) {
	_, err := Init(InitOptions{Token: "tok", LlamaServer: "http://localhost:8080", OpenAI: true})
	require.Error(t, err)
}

func TestInitRejectsLocalOnlyWithoutBackend(t *testing.T) {
	_, err := Init(InitOptions{Token: "tok", LocalOnly: true})
	require.Error(t, err)
}

func TestDiagnosePrefersZeroShot(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[{"generated_text": "unused"}]`))
	}))
	defer srv.Close()

	d, err := Init(InitOptions{Token: "tok", Endpoints: []string{srv.URL}, Logger: zerolog.Nop()})
	require.NoError(t, err)
	d.classifier = &fakeClassifier{scores: []describer.Score{
		{Label: "healthy leaf", Score: 0.93},
		{Label: "rust", Score: 0.04},
	}}

	res, err := d.Diagnose(context.Background(), []byte("img"))
	require.NoError(t, err)

	assert.Equal(t, "Healthy", res.DiseaseName)
	assert.Equal(t, 0.93, res.Confidence)
	assert.Equal(t, "No action needed.", res.Treatment)
	assert.Zero(t, hits.Load(), "captioning chain must not run when zero-shot succeeds")
}

func TestDiagnoseFallsBackToCaptioning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"generated_text": "a yellow spotted leaf"}]`))
	}))
	defer srv.Close()

	d, err := Init(InitOptions{Token: "tok", Endpoints: []string{srv.URL}, Logger: zerolog.Nop()})
	require.NoError(t, err)
	d.classifier = &fakeClassifier{err: errors.New("weights not loaded")}

	res, err := d.Diagnose(context.Background(), []byte("img"))
	require.NoError(t, err)

	assert.Equal(t, "AI Analysis", res.DiseaseName)
	assert.Equal(t, 0.90, res.Confidence)
	assert.Contains(t, res.Description, "'a yellow spotted leaf'")
}

func TestDiagnoseKnownDisease(t *testing.T) {
	d, err := Init(InitOptions{Token: "tok", Logger: zerolog.Nop()})
	require.NoError(t, err)
	d.classifier = &fakeClassifier{scores: []describer.Score{{Label: "powdery mildew", Score: 0.88}}}

	res, err := d.Diagnose(context.Background(), []byte("img"))
	require.NoError(t, err)

	assert.Equal(t, "Powdery Mildew", res.DiseaseName)
	assert.Contains(t, res.Treatment, "Recommended dosage:")
}
