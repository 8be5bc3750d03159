// Package acquire implements the captioning acquisition protocol: an ordered
// walk over hosted model endpoints with a bounded retry per endpoint, a local
// captioning fallback, and a terminal low-confidence synthetic result.
package acquire

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/plantai/plantai/describer"
	"github.com/plantai/plantai/diagnosis"
	"github.com/plantai/plantai/internal/hfapi"
)

// Confidence carried by results, by producing strategy.
const (
	RemoteConfidence = 0.90
	LocalConfidence  = 0.70
)

// DefaultEndpoints are the hosted captioning models to try, most capable
// first.
var DefaultEndpoints = []string{
	"https://api-inference.huggingface.co/models/Salesforce/blip-image-captioning-base",
	"https://api-inference.huggingface.co/models/Salesforce/blip-image-captioning-large",
	"https://api-inference.huggingface.co/models/nlpconnect/vit-gpt2-image-captioning",
}

// Policy controls per-endpoint retry behavior. Only a warming-up signal is
// retried, with a fixed backoff; any other failure abandons the endpoint.
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultPolicy matches the hosted inference API's warm-up behavior.
var DefaultPolicy = Policy{MaxAttempts: 3, Backoff: 20 * time.Second}

// Acquirer obtains a caption for an image by trying hosted endpoints in
// order, falling back to a local captioner, and finally degrading to a
// low-confidence synthetic result. Acquire fails only when no credential is
// configured or the context ends.
type Acquirer struct {
	Endpoints []string
	Policy    Policy

	// Local runs when every endpoint is exhausted, or immediately in
	// local-only mode. May be nil.
	Local describer.Captioner

	// LocalOnly skips the hosted endpoints entirely.
	LocalOnly bool

	token  string
	client *hfapi.Client
	sleep  func(ctx context.Context, d time.Duration) error
	logger zerolog.Logger
}

func New(token string, httpClient *http.Client, logger zerolog.Logger) *Acquirer {
	return &Acquirer{
		Endpoints: DefaultEndpoints,
		Policy:    DefaultPolicy,
		token:     token,
		client:    hfapi.New(token, httpClient),
		sleep:     sleepCtx,
		logger:    logger.With().Str("component", "acquire").Logger(),
	}
}

// Acquire resolves the image to a diagnosis result. Besides context errors,
// the only error it returns is diagnosis.ErrUnauthorized; every other failure
// degrades the confidence of the returned result instead.
func (a *Acquirer) Acquire(ctx context.Context, image []byte) (diagnosis.Result, error) {
	// Without a credential no remote call can ever succeed; fail fast
	// instead of walking the whole endpoint list.
	if a.token == "" {
		return diagnosis.Result{}, diagnosis.ErrUnauthorized
	}

	if a.LocalOnly {
		a.logger.Info().Msg("local-only mode set, skipping hosted endpoints")
		res, err := a.localCaption(ctx, image)
		if err != nil {
			return diagnosis.Fallback(err.Error()), nil
		}
		return res, nil
	}

	var lastErr string
	for _, url := range a.Endpoints {
		a.logger.Info().Str("endpoint", url).Msg("trying captioning endpoint")
		for attempt := 1; attempt <= a.Policy.MaxAttempts; attempt++ {
			caption, err := a.client.Caption(ctx, url, image)
			if err == nil {
				a.logger.Info().Str("endpoint", url).Int("attempt", attempt).Msg("caption received")
				return diagnosis.FromCaption(caption, RemoteConfidence), nil
			}

			var se *hfapi.StatusError
			if errors.As(err, &se) && se.Retryable() {
				a.logger.Info().
					Str("endpoint", url).
					Int("attempt", attempt).
					Int("max_attempts", a.Policy.MaxAttempts).
					Msg("model warming up, backing off")
				if attempt < a.Policy.MaxAttempts {
					if serr := a.sleep(ctx, a.Policy.Backoff); serr != nil {
						return diagnosis.Result{}, serr
					}
				}
				continue
			}

			// Anything else abandons the endpoint at once.
			lastErr = err.Error()
			a.logger.Warn().Str("endpoint", url).Err(err).Msg("endpoint failed, trying next")
			break
		}
	}

	a.logger.Warn().Msg("all captioning endpoints failed, trying local fallback")
	res, err := a.localCaption(ctx, image)
	if err != nil {
		return diagnosis.Fallback(lastErr), nil
	}
	return res, nil
}

func (a *Acquirer) localCaption(ctx context.Context, image []byte) (diagnosis.Result, error) {
	if a.Local == nil {
		return diagnosis.Result{}, diagnosis.ErrAdapterUnavailable
	}
	caption, err := a.Local.Caption(ctx, image)
	if err != nil {
		a.logger.Warn().Str("captioner", a.Local.Name()).Err(err).Msg("local captioning failed")
		return diagnosis.Result{}, err
	}
	return diagnosis.FromCaption(caption, LocalConfidence), nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
