// Package plantai diagnoses plant diseases from photos. A zero-shot
// classifier matches the image against the disease knowledge base first;
// when that is unavailable the captioning acquisition chain takes over.
package plantai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/plantai/plantai/acquire"
	"github.com/plantai/plantai/describer"
	"github.com/plantai/plantai/diagnosis"
	"github.com/plantai/plantai/internal/clipd"
	"github.com/plantai/plantai/internal/llamacap"
	"github.com/plantai/plantai/internal/openai"
	"github.com/plantai/plantai/kb"
)

type InitOptions struct {
	// Token is the hosted inference credential. Without it the acquisition
	// chain refuses to run.
	Token string

	// LocalOnly skips hosted endpoints and captions locally.
	LocalOnly bool

	// Endpoints overrides the hosted captioning endpoints, most capable
	// first. Empty means the defaults.
	Endpoints []string

	LlamaServer string // address of a running llama server, e.g. http://localhost:8080
	LlamaSeed   int

	ClipServer string // address of a running zero-shot classification sidecar

	OpenAI bool // caption through the OpenAI API instead of a llama server

	HttpClient *http.Client // if nil a client with a 60s timeout is used
	Logger     zerolog.Logger
}

// Diagnoser is the composition of all diagnosis strategies. Build one at
// process start and share it; the model handles inside are initialized at
// most once.
type Diagnoser struct {
	classifier describer.Classifier
	acquirer   *acquire.Acquirer
	logger     zerolog.Logger
}

func Init(opts InitOptions) (*Diagnoser, error) {
	httpClient := opts.HttpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	if opts.LlamaServer != "" && opts.OpenAI {
		return nil, fmt.Errorf("multiple captioning backends selected, only one allowed")
	}

	var local describer.Captioner
	if opts.LlamaServer != "" {
		local = llamacap.Init(opts.LlamaServer, opts.LlamaSeed, httpClient)
	} else if opts.OpenAI {
		local = openai.Init(httpClient)
	}

	if opts.LocalOnly && local == nil {
		return nil, fmt.Errorf("local-only mode requires a captioning backend")
	}

	acq := acquire.New(opts.Token, httpClient, opts.Logger)
	if len(opts.Endpoints) > 0 {
		acq.Endpoints = opts.Endpoints
	}
	acq.Local = local
	acq.LocalOnly = opts.LocalOnly

	d := &Diagnoser{
		acquirer: acq,
		logger:   opts.Logger.With().Str("component", "diagnoser").Logger(),
	}
	if opts.ClipServer != "" {
		d.classifier = clipd.Init(opts.ClipServer, httpClient)
	}

	return d, nil
}

// Diagnose resolves an uploaded image to a diagnosis. The zero-shot
// classifier runs first for actionable disease output; on any classifier
// failure the captioning acquisition chain takes over. Besides context
// errors, the only error returned is diagnosis.ErrUnauthorized.
func (d *Diagnoser) Diagnose(ctx context.Context, image []byte) (diagnosis.Result, error) {
	if d.classifier != nil {
		scores, err := d.classifier.Classify(ctx, image, kb.Labels())
		if err == nil && len(scores) > 0 {
			top := scores[0]
			d.logger.Info().
				Str("classifier", d.classifier.Name()).
				Str("label", top.Label).
				Float64("score", top.Score).
				Msg("zero-shot diagnosis")
			return diagnosis.FromLabel(top.Label, top.Score), nil
		}
		d.logger.Warn().Err(err).Msg("zero-shot diagnosis failed, falling back to captioning")
	}

	return d.acquirer.Acquire(ctx, image)
}
