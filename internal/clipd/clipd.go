// Package clipd runs zero-shot image classification through a locally
// running CLIP sidecar server.
package clipd

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/plantai/plantai/describer"
	"github.com/plantai/plantai/diagnosis"
)

// hypothesisTemplate frames each candidate label for the matcher.
const hypothesisTemplate = "a photo of {}"

type clip struct {
	srvAddr string
	client  *http.Client

	warm    sync.Once
	warmErr error
}

var _ describer.Classifier = &clip{}

func Init(srvAddr string, httpClient *http.Client) *clip {
	return &clip{
		srvAddr: srvAddr,
		client:  httpClient,
	}
}

func (c *clip) Name() string { return "clip" }

func (c *clip) IsHealthy() bool {
	resp, err := c.client.Get(c.srvAddr)
	if err != nil {
		return false
	}
	resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func (c *clip) ensureReady() error {
	c.warm.Do(func() {
		if !c.IsHealthy() {
			c.warmErr = fmt.Errorf("clip server at %s not responding: %w", c.srvAddr, diagnosis.ErrAdapterUnavailable)
		}
	})
	return c.warmErr
}

func (c *clip) Classify(ctx context.Context, image []byte, labels []string) ([]describer.Score, error) {
	if err := c.ensureReady(); err != nil {
		return nil, err
	}

	body := struct {
		Image              string   `json:"image"`
		CandidateLabels    []string `json:"candidate_labels"`
		HypothesisTemplate string   `json:"hypothesis_template"`
	}{
		Image:              base64.StdEncoding.EncodeToString(image),
		CandidateLabels:    labels,
		HypothesisTemplate: hypothesisTemplate,
	}

	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(&body); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.srvAddr+"/classify", buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("clip server returned %d", resp.StatusCode)
	}

	var scores []describer.Score
	if err := json.NewDecoder(resp.Body).Decode(&scores); err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("clip server returned no candidates")
	}

	// The sidecar returns ranked results; keep the guarantee regardless.
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })

	return scores, nil
}
