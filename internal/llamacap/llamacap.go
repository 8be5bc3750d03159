// Package llamacap captions images through a locally running llama.cpp style
// multimodal server.
package llamacap

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"strings"
	"sync"

	"github.com/plantai/plantai/describer"
	"github.com/plantai/plantai/diagnosis"
)

const (
	imagePreamble = `A chat between a curious human and an artificial intelligence assistant. The assistant gives helpful, detailed, and polite answers to the human's questions.
USER:`
	imageSuffix = `
ASSISTANT:`
)

type jsonmap map[string]any

// These were lifted from the web inspector for the server UI
var defaultparams = jsonmap{
	"n_predict":         400,
	"n_probs":           0,
	"temperature":       0.7,
	"stop":              []string{"</s>", "Llama:", "User:"},
	"repeat_last_n":     256,
	"repeat_penalty":    1.18,
	"top_k":             40,
	"top_p":             0.5,
	"tfs_z":             1,
	"typical_p":         1,
	"presence_penalty":  0,
	"frequency_penalty": 0,
	"mirostat":          0,
	"mirostat_tau":      5,
	"mirostat_eta":      0.1,
	"grammar":           "",
	"slot_id":           -1,
	"cache_prompt":      true,
}

type llama struct {
	srvAddr string
	seed    int

	client *http.Client

	warm    sync.Once
	warmErr error
}

var _ describer.Captioner = &llama{}

func Init(srvAddr string, seed int, httpClient *http.Client) *llama {
	return &llama{
		srvAddr: srvAddr,
		seed:    seed,
		client:  httpClient,
	}
}

func (l *llama) Name() string { return "llama" }

func (l *llama) IsHealthy() bool {
	resp, err := l.client.Get(l.srvAddr)
	if err != nil {
		return false
	}
	resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// ensureReady probes the server once per process. The probe result sticks:
// the server either has the model loaded or this adapter stays unavailable.
func (l *llama) ensureReady() error {
	l.warm.Do(func() {
		if !l.IsHealthy() {
			l.warmErr = fmt.Errorf("llama server at %s not responding: %w", l.srvAddr, diagnosis.ErrAdapterUnavailable)
		}
	})
	return l.warmErr
}

func (l *llama) Caption(ctx context.Context, image []byte) (string, error) {
	if err := l.ensureReady(); err != nil {
		return "", err
	}

	imb64 := base64.StdEncoding.EncodeToString(image)
	return l.sendRequest(ctx, imagePreamble+"[img-10]please describe this image in detail"+imageSuffix, jsonmap{
		"image_data": []jsonmap{
			{
				"data": imb64, "id": 10,
			},
		},
	})
}

func (l *llama) sendRequest(ctx context.Context, prompt string, keys jsonmap) (string, error) {
	data := maps.Clone(defaultparams)
	maps.Copy(data, keys)
	data["prompt"] = prompt
	data["stream"] = false
	data["seed"] = l.seed

	buf := bytes.NewBuffer(make([]byte, 0, 2_000_000)) // The buffer will be resized by Encode
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(&data)
	if err != nil {
		return "", err
	}
	br := bytes.NewReader(buf.Bytes())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.srvAddr+"/completion", br)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llama server returned %d", resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	respbody := struct {
		Content string
	}{}
	if err := dec.Decode(&respbody); err != nil {
		return "", err
	}

	return strings.TrimLeft(respbody.Content, " "), nil
}
