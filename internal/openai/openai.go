// Package openai captions images through the OpenAI API, as an alternative
// to running a local model server.
package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	oagc "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/plantai/plantai/describer"
)

const model = oagc.ChatModelGPT4oMini

const captionPrompt = "Please describe this photo of a plant in detail, focusing on the condition of leaves and fruit."

type openai struct {
	oac *oagc.Client
}

var _ describer.Captioner = &openai{}

func Init(httpClient *http.Client) *openai {
	return &openai{
		oac: oagc.NewClient(
			option.WithHTTPClient(httpClient),
		),
	}
}

func (o *openai) Name() string { return "openai" }

func (o *openai) IsHealthy() bool {
	// TODO
	return true
}

func (o *openai) Caption(ctx context.Context, image []byte) (string, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := o.oac.Chat.Completions.New(ctx, oagc.ChatCompletionNewParams{
		Model: oagc.F(model),
		Messages: oagc.F([]oagc.ChatCompletionMessageParamUnion{
			oagc.UserMessageParts(
				oagc.TextPart(captionPrompt),
				oagc.ImagePart(dataURL),
			),
		}),
		MaxTokens: oagc.Int(400),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}
