package question

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hedamo/transparency/pkg/net"
)

const (
	// DefaultHuggingFaceURL is the Inference API base, the model id is appended.
	DefaultHuggingFaceURL = "https://api-inference.huggingface.co/models/"
	// DefaultHuggingFaceModel is the text-to-text model used for questions.
	DefaultHuggingFaceModel = "google/flan-t5-large"
)

// HuggingFace calls the Hugging Face Inference API.
type HuggingFace struct {
	client  *http.Client
	baseURL string
	model   string
}

// NewHuggingFace returns a text model for model served under baseURL.
func NewHuggingFace(ctx context.Context, baseURL, model, token string, timeout time.Duration) *HuggingFace {
	if baseURL == "" {
		baseURL = DefaultHuggingFaceURL
	}
	if model == "" {
		model = DefaultHuggingFaceModel
	}
	return &HuggingFace{
		client:  net.GetBearerClient(ctx, token, timeout),
		baseURL: baseURL,
		model:   model,
	}
}

type hfRequest struct {
	Inputs string `json:"inputs"`
}

type hfOutput struct {
	GeneratedText string `json:"generated_text"`
	Error         string `json:"error"`
}

// GenerateText posts prompt and returns the first generated text.
func (h *HuggingFace) GenerateText(ctx context.Context, prompt string) (string, error) {
	var raw json.RawMessage
	if err := net.PostJSON(ctx, h.client, h.endpoint(), hfRequest{Inputs: prompt}, &raw); err != nil {
		return "", fmt.Errorf("error querying %s: %w", h.model, err)
	}
	return parseHFOutput(raw)
}

// Name returns the model id.
func (h *HuggingFace) Name() string {
	return "huggingface:" + h.model
}

func (h *HuggingFace) endpoint() string {
	return strings.TrimSuffix(h.baseURL, "/") + "/" + h.model
}

// parseHFOutput accepts both the list and the single object response forms.
func parseHFOutput(raw json.RawMessage) (string, error) {
	var list []hfOutput
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return "", ErrNoGeneratedText
		}
		return textOrError(list[0])
	}

	var one hfOutput
	if err := json.Unmarshal(raw, &one); err != nil {
		return "", fmt.Errorf("error decoding inference output: %w", err)
	}
	return textOrError(one)
}

func textOrError(o hfOutput) (string, error) {
	if o.Error != "" {
		return "", fmt.Errorf("inference error: %s", o.Error)
	}
	if o.GeneratedText == "" {
		return "", ErrNoGeneratedText
	}
	return o.GeneratedText, nil
}
