package scanning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const extractPrompt = `Transcribe this restaurant receipt as plain text.
Output every line of the receipt exactly as printed, one line per row,
top to bottom. Keep item names and prices on the same line. Do not
summarize, annotate, or add any text that is not on the receipt.`

// TextExtractor pulls raw receipt text out of an image. The parser handles
// everything after that, so a different OCR backend only has to produce
// lines of text.
type TextExtractor interface {
	ExtractText(ctx context.Context, imageData []byte, contentType string) (string, error)
}

// Gemini implements TextExtractor using Google Gemini vision
type Gemini struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
}

// NewGemini creates a new Gemini text extractor
func NewGemini(apiKey string, modelName string, timeout time.Duration) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Gemini{
		client:  client,
		model:   client.GenerativeModel(modelName),
		timeout: timeout,
	}, nil
}

// imageFormat maps a MIME type to the bare format suffix genai.ImageData
// expects
func imageFormat(contentType string) string {
	format := strings.TrimPrefix(strings.ToLower(contentType), "image/")
	switch format {
	case "jpeg", "jpg":
		return "jpeg"
	case "png", "webp", "heic":
		return format
	default:
		return "png"
	}
}

// ExtractText sends the receipt image to Gemini and returns its transcription
func (g *Gemini) ExtractText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	parts := []genai.Part{
		genai.ImageData(imageFormat(contentType), imageData),
		genai.Text(extractPrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	// Strip markdown fences the model sometimes wraps output in
	text := strings.TrimSpace(responseText.String())
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if text == "" {
		return "", fmt.Errorf("empty transcription from gemini")
	}

	return text, nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
