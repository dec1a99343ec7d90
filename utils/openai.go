package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BinSight-Labs/binsight-go-sdk/models"
	"go.uber.org/zap"
)

type OpenAIClient struct {
	APIKey string
	Model  string
	Client *http.Client
}

type GPTMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type GPTResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type ImageContent struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL *struct {
		URL string `json:"url"`
	} `json:"image_url,omitempty"`
}

// itemProfilePayload is the JSON contract the prompt asks the model to fill.
type itemProfilePayload struct {
	Material          string  `json:"material"`
	FormFactor        string  `json:"form_factor"`
	ContaminationRisk string  `json:"contamination_risk"`
	SpecialHandling   string  `json:"special_handling"`
	Confidence        float64 `json:"confidence"`
	Labels            []struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	} `json:"labels"`
}

func NewOpenAIClient(model string) *OpenAIClient {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		zap.L().Fatal("OPENAI_API_KEY environment variable not set")
	}

	if model == "" {
		model = "gpt-4o"
	}

	return &OpenAIClient{
		APIKey: apiKey,
		Model:  model,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

const itemProfilePrompt = `You are a computer vision classifier for consumer waste items.
Analyze the photo and describe the single primary item as a JSON object with these fields:
- "material": one of "paper_cardboard", "rigid_plastic", "film_plastic", "metal", "glass", "organic", "textile", "unknown"
- "form_factor": one of "bottle", "can", "box", "bag_film", "cup", "tray", "utensil", "sheet", "mixed", "unknown"
- "contamination_risk": one of "low", "medium", "high", "unknown" (degree of food/residue soiling)
- "special_handling": one of "battery", "e_waste", "hhw", "sharps", "none" (hhw = household hazardous waste such as paint or chemicals)
- "confidence": float between 0 and 1 for the overall assessment
- "labels": 2-5 short concrete labels for the item, each as {"label": string, "score": float between 0 and 1}

Examples of labels: "plastic bottle", "aluminum can", "paper box", "battery", "glass bottle", "plastic bag", "banana peel".
If the photo is unclear, use "unknown" values and a low confidence rather than guessing.
Be conservative about "special_handling": set it only when the item clearly needs non-curbside disposal.
Return the JSON object only, no other text.`

// DetectItemProfile runs the vision call and normalizes the model's answer
// onto the profile enums. Anything the model invents outside the declared
// vocabulary degrades to the unknown/none defaults instead of reaching the
// decision engine raw.
func (c *OpenAIClient) DetectItemProfile(ctx context.Context, imageData []byte, mimeType string) (models.ItemProfile, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	base64Image := base64.StdEncoding.EncodeToString(imageData)
	imageURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64Image)

	content := []ImageContent{
		{
			Type: "text",
			Text: itemProfilePrompt,
		},
		{
			Type: "image_url",
			ImageURL: &struct {
				URL string `json:"url"`
			}{
				URL: imageURL,
			},
		},
	}

	messages := []GPTMessage{
		{
			Role:    "user",
			Content: content,
		},
	}

	requestBody := map[string]interface{}{
		"model":      c.Model,
		"messages":   messages,
		"max_tokens": 500,
	}

	raw, err := c.sendRequest(ctx, requestBody)
	if err != nil {
		return models.ItemProfile{}, err
	}

	var payload itemProfilePayload
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		zap.L().Warn("Failed to parse vision response as JSON",
			zap.Error(err),
			zap.String("content", raw))
		return models.ItemProfile{}, fmt.Errorf("failed to parse vision response: %w", err)
	}

	return normalizeProfile(payload), nil
}

func (c *OpenAIClient) sendRequest(ctx context.Context, requestBody map[string]interface{}) (string, error) {
	requestBodyBytes, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/chat/completions", bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send HTTP request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var response GPTResponse
	if err := json.Unmarshal(bodyBytes, &response); err != nil {
		return "", fmt.Errorf("failed to unmarshal response JSON: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenAI API response")
	}

	content := response.Choices[0].Message.Content
	zap.L().Debug("OpenAI response content", zap.String("content", content))

	return content, nil
}

// normalizeProfile is the producer-side cleanup: enum fallbacks, confidence
// clamped into [0,1], labels lowercased, sorted by score and capped.
func normalizeProfile(payload itemProfilePayload) models.ItemProfile {
	labels := make([]models.LabelScore, 0, len(payload.Labels))
	for _, l := range payload.Labels {
		labels = append(labels, models.LabelScore{
			Label: strings.ToLower(strings.TrimSpace(l.Label)),
			Score: clampScore(l.Score),
		})
	}
	sort.SliceStable(labels, func(i, j int) bool { return labels[i].Score > labels[j].Score })
	if len(labels) > 5 {
		labels = labels[:5]
	}

	return models.ItemProfile{
		Material:          models.ParseMaterial(payload.Material),
		FormFactor:        models.ParseFormFactor(payload.FormFactor),
		ContaminationRisk: models.ParseContaminationRisk(payload.ContaminationRisk),
		SpecialHandling:   models.ParseSpecialHandling(payload.SpecialHandling),
		Confidence:        clampScore(payload.Confidence),
		RawLabels:         labels,
	}
}

func clampScore(score float64) float64 {
	if score < 0.0 {
		return 0.0
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}

// stripCodeFence unwraps the ```json fencing some models add despite the
// JSON-only instruction.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
