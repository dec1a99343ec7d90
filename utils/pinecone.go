package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/pinecone-io/go-pinecone/pinecone"
	"go.uber.org/zap"
)

// GuidanceClient retrieves jurisdiction-specific disposal tips for a
// detected item by semantic search over a Pinecone index of guidance text.
// Tips are display content only; the decision engine never sees them.
type GuidanceClient struct {
	client    *pinecone.Client
	indexName string

	mu    sync.Mutex
	conns map[string]*pinecone.IndexConnection
}

// NewGuidanceClientFromEnv builds a GuidanceClient from PINECONE_INDEX and
// PINECONE_API_KEY, or returns nil when either is absent so guidance stays
// optional.
func NewGuidanceClientFromEnv() *GuidanceClient {
	indexName := os.Getenv("PINECONE_INDEX")
	apiKey := os.Getenv("PINECONE_API_KEY")
	if indexName == "" || apiKey == "" {
		zap.L().Info("Pinecone not configured, disposal guidance disabled")
		return nil
	}

	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: apiKey})
	if err != nil {
		zap.L().Warn("Failed to create Pinecone client, disposal guidance disabled", zap.Error(err))
		return nil
	}

	return &GuidanceClient{
		client:    client,
		indexName: indexName,
		conns:     make(map[string]*pinecone.IndexConnection),
	}
}

// indexFor returns a cached connection namespaced to the jurisdiction, so
// guidance text for different programs never mixes.
func (g *GuidanceClient) indexFor(ctx context.Context, jurisdictionID string) (*pinecone.IndexConnection, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if conn, ok := g.conns[jurisdictionID]; ok {
		return conn, nil
	}

	idx, err := g.client.DescribeIndex(ctx, g.indexName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe index %q: %w", g.indexName, err)
	}

	namespace := fmt.Sprintf("guidance-%s", jurisdictionID)
	conn, err := g.client.Index(pinecone.NewIndexConnParams{Host: idx.Host, Namespace: namespace})
	if err != nil {
		return nil, fmt.Errorf("failed to create IndexConnection for host %v: %w", idx.Host, err)
	}

	g.conns[jurisdictionID] = conn
	return conn, nil
}

// DisposalTips embeds the detected label and returns the closest guidance
// snippets for the jurisdiction.
func (g *GuidanceClient) DisposalTips(ctx context.Context, jurisdictionID, label string) ([]string, error) {
	index, err := g.indexFor(ctx, jurisdictionID)
	if err != nil {
		return nil, err
	}

	embedding, err := VectorizePrompt("text-embedding-ada-002", ctx, label)
	if err != nil {
		return nil, fmt.Errorf("error vectorizing label: %w", err)
	}

	return QueryPinecone(ctx, embedding, index, 3)
}

func QueryPinecone(ctx context.Context, embedding []float32, index *pinecone.IndexConnection, topK int) ([]string, error) {
	queryRequest := &pinecone.QueryByVectorValuesRequest{
		Vector:          embedding,
		TopK:            uint32(topK),
		IncludeValues:   false,
		IncludeMetadata: true,
	}

	queryResponse, err := index.QueryByVectorValues(ctx, queryRequest)
	if err != nil {
		return nil, fmt.Errorf("error querying Pinecone index: %w", err)
	}

	var matches []string
	for _, match := range queryResponse.Matches {
		if match.Vector == nil || match.Vector.Metadata == nil {
			continue
		}

		// Extract the 'text' field from metadata.
		value, ok := match.Vector.Metadata.Fields["text"]
		if ok {
			text := value.GetStringValue()
			if text != "" {
				matches = append(matches, text)
			}
		}
	}

	return matches, nil
}

func VectorizePrompt(model string, ctx context.Context, promptText string) ([]float32, error) {
	openAIAPIKey := os.Getenv("OPENAI_API_KEY")
	if openAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}

	requestBody := map[string]interface{}{
		"input": promptText,
		"model": model,
	}
	requestBodyBytes, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/embeddings", bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+openAIAPIKey)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send HTTP request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAI API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var responseData struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(bodyBytes, &responseData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response JSON: %w", err)
	}

	if len(responseData.Data) == 0 {
		return nil, fmt.Errorf("no data in OpenAI API response")
	}

	return responseData.Data[0].Embedding, nil
}
