package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"ai-tools-backend/internal/models"
)

const (
	CommunityTopic = "community"

	EventCreationCreated = "creation_created"
	EventCreationLiked   = "creation_liked"
)

// RealtimeClient publishes broadcast messages through the Realtime REST
// endpoint. The Go SDK has no Realtime channel support.
type RealtimeClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewRealtimeClient(supabaseURL, serviceKey string, httpClient *http.Client) *RealtimeClient {
	return &RealtimeClient{
		baseURL:    strings.TrimSuffix(supabaseURL, "/"),
		apiKey:     serviceKey,
		httpClient: httpClient,
	}
}

type broadcastMessage struct {
	Topic   string         `json:"topic"`
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload"`
}

func (r *RealtimeClient) PublishEvent(ctx context.Context, topic, event string, payload map[string]any) error {
	body, err := json.Marshal(map[string][]broadcastMessage{
		"messages": {{Topic: topic, Event: event, Payload: payload}},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/realtime/v1/api/broadcast", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("realtime broadcast failed with status %d", resp.StatusCode)
	}
	return nil
}

func (r *RealtimeClient) PublishCreation(ctx context.Context, c *models.Creation) error {
	return r.PublishEvent(ctx, CommunityTopic, EventCreationCreated, CreationCreatedPayload(c))
}

func (r *RealtimeClient) PublishLike(ctx context.Context, c *models.Creation, liked bool) error {
	return r.PublishEvent(ctx, CommunityTopic, EventCreationLiked, CreationLikedPayload(c, liked))
}

func CreationCreatedPayload(c *models.Creation) map[string]any {
	return map[string]any{
		"creation_id": c.ID.String(),
		"type":        string(c.Type),
		"content":     c.Content,
		"prompt":      c.Prompt,
	}
}

func CreationLikedPayload(c *models.Creation, liked bool) map[string]any {
	return map[string]any{
		"creation_id": c.ID.String(),
		"liked":       liked,
		"likes":       len(c.Likes),
	}
}
