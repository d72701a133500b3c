package models

import "time"

// OperationResponse is the envelope every operation endpoint replies with.
type OperationResponse struct {
	Success bool   `json:"success"`
	Data    string `json:"data,omitempty"`
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type CreationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Prompt    string    `json:"prompt"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Publish   bool      `json:"publish"`
	Likes     []string  `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreationsResponse struct {
	Success   bool               `json:"success"`
	Creations []CreationResponse `json:"creations"`
}

type ToggleLikeResponse struct {
	Success bool   `json:"success"`
	Liked   bool   `json:"liked"`
	Likes   int    `json:"likes"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status   string            `json:"status"`
	Checks   map[string]string `json:"checks,omitempty"`
	Uptime   string            `json:"uptime,omitempty"`
	Artifact string            `json:"artifact_backend,omitempty"`
}

func NewCreationResponse(c *Creation) CreationResponse {
	likes := c.Likes
	if likes == nil {
		likes = []string{}
	}
	return CreationResponse{
		ID:        c.ID.String(),
		UserID:    c.UserID,
		Prompt:    c.Prompt,
		Content:   c.Content,
		Type:      string(c.Type),
		Publish:   c.Publish,
		Likes:     likes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
