package models

type ArticleRequest struct {
	Prompt string `json:"prompt" binding:"required" example:"Write an article about Go generics"`
	// Length is forwarded as max_tokens.
	Length int `json:"length" example:"800"`
}

type BlogTitleRequest struct {
	Prompt string `json:"prompt" binding:"required" example:"Generate blog titles about hiking"`
}

type ImageRequest struct {
	Prompt  string `json:"prompt" binding:"required" example:"A lighthouse at dusk, watercolor"`
	Publish bool   `json:"publish"`
}
