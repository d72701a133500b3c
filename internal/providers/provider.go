// Package providers holds the remote image generation and editing clients
// that fallback chains are assembled from.
package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-tools-backend/internal/apperr"
	"ai-tools-backend/internal/models"
)

// maxResponseBytes caps how much of a provider response is buffered.
const maxResponseBytes = 25 << 20

// Provider performs one remote operation. Implementations never retry;
// moving on to the next provider is the chain's job.
type Provider interface {
	Name() string
	Attempt(ctx context.Context, req *models.GenerationRequest) (*models.Artifact, error)
}

// Finalizer is the last stage of a chain. It must always produce an artifact.
type Finalizer interface {
	Name() string
	Finalize(req *models.GenerationRequest) *models.Artifact
}

// NewHTTPClient builds the outbound client shared by every provider and store.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 16
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// fetchImage executes req and returns the body when it is a non-empty image.
func fetchImage(client *http.Client, provider string, req *http.Request) (*models.Artifact, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindProviderUnavailable, provider+": request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindProviderUnavailable, provider+": failed to read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.New(apperr.KindProviderRejected,
			fmt.Sprintf("%s: status %d, body: %s", provider, resp.StatusCode, truncate(string(body), 300)))
	}

	if len(body) == 0 {
		return nil, apperr.New(apperr.KindProviderRejected, provider+": empty response body")
	}

	mime := imageMime(resp.Header.Get("Content-Type"), body)
	if mime == "" {
		return nil, apperr.New(apperr.KindProviderRejected,
			fmt.Sprintf("%s: response is not an image (content-type %q)", provider, resp.Header.Get("Content-Type")))
	}

	return &models.Artifact{
		Data:     body,
		MimeKind: mime,
		Stage:    provider,
	}, nil
}

// imageMime prefers the declared type and falls back to sniffing the bytes.
func imageMime(declared string, body []byte) string {
	declared = strings.TrimSpace(strings.Split(declared, ";")[0])
	if strings.HasPrefix(declared, "image/") {
		return declared
	}
	sniffed := http.DetectContentType(body)
	if strings.HasPrefix(sniffed, "image/") {
		return strings.Split(sniffed, ";")[0]
	}
	return ""
}

func buildErr(provider string, err error) error {
	return apperr.Wrap(apperr.KindProviderUnavailable, provider+": failed to create request", err)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
