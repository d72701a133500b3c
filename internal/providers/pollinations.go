package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ai-tools-backend/internal/models"
)

// Pollinations renders a prompt through the public pollinations.ai endpoint. It needs no key.
type Pollinations struct {
	baseURL    string
	httpClient *http.Client
}

func NewPollinations(baseURL string, httpClient *http.Client) *Pollinations {
	return &Pollinations{baseURL: strings.TrimSuffix(baseURL, "/"), httpClient: httpClient}
}

func (p *Pollinations) Name() string { return "pollinations" }

func (p *Pollinations) Attempt(ctx context.Context, req *models.GenerationRequest) (*models.Artifact, error) {
	u := fmt.Sprintf("%s/prompt/%s?width=512&height=512&nologo=1", p.baseURL, url.PathEscape(req.Prompt))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, buildErr(p.Name(), err)
	}
	httpReq.Header.Set("User-Agent", "Mozilla/5.0")

	return fetchImage(p.httpClient, p.Name(), httpReq)
}

// Picsum fetches a random stock photo. It ignores the prompt and only exists
// so the user gets a real image when every generator is down.
type Picsum struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

func NewPicsum(baseURL string, httpClient *http.Client) *Picsum {
	return &Picsum{baseURL: strings.TrimSuffix(baseURL, "/"), httpClient: httpClient, now: time.Now}
}

func (p *Picsum) Name() string { return "picsum-placeholder" }

func (p *Picsum) Attempt(ctx context.Context, req *models.GenerationRequest) (*models.Artifact, error) {
	u := p.baseURL + "/512/512?random=" + strconv.FormatInt(p.now().UnixNano(), 10)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, buildErr(p.Name(), err)
	}

	return fetchImage(p.httpClient, p.Name(), httpReq)
}
