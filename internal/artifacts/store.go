// Package artifacts defines where generated images are hosted.
package artifacts

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"ai-tools-backend/internal/apperr"
	"ai-tools-backend/internal/models"
)

// Object is a hosted artifact. URL stays valid for the object's lifetime.
type Object struct {
	ID       string
	URL      string
	MimeKind string
}

// Effect is a host-side transformation derived from a stored object.
type Effect struct {
	Name   string
	Target string
}

type Store interface {
	Name() string
	// Put uploads art under key. Failures are KindStorageUnavailable and are not retried.
	Put(ctx context.Context, art *models.Artifact, key string) (*Object, error)
	// EffectURL derives a transformed URL from obj. Hosts that refuse the
	// transformation return KindEffectRejected.
	EffectURL(ctx context.Context, obj *Object, effect Effect) (string, error)
}

// Validate checks the artifact is uploadable bytes with a declared mime kind.
func Validate(art *models.Artifact) error {
	if art == nil {
		return apperr.New(apperr.KindStorageUnavailable, "no artifact to store")
	}
	if len(art.Data) == 0 && art.RemoteURL == "" {
		return apperr.New(apperr.KindStorageUnavailable, "artifact has no content")
	}
	if art.MimeKind == "" {
		return apperr.New(apperr.KindStorageUnavailable, "artifact has no mime kind")
	}
	return nil
}

// DataURI encodes art as a base64 data URI, the form hosted uploads accept.
func DataURI(art *models.Artifact) string {
	return fmt.Sprintf("data:%s;base64,%s", art.MimeKind, base64.StdEncoding.EncodeToString(art.Data))
}

// EffectProber asks the host whether a derived URL is servable.
type EffectProber struct {
	httpClient *http.Client
	timeout    time.Duration
}

func NewEffectProber(httpClient *http.Client, timeout time.Duration) *EffectProber {
	return &EffectProber{httpClient: httpClient, timeout: timeout}
}

// Probe accepts 2xx, and 423 which some hosts return while a derivation is still rendering.
func (p *EffectProber) Probe(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return apperr.Wrap(apperr.KindEffectRejected, "failed to build effect probe", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindEffectRejected, "effect probe failed", err)
	}
	resp.Body.Close()

	if resp.StatusCode == http.StatusLocked || (resp.StatusCode >= 200 && resp.StatusCode < 300) {
		return nil
	}
	return apperr.New(apperr.KindEffectRejected, fmt.Sprintf("host rejected effect: status %d, reason: %s",
		resp.StatusCode, resp.Header.Get("X-Cld-Error")))
}
