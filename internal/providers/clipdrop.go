package providers

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"ai-tools-backend/internal/apperr"
	"ai-tools-backend/internal/models"
)

// ClipDrop wraps the ClipDrop REST API. The exported provider types below
// share one client so they reuse its key and connection pool.
type ClipDrop struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClipDrop(baseURL, apiKey string, httpClient *http.Client) *ClipDrop {
	return &ClipDrop{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

type formFile struct {
	field    string
	filename string
	mime     string
	data     []byte
}

func (c *ClipDrop) post(ctx context.Context, provider, path string, fields map[string]string, file *formFile) (*models.Artifact, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, buildErr(provider, err)
		}
	}

	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(file.field), quoteEscaper.Replace(file.filename)))
		header.Set("Content-Type", file.mime)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, buildErr(provider, err)
		}
		if _, err := part.Write(file.data); err != nil {
			return nil, buildErr(provider, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, buildErr(provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return nil, buildErr(provider, err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return fetchImage(c.httpClient, provider, req)
}

func uploadedFile(req *models.GenerationRequest) (*formFile, error) {
	if len(req.Payload) == 0 {
		return nil, apperr.Validation("image payload is empty")
	}
	filename := req.Filename
	if filename == "" {
		filename = "image.png"
	}
	mime := req.PayloadMime
	if mime == "" {
		mime = "image/png"
	}
	return &formFile{field: "image_file", filename: filename, mime: mime, data: req.Payload}, nil
}

// TextToImage returns the text-to-image provider.
func (c *ClipDrop) TextToImage() Provider { return clipDropTextToImage{c} }

// RemoveObject returns the object-removal provider.
func (c *ClipDrop) RemoveObject() Provider { return clipDropRemoveObject{c} }

// RemoveBackground returns the background-removal provider.
func (c *ClipDrop) RemoveBackground() Provider { return clipDropRemoveBackground{c} }

type clipDropTextToImage struct{ c *ClipDrop }

func (p clipDropTextToImage) Name() string { return "clipdrop-text-to-image" }

func (p clipDropTextToImage) Attempt(ctx context.Context, req *models.GenerationRequest) (*models.Artifact, error) {
	return p.c.post(ctx, p.Name(), "/text-to-image/v1", map[string]string{"prompt": req.Prompt}, nil)
}

type clipDropRemoveObject struct{ c *ClipDrop }

func (p clipDropRemoveObject) Name() string { return "clipdrop-remove-objects" }

func (p clipDropRemoveObject) Attempt(ctx context.Context, req *models.GenerationRequest) (*models.Artifact, error) {
	file, err := uploadedFile(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindProviderRejected, p.Name(), err)
	}
	fields := map[string]string{}
	if req.ObjectLabel != "" {
		fields["prompt"] = req.ObjectLabel
	}
	return p.c.post(ctx, p.Name(), "/remove-objects/v1", fields, file)
}

type clipDropRemoveBackground struct{ c *ClipDrop }

func (p clipDropRemoveBackground) Name() string { return "clipdrop-remove-background" }

func (p clipDropRemoveBackground) Attempt(ctx context.Context, req *models.GenerationRequest) (*models.Artifact, error) {
	file, err := uploadedFile(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindProviderRejected, p.Name(), err)
	}
	return p.c.post(ctx, p.Name(), "/remove-background/v1", nil, file)
}
