package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"ai-tools-backend/internal/apperr"
	"github.com/gin-gonic/gin"
)

type upload struct {
	Data     []byte
	Mime     string
	Filename string
}

// readUpload pulls one file out of a multipart form. At most maxBytes+1 bytes
// are read so the caller can still tell an oversize file apart.
func readUpload(c *gin.Context, field string, maxBytes int64) (*upload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return nil, apperr.New(apperr.KindPayloadTooLarge, "request body too large")
		}
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.KindValidation, "failed to parse multipart form", err)
	}

	src, err := header.Open()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, fmt.Sprintf("failed to open %s", field), err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, fmt.Sprintf("failed to read %s", field), err)
	}

	mt, err := uploadMime(header.Header.Get("Content-Type"), data)
	if err != nil {
		return nil, err
	}
	return &upload{Data: data, Mime: mt, Filename: header.Filename}, nil
}

// uploadMime reports the sniffed type of data. A declared image or PDF type
// must agree with the sniffed one; generic declarations are ignored.
func uploadMime(declared string, data []byte) (string, error) {
	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	if declared == "" {
		return sniffed, nil
	}
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil || mt == "application/octet-stream" {
		return sniffed, nil
	}
	if mt == "image/jpg" {
		mt = "image/jpeg"
	}
	if (strings.HasPrefix(mt, "image/") || mt == "application/pdf") && mt != sniffed {
		return "", apperr.Validation(fmt.Sprintf("Uploaded file is not a valid %s", mt))
	}
	return sniffed, nil
}
