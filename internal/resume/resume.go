// Package resume extracts text from uploaded PDF resumes and builds the
// review prompt sent to the LLM.
package resume

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"ai-tools-backend/internal/apperr"
	"github.com/ledongthuc/pdf"
)

const LedgerPrompt = "review the resume"

// Extract returns the plain text of a PDF. Unreadable or text-less documents
// are validation errors since the client sent them.
func Extract(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", apperr.Validation("No resume file uploaded")
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", apperr.Validation(fmt.Sprintf("could not read PDF: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "could not read PDF", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "could not extract PDF text", err)
	}

	var buf strings.Builder
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "could not extract PDF text", err)
	}

	text = strings.TrimSpace(buf.String())
	if text == "" {
		return "", apperr.Validation("PDF contains no extractable text")
	}
	return text, nil
}

func ReviewPrompt(text string) string {
	return `Please provide a comprehensive review of the following resume. Include:

1. **Strengths**: What the candidate does well
2. **Areas for Improvement**: Specific suggestions for enhancement
3. **Overall Assessment**: General feedback and recommendations
4. **Formatting Notes**: Any layout or presentation suggestions

Resume Content:
` + text + `

Please provide detailed, actionable feedback that would help the candidate improve their resume.`
}
