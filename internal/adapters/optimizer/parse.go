package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"route-scenario-service/internal/domain"
	"route-scenario-service/internal/platform/obs"
)

func encodeUpload(file domain.SourceFile) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, "", fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return buf.Bytes(), mw.FormDataContentType(), nil
}

// ParseAndValidate uploads a spreadsheet and returns the parsed input.
// A response with success=false is reported as an *UpstreamError.
func (c *Client) ParseAndValidate(
	ctx context.Context,
	file domain.SourceFile,
) (_ domain.ParseResult, err error) {
	defer obs.Time(ctx, "optimizer.ParseAndValidate")(&err)

	if file.Name == "" {
		return domain.ParseResult{}, errors.New("parse and validate: file name must be non-empty")
	}

	payload, contentType, err := encodeUpload(file)
	if err != nil {
		return domain.ParseResult{}, fmt.Errorf("parse and validate %q: %w", file.Name, err)
	}

	endpoint := c.baseURL + parsePath
	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload), contentType)
	})
	if err != nil {
		return domain.ParseResult{}, fmt.Errorf("parse and validate %q: %w", file.Name, err)
	}
	defer resp.Body.Close()

	var decoded domain.ParseResult
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.ParseResult{}, fmt.Errorf("parse and validate %q: decode response: %w", file.Name, err)
	}

	if !decoded.Success {
		msg := decoded.Message
		if msg == "" {
			msg = "file was not accepted"
		}
		return domain.ParseResult{}, fmt.Errorf("parse and validate %q: %w", file.Name, &UpstreamError{Code: resp.StatusCode, Detail: msg})
	}

	return decoded, nil
}
