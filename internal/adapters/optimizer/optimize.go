package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"route-scenario-service/internal/domain"
	"route-scenario-service/internal/platform/obs"
)

// Optimize runs the external optimizer once; failures are not retried.
func (c *Client) Optimize(
	ctx context.Context,
	input domain.NormalizedInput,
) (_ *domain.Result, err error) {
	defer obs.Time(ctx, "optimizer.Optimize")(&err)

	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("optimize: marshal input: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+optimizePath, bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}
	defer resp.Body.Close()

	var result domain.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("optimize: decode response: %w", err)
	}

	return &result, nil
}

// Export renders a result as an xlsx workbook via the backend.
func (c *Client) Export(ctx context.Context, result domain.Result) (_ []byte, err error) {
	defer obs.Time(ctx, "optimizer.Export")(&err)

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("export: marshal result: %w", err)
	}

	endpoint := c.baseURL + exportPath
	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload), "application/json")
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", SpreadsheetContentType)
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("export: read workbook: %w", err)
	}

	return b, nil
}

// SpreadsheetContentType is the media type of exported workbooks.
const SpreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
