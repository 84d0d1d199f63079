package authsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// url builds a complete URL by appending the path to the base URL.
func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// doRequest performs an HTTP request with the SDKClient's HTTP client.
func (c *SDKClient) doRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set custom headers
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}

// doBearerRequest is doRequest with an Authorization: Bearer header.
func (c *SDKClient) doBearerRequest(ctx context.Context, method, path, accessToken string) (*http.Response, error) {
	return c.doRequest(ctx, method, path, nil, map[string]string{
		"Authorization": "Bearer " + accessToken,
	})
}

// decodeJSON decodes a JSON response into the target interface.
// Returns a typed OAuth2Error if the response indicates an error.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	// Read body once for both error parsing and success decoding
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// readRedirect expects a 303 and returns its parsed Location. Redirect
// targets carrying an OAuth2 error are returned as an *OAuth2Error.
func readRedirect(resp *http.Response) (*url.URL, error) {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, parseErrorResponse(resp, bodyBytes)
	}

	loc, err := resp.Location()
	if err != nil {
		return nil, fmt.Errorf("redirect without location: %w", err)
	}

	if code := loc.Query().Get("error"); code != "" {
		return loc, &OAuth2Error{
			StatusCode:  resp.StatusCode,
			Code:        code,
			Description: loc.Query().Get("error_description"),
		}
	}
	return loc, nil
}
