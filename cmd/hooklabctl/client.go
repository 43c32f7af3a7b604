package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type apiClient struct {
	r *resty.Client
}

func newAPIClient(base string) *apiClient {
	return &apiClient{r: resty.New().
		SetBaseURL(strings.TrimRight(base, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(60 * time.Second)}
}

// apiError carries a non-2xx answer. 403 bodies are printed as-is since
// they hold the subscribe hint.
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string { return fmt.Sprintf("http %d: %s", e.Status, e.Body) }

func (c *apiClient) get(path string, query map[string]string) ([]byte, error) {
	resp, err := c.r.R().SetQueryParams(query).Get(path)
	if err != nil {
		return nil, err
	}
	return checkResponse(resp)
}

func (c *apiClient) postJSON(path string, payload interface{}) ([]byte, error) {
	resp, err := c.r.R().SetBody(payload).Post(path)
	if err != nil {
		return nil, err
	}
	return checkResponse(resp)
}

func checkResponse(resp *resty.Response) ([]byte, error) {
	if resp.IsError() {
		return nil, &apiError{Status: resp.StatusCode(), Body: strings.TrimSpace(resp.String())}
	}
	return resp.Body(), nil
}

// printJSON indents body when it is JSON and copies it verbatim otherwise.
func printJSON(out io.Writer, body []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		_, err = out.Write(body)
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(out)
	return err
}
