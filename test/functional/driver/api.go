package driver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const roleHeader = "X-User-Role"

// APIDriver speaks to a running server. Requests go through the otelhttp
// transport so a collector, when present, links test steps to server spans.
type APIDriver struct {
	baseURL string
	client  *http.Client
}

func NewAPIDriver(baseURL string) *APIDriver {
	return &APIDriver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

func (d *APIDriver) WebSocketURL(fieldContext string) string {
	wsURL := strings.Replace(d.baseURL, "http", "ws", 1) + "/ws/field-catalog"
	if fieldContext != "" {
		wsURL += "?context=" + url.QueryEscape(fieldContext)
	}
	return wsURL
}

func (d *APIDriver) GetHealthz() (*http.Response, error) {
	return d.client.Get(d.baseURL + "/healthz")
}

func (d *APIDriver) GetReadyz() (*http.Response, error) {
	return d.client.Get(d.baseURL + "/readyz")
}

func (d *APIDriver) CreateFieldDefinition(fieldContext, role string, body map[string]any) (*http.Response, error) {
	return d.send(http.MethodPost, fmt.Sprintf("/v1/field-catalog/%s/fields", fieldContext), role, body)
}

func (d *APIDriver) ListFieldDefinitions(fieldContext string, limit int) (*http.Response, error) {
	return d.send(http.MethodGet, fmt.Sprintf("/v1/field-catalog/%s/fields?limit=%d", fieldContext, limit), "", nil)
}

func (d *APIDriver) GetFieldDefinition(id string) (*http.Response, error) {
	return d.send(http.MethodGet, "/v1/field-definitions/"+id, "", nil)
}

func (d *APIDriver) UpdateFieldDefinition(id, role string, body map[string]any) (*http.Response, error) {
	return d.send(http.MethodPut, "/v1/field-definitions/"+id, role, body)
}

func (d *APIDriver) DeleteFieldDefinition(id, role string) (*http.Response, error) {
	return d.send(http.MethodDelete, "/v1/field-definitions/"+id, role, nil)
}

func (d *APIDriver) ResolveCatalog(fieldContext, role string) (*http.Response, error) {
	return d.send(http.MethodGet, fmt.Sprintf("/v1/field-catalog/%s/resolved", fieldContext), role, nil)
}

func (d *APIDriver) EvaluateRecord(fieldContext, role string, record map[string]any) (*http.Response, error) {
	return d.send(http.MethodPost, fmt.Sprintf("/v1/field-catalog/%s/evaluate", fieldContext), role, map[string]any{"record": record})
}

func (d *APIDriver) ReorderFields(fieldContext, role string, ids []string) (*http.Response, error) {
	return d.send(http.MethodPost, fmt.Sprintf("/v1/field-catalog/%s/reorder", fieldContext), role, map[string]any{"field_ids": ids})
}

func (d *APIDriver) send(method, path, role string, body any) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, d.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set(roleHeader, role)
	}
	return d.client.Do(req)
}
