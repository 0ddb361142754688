package dataplane

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	opensearch "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"github.com/ruteri/aoss-provisioner/interfaces"
)

// ErrorTypeIndexExists is the data-plane error type for a duplicate index.
const ErrorTypeIndexExists = "resource_already_exists_exception"

// Client implements interfaces.DocumentStore with the OpenSearch client.
// All requests go through the supplied transport, which signs them.
type Client struct {
	os  *opensearch.Client
	log *slog.Logger
}

// NewClient creates a document-store client for endpoint. The client never
// retries; transport sees every request exactly once.
func NewClient(endpoint string, transport http.RoundTripper, log *slog.Logger) (*Client, error) {
	osClient, err := opensearch.NewClient(opensearch.Config{
		Addresses:    []string{endpoint},
		Transport:    transport,
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create document store client for %s: %w", endpoint, err)
	}
	return &Client{os: osClient, log: log.With(slog.String("endpoint", endpoint))}, nil
}

// NewFactory returns an interfaces.DocumentStoreFactory producing signed clients.
func NewFactory(transport http.RoundTripper, log *slog.Logger) interfaces.DocumentStoreFactory {
	return func(endpoint string) (interfaces.DocumentStore, error) {
		return NewClient(endpoint, transport, log)
	}
}

// CreateIndex creates an index with default settings.
func (c *Client) CreateIndex(ctx context.Context, name string) error {
	start := time.Now()
	res, err := opensearchapi.IndicesCreateRequest{Index: name}.Do(ctx, c.os)
	if err != nil {
		c.log.Error("Create index request failed", slog.String("index", name), "err", err)
		return fmt.Errorf("create index %q: %w", name, err)
	}
	defer res.Body.Close()

	body, err := c.checkResponse(res, "create index", name)
	if err != nil {
		return err
	}
	c.log.Info("Index created",
		slog.String("index", name),
		slog.String("response", body),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// IndexDocument writes body as a new document with a generated id.
func (c *Client) IndexDocument(ctx context.Context, index string, body io.Reader) error {
	start := time.Now()
	res, err := opensearchapi.IndexRequest{Index: index, Body: body}.Do(ctx, c.os)
	if err != nil {
		c.log.Error("Index document request failed", slog.String("index", index), "err", err)
		return fmt.Errorf("index document into %q: %w", index, err)
	}
	defer res.Body.Close()

	respBody, err := c.checkResponse(res, "index document into", index)
	if err != nil {
		return err
	}
	c.log.Info("Document added",
		slog.String("index", index),
		slog.String("response", respBody),
		slog.Duration("duration", time.Since(start)))
	return nil
}

type errorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// checkResponse reads the response and converts non-2xx statuses into
// errors wrapping ErrDataPlane (and ErrConflict for duplicate indexes).
func (c *Client) checkResponse(res *opensearchapi.Response, op, index string) (string, error) {
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("%s %q: failed to read response: %w", op, index, err)
	}
	if !res.IsError() {
		return string(raw), nil
	}

	var parsed errorResponse
	_ = json.Unmarshal(raw, &parsed)

	c.log.Error("Data plane rejected request",
		slog.String("op", op),
		slog.String("index", index),
		slog.Int("status", res.StatusCode),
		slog.String("error_type", parsed.Error.Type),
		slog.String("response", string(raw)))

	if parsed.Error.Type == ErrorTypeIndexExists {
		return "", fmt.Errorf("%w: %s %q: %w: %s", interfaces.ErrDataPlane, op, index, interfaces.ErrConflict, parsed.Error.Reason)
	}
	return "", fmt.Errorf("%w: %s %q: status %d: %s", interfaces.ErrDataPlane, op, index, res.StatusCode, string(raw))
}
