// Package firestore provides a client for the Firestore REST API.
// Used as the real data backend for transactions, categories, and budgets.
// Documents live under users/{uid}/{collection}/{docID}.
package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/catatuang/catatuang-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("firestore")

// Client wraps HTTP calls to the Firestore REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	projectID  string
	token      string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	logger     *zap.Logger
}

// NewClient creates a Firestore client. baseURL is normally
// "https://firestore.googleapis.com/v1"; tests point it at a local server.
func NewClient(httpClient *http.Client, baseURL, projectID, token string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		projectID:  projectID,
		token:      token,
		cb:         cb,
		cfg:        cfg,
		logger:     logger,
	}
}

// collectionPath builds the REST path for one user's collection.
func (c *Client) collectionPath(userID, collection string) string {
	return fmt.Sprintf("projects/%s/databases/(default)/documents/users/%s/%s",
		c.projectID, url.PathEscape(userID), collection)
}

// document is the Firestore wire representation of one record.
type document struct {
	Name       string           `json:"name,omitempty"`
	Fields     map[string]value `json:"fields"`
	CreateTime string           `json:"createTime,omitempty"`
	UpdateTime string           `json:"updateTime,omitempty"`
}

// documentList is the response shape of a collection list call.
type documentList struct {
	Documents     []document `json:"documents"`
	NextPageToken string     `json:"nextPageToken"`
}

// doRequest executes an authenticated request against Firestore.
func (c *Client) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	u := fmt.Sprintf("%s/%s", c.baseURL, path)

	var reqBody io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		c.logger.Error("firestore: failed to create request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("firestore: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("firestore: failed to read response body",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, errStatusNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("firestore: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, fmt.Errorf("firestore returned status %d: %s", resp.StatusCode, string(body))
	}

	c.logger.Debug("firestore: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	return body, nil
}

// errStatusNotFound is a sentinel the stores translate into domain.ErrNotFound
// with the right resource name.
var errStatusNotFound = fmt.Errorf("firestore: document not found")

// listDocuments fetches every page of a collection.
func (c *Client) listDocuments(ctx context.Context, userID, collection string) ([]document, error) {
	var docs []document
	pageToken := ""

	for {
		path := fmt.Sprintf("%s?pageSize=300", c.collectionPath(userID, collection))
		if pageToken != "" {
			path += "&pageToken=" + url.QueryEscape(pageToken)
		}

		body, err := c.doRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}

		var page documentList
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("failed to decode %s list: %w", collection, err)
		}

		docs = append(docs, page.Documents...)
		if page.NextPageToken == "" {
			return docs, nil
		}
		pageToken = page.NextPageToken
	}
}

// createDocument creates a document with a caller-chosen ID.
func (c *Client) createDocument(ctx context.Context, userID, collection, docID string, fields map[string]value) (*document, error) {
	path := fmt.Sprintf("%s?documentId=%s", c.collectionPath(userID, collection), url.QueryEscape(docID))
	body, err := c.doRequest(ctx, http.MethodPost, path, document{Fields: fields})
	if err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode created document: %w", err)
	}
	return &doc, nil
}

// patchDocument replaces the named fields of an existing document.
func (c *Client) patchDocument(ctx context.Context, userID, collection, docID string, fields map[string]value) (*document, error) {
	q := url.Values{}
	for name := range fields {
		q.Add("updateMask.fieldPaths", name)
	}
	q.Set("currentDocument.exists", "true")
	path := fmt.Sprintf("%s/%s?%s",
		c.collectionPath(userID, collection), url.PathEscape(docID), q.Encode())

	body, err := c.doRequest(ctx, http.MethodPatch, path, document{Fields: fields})
	if err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode patched document: %w", err)
	}
	return &doc, nil
}

// deleteDocument removes a document, failing if it does not exist.
func (c *Client) deleteDocument(ctx context.Context, userID, collection, docID string) error {
	path := fmt.Sprintf("%s/%s?currentDocument.exists=true",
		c.collectionPath(userID, collection), url.PathEscape(docID))
	_, err := c.doRequest(ctx, http.MethodDelete, path, nil)
	return err
}
