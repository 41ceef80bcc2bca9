package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ai-planner/backend/internal/recovery"
)

// DefaultRTDBTimeout bounds each request when the caller's context has no earlier deadline.
const DefaultRTDBTimeout = 10 * time.Second

// RTDBStore talks to a Firebase Realtime Database over its REST API: GET <base>/<path>.json reads a
// subtree, PATCH merges, PUT replaces. AuthToken, when set, is sent as the auth query parameter.
type RTDBStore struct {
	BaseURL    string
	AuthToken  string
	HTTPClient *http.Client
}

// NewRTDBStore returns a store for the database at baseURL.
func NewRTDBStore(baseURL, authToken string) *RTDBStore {
	return &RTDBStore{
		BaseURL:    strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		AuthToken:  authToken,
		HTTPClient: &http.Client{Timeout: DefaultRTDBTimeout},
	}
}

// FetchAll reads the whole collection. The snapshot keeps the key order of the response body.
func (s *RTDBStore) FetchAll(ctx context.Context, collection string) (recovery.Directory, error) {
	body, err := s.do(ctx, http.MethodGet, cleanPath(collection), nil, false)
	if err != nil {
		return nil, err
	}
	dir, err := decodeSnapshot(body)
	if err != nil {
		return nil, fmt.Errorf("rtdb: decode %s: %w", collection, err)
	}
	return dir, nil
}

// Update PATCHes fields into collection/id. The REST API creates the node if it does not exist.
func (s *RTDBStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	return s.write(ctx, http.MethodPatch, collection, id, fields)
}

// Put replaces collection/id with fields.
func (s *RTDBStore) Put(ctx context.Context, collection, id string, fields map[string]any) error {
	return s.write(ctx, http.MethodPut, collection, id, fields)
}

func (s *RTDBStore) write(ctx context.Context, method, collection, id string, fields map[string]any) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	payload, err := json.Marshal(copyFields(fields))
	if err != nil {
		return err
	}
	_, err = s.do(ctx, method, cleanPath(collection)+"/"+url.PathEscape(id), payload, false)
	return err
}

// Ping reads the database root with shallow=true, which returns only the top-level keys.
func (s *RTDBStore) Ping(ctx context.Context) error {
	_, err := s.do(ctx, http.MethodGet, "", nil, true)
	return err
}

func (s *RTDBStore) endpoint(path string, shallow bool) (string, error) {
	if s.BaseURL == "" {
		return "", fmt.Errorf("rtdb: database URL is not configured")
	}
	u, err := url.Parse(s.BaseURL + "/" + path + ".json")
	if err != nil {
		return "", fmt.Errorf("rtdb: %w", err)
	}
	q := u.Query()
	if s.AuthToken != "" {
		q.Set("auth", s.AuthToken)
	}
	if shallow {
		q.Set("shallow", "true")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *RTDBStore) do(ctx context.Context, method, path string, payload []byte, shallow bool) ([]byte, error) {
	endpoint, err := s.endpoint(path, shallow)
	if err != nil {
		return nil, err
	}
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		// url.Error carries the full URL, auth token included.
		var ue *url.Error
		if errors.As(err, &ue) {
			return nil, fmt.Errorf("rtdb: %s %s: %w", method, path, ue.Err)
		}
		return nil, fmt.Errorf("rtdb: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rtdb: read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rtdb: %s %s returned %s", method, path, resp.Status)
	}
	return data, nil
}

// decodeSnapshot turns a collection body into an ordered Directory. An object yields one record per
// key in body order; an array (numeric keys) yields records "0", "1", ... skipping nulls; null or an
// empty body yields an empty directory. Children that are not objects become records without fields.
func decodeSnapshot(body []byte) (recovery.Directory, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return recovery.Directory{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return recovery.Directory{}, nil
	}
	delim, ok := tok.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return nil, errors.New("collection is not an object")
	}
	dir := recovery.Directory{}
	for i := 0; dec.More(); i++ {
		id := strconv.Itoa(i)
		if delim == '{' {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			id, _ = keyTok.(string)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		if delim == '[' && string(raw) == "null" {
			continue
		}
		fields, err := decodeFields(raw)
		if err != nil {
			fields = nil
		}
		dir = append(dir, recovery.Record{ID: id, Fields: fields})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return dir, nil
}
