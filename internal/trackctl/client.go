package trackctl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"trackd/pkg/types"
)

// Client is a thin HTTP client for the trackd inspection API.
type Client struct {
	base string
	hc   *http.Client
}

// NewClient builds a client against the given base URL, e.g.
// http://127.0.0.1:8080.
func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) get(path string, dst any) error {
	resp, err := c.hc.Get(c.base + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, dst)
}

func (c *Client) send(method, path string, body, dst any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(method, c.base+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, dst)
}

func decodeResponse(resp *http.Response, dst any) error {
	if resp.StatusCode != http.StatusOK {
		var apiErr types.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (status %d)", apiErr.Error, apiErr.Code)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if dst == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

// Trackables fetches all attribute snapshots.
func (c *Client) Trackables() (map[string]map[string]any, error) {
	var out types.TrackablesResponse
	if err := c.get("/trackables", &out); err != nil {
		return nil, err
	}
	return out.Trackables, nil
}

// Trackable fetches one trackable's full state.
func (c *Client) Trackable(name string) (types.TrackableState, error) {
	var out types.TrackableState
	err := c.get("/trackables/"+name, &out)
	return out, err
}

// Get reads one attribute.
func (c *Client) Get(name, key string) (any, error) {
	var out types.AttributeResponse
	if err := c.get("/trackables/"+name+"/attrs/"+key, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

// Set writes one attribute.
func (c *Client) Set(name, key string, value any, silent bool) (any, error) {
	var out types.AttributeResponse
	err := c.send(http.MethodPut, "/trackables/"+name+"/attrs/"+key,
		types.WriteRequest{Value: value, Silent: silent}, &out)
	if err != nil {
		return nil, err
	}
	return out.Value, nil
}

// Call invokes a tracked method.
func (c *Client) Call(name, method string, args []any) (types.InvokeResponse, error) {
	var out types.InvokeResponse
	err := c.send(http.MethodPost, "/trackables/"+name+"/methods/"+method,
		types.InvokeRequest{Args: args}, &out)
	return out, err
}

// Methods fetches all method invocation counts.
func (c *Client) Methods() (map[string]map[string]int, error) {
	var out types.MethodsResponse
	if err := c.get("/methods", &out); err != nil {
		return nil, err
	}
	return out.Methods, nil
}

// parseValue turns a CLI argument into a typed value: JSON literals (numbers,
// booleans, null, quoted strings) are decoded, anything else stays a string.
func parseValue(arg string) any {
	var v any
	if err := json.Unmarshal([]byte(arg), &v); err == nil {
		return v
	}
	return arg
}
