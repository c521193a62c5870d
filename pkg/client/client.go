// Package client talks to a running schemarun inspector.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/schemarun/internal/auth"
	"github.com/loykin/schemarun/internal/httpc"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

// Config selects the inspector endpoint and how to authenticate. Token wins
// over OAuth2 when both are set.
type Config struct {
	BaseURL string                       `mapstructure:"base_url" yaml:"base_url"`
	Token   string                       `mapstructure:"token" yaml:"token"`
	OAuth2  auth.ClientCredentialsConfig `mapstructure:"oauth2" yaml:"oauth2"`
	HTTP    httpc.Options                `mapstructure:"http" yaml:"http"`
}

// Column is one column as reported by the inspector.
type Column struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string
	Extra   string
}

// TenantCount is a per-database row count.
type TenantCount struct {
	Database string
	Rows     int64
	Error    string
}

// Run is one run history entry.
type Run struct {
	ID       int64
	Script   string
	Checksum string
	Kind     string
	Success  bool
	Error    string
	RanAt    string
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inspector returned %d: %s", e.Status, e.Message)
}

// Client is a thin wrapper over a resty client.
type Client struct {
	rc     *resty.Client
	static string
	ts     oauth2.TokenSource
}

// New builds a client for cfg.BaseURL.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("client: base_url is required")
	}
	c := &Client{
		rc:     httpc.New(cfg.HTTP).SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")),
		static: strings.TrimSpace(cfg.Token),
	}
	if c.static == "" && cfg.OAuth2.Enabled() {
		ts, err := cfg.OAuth2.TokenSource(ctx)
		if err != nil {
			return nil, err
		}
		c.ts = ts
	}
	return c, nil
}

func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	r := c.rc.R().SetContext(ctx).SetHeader("Accept", "application/json")
	switch {
	case c.static != "":
		r.SetAuthToken(c.static)
	case c.ts != nil:
		tok, err := auth.AccessToken(c.ts)
		if err != nil {
			return nil, fmt.Errorf("client: acquire token: %w", err)
		}
		r.SetAuthToken(tok)
	}
	return r, nil
}

func (c *Client) get(ctx context.Context, path string, query map[string][]string) (gjson.Result, error) {
	r, err := c.request(ctx)
	if err != nil {
		return gjson.Result{}, err
	}
	if len(query) > 0 {
		r.SetQueryParamsFromValues(query)
	}
	resp, err := r.Get(path)
	if err != nil {
		return gjson.Result{}, err
	}
	body := resp.Body()
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		msg := gjson.GetBytes(body, "error").String()
		if msg == "" {
			msg = gjson.GetBytes(body, "message").String()
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		return gjson.Result{}, &StatusError{Status: resp.StatusCode(), Message: msg}
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("client: invalid JSON from %s", path)
	}
	return gjson.ParseBytes(body), nil
}

// Health returns the reported status, driver and database.
func (c *Client) Health(ctx context.Context) (status, driver, database string, err error) {
	res, err := c.get(ctx, "/healthz", nil)
	if err != nil {
		return "", "", "", err
	}
	return res.Get("status").String(), res.Get("driver").String(), res.Get("database").String(), nil
}

// Columns lists the columns of table, optionally limited to fields.
func (c *Client) Columns(ctx context.Context, table string, fields ...string) ([]Column, error) {
	var q map[string][]string
	if len(fields) > 0 {
		q = map[string][]string{"field": fields}
	}
	res, err := c.get(ctx, "/api/columns/"+table, q)
	if err != nil {
		return nil, err
	}
	out := []Column{}
	res.ForEach(func(_, v gjson.Result) bool {
		col := Column{
			Field: v.Get("Field").String(),
			Type:  v.Get("Type").String(),
			Null:  v.Get("Null").String(),
			Key:   v.Get("Key").String(),
			Extra: v.Get("Extra").String(),
		}
		if d := v.Get("Default"); d.Exists() && d.Type != gjson.Null {
			s := d.String()
			col.Default = &s
		}
		out = append(out, col)
		return true
	})
	return out, nil
}

// Tenants lists tenant databases; with countTable set it also returns row
// counts of that table per database.
func (c *Client) Tenants(ctx context.Context, countTable string) ([]string, []TenantCount, error) {
	var q map[string][]string
	if countTable != "" {
		q = map[string][]string{"count": {countTable}}
	}
	res, err := c.get(ctx, "/api/tenants", q)
	if err != nil {
		return nil, nil, err
	}
	var names []string
	for _, n := range res.Get("databases").Array() {
		names = append(names, n.String())
	}
	var counts []TenantCount
	for _, v := range res.Get("counts").Array() {
		counts = append(counts, TenantCount{
			Database: v.Get("database").String(),
			Rows:     v.Get("rows").Int(),
			Error:    v.Get("error").String(),
		})
	}
	return names, counts, nil
}

// History returns up to limit recent runs (0 uses the server default).
func (c *Client) History(ctx context.Context, limit int) ([]Run, error) {
	var q map[string][]string
	if limit > 0 {
		q = map[string][]string{"limit": {fmt.Sprint(limit)}}
	}
	res, err := c.get(ctx, "/api/history", q)
	if err != nil {
		return nil, err
	}
	var out []Run
	for _, v := range res.Get("runs").Array() {
		out = append(out, Run{
			ID:       v.Get("id").Int(),
			Script:   v.Get("script").String(),
			Checksum: v.Get("checksum").String(),
			Kind:     v.Get("kind").String(),
			Success:  v.Get("success").Bool(),
			Error:    v.Get("error").String(),
			RanAt:    v.Get("ran_at").String(),
		})
	}
	return out, nil
}
