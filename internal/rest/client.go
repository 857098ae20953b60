package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cwrk-planet/news-chat/internal/errs"
	"github.com/cwrk-planet/news-chat/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/cwrk-planet/news-chat/internal/rest"

// ответы бекенда больше maxBody не читаем
const maxBody = 4 << 20

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client — REST-коллабораторы: auth, users, articles, chat rooms.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	log     *slog.Logger
	tracer  trace.Tracer
}

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("rest client: empty base url")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("rest client: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("rest client: unsupported scheme %q", base.Scheme)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.L()
	}

	return &Client{
		base:    base,
		http:    hc,
		timeout: opts.Timeout,
		log:     log,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

type call struct {
	method string
	path   []string // сегменты, экранируются по одному
	query  url.Values
	token  string
	in     any
	out    any
}

func (c *Client) endpoint(segments []string, query url.Values) string {
	u := *c.base
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u.RawPath = c.base.EscapedPath() + "/" + strings.Join(escaped, "/")
	u.Path, _ = url.PathUnescape(u.RawPath)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	return u.String()
}

func (c *Client) do(ctx context.Context, cl call) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.endpoint(cl.path, cl.query)
	ctx, span := c.tracer.Start(ctx, "rest "+cl.method+" /"+strings.Join(cl.path, "/"),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", cl.method),
			attribute.String("url.full", target),
		),
	)
	defer span.End()

	var body io.Reader
	if cl.in != nil {
		b, err := json.Marshal(cl.in)
		if err != nil {
			return fmt.Errorf("rest: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return fmt.Errorf("rest: build request: %w", err)
	}
	reqID := requestID(ctx)
	req.Header.Set(HeaderRequestID, reqID)
	req.Header.Set("Accept", "application/json")
	if cl.in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		c.log.WarnContext(ctx, "rest.do failed",
			logger.Args(ctx, "req_id", reqID, "method", cl.method, "url", target, "err", err)...)
		return fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", errs.ErrUpstream, err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	c.log.DebugContext(ctx, "rest request",
		logger.Args(ctx,
			"req_id", reqID,
			"method", cl.method,
			"url", target,
			"status", resp.StatusCode,
			"bytes", len(data),
			"duration", time.Since(start).String(),
		)...)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(resp.StatusCode, data)
		span.SetStatus(codes.Error, apiErr.Error())
		return apiErr
	}
	if cl.out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, cl.out); err != nil {
		return fmt.Errorf("%w: decode response: %v", errs.ErrUpstream, err)
	}

	return nil
}
