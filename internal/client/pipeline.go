package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rryowa/fitness_session/internal/storage"
)

// RefreshPath is the token refresh endpoint relative to the base URL.
const RefreshPath = "/token/refresh/"

// Doer is the subset of *http.Client the pipeline needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Pipeline executes requests against the API with the stored access token
// and recovers from a 401 with at most one refresh and one retry.
type Pipeline struct {
	baseURL string
	http    Doer
	store   storage.CredentialStore
	log     *zap.SugaredLogger
	metrics *Metrics

	coalesce bool
	inflight singleflight.Group
}

type Option func(*Pipeline)

func WithHTTPClient(d Doer) Option {
	return func(p *Pipeline) { p.http = d }
}

func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithCoalescedRefresh makes concurrent callers that hit a 401 with the same
// refresh token share a single refresh call. Without it every caller refreshes
// on its own.
func WithCoalescedRefresh() Option {
	return func(p *Pipeline) { p.coalesce = true }
}

func NewPipeline(baseURL string, store storage.CredentialStore, log *zap.SugaredLogger, opts ...Option) *Pipeline {
	p := &Pipeline{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		store:   store,
		log:     log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Execute sends req with the current access token. Any status other than 401
// is returned as is. On 401 the access token is refreshed once and req is
// sent once more; the second response is returned whatever its status.
func (p *Pipeline) Execute(ctx context.Context, req Request) (*Response, error) {
	access, ok, err := p.store.Get(ctx, storage.AccessTokenKey)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", storage.ErrStorageFailure, storage.AccessTokenKey, err)
	}

	first := req
	if ok {
		first = req.WithAuthorization(access)
	}
	resp, err := p.send(ctx, first)
	if err != nil {
		p.metrics.request(outcomeTransport)
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		p.metrics.request(outcomePassed)
		return resp, nil
	}

	p.log.Debugw("access token rejected, refreshing", "request", req.String())
	fresh, err := p.refresh(ctx)
	if err != nil {
		p.metrics.request(outcomeExpired)
		return nil, err
	}

	resp, err = p.send(ctx, req.WithAuthorization(fresh))
	if err != nil {
		p.metrics.request(outcomeTransport)
		return nil, err
	}
	p.metrics.request(outcomeRetried)
	return resp, nil
}

// Send issues req without credentials and without refresh handling.
func (p *Pipeline) Send(ctx context.Context, req Request) (*Response, error) {
	return p.send(ctx, req)
}

func (p *Pipeline) send(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, p.baseURL+req.Path, req.bodyReader())
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", req, err)
	}
	for k, vv := range req.Header {
		for _, v := range vv {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set(headerAccept, contentTypeJSON)
	if httpReq.Header.Get(headerRequestID) == "" {
		httpReq.Header.Set(headerRequestID, uuid.NewString())
	}

	httpResp, err := p.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTransport, req, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %w", ErrTransport, req, err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}, nil
}
