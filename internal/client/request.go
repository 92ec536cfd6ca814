package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	headerRequestID     = "X-Request-Id"

	contentTypeJSON = "application/json"
)

// Request describes an outbound call before authorization is attached.
// Treat it as a value: WithAuthorization returns a copy.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// NewRequest builds a Request with a JSON body. A nil payload sends no body.
func NewRequest(method, path string, payload any) (Request, error) {
	req := Request{
		Method: method,
		Path:   path,
		Header: make(http.Header),
	}
	if payload == nil {
		return req, nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Request{}, fmt.Errorf("encode %s %s body: %w", method, path, err)
	}
	req.Body = body
	req.Header.Set(headerContentType, contentTypeJSON)

	return req, nil
}

func (r Request) WithAuthorization(token string) Request {
	out := r
	out.Header = r.Header.Clone()
	if out.Header == nil {
		out.Header = make(http.Header)
	}
	out.Header.Set(headerAuthorization, "Bearer "+token)
	return out
}

func (r Request) String() string {
	return r.Method + " " + r.Path
}

func (r Request) bodyReader() io.Reader {
	if len(r.Body) == 0 {
		return http.NoBody
	}
	return bytes.NewReader(r.Body)
}

// Response is a fully buffered HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
