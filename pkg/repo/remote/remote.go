package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dwalast/drugguide/internal/config"
	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/repo"
	"github.com/go-resty/resty/v2"
)

type Option func(*Impl)

func WithAuthToken(token string) Option {
	return func(i *Impl) {
		i.authToken = token
	}
}

func WithTimeout(d time.Duration) Option {
	return func(i *Impl) {
		if d > 0 {
			i.client.SetTimeout(d)
		}
	}
}

// Impl talks to a realtime database over its REST surface: every node is
// addressed as "<path>.json".
type Impl struct {
	client    *resty.Client
	authToken string
}

func New(opts ...Option) *Impl {
	conf := config.Global().Remote
	opts = append([]Option{WithAuthToken(conf.AuthToken), WithTimeout(conf.Timeout)}, opts...)
	return NewWithAddr(conf.Addr, opts...)
}

func NewWithAddr(addr string, opts ...Option) *Impl {
	i := &Impl{
		client: resty.New().
			EnableTrace().
			SetBaseURL(strings.TrimRight(addr, "/")),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.client.
		SetHeader("Cache-Control", "no-cache").
		SetHeader("Content-Type", "application/json")
	return i
}

var _ repo.RemoteStore = (*Impl)(nil)

func nodeURL(path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return "/.json"
	}
	return "/" + path + ".json"
}

func (i *Impl) request(ctx context.Context, query *repo.Query) *resty.Request {
	req := i.client.R().SetContext(ctx)
	if i.authToken != "" {
		req.SetQueryParam("auth", i.authToken)
	}
	if query != nil {
		if query.OrderBy != "" {
			req.SetQueryParam("orderBy", strconv.Quote(query.OrderBy))
		}
		if query.EqualTo != "" {
			req.SetQueryParam("equalTo", strconv.Quote(query.EqualTo))
		}
		if query.Shallow {
			req.SetQueryParam("shallow", "true")
		}
	}
	return req
}

func (i *Impl) do(ctx context.Context, method, path string, query *repo.Query, body any) ([]byte, error) {
	req := i.request(ctx, query)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, nodeURL(path))
	if err != nil {
		logger.Errorf(ctx, "remote %s %s err: %+v", method, path, err)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, code.RemoteTimeout.WithErr(err)
		}
		return nil, code.RPCHttpErr.WithErr(err)
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		logger.Warnf(ctx, "remote %s %s http code: %d", method, path, resp.StatusCode())
		return nil, &repo.StatusError{Method: method, Path: path, Status: resp.StatusCode()}
	}
	return resp.Body(), nil
}

// Get decodes the node at path into out. A missing node leaves out untouched.
func (i *Impl) Get(ctx context.Context, path string, query *repo.Query, out any) error {
	body, err := i.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		logger.Errorf(ctx, "remote decode %s err: %+v", path, err)
		return code.RemoteDecodeErr.WithErr(err)
	}
	return nil
}

func (i *Impl) Put(ctx context.Context, path string, body any) error {
	_, err := i.do(ctx, http.MethodPut, path, nil, body)
	return err
}

// Post appends body under path and returns the generated child key.
func (i *Impl) Post(ctx context.Context, path string, body any) (string, error) {
	raw, err := i.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return "", err
	}
	result := &struct {
		Name string `json:"name"`
	}{}
	if err := json.Unmarshal(raw, result); err != nil {
		logger.Errorf(ctx, "remote decode post %s err: %+v", path, err)
		return "", code.RemoteDecodeErr.WithErr(err)
	}
	return result.Name, nil
}

func (i *Impl) Patch(ctx context.Context, path string, body any) error {
	_, err := i.do(ctx, http.MethodPatch, path, nil, body)
	return err
}

func (i *Impl) Delete(ctx context.Context, path string) error {
	_, err := i.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// Ping reads the root with shallow=true so only top-level keys travel.
func (i *Impl) Ping(ctx context.Context) error {
	var keys map[string]any
	return i.Get(ctx, "", &repo.Query{Shallow: true}, &keys)
}
