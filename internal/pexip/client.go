package pexip

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pexipmon/internal/util"
)

const apiRoot = "/api/admin/"

// Client 抽象管理节点 REST API。
type Client interface {
	// Fetch 拉取一个分页资源的全部记录。
	Fetch(ctx context.Context, path string, query url.Values) (Collection, error)
	// Command 以扁平 key-value 作为请求体发送控制命令。
	Command(ctx context.Context, path string, body map[string]string) error
}

// StatusError 表示管理节点返回了非 2xx 状态码。
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("管理节点 %s %s 返回状态码 %d", e.Method, e.Path, e.Code)
}

// HTTPConfig 配置 HTTP 客户端。
type HTTPConfig struct {
	BaseURL            string
	Username           string
	Password           string
	PageSize           int
	Timeout            time.Duration
	InsecureSkipVerify bool
	RetryAttempts      int
	RetryBackoff       time.Duration
	CustomClient       *http.Client
}

// HTTPClient 实现 Client，通过 HTTPS 与管理节点通信。
type HTTPClient struct {
	base       *url.URL
	username   string
	password   string
	pageSize   int
	attempts   int
	backoff    time.Duration
	httpClient *http.Client
}

// NewHTTPClient 根据配置创建管理节点 HTTP 客户端。
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("pexip base url 不能为空")
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("解析 pexip base url 失败: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("pexip base url 缺少 scheme 或 host: %s", raw)
	}
	client := cfg.CustomClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.InsecureSkipVerify {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		}
		client = &http.Client{Timeout: timeout, Transport: transport}
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	return &HTTPClient{
		base:       base,
		username:   cfg.Username,
		password:   cfg.Password,
		pageSize:   pageSize,
		attempts:   cfg.RetryAttempts,
		backoff:    backoff,
		httpClient: client,
	}, nil
}

// Fetch 依次请求每一页并合并 objects，直到 meta.next 为空。
func (c *HTTPClient) Fetch(ctx context.Context, path string, query url.Values) (Collection, error) {
	if c == nil {
		return Collection{}, errors.New("pexip http client 未初始化")
	}
	q := url.Values{}
	for k, v := range query {
		q[k] = append([]string(nil), v...)
	}
	if q.Get("limit") == "" {
		q.Set("limit", strconv.Itoa(c.pageSize))
	}
	next := c.resolve(path)
	next.RawQuery = q.Encode()

	var out Collection
	for next != nil {
		var page Envelope
		target := next.String()
		err := util.Retry(ctx, c.attempts, c.backoff, func() error {
			return c.getJSON(ctx, target, &page)
		})
		if err != nil {
			return Collection{}, err
		}
		out.Objects = append(out.Objects, page.Objects...)
		out.Total = page.Meta.TotalCount
		if page.Meta.Next == "" || len(page.Objects) == 0 {
			break
		}
		ref, err := url.Parse(page.Meta.Next)
		if err != nil {
			return Collection{}, fmt.Errorf("解析分页地址失败: %w", err)
		}
		next = next.ResolveReference(ref)
	}
	if out.Total == 0 {
		out.Total = len(out.Objects)
	}
	return out, nil
}

// Command 发送 POST 命令，不做重试。
func (c *HTTPClient) Command(ctx context.Context, path string, body map[string]string) error {
	if c == nil {
		return errors.New("pexip http client 未初始化")
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("编码命令请求失败: %w", err)
	}
	target := c.resolve(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("构建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求管理节点失败: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Method: http.MethodPost, Path: target.Path, Code: resp.StatusCode}
	}
	return nil
}

func (c *HTTPClient) getJSON(ctx context.Context, target string, out *Envelope) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return util.Permanent(fmt.Errorf("构建请求失败: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求管理节点失败: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("读取管理节点响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{Method: http.MethodGet, Path: req.URL.Path, Code: resp.StatusCode}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return util.Permanent(statusErr)
		}
		return statusErr
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	*out = Envelope{}
	if err := dec.Decode(out); err != nil {
		return util.Permanent(fmt.Errorf("解析管理节点响应失败: %w", err))
	}
	return nil
}

func (c *HTTPClient) resolve(path string) *url.URL {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + apiRoot + strings.TrimLeft(path, "/")
	return &u
}

func (c *HTTPClient) authorize(req *http.Request) {
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
}
