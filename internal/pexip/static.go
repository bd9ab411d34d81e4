package pexip

import (
	"context"
	"fmt"
	"net/url"
	"sync"
)

// IssuedCommand 记录 StaticClient 收到的命令。
type IssuedCommand struct {
	Path string
	Body map[string]string
}

// StaticClient 用于测试或离线演示，直接返回内存中的集合。
type StaticClient struct {
	mu          sync.Mutex
	Collections map[string]Collection
	Errors      map[string]error
	Queries     map[string][]url.Values
	Commands    []IssuedCommand
	CommandErr  error
}

// NewStaticClient 创建一个空的 StaticClient。
func NewStaticClient() *StaticClient {
	return &StaticClient{
		Collections: make(map[string]Collection),
		Errors:      make(map[string]error),
		Queries:     make(map[string][]url.Values),
	}
}

// Set 设置某个路径返回的记录。
func (c *StaticClient) Set(path string, records ...Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Collections[path] = Collection{Objects: records, Total: len(records)}
}

// Fail 让某个路径返回错误。
func (c *StaticClient) Fail(path string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Errors[path] = err
}

// Fetch 返回预设集合。未设置的路径返回空集合。
func (c *StaticClient) Fetch(_ context.Context, path string, query url.Values) (Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Queries[path] = append(c.Queries[path], query)
	if err, ok := c.Errors[path]; ok && err != nil {
		return Collection{}, err
	}
	return c.Collections[path], nil
}

// Command 记录命令。
func (c *StaticClient) Command(_ context.Context, path string, body map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.CommandErr != nil {
		return c.CommandErr
	}
	copied := make(map[string]string, len(body))
	for k, v := range body {
		copied[k] = v
	}
	c.Commands = append(c.Commands, IssuedCommand{Path: path, Body: copied})
	return nil
}

// LastQuery 返回某个路径最近一次请求的查询参数。
func (c *StaticClient) LastQuery(path string) (url.Values, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	qs := c.Queries[path]
	if len(qs) == 0 {
		return nil, fmt.Errorf("路径 %s 未被请求", path)
	}
	return qs[len(qs)-1], nil
}
