package cypher

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"
	"text/template"
)

//go:embed *.cql
var files embed.FS

var (
	mu       sync.Mutex
	parsed   = map[string]*template.Template{}
	rendered = map[string]string{}
)

// Render 渲染 cql 模板，同一模板和参数只渲染一次。
func Render(name string, data map[string]string) (string, error) {
	key := cacheKey(name, data)
	mu.Lock()
	defer mu.Unlock()
	if q, ok := rendered[key]; ok {
		return q, nil
	}
	tmpl, ok := parsed[name]
	if !ok {
		t, err := template.New(name).Option("missingkey=error").ParseFS(files, name)
		if err != nil {
			return "", fmt.Errorf("parse template %s failed: %w", name, err)
		}
		parsed[name], tmpl = t, t
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("execute template %s failed: %w", name, err)
	}
	rendered[key] = sb.String()
	return rendered[key], nil
}

// Statements 按分号拆分文件，去掉空语句。
func Statements(name string) ([]string, error) {
	b, err := files.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("load %s failed: %w", name, err)
	}
	var out []string
	for _, raw := range strings.Split(string(b), ";") {
		if q := strings.TrimSpace(raw); q != "" {
			out = append(out, q)
		}
	}
	return out, nil
}

func cacheKey(name string, data map[string]string) string {
	var sb strings.Builder
	sb.WriteString(name)
	for _, k := range sortedKeys(data) {
		sb.WriteString("\x00" + k + "=" + data[k])
	}
	return sb.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
