package report

import (
	"sort"
	"strings"

	"pexipmon/internal/domain"
)

// Placeholder 填充行中缺失的列。
const Placeholder = "-"

// File 是渲染后的报表文件。
type File struct {
	Name string
	Body string
}

// Render 把报表渲染成逗号分隔文本。表头取 key 最多的那一行（并列取第一行），
// 不是所有行的并集；值不做转义，调用方需保证值里没有逗号。
func Render(reports []domain.ReportWrapper) []File {
	out := make([]File, 0, len(reports))
	for _, r := range reports {
		out = append(out, File{Name: r.Name + ".csv", Body: renderRows(r.Rows)})
	}
	return out
}

// RenderSingle 把单个 map 渲染成两行：key 行和 value 行。
func RenderSingle(name string, row map[string]string) File {
	keys := sortedKeys(row)
	values := make([]string, 0, len(keys))
	for _, k := range keys {
		values = append(values, row[k])
	}
	return File{
		Name: name + ".csv",
		Body: strings.Join(keys, ",") + "\n" + strings.Join(values, ","),
	}
}

// Header 返回报表的表头。
func Header(rows []map[string]string) []string {
	widest := -1
	for i, row := range rows {
		if widest < 0 || len(row) > len(rows[widest]) {
			widest = i
		}
	}
	if widest < 0 {
		return nil
	}
	return sortedKeys(rows[widest])
}

func renderRows(rows []map[string]string) string {
	header := Header(rows)
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(header, ","))
	for _, row := range rows {
		cells := make([]string, 0, len(header))
		for _, k := range header {
			v, ok := row[k]
			if !ok {
				v = Placeholder
			}
			cells = append(cells, v)
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return strings.Join(lines, "\n")
}

func sortedKeys(row map[string]string) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SafeName 把报表名里的冒号替换成短横线。
func SafeName(name string) string {
	return strings.ReplaceAll(name, ":", "-")
}
