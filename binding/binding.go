// Package binding 实现 ${path} 占位符插值：把外部数据（JSON/YAML）填入文档的文字与元数据。
package binding

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ByLCY/docflow/document"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Apply 返回替换占位符后的文档副本，原文档不被修改。
// 占位符按 run 独立解析，跨 run 拆开的占位符保持原样。
// 第二个返回值为未能解析的路径（去重、排序），供调用方记录。
func Apply(doc *document.Document, data any) (*document.Document, []string) {
	out := &document.Document{Meta: doc.Meta, Paragraphs: make([]document.Paragraph, len(doc.Paragraphs))}
	if data == nil {
		copy(out.Paragraphs, doc.Paragraphs)
		return out, nil
	}
	missing := map[string]bool{}
	sub := func(s string) string { return interpolate(s, data, missing) }

	out.Meta.Title = sub(doc.Meta.Title)
	out.Meta.Author = sub(doc.Meta.Author)
	out.Meta.Subject = sub(doc.Meta.Subject)
	if len(doc.Meta.Keywords) > 0 {
		out.Meta.Keywords = make([]string, len(doc.Meta.Keywords))
		for i, k := range doc.Meta.Keywords {
			out.Meta.Keywords[i] = sub(k)
		}
	}
	for i, p := range doc.Paragraphs {
		runs := make([]document.Run, len(p.Runs))
		for j, r := range p.Runs {
			r.Text = sub(r.Text)
			runs[j] = r
		}
		p.Runs = runs
		out.Paragraphs[i] = p
	}

	var paths []string
	for p := range missing {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return out, paths
}

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 若 data 为空或路径不存在，则返回原占位符。
func Interpolate(text string, data any) string {
	if data == nil {
		return text
	}
	return interpolate(text, data, nil)
}

func interpolate(text string, data any, missing map[string]bool) string {
	if !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		if path == "" {
			return match
		}
		if val, ok := resolvePath(data, path); ok {
			return format(val)
		}
		if missing != nil {
			missing[path] = true
		}
		return match
	})
}

func format(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		// JSON 数字默认解码为 float64，避免整数被格式化为科学计数法
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// resolvePath 支持 a.b[0].c 形式的路径。
func resolvePath(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes, ok := parseSegment(segment)
		if !ok {
			return nil, false
		}
		if name != "" {
			if current, ok = descendMap(current, name); !ok {
				return nil, false
			}
		}
		for _, idx := range indexes {
			if current, ok = descendArray(current, idx); !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []int, bool) {
	i := strings.IndexByte(segment, '[')
	if i == -1 {
		return segment, nil, true
	}
	name, rest := segment[:i], segment[i:]
	var indexes []int
	for rest != "" {
		end := strings.IndexByte(rest, ']')
		if rest[0] != '[' || end == -1 {
			return "", nil, false
		}
		idx, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, false
		}
		indexes = append(indexes, idx)
		rest = rest[end+1:]
	}
	return name, indexes, true
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
