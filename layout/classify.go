package layout

import (
	"strings"
	"unicode/utf8"

	"github.com/ByLCY/docflow/document"
)

// DefaultHeadingLimit 为粗体短段落被视为标题的长度上限（字符数，不含）。
const DefaultHeadingLimit = 30

// Classification 是段落样式分类结果。
type Classification struct {
	Heading bool
}

// Classifier 是可替换的段落分类策略，必须是无副作用的纯函数。
type Classifier func(p document.Paragraph) Classification

// BoldShort 实现启发式：所有带文字的 run 均为粗体，且段落文本长度小于 limit 时视为标题。
func BoldShort(limit int) Classifier {
	return func(p document.Paragraph) Classification {
		hasText := false
		for _, r := range p.Runs {
			if strings.TrimSpace(r.Text) == "" {
				continue
			}
			if !r.Bold {
				return Classification{}
			}
			hasText = true
		}
		if !hasText {
			return Classification{}
		}
		n := utf8.RuneCountInString(strings.TrimSpace(p.Text()))
		return Classification{Heading: n < limit}
	}
}

// NamedStyle 将样式名以 heading/title 开头的段落视为标题（如 DOCX 的 Heading1）。
func NamedStyle() Classifier {
	return func(p document.Paragraph) Classification {
		s := strings.ToLower(strings.TrimSpace(p.Style))
		return Classification{Heading: strings.HasPrefix(s, "heading") || s == "title"}
	}
}

// AnyOf 组合多个分类器，任一判定为标题即为标题。
func AnyOf(cs ...Classifier) Classifier {
	return func(p document.Paragraph) Classification {
		for _, c := range cs {
			if c != nil && c(p).Heading {
				return Classification{Heading: true}
			}
		}
		return Classification{}
	}
}
