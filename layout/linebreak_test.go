package layout

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func lineTexts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

func TestBreakFitsOnOneLine(t *testing.T) {
	lines, err := BreakLines("Hello world", mono, 40, 40)
	if err != nil {
		t.Fatalf("断行失败: %v", err)
	}
	if diff := cmp.Diff([]string{"Hello world"}, lineTexts(lines)); diff != "" {
		t.Fatalf("行不符 (-want +got):\n%s", diff)
	}
}

func TestBreakAtSpaces(t *testing.T) {
	lines, err := BreakLines("the quick brown fox jumps", mono, 10, 10)
	if err != nil {
		t.Fatalf("断行失败: %v", err)
	}
	want := []Line{
		{Text: "the quick", Sep: " ", Width: 9},
		{Text: "brown fox", Sep: " ", Width: 9},
		{Text: "jumps", Width: 5},
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Fatalf("行不符 (-want +got):\n%s", diff)
	}
}

func TestBreakAfterHyphen(t *testing.T) {
	lines, err := BreakLines("well-known", mono, 6, 6)
	if err != nil {
		t.Fatalf("断行失败: %v", err)
	}
	if diff := cmp.Diff([]string{"well-", "known"}, lineTexts(lines)); diff != "" {
		t.Fatalf("行不符 (-want +got):\n%s", diff)
	}
}

// 60 个字符的长词在 20 字符栏宽下逐字符拆为 3 行，不插入连字符。
func TestCharFallback(t *testing.T) {
	word := strings.Repeat("x", 60)
	lines, err := BreakLines(word, mono, 20, 20)
	if err != nil {
		t.Fatalf("断行失败: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("期望 3 行，实际 %d", len(lines))
	}
	for i, l := range lines {
		if l.Text != strings.Repeat("x", 20) || !l.Forced {
			t.Fatalf("第 %d 行不符: %+v", i, l)
		}
		if strings.Contains(l.Text, "-") {
			t.Fatalf("强制拆分不应插入连字符: %q", l.Text)
		}
	}
}

func TestNarrowFirstLineWraps(t *testing.T) {
	lines, err := BreakLines("world wide", mono, 2, 10)
	if err != nil {
		t.Fatalf("断行失败: %v", err)
	}
	// 首行剩余宽度放不下任何词时先产出空行，再按整栏宽度排
	if diff := cmp.Diff([]string{"", "world wide"}, lineTexts(lines)); diff != "" {
		t.Fatalf("行不符 (-want +got):\n%s", diff)
	}
}

func TestOverflowError(t *testing.T) {
	_, err := BreakLines("ab", mono, 0.5, 0.5)
	var overflow *LayoutOverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("期望 LayoutOverflowError，实际 %v", err)
	}
	if overflow.Char != 'a' {
		t.Fatalf("溢出字符期望 'a'，实际 %q", overflow.Char)
	}
}

// 任意输入下：每行宽度不超过可用宽度，且 Text+Sep 依次拼接还原原文。
func TestBreakProperties(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"a",
		"  leading and trailing  ",
		"many     spaces between words",
		"self-contained well-formed co-op",
		strings.Repeat("lorem ipsum dolor ", 12),
		"supercalifragilisticexpialidocious is long",
		"中文没有空格也可以按字符拆分成多行内容",
	}
	for _, in := range inputs {
		for _, width := range []float64{1, 3, 7, 12, 40} {
			for _, first := range []float64{0, width / 2, width} {
				lines, err := BreakLines(in, mono, first, width)
				if err != nil {
					t.Fatalf("%q width=%g first=%g: %v", in, width, first, err)
				}
				var b strings.Builder
				for i, l := range lines {
					limit := width
					if i == 0 {
						limit = first
					}
					if l.Width > limit+widthEpsilon {
						t.Fatalf("%q width=%g: 第 %d 行 %q 宽 %g 超出 %g", in, width, i, l.Text, l.Width, limit)
					}
					b.WriteString(l.Text)
					b.WriteString(l.Sep)
				}
				if b.String() != in {
					t.Fatalf("%q width=%g first=%g: 拼接结果 %q 与原文不一致", in, width, first, b.String())
				}
			}
		}
	}
}

func TestLineBreakerReset(t *testing.T) {
	b := NewLineBreaker("one two three", mono, 7, 7)
	var first []string
	for b.Next() {
		first = append(first, b.Line().Text)
	}
	b.Reset()
	var second []string
	for b.Next() {
		second = append(second, b.Line().Text)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("Reset 后结果不同 (-first +second):\n%s", diff)
	}
}
