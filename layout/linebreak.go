package layout

// MeasureFunc 返回文本在某一固定字体下的宽度（mm）。
type MeasureFunc func(s string) float64

const widthEpsilon = 1e-9

// LineBreaker 以贪心方式把一段文本拆成不超过栏宽的行，惰性产出，可通过 Reset 重新开始。
//
// 断点优先级：空格，其次连字符（保留在行尾）。单个无法再分的词宽于整栏时，
// 退化为逐字符拆分，不插入连字符。
type LineBreaker struct {
	text    []rune
	measure MeasureFunc
	first   float64 // 首行可用宽度（例如当前行剩余宽度或扣除项目符号后的宽度）
	full    float64 // 整栏宽度

	pos     int
	started bool
	line    Line
	err     error
}

// NewLineBreaker 创建断行器。firstWidth 仅作用于第一行，此后每行恢复为 fullWidth。
func NewLineBreaker(text string, measure MeasureFunc, firstWidth, fullWidth float64) *LineBreaker {
	if firstWidth > fullWidth {
		firstWidth = fullWidth
	}
	if firstWidth < 0 {
		firstWidth = 0
	}
	return &LineBreaker{
		text:    []rune(text),
		measure: measure,
		first:   firstWidth,
		full:    fullWidth,
	}
}

// Next 计算下一行，没有更多行或出错时返回 false。
func (b *LineBreaker) Next() bool {
	if b.err != nil || b.pos >= len(b.text) {
		return false
	}
	width := b.full
	if !b.started {
		width = b.first
	}
	line, next, err := b.breakAt(b.pos, width)
	if err != nil {
		b.err = err
		return false
	}
	b.started = true
	b.pos = next
	b.line = line
	return true
}

// Line 返回最近一次 Next 产出的行。
func (b *LineBreaker) Line() Line { return b.line }

// Err 返回导致迭代终止的错误。
func (b *LineBreaker) Err() error { return b.err }

// Reset 回到文本开头，可重新迭代。
func (b *LineBreaker) Reset() {
	b.pos = 0
	b.started = false
	b.line = Line{}
	b.err = nil
}

// BreakLines 一次性取出全部行，便于测试与调试输出。
func BreakLines(text string, measure MeasureFunc, firstWidth, fullWidth float64) ([]Line, error) {
	b := NewLineBreaker(text, measure, firstWidth, fullWidth)
	var lines []Line
	for b.Next() {
		lines = append(lines, b.Line())
	}
	return lines, b.Err()
}

func (b *LineBreaker) breakAt(start int, width float64) (Line, int, error) {
	n := len(b.text)
	end := start // 已提交内容的结束位置
	i := start
	for i < n {
		wordEnd, trailEnd := b.segment(i)
		if wordEnd > i && !b.fits(start, wordEnd, width) {
			break
		}
		if wordEnd > i {
			end = wordEnd
		}
		i = trailEnd
	}

	if end > start {
		text := string(b.text[start:end])
		return Line{
			Text:  text,
			Sep:   string(b.text[end:i]),
			Width: b.measure(text),
		}, i, nil
	}

	if i >= n {
		// 只剩空白
		return Line{Sep: string(b.text[start:n])}, n, nil
	}
	// 本行没有提交任何词：首行宽度不足或只有行首空白时先换行，整栏也放不下时逐字符拆分。
	if width < b.full-widthEpsilon || i > start {
		return Line{Sep: string(b.text[start:i])}, i, nil
	}
	k := i
	for k < n && b.fits(start, k+1, width) {
		k++
	}
	if k == i {
		ch := b.text[i]
		return Line{}, start, &LayoutOverflowError{Char: ch, Width: b.measure(string(ch)), Limit: b.full}
	}
	text := string(b.text[start:k])
	return Line{Text: text, Width: b.measure(text), Forced: true}, k, nil
}

func (b *LineBreaker) fits(start, end int, width float64) bool {
	return b.measure(string(b.text[start:end])) <= width+widthEpsilon
}

// segment 返回自 i 起的一个词 [i, wordEnd) 及其后续空白 [wordEnd, trailEnd)。
// 词在空格前结束，或在后接非空白字符的连字符之后结束。
func (b *LineBreaker) segment(i int) (wordEnd, trailEnd int) {
	n := len(b.text)
	j := i
	for j < n && b.text[j] != ' ' {
		j++
		if b.text[j-1] == '-' && j < n && b.text[j] != ' ' {
			break
		}
	}
	wordEnd = j
	for j < n && b.text[j] == ' ' {
		j++
	}
	return wordEnd, j
}
