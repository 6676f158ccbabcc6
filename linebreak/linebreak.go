// Package linebreak 提供基于 Unicode 换行算法（UAX #14）的断行机会分类器。
package linebreak

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Done 表示没有更多断行位置。
const Done = -1

// Classifier 在设置的文本上迭代断行位置，位置以字符（rune）下标表示。
// 同一个 Classifier 不能被多个 goroutine 同时使用；每次排版应各自创建。
type Classifier struct {
	breaks []int
	hard   []bool
	pos    int
}

// New 返回空的分类器。
func New() *Classifier { return &Classifier{pos: -1} }

// SetText 以 text 重新开始，丢弃之前的状态。
func (c *Classifier) SetText(text string) {
	c.breaks = c.breaks[:0]
	c.hard = c.hard[:0]
	c.pos = -1
	state := -1
	offset := 0
	rest := text
	for len(rest) > 0 {
		var segment string
		var must bool
		segment, rest, must, state = uniseg.FirstLineSegmentInString(rest, state)
		offset += utf8.RuneCountInString(segment)
		c.breaks = append(c.breaks, offset)
		// uniseg 在文本末尾总是报告强制断行，只有以换行符结尾的才算真正的强制断行
		c.hard = append(c.hard, must && (rest != "" || endsWithHardBreak(segment)))
	}
}

// First 回到文本开头并返回 0。
func (c *Classifier) First() int {
	c.pos = -1
	return 0
}

// Next 返回下一个断行位置；用尽后返回 Done。
func (c *Classifier) Next() int {
	if c.pos+1 >= len(c.breaks) {
		c.pos = len(c.breaks)
		return Done
	}
	c.pos++
	return c.breaks[c.pos]
}

// Hard 报告最近一次 Next 返回的位置是否为强制断行。
func (c *Classifier) Hard() bool {
	if c.pos < 0 || c.pos >= len(c.hard) {
		return false
	}
	return c.hard[c.pos]
}

func endsWithHardBreak(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	switch r {
	case '\n', '\r', '\v', '\f', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
