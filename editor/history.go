package editor

import (
	"github.com/chaos-io/cutout/pixel"
)

// DefaultHistoryLimit 历史栈最多保留的快照数
const DefaultHistoryLimit = 20

// History 完整快照式的撤销栈
// cursor 总是合法下标；在非栈顶提交会丢弃 cursor 之后的重做分支；
// 超出上限时淘汰最旧的快照并平移 cursor
type History struct {
	entries []*pixel.Buffer
	cursor  int
	limit   int
}

func NewHistory(initial *pixel.Buffer, limit int) *History {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	return &History{
		entries: []*pixel.Buffer{initial},
		limit:   limit,
	}
}

// Commit pushes b as the new current snapshot. The history keeps the
// pointer; callers must not mutate b afterwards.
func (h *History) Commit(b *pixel.Buffer) {
	// 丢弃重做分支时清掉底层数组里的引用，旧快照才能被回收
	clear(h.entries[h.cursor+1:])
	h.entries = append(h.entries[:h.cursor+1], b)
	if over := len(h.entries) - h.limit; over > 0 {
		clear(h.entries[:over])
		h.entries = h.entries[over:]
	}
	h.cursor = len(h.entries) - 1
}

func (h *History) Undo() (*pixel.Buffer, bool) {
	if !h.CanUndo() {
		return h.Current(), false
	}
	h.cursor--
	return h.Current(), true
}

func (h *History) Redo() (*pixel.Buffer, bool) {
	if !h.CanRedo() {
		return h.Current(), false
	}
	h.cursor++
	return h.Current(), true
}

func (h *History) Current() *pixel.Buffer { return h.entries[h.cursor] }
func (h *History) CanUndo() bool          { return h.cursor > 0 }
func (h *History) CanRedo() bool          { return h.cursor < len(h.entries)-1 }
func (h *History) Len() int               { return len(h.entries) }
func (h *History) Cursor() int            { return h.cursor }
func (h *History) Limit() int             { return h.limit }
