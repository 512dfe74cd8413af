package prefmigrate

// Notice is an upgrade message together with its 1-based position in the queue.
type Notice struct {
	Text     string
	Position int
	Count    int
}

// Notices is the queue of upgrade messages collected during a settings migration. It is
// held in memory only; a notice not acknowledged before the process exits is lost.
type Notices struct {
	list  []string
	index int
}

func NewNotices() *Notices {
	return &Notices{index: -1}
}

func (n *Notices) Add(text string) {
	n.list = append(n.list, text)
}

func (n *Notices) Len() int {
	return len(n.list)
}

// Current returns the notice being shown, if any.
func (n *Notices) Current() (Notice, bool) {
	if n.index < 0 || n.index >= len(n.list) {
		return Notice{}, false
	}
	return Notice{Text: n.list[n.index], Position: n.index + 1, Count: len(n.list)}, true
}

// Next acknowledges the current notice and moves to the following one. Past the end the
// queue goes back to showing nothing.
func (n *Notices) Next() (Notice, bool) {
	next := n.index + 1
	if next >= len(n.list) {
		n.index = -1
		return Notice{}, false
	}
	n.index = next
	return n.Current()
}
