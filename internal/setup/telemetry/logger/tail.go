package logger

// lineTail keeps the most recent lines written to a log file.
type lineTail struct {
	lines []string
	next  int  // slot for the next line
	full  bool // every slot holds a line
	since int  // lines added since the file was last compacted
}

func newLineTail(limit int) *lineTail {
	return &lineTail{lines: make([]string, limit)}
}

func (t *lineTail) push(line string) {
	t.lines[t.next] = line
	t.next++

	if t.next == len(t.lines) {
		t.next = 0
		t.full = true
	}

	t.since++
}

func (t *lineTail) len() int {
	if t.full {
		return len(t.lines)
	}

	return t.next
}

// snapshot returns the kept lines oldest first.
func (t *lineTail) snapshot() []string {
	if !t.full {
		return append([]string(nil), t.lines[:t.next]...)
	}

	out := make([]string, 0, len(t.lines))
	out = append(out, t.lines[t.next:]...)

	return append(out, t.lines[:t.next]...)
}
