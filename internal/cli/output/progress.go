package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// ProgressBar shows how much of a backup archive has been processed.
type ProgressBar struct {
	w       io.Writer
	title   string
	total   int64
	current int64
	width   int
	mu      sync.Mutex
}

// NewProgressBar creates a progress bar. A total of zero or less shows
// a plain byte counter.
func NewProgressBar(w io.Writer, title string, total int64) *ProgressBar {
	return &ProgressBar{
		w:     w,
		title: title,
		total: total,
		width: 40,
	}
}

// Add advances the bar by n bytes.
func (p *ProgressBar) Add(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += n
	p.render()
}

// Finish completes the progress bar.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total > 0 {
		p.current = p.total
	}
	p.render()
	fmt.Fprintln(p.w)
}

// Reader wraps r so every read advances the bar.
func (p *ProgressBar) Reader(r io.Reader) io.Reader {
	return &progressReader{r: r, bar: p}
}

// Writer wraps w so every write advances the bar.
func (p *ProgressBar) Writer(w io.Writer) io.Writer {
	return &progressWriter{w: w, bar: p}
}

func (p *ProgressBar) render() {
	if p.total <= 0 {
		fmt.Fprintf(p.w, "\r%s %s", p.title, HumanBytes(p.current))
		return
	}

	percent := float64(p.current) / float64(p.total)
	if percent > 1 {
		percent = 1
	}
	filled := int(float64(p.width) * percent)

	fmt.Fprintf(p.w, "\r%s [%s%s] %3.0f%% (%s/%s)",
		p.title,
		strings.Repeat("#", filled),
		strings.Repeat(".", p.width-filled),
		percent*100,
		HumanBytes(p.current),
		HumanBytes(p.total),
	)
}

type progressReader struct {
	r   io.Reader
	bar *ProgressBar
}

func (r *progressReader) Read(b []byte) (int, error) {
	n, err := r.r.Read(b)
	if n > 0 {
		r.bar.Add(int64(n))
	}
	return n, err
}

type progressWriter struct {
	w   io.Writer
	bar *ProgressBar
}

func (w *progressWriter) Write(b []byte) (int, error) {
	n, err := w.w.Write(b)
	if n > 0 {
		w.bar.Add(int64(n))
	}
	return n, err
}

// HumanBytes formats a byte count with binary units.
func HumanBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
