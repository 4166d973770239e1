package command

import "strings"

const (
	fenceOpen  = "```json-command\n"
	fenceClose = "\n```"
)

// StreamFilter suppresses json-command fences from text arriving in
// arbitrary chunks, so a streamed reply can be echoed without ever showing
// the machine payload. Feed deltas to Push and print what it returns, then
// call Flush when the stream ends to release any held-back tail.
type StreamFilter struct {
	held   string
	fenced bool
}

// Push consumes one delta and returns the part that is safe to print.
// Text that could still grow into a fence opener stays held.
func (f *StreamFilter) Push(delta string) string {
	f.held += delta
	var out strings.Builder
	for {
		if f.fenced {
			i := strings.Index(f.held, fenceClose)
			if i < 0 {
				return out.String()
			}
			f.held = f.held[i+len(fenceClose):]
			f.fenced = false
			continue
		}
		if i := strings.Index(f.held, fenceOpen); i >= 0 {
			out.WriteString(f.held[:i])
			f.held = f.held[i+len(fenceOpen):]
			f.fenced = true
			continue
		}
		keep := markerOverlap(f.held, fenceOpen)
		out.WriteString(f.held[:len(f.held)-keep])
		f.held = f.held[len(f.held)-keep:]
		return out.String()
	}
}

// Flush returns whatever is still held once the stream is complete. An
// unclosed fence is dropped entirely.
func (f *StreamFilter) Flush() string {
	out := f.held
	f.held = ""
	if f.fenced {
		f.fenced = false
		return ""
	}
	return out
}

// markerOverlap reports the length of the longest suffix of s that is a
// prefix of marker.
func markerOverlap(s, marker string) int {
	n := len(marker)
	if len(s) < n {
		n = len(s)
	}
	for ; n > 0; n-- {
		if strings.HasSuffix(s, marker[:n]) {
			return n
		}
	}
	return 0
}
