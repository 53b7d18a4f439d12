package gonsurf

import (
	"fmt"
	"io"
	"strings"
)

// SolutionAdder is a set of solutions.
type SolutionAdder interface {

	// TryAddSolution adds S and returns true if S was not already present.
	TryAddSolution(S Solution) bool
}

// SolutionStream carries solutions between pipeline stages; each stage runs in its own
// goroutine and closes its outlet when its input is exhausted.
type SolutionStream struct {
	Outlet chan Solution
}

func NewSolutionStream() *SolutionStream {
	stream := &SolutionStream{
		Outlet: make(chan Solution),
	}
	return stream
}

// Emit pushes S into the stream so a SolutionStream can be used as an enumeration Sink.
func (stream *SolutionStream) Emit(S Solution) {
	stream.Outlet <- S
}

func (stream *SolutionStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

func (stream *SolutionStream) PullSolution() Solution {
	S := <-stream.Outlet
	return S
}

// PullAll drains the stream and returns how many solutions it carried.
func (stream *SolutionStream) PullAll() int {
	count := int(0)
	for range stream.Outlet {
		count++
	}
	return count
}

// Collect drains the stream into a slice.
func (stream *SolutionStream) Collect() []Solution {
	var all []Solution
	for S := range stream.Outlet {
		all = append(all, S)
	}
	return all
}

// Print writes each solution as a labelled, numbered line and passes it on.
func (stream *SolutionStream) Print(out io.WriteCloser, label string) *SolutionStream {
	next := &SolutionStream{
		Outlet: make(chan Solution, 1),
	}

	go func() {
		buf := strings.Builder{}
		buf.Grow(256)

		count := 0
		for S := range stream.Outlet {
			if len(label) > 0 {
				buf.WriteString(label)
				buf.WriteByte(',')
			}
			count++
			fmt.Fprintf(&buf, "%06d,", count)
			buf.WriteString(S.String())
			if S.AlmostNormal() {
				buf.WriteString(",octagon")
			}
			buf.WriteByte('\n')
			out.Write([]byte(buf.String()))
			buf.Reset()
			next.Outlet <- S
		}
		out.Close()
		next.Close()
	}()

	return next
}

// AddTo passes on only the solutions target did not already hold.
func (stream *SolutionStream) AddTo(target SolutionAdder) *SolutionStream {
	next := &SolutionStream{
		Outlet: make(chan Solution, 1),
	}

	go func() {
		for S := range stream.Outlet {
			if target.TryAddSolution(S) {
				next.Outlet <- S
			}
		}
		next.Close()
	}()

	return next
}

// Select passes on the solutions for which keep returns true.
func (stream *SolutionStream) Select(keep func(S Solution) bool) *SolutionStream {
	next := &SolutionStream{
		Outlet: make(chan Solution, 1),
	}

	go func() {
		for S := range stream.Outlet {
			if keep(S) {
				next.Outlet <- S
			}
		}
		next.Close()
	}()

	return next
}
