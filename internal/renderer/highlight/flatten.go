package highlight

import (
	"iter"
	"sort"
)

// span is one categorized byte range produced by a tokenizer.
type span struct {
	start    int
	end      int
	category int

	// layer is 0 for the document and grows with each injected language.
	layer int

	// order is the query pattern index; for identical ranges the lowest wins.
	order int
}

// flatten turns possibly nested spans into a well-formed event stream whose
// EventSource ranges cover [0, n) exactly once, in order, without gaps.
// Spans that partially overlap an enclosing span are clipped to it.
func flatten(spans []span, n int) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		spans = normalizeSpans(spans, n)

		cursor := 0
		var open []int // end offsets of open categories

		source := func(to int) bool {
			if to <= cursor {
				return true
			}
			from := cursor
			cursor = to
			return yield(EventSource{Start: from, End: to})
		}
		closeTop := func() bool {
			end := open[len(open)-1]
			open = open[:len(open)-1]
			return source(end) && yield(EventCategoryEnd{})
		}

		for _, s := range spans {
			for len(open) > 0 && open[len(open)-1] <= s.start {
				if !closeTop() {
					return
				}
			}
			if len(open) > 0 && s.end > open[len(open)-1] {
				s.end = open[len(open)-1]
			}
			if s.start < cursor {
				s.start = cursor
			}
			if s.start >= s.end {
				continue
			}
			if !source(s.start) {
				return
			}
			if !yield(EventCategoryStart{Index: s.category}) {
				return
			}
			open = append(open, s.end)
		}

		for len(open) > 0 {
			if !closeTop() {
				return
			}
		}
		source(n)
	}
}

// normalizeSpans clamps spans to [0, n), drops empty or uncategorized ones,
// sorts them outermost-first and removes duplicate ranges within a layer.
func normalizeSpans(spans []span, n int) []span {
	out := make([]span, 0, len(spans))
	for _, s := range spans {
		if s.category < 0 {
			continue
		}
		s.start = max(s.start, 0)
		s.end = min(s.end, n)
		if s.start >= s.end {
			continue
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.start != b.start {
			return a.start < b.start
		}
		if a.end != b.end {
			return a.end > b.end
		}
		if a.layer != b.layer {
			return a.layer < b.layer
		}
		return a.order < b.order
	})

	deduped := out[:0]
	for _, s := range out {
		if len(deduped) > 0 {
			last := deduped[len(deduped)-1]
			if last.start == s.start && last.end == s.end && last.layer == s.layer {
				continue
			}
		}
		deduped = append(deduped, s)
	}
	return deduped
}
