package highlight

import (
	"testing"
	"time"
)

func waitUpdate(t *testing.T, d *Debouncer) *Result {
	t.Helper()
	select {
	case <-d.Updates():
		return d.Latest()
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a result")
		return nil
	}
}

func TestDebouncerPublishesLatest(t *testing.T) {
	h := newTestHighlighter(t)
	d := NewDebouncer(h, 20*time.Millisecond)
	defer d.Close()

	if d.Latest() != nil {
		t.Fatal("Latest() before any submission should be nil")
	}

	d.Submit(LanguageJavaScript, "const a")
	d.Submit(LanguageJavaScript, "const ab")
	seq := d.Submit(LanguageJavaScript, "const abc = 1;")

	res := waitUpdate(t, d)
	if res == nil || res.Seq != seq {
		t.Fatalf("Latest() = %+v, want seq %d", res, seq)
	}
	if res.Text != "const abc = 1;" {
		t.Errorf("Text = %q", res.Text)
	}
	checkCoverage(t, res.Text, res.Runs)
}

func TestDebouncerFlush(t *testing.T) {
	h := newTestHighlighter(t)
	d := NewDebouncer(h, time.Hour)
	defer d.Close()

	seq := d.Submit(LanguageCSS, "a {}")
	d.Flush()

	res := waitUpdate(t, d)
	if res.Seq != seq || res.Language != LanguageCSS {
		t.Errorf("Latest() = %+v", res)
	}
}

func TestDebouncerClose(t *testing.T) {
	h := newTestHighlighter(t)
	d := NewDebouncer(h, 0)
	d.Close()
	d.Close()

	if seq := d.Submit(LanguageJavaScript, "x"); seq != 0 {
		t.Errorf("Submit after Close = %d, want 0", seq)
	}
	d.Flush()
	if d.Latest() != nil {
		t.Error("no result expected after Close")
	}
}
