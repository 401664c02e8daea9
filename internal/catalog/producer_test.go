package catalog_test

import (
	"context"
	"errors"
	"io/fs"
	"slices"
	"testing"

	"findv/internal/catalog"
	"findv/internal/testutil"
)

func runProducer(t *testing.T, w catalog.Walker, filter *catalog.Filter, root string) ([]*catalog.Entry, *catalog.Producer, *recordingObserver, error) {
	t.Helper()
	obs := &recordingObserver{}
	p := catalog.NewProducer(w, filter, testutil.FixedClock(), testutil.NewStubIDGenerator(), "nas:media", catalog.NewNopLogger(), obs)

	out := make(chan *catalog.Entry, 100)
	err := p.Run(context.Background(), root, out)

	var got []*catalog.Entry
	for e := range out {
		got = append(got, e)
	}
	return got, p, obs, err
}

func TestProducer_Run(t *testing.T) {
	t.Run("sends accepted entries in walk order", func(t *testing.T) {
		got, p, obs, err := runProducer(t, scenarioTree(), mediaFilter(), "/root")
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if want := []string{"a.mp4", "sub"}; !slices.Equal(names(got), want) {
			t.Fatalf("sent %v, want %v", names(got), want)
		}

		a, sub := got[0], got[1]
		if a.ID != "id-1" || sub.ID != "id-2" {
			t.Errorf("IDs = %s, %s; want id-1, id-2", a.ID, sub.ID)
		}
		if a.FullPath != "/root/a.mp4" || a.IsDirectory {
			t.Errorf("a.mp4 entry = %+v", a)
		}
		if sub.FullPath != "/root/sub" || !sub.IsDirectory {
			t.Errorf("sub entry = %+v", sub)
		}
		if a.Hostname != "nas:media" {
			t.Errorf("Hostname = %q, want %q", a.Hostname, "nas:media")
		}
		if !a.Timestamp.Equal(testutil.FixedClock().Now()) {
			t.Errorf("Timestamp = %v, want %v", a.Timestamp, testutil.FixedClock().Now())
		}

		if p.Sent() != 2 || p.Rejected() != 2 || p.Skipped() != 0 {
			t.Errorf("Sent/Rejected/Skipped = %d/%d/%d, want 2/2/0", p.Sent(), p.Rejected(), p.Skipped())
		}
		if !slices.Equal(obs.sent, []string{"a.mp4", "sub"}) {
			t.Errorf("observer saw %v", obs.sent)
		}
	})

	t.Run("descends hidden directories", func(t *testing.T) {
		w := testutil.NewMockWalker()
		w.AddFile("/root/.cache/c.mp3")

		got, _, _, err := runProducer(t, w, mediaFilter(), "/root")
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if want := []string{"c.mp3"}; !slices.Equal(names(got), want) {
			t.Errorf("sent %v, want %v", names(got), want)
		}
	})

	t.Run("prunes excluded subtrees", func(t *testing.T) {
		w := testutil.NewMockWalker()
		w.AddFile("/Volumes/Macintosh HD/System/x.mp4")
		w.AddFile("/Volumes/Archive/y.mp4")
		filter := catalog.NewFilter([]string{"/Volumes/Macintosh"}, []string{"mp4"}, nil)

		got, p, _, err := runProducer(t, w, filter, "/Volumes")
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if want := []string{"Archive", "y.mp4"}; !slices.Equal(names(got), want) {
			t.Errorf("sent %v, want %v", names(got), want)
		}
		if p.Rejected() != 0 {
			t.Errorf("Rejected() = %d, want 0 for a pruned subtree", p.Rejected())
		}
	})

	t.Run("skips unreadable subtrees", func(t *testing.T) {
		w := testutil.NewMockWalker()
		w.AddFile("/root/locked/x.mp4")
		w.AddFile("/root/z.mp4")
		w.SetError("/root/locked", fs.ErrPermission)

		got, p, obs, err := runProducer(t, w, mediaFilter(), "/root")
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if want := []string{"locked", "z.mp4"}; !slices.Equal(names(got), want) {
			t.Errorf("sent %v, want %v", names(got), want)
		}
		if p.Skipped() != 1 {
			t.Errorf("Skipped() = %d, want 1", p.Skipped())
		}
		if len(obs.travErrs) != 1 || !obs.travErrs[0].Recoverable() {
			t.Errorf("observer traversal errors = %v", obs.travErrs)
		}
	})

	t.Run("stops on a fatal traversal error", func(t *testing.T) {
		ioErr := errors.New("input/output error")
		w := testutil.NewMockWalker()
		w.AddFile("/root/a.mp4")
		w.AddFile("/root/b/x.mp4")
		w.AddFile("/root/c.mp4")
		w.SetError("/root/b", ioErr)

		got, _, _, err := runProducer(t, w, mediaFilter(), "/root")

		var te *catalog.TraversalError
		if !errors.As(err, &te) {
			t.Fatalf("Run() error = %v, want *TraversalError", err)
		}
		if te.Path != "/root/b" || !errors.Is(err, ioErr) {
			t.Errorf("TraversalError = %v", te)
		}
		// Entries sent before the failure are still delivered.
		if want := []string{"a.mp4", "b"}; !slices.Equal(names(got), want) {
			t.Errorf("sent %v, want %v", names(got), want)
		}
	})

	t.Run("missing root is fatal", func(t *testing.T) {
		_, _, _, err := runProducer(t, testutil.NewMockWalker(), mediaFilter(), "/nowhere")
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Run() error = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("cancellation while blocked drops the entry", func(t *testing.T) {
		obs := &recordingObserver{}
		p := catalog.NewProducer(scenarioTree(), mediaFilter(), testutil.FixedClock(), testutil.NewStubIDGenerator(), "nas:media", catalog.NewNopLogger(), obs)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// Nobody receives on an unbuffered channel, so the send can only fail.
		out := make(chan *catalog.Entry)
		err := p.Run(ctx, "/root", out)

		var ce *catalog.ChannelError
		if !errors.As(err, &ce) {
			t.Fatalf("Run() error = %v, want *ChannelError", err)
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
		if ce.Path != "/root/a.mp4" {
			t.Errorf("dropped path = %q, want /root/a.mp4", ce.Path)
		}
		if len(obs.dropped) != 1 || p.Sent() != 0 {
			t.Errorf("dropped = %d, sent = %d; want 1, 0", len(obs.dropped), p.Sent())
		}
		if _, open := <-out; open {
			t.Error("output channel left open")
		}
	})
}
