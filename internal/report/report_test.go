package report

import (
	"strings"
	"sync"
	"testing"
	"time"

	"crunch/internal/models"
)

func TestCollectorConcurrentAdd(t *testing.T) {
	c := &Collector{}
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			status := models.StatusOK
			if i%4 == 0 {
				status = models.StatusIOError
			}
			c.Add(models.Result{Filename: "f", FinalSize: 10, Status: status})
		}()
	}
	wg.Wait()

	if got := len(c.Results()); got != 100 {
		t.Fatalf("collected %d results, want 100", got)
	}
	if got := c.Failed(); got != 25 {
		t.Fatalf("Failed = %d, want 25", got)
	}
	if got := c.BytesWritten(); got != 750 {
		t.Fatalf("BytesWritten = %d, want 750", got)
	}
}

func TestRatio(t *testing.T) {
	cases := []struct {
		original, final int64
		want            float64
	}{
		{100, 40, 60},
		{100, 100, 0},
		{100, 150, -50},
		{0, 0, 0},
	}
	for _, tc := range cases {
		r := models.Result{OriginalSize: tc.original, FinalSize: tc.final}
		if got := r.Ratio(); got != tc.want {
			t.Fatalf("Ratio(%d, %d) = %v, want %v", tc.original, tc.final, got, tc.want)
		}
	}
}

func TestRenderTable(t *testing.T) {
	var sb strings.Builder
	Render(&sb, []models.Result{
		{Filename: "a.bin", OriginalSize: 2048, FinalSize: 1024, Elapsed: 5 * time.Millisecond, Status: models.StatusOK},
		{Filename: "b.bin", OriginalSize: 10, FinalSize: 0, Status: models.StatusIOError},
	})
	out := sb.String()
	for _, want := range []string{"a.bin", "b.bin", "50.0%", "ok", "io error"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KB"},
		{1 << 20, "1.0 MB"},
		{5 << 30, "5.0 GB"},
	}
	for _, tc := range cases {
		if got := FormatBytes(tc.in); got != tc.want {
			t.Fatalf("FormatBytes(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
