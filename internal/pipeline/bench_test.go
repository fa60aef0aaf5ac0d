package pipeline

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/dshield/internal/profile"
	"github.com/theirongolddev/dshield/internal/store"

	"github.com/sirupsen/logrus"
)

func benchSetup(b *testing.B) (profile.Profile, Options) {
	b.Helper()
	p, err := profile.Parse([]byte(testProfile))
	if err != nil {
		b.Fatal(err)
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return p, Options{Conversion: profile.DefaultConversion(), Logger: logger}
}

func BenchmarkRun(b *testing.B) {
	p, opts := benchSetup(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Run(p, opts, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRunWithCache(b *testing.B) {
	p, opts := benchSetup(b)

	cache, err := store.Open(filepath.Join(b.TempDir(), "results.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer func() { _ = cache.Close() }()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := RunWithCache(p, opts, cache, nil); err != nil {
			b.Fatal(err)
		}
	}
}
