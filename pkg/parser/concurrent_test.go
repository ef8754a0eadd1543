package parser

import (
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestConcurrentParsing checks that many goroutines can share one manager
// without exceeding the pool bound.
func TestConcurrentParsing(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	manager := NewParserManager(logger)
	defer manager.Close()

	const numGoroutines = 100
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	errChan := make(chan error, numGoroutines)

	source := []byte(badgeSource)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()

			tree, err := manager.Parse(source, LanguageTypeScript, true)
			if err != nil {
				errChan <- err
				return
			}
			if tree.RootNode().HasError() {
				errChan <- assert.AnError
			}
			tree.Close()
		}()
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	assert.Empty(t, errs)

	stats := manager.GetStats()
	assert.LessOrEqual(t, stats.ParsersCreated, getDefaultPoolSize())
	assert.GreaterOrEqual(t, stats.ParsersCreated, 1)
	assert.Equal(t, numGoroutines, stats.ParsesCalled)
}

// TestConcurrentGrammars mixes TSX, plain TypeScript and JSX parses so that
// three pools are created concurrently.
func TestConcurrentGrammars(t *testing.T) {
	manager := NewParserManager(nil)
	defer manager.Close()

	type job struct {
		lang  Language
		isTSX bool
	}
	jobs := []job{
		{LanguageTypeScript, true},
		{LanguageTypeScript, false},
		{LanguageJavaScript, false},
	}

	const perGrammar = 20
	var wg sync.WaitGroup
	for _, j := range jobs {
		for i := 0; i < perGrammar; i++ {
			wg.Add(1)
			go func(j job) {
				defer wg.Done()
				tree, err := manager.Parse([]byte("const x = 1;"), j.lang, j.isTSX)
				if assert.NoError(t, err) {
					tree.Close()
				}
			}(j)
		}
	}
	wg.Wait()

	manager.mutex.RLock()
	pools := len(manager.pools)
	manager.mutex.RUnlock()

	assert.Equal(t, len(jobs), pools)
	assert.Equal(t, len(jobs)*perGrammar, manager.GetStats().ParsesCalled)
}

func BenchmarkConcurrentParsing(b *testing.B) {
	manager := NewParserManager(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
	defer manager.Close()

	source := []byte(badgeSource)
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			tree, err := manager.Parse(source, LanguageTypeScript, true)
			if err != nil {
				b.Fatal(err)
			}
			tree.Close()
		}
	})
}
