package sitesnap

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "Error: boom", FirstLine("Error: boom\n    at main.js:1:1"))
	assert.Equal(t, "Error: boom", FirstLine("  Error: boom\r\nstack"))
	assert.Equal(t, "single", FirstLine("single"))
	assert.Equal(t, "", FirstLine(""))
}

func TestDiagnosticLogConcurrentReport(t *testing.T) {
	l := &DiagnosticLog{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Report(Diagnostic{URL: "http://localhost:8080/#full", Message: "boom"})
		}()
	}
	wg.Wait()

	entries := l.Entries()
	assert.Len(t, entries, 50)

	entries[0].Message = "changed"
	assert.Equal(t, "boom", l.Entries()[0].Message, "Entries returns a copy")
}
