package iocli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdioPrint(t *testing.T) {
	stdio := NewStdio()

	assert.NotPanics(t, func() {
		stdio.Println("hello")
		stdio.Printf("%d %s", 1, "abc")
	})

	n, err := stdio.Write([]byte("x\n"))
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStdioReadInput(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)

	go func() {
		_, _ = w.Write([]byte("  user input  \n"))
		_ = w.Close()
	}()

	oldStdin := os.Stdin
	t.Cleanup(func() { os.Stdin = oldStdin })
	os.Stdin = r

	stdio := NewStdio()
	got, err := stdio.ReadInput("Prompt: ")
	require.NoError(t, err)
	// Ввод обрезается по краям
	assert.Equal(t, "user input", got)
}
