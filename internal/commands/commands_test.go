package commands

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteRunsRegisteredCommand(t *testing.T) {
	r := NewRegistry()
	fs := flag.NewFlagSet("greet", flag.ContinueOnError)
	name := fs.String("name", "", "")
	var got string
	r.Register("greet", "say hello", fs, func() error {
		got = *name
		return nil
	})

	require.NoError(t, r.Execute([]string{"greet", "-name", "sam"}))
	assert.Equal(t, "sam", got)
}

func TestExecuteUnknownCommand(t *testing.T) {
	r := NewRegistry()
	err := r.Execute([]string{"nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")

	assert.Error(t, r.Execute(nil))
}

func TestNamesSorted(t *testing.T) {
	r := NewRegistry()
	r.Register("world", "w", flag.NewFlagSet("world", flag.ContinueOnError), func() error { return nil })
	r.Register("avatar", "a", flag.NewFlagSet("avatar", flag.ContinueOnError), func() error { return nil })
	assert.Equal(t, []string{"avatar", "world"}, r.Names())
	assert.Equal(t, "a", r.Summary("avatar"))
}
