// pkg/cobrax/topics/topics_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: In-memory fs.FS (testing/fstest)
// PURPOSE: Test topic discovery, lookup and the help command

package topics

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSource() fstest.MapFS {
	return fstest.MapFS{
		"option-dry-run.md":  {Data: []byte("Dry run help")},
		"option-verbose.txt": {Data: []byte("Verbose help")},
		"layout.md":          {Data: []byte("# Layout\n\nreleases, shared, current")},
		"nested/rollback.md": {Data: []byte("Rollback help")},
		"notes.json":         {Data: []byte("{}")},
	}
}

func TestScanTopics(t *testing.T) {
	t.Run("default extensions", func(t *testing.T) {
		tm := New(testSource())
		require.NoError(t, tm.scanTopics())

		assert.Equal(t, []string{"layout", "option-dry-run", "option-verbose", "rollback"}, tm.ListTopics())
		topic, ok := tm.GetTopic("rollback")
		require.True(t, ok)
		assert.Equal(t, "nested/rollback.md", topic.FilePath)
	})

	t.Run("custom extensions", func(t *testing.T) {
		tm := NewWithOptions(testSource(), Options{Extensions: []string{".json"}})
		require.NoError(t, tm.scanTopics())
		assert.Equal(t, []string{"notes"}, tm.ListTopics())
	})

	t.Run("nil source", func(t *testing.T) {
		tm := New(nil)
		require.NoError(t, tm.scanTopics())
		assert.Empty(t, tm.ListTopics())
	})
}

func TestGetTopic(t *testing.T) {
	tm := New(testSource())
	require.NoError(t, tm.scanTopics())

	tests := []struct {
		input    string
		expected string
		exists   bool
	}{
		{"layout", "layout", true},
		{"option-dry-run", "option-dry-run", true},
		{"dry-run", "option-dry-run", true},
		{"--dry-run", "option-dry-run", true},
		{"-dry-run", "option-dry-run", true},
		{"--verbose", "option-verbose", true},
		{"-v", "", false},
		{"nonexistent", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			topic, exists := tm.GetTopic(tt.input)
			assert.Equal(t, tt.exists, exists)
			if exists {
				assert.Equal(t, tt.expected, topic.Name)
			}
		})
	}
}

func TestWriteList(t *testing.T) {
	tm := New(testSource())
	require.NoError(t, tm.scanTopics())

	var buf bytes.Buffer
	tm.WriteList(&buf, "deployrev")
	out := buf.String()

	assert.Contains(t, out, "General topics:\n  layout\n  rollback")
	assert.Contains(t, out, "Option topics:\n  --dry-run\n  --verbose")
	assert.Contains(t, out, "Use 'deployrev help <topic>'")

	buf.Reset()
	New(nil).WriteList(&buf, "deployrev")
	assert.Equal(t, "No help topics available.\n", buf.String())
}

func TestInitialize(t *testing.T) {
	rootCmd := &cobra.Command{Use: "testapp", Short: "Test application"}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "deploy",
		Short: "Deploy something",
		Run:   func(cmd *cobra.Command, args []string) {},
	})

	_, err := Initialize(rootCmd, testSource())
	require.NoError(t, err)

	run := func(args ...string) string {
		var buf bytes.Buffer
		rootCmd.SetOut(&buf)
		rootCmd.SetErr(&buf)
		rootCmd.SetArgs(args)
		require.NoError(t, rootCmd.Execute())
		return buf.String()
	}

	helpCmd, _, err := rootCmd.Find([]string{"help"})
	require.NoError(t, err)
	assert.Equal(t, "help [command or topic]", helpCmd.Use)

	assert.Equal(t, "Verbose help", run("help", "--verbose"))
	assert.Contains(t, run("help", "topics"), "layout")
	assert.True(t, strings.Contains(run("help", "deploy"), "Deploy something"))
}
