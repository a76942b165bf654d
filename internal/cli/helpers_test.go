package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// headerLine is a header whose created, effective and expire stamps are
// 2015-01-01 12:00, 12:00 and 12:05.
const headerLine = "\x1baZ_ABCDEFGHI15010112001501011200WXR1234567YN1501011205"

const testMessage = headerLine + "\nROUTINE TEST MESSAGE.\n\x1bb\nEND OF MESSAGE\n"

const testCatalog = `
scenarios:
  - name: First
    expected: "the message plays"
    steps:
      - deliver: parsing/MSG_ONE
        rewrite: true
        unique: true
        expire: 15
  - name: Broken
    expected: "never reached"
    steps:
      - deliver: parsing/MSG_MISSING
`

// fixture is a data directory, ingest directory and configuration file for
// command tests.
type fixture struct {
	dir       string
	dataDir   string
	ingestDir string
	config    string
	catalog   string
	journal   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		dir:       dir,
		dataDir:   filepath.Join(dir, "data"),
		ingestDir: filepath.Join(dir, "ingest"),
		config:    filepath.Join(dir, "config.yaml"),
		catalog:   filepath.Join(dir, "catalog.yaml"),
		journal:   filepath.Join(dir, "journal.db"),
	}

	require.NoError(t, os.MkdirAll(filepath.Join(f.dataDir, "parsing"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(f.dataDir, "scheduling"), 0o755))
	require.NoError(t, os.MkdirAll(f.ingestDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.dataDir, "parsing", "MSG_ONE"), []byte(testMessage), 0o644))
	require.NoError(t, os.WriteFile(f.catalog, []byte(testCatalog), 0o644))

	config := "large_file_size: 1024\nwatch_debounce: 20ms\n"
	require.NoError(t, os.WriteFile(f.config, []byte(config), 0o644))
	return f
}

// args returns the global flags pointing at the fixture, followed by extra.
func (f *fixture) args(extra ...string) []string {
	return append([]string{
		"--config", f.config,
		"--data-dir", f.dataDir,
		"--ingest-dir", f.ingestDir,
		"--scenarios", f.catalog,
	}, extra...)
}

// execute runs the root command with args and stdin, returning stdout and
// stderr separately.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// syncBuffer is a bytes.Buffer safe for a command writing in one goroutine
// while the test reads in another.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
