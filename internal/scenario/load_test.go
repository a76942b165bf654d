package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCatalog = `
scenarios:
  - name: First
    expected: "first plays"
    steps:
      - deliver: parsing/MSG_ONE
        rewrite: true
        unique: true
        expire: 15
  - name: Second
    expected: "second replaces first"
    description: "two deliveries with a checkpoint between them"
    steps:
      - deliver: scheduling/MSG_ONE
      - checkpoint: "Is the first playing?"
        otherwise: continue
      - sleep: 2m
      - deliver: scheduling/MSG_TWO
        expire: -5
`

func TestParseCatalog_Valid(t *testing.T) {
	catalog, err := ParseCatalog([]byte(validCatalog), "test.yaml")
	require.NoError(t, err)
	require.Equal(t, 2, catalog.Len())

	second, err := catalog.Resolve("1")
	require.NoError(t, err)
	assert.Equal(t, "Second", second.Name())
	assert.Equal(t, "second replaces first", second.ExpectedResult())

	steps, err := second.Prepare("/data")
	require.NoError(t, err)
	require.Len(t, steps, 4)
	assert.Equal(t, -5, steps[3].(Deliver).ExpireMinutes)
}

func TestParseCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "empty document",
			yaml:    "",
			wantErr: "empty",
		},
		{
			name:    "no scenarios",
			yaml:    "scenarios: []\n",
			wantErr: "schema",
		},
		{
			name: "unknown step field",
			yaml: `
scenarios:
  - name: A
    expected: x
    steps:
      - deliver: parsing/MSG
        unique: true
        colour: red
`,
			wantErr: "schema",
		},
		{
			name: "missing expected",
			yaml: `
scenarios:
  - name: A
    steps:
      - note: hi
`,
			wantErr: "schema",
		},
		{
			name: "deliver outside data groups",
			yaml: `
scenarios:
  - name: A
    expected: x
    steps:
      - deliver: /etc/passwd
`,
			wantErr: "schema",
		},
		{
			name: "bad otherwise",
			yaml: `
scenarios:
  - name: A
    expected: x
    steps:
      - checkpoint: ok?
        otherwise: retry
`,
			wantErr: "schema",
		},
		{
			name: "bad sleep",
			yaml: `
scenarios:
  - name: A
    expected: x
    steps:
      - sleep: forever
`,
			wantErr: "schema",
		},
		{
			name: "negative stagger",
			yaml: `
scenarios:
  - name: A
    expected: x
    steps:
      - deliver: parsing/MSG
        stagger: -1
`,
			wantErr: "schema",
		},
		{
			name: "zero sleep",
			yaml: `
scenarios:
  - name: A
    expected: x
    steps:
      - sleep: 0s
`,
			wantErr: "positive",
		},
		{
			name: "duplicate names",
			yaml: `
scenarios:
  - name: A
    expected: x
    steps:
      - note: one
  - name: A
    expected: y
    steps:
      - note: two
`,
			wantErr: "duplicate",
		},
		{
			name: "reserved name",
			yaml: `
scenarios:
  - name: ALL
    expected: x
    steps:
      - note: one
`,
			wantErr: "reserved",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml), "test.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, err.Error(), "test.yaml")
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validCatalog), 0o644))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.Len())
}

func TestLoadCatalog_Missing(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read catalog file")
}

func TestBuiltin(t *testing.T) {
	catalog := Builtin()
	require.Greater(t, catalog.Len(), 0)
	assert.Same(t, catalog, Builtin())

	first, err := catalog.Resolve("0")
	require.NoError(t, err)
	assert.Equal(t, "NonWarningAlreadyExpiredScenario", first.Name())

	for _, s := range catalog.Scenarios() {
		steps, err := s.Prepare("/data")
		require.NoError(t, err, s.Name())
		assert.NotEmpty(t, steps, s.Name())
		assert.NotEmpty(t, s.ExpectedResult(), s.Name())
	}
}

func TestLazyCatalog_InvalidPanicsEveryCall(t *testing.T) {
	l := &lazyCatalog{source: []byte("scenarios: []\n"), name: "bad.yaml"}

	assert.Panics(t, func() { l.get() })
	assert.Panics(t, func() { l.get() }, "a failed parse must not leave a nil catalog behind")
}

func TestLazyCatalog_ParsesOnce(t *testing.T) {
	l := &lazyCatalog{source: []byte(validCatalog), name: "test.yaml"}

	first := l.get()
	require.NotNil(t, first)
	assert.Same(t, first, l.get())
	assert.Equal(t, 2, first.Len())
}
