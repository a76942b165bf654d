package deliver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ingestsim/internal/header"
)

const sampleHeader = "\x1baZ_ABCDEFGHI" + "1501011200" + "1501011200" + "1234567" + "1501011205"

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestDeliver_CopyIsByteIdentical(t *testing.T) {
	srcDir, ingest := t.TempDir(), t.TempDir()
	content := "PLAIN MESSAGE\x00\xff with odd bytes\r\nand no header\n"
	src := writeSource(t, srcDir, "MSG_PLAIN", content)

	sim := NewSimulator(NewCounter(), nil)
	receipt, err := sim.Deliver(Spec{Source: src, DestinationDir: ingest}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(ingest, "MSG_PLAIN"), receipt.Path)
	assert.Equal(t, content, readFile(t, receipt.Path))
	assert.Equal(t, len(content), receipt.Bytes)
	assert.False(t, receipt.Tagged)
	assert.False(t, receipt.Rewritten)
	assert.Len(t, receipt.SHA256, 64)
}

func TestDeliver_RewriteHeader(t *testing.T) {
	srcDir, ingest := t.TempDir(), t.TempDir()
	src := writeSource(t, srcDir, "MSG_VALID", "ZCZC\n"+sampleHeader+"\nBODY\n")

	now := time.Date(2016, 2, 3, 9, 10, 0, 0, time.UTC)
	sim := NewSimulator(NewCounter(), nil)
	receipt, err := sim.Deliver(Spec{
		Source:              src,
		DestinationDir:      ingest,
		RewriteHeader:       true,
		ExpireOffsetMinutes: 5,
	}, now)
	require.NoError(t, err)
	assert.True(t, receipt.Rewritten)

	got := readFile(t, receipt.Path)
	want := "ZCZC\n\x1baZ_ABCDEFGHI" + "1602030910" + "1602030910" + "1234567" + "1602030915" + "\nBODY\n"
	assert.Equal(t, want, got)

	rec, err := header.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "1234567", rec.Middle)
	assert.Equal(t, now, rec.Created)
	assert.Equal(t, now, rec.Effective)
	assert.Equal(t, now.Add(5*time.Minute), rec.Expires)
}

func TestDeliver_EffectiveOffset(t *testing.T) {
	srcDir, ingest := t.TempDir(), t.TempDir()
	src := writeSource(t, srcDir, "MSG_FUTURE", sampleHeader+"\n")

	now := time.Date(2016, 2, 3, 9, 10, 0, 0, time.UTC)
	sim := NewSimulator(NewCounter(), nil)
	receipt, err := sim.Deliver(Spec{
		Source:                 src,
		DestinationDir:         ingest,
		RewriteHeader:          true,
		EffectiveOffsetMinutes: 3,
		ExpireOffsetMinutes:    15,
	}, now)
	require.NoError(t, err)

	rec, err := header.Parse(readFile(t, receipt.Path))
	require.NoError(t, err)
	assert.Equal(t, now, rec.Created)
	assert.Equal(t, now.Add(3*time.Minute), rec.Effective)
	assert.Equal(t, now.Add(15*time.Minute), rec.Expires)
}

func TestDeliver_MakeUnique(t *testing.T) {
	srcDir, ingest := t.TempDir(), t.TempDir()
	src := writeSource(t, srcDir, "MSG_UNIQUE", "TEXT \x1bb TRAILER \x1bb\n")

	sim := NewSimulator(NewCounterAt(7), nil)
	receipt, err := sim.Deliver(Spec{Source: src, DestinationDir: ingest, MakeUnique: true}, time.Now())
	require.NoError(t, err)

	assert.True(t, receipt.Tagged)
	assert.Equal(t, int64(7), receipt.UniqueID)
	// Only the first marker receives the identifier.
	assert.Equal(t, "TEXT Message Unique Identifier is 7 \x1bb TRAILER \x1bb\n", readFile(t, receipt.Path))
}

func TestDeliver_UniqueIDsStrictlyIncrease(t *testing.T) {
	srcDir, ingest := t.TempDir(), t.TempDir()
	a := writeSource(t, srcDir, "MSG_A", "A \x1bb\n")
	b := writeSource(t, srcDir, "MSG_B", "B \x1bb\n")

	sim := NewSimulator(NewCounter(), nil)

	first, err := sim.Deliver(Spec{Source: a, DestinationDir: ingest, MakeUnique: true}, time.Now())
	require.NoError(t, err)
	second, err := sim.Deliver(Spec{Source: b, DestinationDir: ingest, MakeUnique: true}, time.Now())
	require.NoError(t, err)
	third, err := sim.Deliver(Spec{Source: a, DestinationDir: ingest, MakeUnique: true}, time.Now())
	require.NoError(t, err)

	assert.Less(t, first.UniqueID, second.UniqueID)
	assert.Less(t, second.UniqueID, third.UniqueID)
}

func TestDeliver_MakeUniqueWithoutMarker(t *testing.T) {
	srcDir, ingest := t.TempDir(), t.TempDir()
	src := writeSource(t, srcDir, "MSG_NOMARK", "no marker here\n")

	counter := NewCounter()
	sim := NewSimulator(counter, nil)
	receipt, err := sim.Deliver(Spec{Source: src, DestinationDir: ingest, MakeUnique: true}, time.Now())
	require.NoError(t, err)

	assert.False(t, receipt.Tagged)
	assert.Equal(t, "no marker here\n", readFile(t, receipt.Path))
	assert.Equal(t, int64(0), counter.Peek())
}

func TestDeliver_TagThenRewrite(t *testing.T) {
	srcDir, ingest := t.TempDir(), t.TempDir()
	src := writeSource(t, srcDir, "MSG_BOTH", sampleHeader+"\nBODY \x1bb\n")

	now := time.Date(2016, 2, 3, 9, 10, 0, 0, time.UTC)
	sim := NewSimulator(NewCounter(), nil)
	receipt, err := sim.Deliver(Spec{
		Source:              src,
		DestinationDir:      ingest,
		RewriteHeader:       true,
		MakeUnique:          true,
		ExpireOffsetMinutes: 5,
	}, now)
	require.NoError(t, err)

	got := readFile(t, receipt.Path)
	assert.True(t, strings.HasPrefix(got, "\x1baZ_ABCDEFGHI16020309101602030910"))
	assert.Contains(t, got, "BODY Message Unique Identifier is 0 \x1bb")
}

func TestDeliver_OverwritesPriorDelivery(t *testing.T) {
	srcDir, ingest := t.TempDir(), t.TempDir()
	src := writeSource(t, srcDir, "MSG_REPEAT", sampleHeader+"\n")

	sim := NewSimulator(NewCounter(), nil)
	first := time.Date(2016, 2, 3, 9, 10, 0, 0, time.UTC)
	_, err := sim.Deliver(Spec{Source: src, DestinationDir: ingest, RewriteHeader: true, ExpireOffsetMinutes: 5}, first)
	require.NoError(t, err)

	second := first.Add(time.Hour)
	receipt, err := sim.Deliver(Spec{Source: src, DestinationDir: ingest, RewriteHeader: true, ExpireOffsetMinutes: 5}, second)
	require.NoError(t, err)

	entries, err := os.ReadDir(ingest)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	rec, err := header.Parse(readFile(t, receipt.Path))
	require.NoError(t, err)
	assert.Equal(t, second, rec.Created)
}

func TestDeliver_Errors(t *testing.T) {
	srcDir, ingest := t.TempDir(), t.TempDir()
	noHeader := writeSource(t, srcDir, "MSG_NOHEADER", "body only\n")
	badStamp := writeSource(t, srcDir, "MSG_BADSTAMP", "\x1baZ_ABCDEFGHI"+"1513011200"+"1501011200"+"M"+"1501011205"+"\n")
	regular := writeSource(t, srcDir, "MSG_OK", "ok\n")

	tests := []struct {
		name string
		spec Spec
		code ErrorCode
	}{
		{
			name: "missing source",
			spec: Spec{Source: filepath.Join(srcDir, "MISSING"), DestinationDir: ingest},
			code: ErrCodeSourceUnreadable,
		},
		{
			name: "missing destination",
			spec: Spec{Source: regular, DestinationDir: filepath.Join(ingest, "absent")},
			code: ErrCodeDestinationUnwritable,
		},
		{
			name: "destination is a file",
			spec: Spec{Source: regular, DestinationDir: regular},
			code: ErrCodeDestinationUnwritable,
		},
		{
			name: "no header to rewrite",
			spec: Spec{Source: noHeader, DestinationDir: ingest, RewriteHeader: true},
			code: ErrCodeHeaderRewriteFailed,
		},
		{
			name: "malformed header timestamp",
			spec: Spec{Source: badStamp, DestinationDir: ingest, RewriteHeader: true},
			code: ErrCodeHeaderRewriteFailed,
		},
	}

	sim := NewSimulator(NewCounter(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Deliver(tt.spec, time.Now())
			require.Error(t, err)
			assert.Equal(t, tt.code, CodeOf(err))
		})
	}

	_, err := sim.Deliver(Spec{Source: noHeader, DestinationDir: ingest, RewriteHeader: true}, time.Now())
	assert.True(t, header.IsHeaderNotFound(err), "codec error should be reachable through Unwrap")
}

func TestDeliver_DoesNotCreateDestination(t *testing.T) {
	srcDir := t.TempDir()
	src := writeSource(t, srcDir, "MSG", "x\n")
	missing := filepath.Join(t.TempDir(), "ingest")

	_, err := NewSimulator(nil, nil).Deliver(Spec{Source: src, DestinationDir: missing}, time.Now())
	require.Error(t, err)

	_, statErr := os.Stat(missing)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCounter(t *testing.T) {
	c := NewCounter()
	assert.Equal(t, int64(0), c.Next())
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Peek())

	fresh := NewCounter()
	assert.Equal(t, int64(0), fresh.Next(), "a new counter starts over")
}

func TestInjectUniqueID(t *testing.T) {
	assert.Equal(t, "a Message Unique Identifier is 3 \x1bb b", InjectUniqueID("a \x1bb b", 3))
	assert.Equal(t, "unchanged", InjectUniqueID("unchanged", 3))
}
