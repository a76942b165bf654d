package deliver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/roach88/ingestsim/internal/header"
)

// UniqueMarker is the injection point for uniqueness identifiers.
const UniqueMarker = "\x1bb"

// Spec describes one delivery. It is treated as immutable once built.
type Spec struct {
	// Source is the path of the message file to deliver.
	Source string

	// DestinationDir is the ingest directory. It must already exist.
	DestinationDir string

	// RewriteHeader replaces the header timestamps relative to the delivery clock.
	RewriteHeader bool

	// MakeUnique injects the next counter value before the uniqueness marker.
	MakeUnique bool

	// ExpireOffsetMinutes sets the rewritten expire time relative to the clock.
	ExpireOffsetMinutes int

	// EffectiveOffsetMinutes sets the rewritten effective time relative to
	// the clock. Zero keeps effective equal to created.
	EffectiveOffsetMinutes int
}

// Destination returns the path the delivered file is written to.
func (s Spec) Destination() string {
	return filepath.Join(s.DestinationDir, filepath.Base(s.Source))
}

// Times returns the header instants a rewrite at now would write.
func (s Spec) Times(now time.Time) header.Times {
	times := header.TimesAt(now, s.ExpireOffsetMinutes)
	times.Effective = now.Add(time.Duration(s.EffectiveOffsetMinutes) * time.Minute)
	return times
}

// Receipt describes a completed delivery.
type Receipt struct {
	Source string `json:"source"`
	Path   string `json:"path"`
	Bytes  int    `json:"bytes"`
	SHA256 string `json:"sha256"`

	// Tagged is set when a uniqueness identifier was injected; UniqueID is
	// only meaningful then. Zero is a valid identifier.
	Tagged   bool  `json:"tagged"`
	UniqueID int64 `json:"unique_id"`

	Rewritten bool         `json:"rewritten"`
	Times     header.Times `json:"-"`

	DeliveredAt time.Time `json:"delivered_at"`
}

// Simulator performs deliveries. The uniqueness counter is shared by every
// delivery made through the same Simulator.
type Simulator struct {
	counter *Counter
	logger  *slog.Logger
}

// NewSimulator creates a simulator drawing identifiers from counter.
// A nil logger discards log output.
func NewSimulator(counter *Counter, logger *slog.Logger) *Simulator {
	if counter == nil {
		counter = NewCounter()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Simulator{counter: counter, logger: logger}
}

// Counter returns the simulator's uniqueness counter.
func (s *Simulator) Counter() *Counter {
	return s.counter
}

// Deliver reads spec.Source, applies the requested transforms, and writes the
// result to spec.Destination(), replacing any file already there.
//
// Transforms run in a fixed order: uniqueness tag first, then the header
// rewrite. With neither requested the source bytes are copied unchanged.
func (s *Simulator) Deliver(spec Spec, now time.Time) (*Receipt, error) {
	data, err := os.ReadFile(spec.Source)
	if err != nil {
		return nil, &Error{Code: ErrCodeSourceUnreadable, Path: spec.Source, Err: err}
	}

	receipt := &Receipt{
		Source:      spec.Source,
		Path:        spec.Destination(),
		DeliveredAt: now,
	}

	out := data
	if spec.MakeUnique || spec.RewriteHeader {
		text := string(data)

		if spec.MakeUnique && strings.Contains(text, UniqueMarker) {
			receipt.UniqueID = s.counter.Next()
			receipt.Tagged = true
			text = InjectUniqueID(text, receipt.UniqueID)
		}

		if spec.RewriteHeader {
			times := spec.Times(now)
			text, err = header.RewriteTimes(text, times)
			if err != nil {
				return nil, &Error{Code: ErrCodeHeaderRewriteFailed, Path: spec.Source, Err: err}
			}
			receipt.Rewritten = true
			receipt.Times = times
		}

		out = []byte(text)
	}

	info, err := os.Stat(spec.DestinationDir)
	if err != nil {
		return nil, &Error{Code: ErrCodeDestinationUnwritable, Path: spec.DestinationDir, Err: err}
	}
	if !info.IsDir() {
		return nil, &Error{
			Code: ErrCodeDestinationUnwritable,
			Path: spec.DestinationDir,
			Err:  fmt.Errorf("not a directory"),
		}
	}

	if err := os.WriteFile(receipt.Path, out, 0o644); err != nil {
		return nil, &Error{Code: ErrCodeDestinationUnwritable, Path: receipt.Path, Err: err}
	}

	sum := sha256.Sum256(out)
	receipt.SHA256 = hex.EncodeToString(sum[:])
	receipt.Bytes = len(out)

	s.logger.Info("message delivered",
		"source", spec.Source,
		"path", receipt.Path,
		"bytes", receipt.Bytes,
		"tagged", receipt.Tagged,
		"unique_id", receipt.UniqueID,
		"rewritten", receipt.Rewritten,
	)

	return receipt, nil
}

// InjectUniqueID inserts the identifier text immediately before the first
// uniqueness marker in text. Text without a marker is returned unchanged.
func InjectUniqueID(text string, id int64) string {
	return strings.Replace(text, UniqueMarker, fmt.Sprintf("Message Unique Identifier is %d %s", id, UniqueMarker), 1)
}
