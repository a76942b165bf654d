package header

import (
	"strings"
	"time"
)

// Escape is the control byte that opens both the header and the uniqueness marker.
const Escape = 0x1b

// Marker is the two-byte sequence that opens a header line.
const Marker = "\x1ba"

// PrefixWidth is the byte width of the header tag: ESC, 'a', the class
// letter, '_' and nine uppercase letters.
const PrefixWidth = 13

// minLineWidth is a header line with an empty middle segment.
const minLineWidth = PrefixWidth + 3*StampWidth

// Record is a parsed header line.
type Record struct {
	// Prefix is the 13-byte tag, control characters included.
	Prefix string

	Created   time.Time
	Effective time.Time

	// Middle is the opaque segment between the effective and expire groups.
	// It is never reinterpreted.
	Middle string

	// Expires is the zero time when NeverExpires is set.
	Expires      time.Time
	NeverExpires bool

	// Line is the exact matched text, from the control prefix through the
	// expire group. Start and End are its byte offsets in the parsed text.
	Line  string
	Start int
	End   int
}

// Class returns the originator class letter.
func (r *Record) Class() byte {
	return r.Prefix[2]
}

// Designator returns the nine-letter product designator that follows the class.
func (r *Record) Designator() string {
	return r.Prefix[4:PrefixWidth]
}

// Times is the set of instants written into a header by a rewrite.
type Times struct {
	Created   time.Time
	Effective time.Time
	Expires   time.Time
}

// TimesAt returns created = effective = now and expires = now + expireOffsetMinutes.
func TimesAt(now time.Time, expireOffsetMinutes int) Times {
	return Times{
		Created:   now,
		Effective: now,
		Expires:   now.Add(time.Duration(expireOffsetMinutes) * time.Minute),
	}
}

// Parse locates the first header line in text and decodes its timestamps.
//
// Returns a *ParseError with ErrCodeHeaderNotFound when no line fits the
// layout, or ErrCodeMalformedTimestamp when the first fitting line carries
// a digit group that is not a calendar instant. The expire group may be the
// NeverExpires sentinel.
func Parse(text string) (*Record, error) {
	start, end, ok := locate(text)
	if !ok {
		return nil, errNotFound()
	}
	line := text[start:end]

	rec := &Record{
		Prefix: line[:PrefixWidth],
		Middle: line[PrefixWidth+2*StampWidth : len(line)-StampWidth],
		Line:   line,
		Start:  start,
		End:    end,
	}

	created := line[PrefixWidth : PrefixWidth+StampWidth]
	t, err := ParseStamp(created)
	if err != nil {
		return nil, errMalformed("created", created, err)
	}
	rec.Created = t

	effective := line[PrefixWidth+StampWidth : PrefixWidth+2*StampWidth]
	t, err = ParseStamp(effective)
	if err != nil {
		return nil, errMalformed("effective", effective, err)
	}
	rec.Effective = t

	expires := line[len(line)-StampWidth:]
	if expires == NeverExpires {
		rec.NeverExpires = true
		return rec, nil
	}
	t, err = ParseStamp(expires)
	if err != nil {
		return nil, errMalformed("expires", expires, err)
	}
	rec.Expires = t

	return rec, nil
}

// Render produces the replacement header line for rec with created and
// effective set to now and expires set to now plus expireOffsetMinutes.
func Render(rec *Record, now time.Time, expireOffsetMinutes int) string {
	return RenderTimes(rec, TimesAt(now, expireOffsetMinutes))
}

// RenderTimes produces the header line for rec carrying the given instants.
// Prefix and Middle are copied verbatim.
func RenderTimes(rec *Record, times Times) string {
	var b strings.Builder
	b.Grow(len(rec.Prefix) + len(rec.Middle) + 3*StampWidth)
	b.WriteString(rec.Prefix)
	b.WriteString(FormatStamp(times.Created))
	b.WriteString(FormatStamp(times.Effective))
	b.WriteString(rec.Middle)
	b.WriteString(FormatStamp(times.Expires))
	return b.String()
}

// Rewrite replaces the timestamps of the first header line in text.
func Rewrite(text string, now time.Time, expireOffsetMinutes int) (string, error) {
	return RewriteTimes(text, TimesAt(now, expireOffsetMinutes))
}

// RewriteTimes replaces the timestamps of the first header line in text with
// the given instants. Only the matched span changes.
func RewriteTimes(text string, times Times) (string, error) {
	rec, err := Parse(text)
	if err != nil {
		return "", err
	}
	return text[:rec.Start] + RenderTimes(rec, times) + text[rec.End:], nil
}

// locate returns the byte span of the first header line in text.
func locate(text string) (start, end int, ok bool) {
	from := 0
	for from < len(text) {
		idx := strings.Index(text[from:], Marker)
		if idx < 0 {
			return 0, 0, false
		}
		start = from + idx
		end = lineEnd(text, start)
		if fits(text[start:end]) {
			return start, end, true
		}
		from = start + 1
	}
	return 0, 0, false
}

// lineEnd returns the offset of the end of the line containing pos,
// excluding a trailing carriage return.
func lineEnd(text string, pos int) int {
	end := len(text)
	if nl := strings.IndexByte(text[pos:], '\n'); nl >= 0 {
		end = pos + nl
	}
	if end > pos && text[end-1] == '\r' {
		end--
	}
	return end
}

// fits reports whether line has the fixed-width header layout.
func fits(line string) bool {
	if len(line) < minLineWidth {
		return false
	}
	if line[0] != Escape || line[1] != 'a' {
		return false
	}
	if !isUpper(line[2]) || line[3] != '_' {
		return false
	}
	for i := 4; i < PrefixWidth; i++ {
		if !isUpper(line[i]) {
			return false
		}
	}
	return allDigits(line[PrefixWidth:PrefixWidth+2*StampWidth]) &&
		allDigits(line[len(line)-StampWidth:])
}
