package ink

import "strings"

// OutputStream accumulates Objects produced by the step loop (typically
// ValueObject(String), ControlCommand markers for string-building, and
// Tag) and memoizes the text/tags scans over it, invalidating the cache
// on every mutation (spec.md §3, §9 "Output-stream laziness").
type OutputStream struct {
	items []Object

	dirty       bool
	cachedText  string
	cachedTags  []string
}

func NewOutputStream() *OutputStream {
	return &OutputStream{dirty: true}
}

func (o *OutputStream) Len() int { return len(o.items) }

func (o *OutputStream) invalidate() { o.dirty = true }

func (o *OutputStream) Append(obj Object) {
	o.items = append(o.items, obj)
	o.invalidate()
}

func (o *OutputStream) TruncateTo(n int) {
	if n < len(o.items) {
		o.items = o.items[:n]
		o.invalidate()
	}
}

func (o *OutputStream) Items() []Object { return o.items }

// AddGlue appends a Glue marker, suppressing the newline boundary
// between the fragments on either side of it (spec.md §4 Glue).
func (o *OutputStream) AddGlue() {
	o.Append(&Glue{})
}

// EndsInNewline reports whether the accumulated text (after any glue
// merging) ends with a newline not followed by further non-whitespace
// content — the "complete line" boundary Continue waits for.
func (o *OutputStream) EndsInNewline() bool {
	return strings.HasSuffix(o.Text(), "\n")
}

// Text recomputes (or returns the memoized) current text, concatenating
// String values while letting Glue markers suppress the newline that
// would otherwise separate adjacent fragments.
func (o *OutputStream) Text() string {
	if !o.dirty {
		return o.cachedText
	}
	o.recompute()
	return o.cachedText
}

// Tags returns the Tag texts of every item in the stream.
func (o *OutputStream) Tags() []string {
	if !o.dirty {
		return append([]string(nil), o.cachedTags...)
	}
	o.recompute()
	return append([]string(nil), o.cachedTags...)
}

func (o *OutputStream) recompute() {
	var sb strings.Builder
	var tags []string
	glued := false
	for _, obj := range o.items {
		switch v := obj.(type) {
		case *ValueObject:
			if sv, ok := v.Value.(StringValue); ok {
				s := string(sv)
				if glued {
					sb.WriteString(strings.TrimPrefix(s, "\n"))
					glued = false
				} else {
					sb.WriteString(s)
				}
			}
		case *Glue:
			glued = true
			trimTrailingNewline(&sb)
		case *Tag:
			tags = append(tags, v.Text)
		}
	}
	o.cachedText = sb.String()
	o.cachedTags = tags
	o.dirty = false
}

// TextRange concatenates the String fragments of items[start:end], for
// EvaluateFunction's need to capture only the output produced during
// the call (spec.md §6). It does not apply the glue suppression rule
// across the range boundary, since a call's first fragment never
// glues to content that preceded the call.
func (o *OutputStream) TextRange(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(o.items) {
		end = len(o.items)
	}
	var sb strings.Builder
	glued := false
	for _, obj := range o.items[start:end] {
		switch v := obj.(type) {
		case *ValueObject:
			if sv, ok := v.Value.(StringValue); ok {
				s := string(sv)
				if glued {
					sb.WriteString(strings.TrimPrefix(s, "\n"))
					glued = false
				} else {
					sb.WriteString(s)
				}
			}
		case *Glue:
			glued = true
			trimTrailingNewline(&sb)
		}
	}
	return sb.String()
}

// TagsRange returns the Tag texts among items[start:end], for scoping
// CurrentTags to the line a single Continue call just produced.
func (o *OutputStream) TagsRange(start, end int) []string {
	if start < 0 {
		start = 0
	}
	if end > len(o.items) {
		end = len(o.items)
	}
	var tags []string
	for _, obj := range o.items[start:end] {
		if t, ok := obj.(*Tag); ok {
			tags = append(tags, t.Text)
		}
	}
	return tags
}

func trimTrailingNewline(sb *strings.Builder) {
	s := sb.String()
	if strings.HasSuffix(s, "\n") {
		sb.Reset()
		sb.WriteString(s[:len(s)-1])
	}
}

// isWhitespaceOnly reports whether a fragment of output stream text
// contains only spaces, tabs, carriage returns, and newlines — the
// classification DESIGN.md's resolved Open Question #1 uses to decide
// what a function pop trims.
func isWhitespaceOnly(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
