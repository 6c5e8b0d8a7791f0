// Package pofile reads and writes gettext PO catalogs.
//
// The catalog model round-trips everything the text format carries:
// comments, references, flags, contexts, plural forms, and obsolete
// entries. Files written back stay compatible with msgfmt and friends.
package pofile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Entry is a single message in a catalog. The entry with an empty MsgID
// is the catalog header and carries metadata instead of a translation.
type Entry struct {
	// TranslatorComments are "# " lines.
	TranslatorComments []string
	// ExtractedComments are "#." lines.
	ExtractedComments []string
	// References are "#:" source locations.
	References []string
	// Flags are "#," flags (fuzzy, c-format, ...).
	Flags []string
	// PreviousMsgID is the "#| msgid" value on fuzzy entries.
	PreviousMsgID string

	// MsgCtxt is the disambiguation context; empty for most entries.
	MsgCtxt string
	// MsgID is the source text. Multi-line sources contain embedded "\n".
	MsgID string
	// MsgIDPlural is the plural source text, if any.
	MsgIDPlural string
	// MsgStr is the translation (empty when untranslated).
	MsgStr string
	// MsgStrPlural maps plural form index to translation.
	MsgStrPlural map[int]string

	// Obsolete marks "#~" entries.
	Obsolete bool
}

// IsFuzzy reports whether the entry carries the fuzzy flag.
func (e *Entry) IsFuzzy() bool {
	for _, f := range e.Flags {
		if f == "fuzzy" {
			return true
		}
	}
	return false
}

// IsTranslated reports whether the entry has a usable translation.
func (e *Entry) IsTranslated() bool {
	if e.MsgID == "" {
		return false
	}
	if e.IsFuzzy() {
		return false
	}
	if e.MsgIDPlural != "" {
		if len(e.MsgStrPlural) == 0 {
			return false
		}
		for _, v := range e.MsgStrPlural {
			if v == "" {
				return false
			}
		}
		return true
	}
	return e.MsgStr != ""
}

// NeedsTranslation reports whether the fill workflow should translate
// this entry: the translation is empty or entirely blank after trimming.
// The header entry and obsolete entries never need translation.
func (e *Entry) NeedsTranslation() bool {
	if e.MsgID == "" || e.Obsolete {
		return false
	}
	return strings.TrimSpace(e.MsgStr) == ""
}

// Catalog is a parsed PO file: one header entry plus ordered messages.
type Catalog struct {
	Header  *Entry
	Entries []*Entry
}

// HeaderField returns the value of a header line such as "Language" or
// "Content-Type". Lookup is case-insensitive; missing fields return "".
func (c *Catalog) HeaderField(name string) string {
	if c.Header == nil {
		return ""
	}
	for _, line := range strings.Split(c.Header.MsgStr, "\n") {
		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(line[:idx]), name) {
			return strings.TrimSpace(line[idx+1:])
		}
	}
	return ""
}

// EntryByID finds a non-obsolete entry by context and source text.
func (c *Catalog) EntryByID(msgctxt, msgid string) *Entry {
	for _, e := range c.Entries {
		if e.MsgCtxt == msgctxt && e.MsgID == msgid && !e.Obsolete {
			return e
		}
	}
	return nil
}

// Stats counts translation progress over non-obsolete entries.
func (c *Catalog) Stats() (total, translated, fuzzy, untranslated int) {
	for _, e := range c.Entries {
		if e.MsgID == "" || e.Obsolete {
			continue
		}
		total++
		switch {
		case e.IsFuzzy():
			fuzzy++
		case e.IsTranslated():
			translated++
		default:
			untranslated++
		}
	}
	return
}

// field identifies which keyword a continuation line extends.
type field int

const (
	fieldNone field = iota
	fieldMsgCtxt
	fieldMsgID
	fieldMsgIDPlural
	fieldMsgStr
	fieldMsgStrPlural
)

// Parse reads a PO catalog from r.
func Parse(r io.Reader) (*Catalog, error) {
	c := &Catalog{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		cur       *Entry
		last      field
		pluralIdx int
		line      int
	)

	flush := func() {
		if cur == nil {
			return
		}
		if cur.MsgID == "" && !cur.Obsolete {
			c.Header = cur
		} else {
			c.Entries = append(c.Entries, cur)
		}
		cur, last = nil, fieldNone
	}

	for sc.Scan() {
		line++
		text := sc.Text()

		if strings.TrimSpace(text) == "" {
			flush()
			continue
		}
		if cur == nil {
			cur = &Entry{MsgStrPlural: make(map[int]string)}
		}

		if strings.HasPrefix(text, "#~ ") {
			cur.Obsolete = true
			text = text[3:]
		}

		switch {
		case strings.HasPrefix(text, "#:"):
			cur.References = append(cur.References, strings.TrimSpace(text[2:]))
		case strings.HasPrefix(text, "#,"):
			for _, f := range strings.Split(text[2:], ",") {
				if f = strings.TrimSpace(f); f != "" {
					cur.Flags = append(cur.Flags, f)
				}
			}
		case strings.HasPrefix(text, "#."):
			cur.ExtractedComments = append(cur.ExtractedComments, strings.TrimSpace(text[2:]))
		case strings.HasPrefix(text, "#|"):
			prev := strings.TrimSpace(text[2:])
			if strings.HasPrefix(prev, "msgid ") {
				cur.PreviousMsgID = unquote(strings.TrimPrefix(prev, "msgid "))
			}
		case strings.HasPrefix(text, "#"):
			comment := strings.TrimPrefix(text[1:], " ")
			cur.TranslatorComments = append(cur.TranslatorComments, comment)

		case strings.HasPrefix(text, "msgctxt "):
			cur.MsgCtxt = unquote(strings.TrimPrefix(text, "msgctxt "))
			last = fieldMsgCtxt
		case strings.HasPrefix(text, "msgid_plural "):
			cur.MsgIDPlural = unquote(strings.TrimPrefix(text, "msgid_plural "))
			last = fieldMsgIDPlural
		case strings.HasPrefix(text, "msgid "):
			cur.MsgID = unquote(strings.TrimPrefix(text, "msgid "))
			last = fieldMsgID
		case strings.HasPrefix(text, "msgstr["):
			var idx int
			if n, err := fmt.Sscanf(text, "msgstr[%d]", &idx); err != nil || n != 1 {
				return nil, fmt.Errorf("line %d: bad plural index: %s", line, text)
			}
			end := strings.Index(text, "] ")
			if end < 0 {
				return nil, fmt.Errorf("line %d: bad msgstr[] line: %s", line, text)
			}
			cur.MsgStrPlural[idx] = unquote(text[end+2:])
			last, pluralIdx = fieldMsgStrPlural, idx
		case strings.HasPrefix(text, "msgstr "):
			cur.MsgStr = unquote(strings.TrimPrefix(text, "msgstr "))
			last = fieldMsgStr

		case strings.HasPrefix(text, "\""):
			val := unquote(text)
			switch last {
			case fieldMsgCtxt:
				cur.MsgCtxt += val
			case fieldMsgID:
				cur.MsgID += val
			case fieldMsgIDPlural:
				cur.MsgIDPlural += val
			case fieldMsgStr:
				cur.MsgStr += val
			case fieldMsgStrPlural:
				cur.MsgStrPlural[pluralIdx] += val
			}
		}
	}
	flush()

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return c, nil
}

// ParseFile reads a PO catalog from disk.
func ParseFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Write serializes the catalog.
func (c *Catalog) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if c.Header != nil {
		writeEntry(bw, c.Header)
	}
	for _, e := range c.Entries {
		fmt.Fprintln(bw)
		writeEntry(bw, e)
	}
	return bw.Flush()
}

// WriteFile serializes the catalog to disk.
func (c *Catalog) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeEntry(w *bufio.Writer, e *Entry) {
	prefix := ""
	if e.Obsolete {
		prefix = "#~ "
	}

	for _, cm := range e.TranslatorComments {
		fmt.Fprintf(w, "# %s\n", cm)
	}
	for _, cm := range e.ExtractedComments {
		fmt.Fprintf(w, "#. %s\n", cm)
	}
	for _, ref := range e.References {
		fmt.Fprintf(w, "#: %s\n", ref)
	}
	if len(e.Flags) > 0 {
		fmt.Fprintf(w, "#, %s\n", strings.Join(e.Flags, ", "))
	}
	if e.PreviousMsgID != "" {
		fmt.Fprintf(w, "#| msgid %s\n", quote(e.PreviousMsgID))
	}

	if e.MsgCtxt != "" {
		writeField(w, prefix+"msgctxt", e.MsgCtxt)
	}
	writeField(w, prefix+"msgid", e.MsgID)
	if e.MsgIDPlural != "" {
		writeField(w, prefix+"msgid_plural", e.MsgIDPlural)
		indices := make([]int, 0, len(e.MsgStrPlural))
		for idx := range e.MsgStrPlural {
			indices = append(indices, idx)
		}
		sort.Ints(indices)
		for _, idx := range indices {
			writeField(w, fmt.Sprintf("%smsgstr[%d]", prefix, idx), e.MsgStrPlural[idx])
		}
		return
	}
	writeField(w, prefix+"msgstr", e.MsgStr)
}

// writeField emits a keyword line. Values with embedded newlines use the
// standard multi-line form: an empty string on the keyword line followed
// by one quoted continuation line per source line.
func writeField(w *bufio.Writer, keyword, value string) {
	if !strings.Contains(value, "\n") {
		fmt.Fprintf(w, "%s %s\n", keyword, quote(value))
		return
	}
	fmt.Fprintf(w, "%s \"\"\n", keyword)
	parts := strings.Split(value, "\n")
	for i, part := range parts {
		if i < len(parts)-1 {
			fmt.Fprintf(w, "%s\n", quote(part+"\n"))
		} else if part != "" {
			fmt.Fprintf(w, "%s\n", quote(part))
		}
	}
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	return `"` + s + `"`
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = s[1 : len(s)-1]

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		default:
			b.WriteByte(s[i])
			continue
		}
		i++
	}
	return b.String()
}
