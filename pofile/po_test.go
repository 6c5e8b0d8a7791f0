package pofile

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseWriteRoundTrip(t *testing.T) {
	input := `msgid ""
msgstr ""
"Project-Id-Version: potool 1.0\n"
"Language: zh\n"

#. extracted comment
#: app.go:12
msgid "hello"
msgstr "你好"

#, fuzzy
#| msgid "old count"
msgid "count"
msgid_plural "counts"
msgstr[0] "one"
msgstr[1] "many"

msgctxt "menu"
msgid "Open"
msgstr ""
`

	c, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if got := c.HeaderField("language"); got != "zh" {
		t.Fatalf("HeaderField(language) = %q, want zh", got)
	}
	if len(c.Entries) != 3 {
		t.Fatalf("entries len = %d, want 3", len(c.Entries))
	}

	plural := c.EntryByID("", "count")
	if plural == nil {
		t.Fatal("count entry not found")
	}
	if !plural.IsFuzzy() {
		t.Fatal("count entry should be fuzzy")
	}
	if plural.PreviousMsgID != "old count" {
		t.Fatalf("PreviousMsgID = %q, want old count", plural.PreviousMsgID)
	}
	if plural.MsgStrPlural[1] != "many" {
		t.Fatalf("MsgStrPlural[1] = %q, want many", plural.MsgStrPlural[1])
	}

	if e := c.EntryByID("menu", "Open"); e == nil {
		t.Fatal("msgctxt entry not found")
	}

	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	round, err := Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("roundtrip Parse error: %v", err)
	}
	if got := round.EntryByID("", "hello"); got == nil || got.MsgStr != "你好" {
		t.Fatalf("roundtrip hello entry = %+v", got)
	}
	if got := round.EntryByID("", "count"); got == nil || got.MsgStrPlural[0] != "one" {
		t.Fatalf("roundtrip count entry = %+v", got)
	}
}

func TestMultilineSerialization(t *testing.T) {
	c := &Catalog{
		Header: &Entry{},
		Entries: []*Entry{
			{MsgID: "A\nB", MsgStr: "X\nY"},
		},
	}

	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()

	// A multi-line translation must serialize as separate continuation
	// lines, not one line with an embedded \n escape.
	if !strings.Contains(out, "msgstr \"\"\n\"X\\n\"\n\"Y\"\n") {
		t.Fatalf("multi-line msgstr not split into continuation lines:\n%s", out)
	}

	round, err := Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("roundtrip Parse error: %v", err)
	}
	e := round.EntryByID("", "A\nB")
	if e == nil {
		t.Fatal("multi-line entry lost in roundtrip")
	}
	if e.MsgStr != "X\nY" {
		t.Fatalf("roundtrip MsgStr = %q, want X\\nY", e.MsgStr)
	}
}

func TestNeedsTranslation(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  bool
	}{
		{"untranslated", Entry{MsgID: "hi"}, true},
		{"blank translation", Entry{MsgID: "hi", MsgStr: "   \n\t"}, true},
		{"translated", Entry{MsgID: "hi", MsgStr: "ciao"}, false},
		{"header", Entry{MsgID: "", MsgStr: "meta"}, false},
		{"obsolete", Entry{MsgID: "hi", Obsolete: true}, false},
	}

	for _, tt := range tests {
		if got := tt.entry.NeedsTranslation(); got != tt.want {
			t.Errorf("%s: NeedsTranslation() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestStats(t *testing.T) {
	c := &Catalog{
		Header: &Entry{},
		Entries: []*Entry{
			{MsgID: "a", MsgStr: "1"},
			{MsgID: "b"},
			{MsgID: "c", MsgStr: "3", Flags: []string{"fuzzy"}},
			{MsgID: "d", MsgStr: "4", Obsolete: true},
		},
	}
	total, translated, fuzzy, untranslated := c.Stats()
	if total != 3 || translated != 1 || fuzzy != 1 || untranslated != 1 {
		t.Fatalf("Stats() = %d,%d,%d,%d; want 3,1,1,1", total, translated, fuzzy, untranslated)
	}
}

func TestQuoteUnquote(t *testing.T) {
	for _, s := range []string{
		"plain",
		"with \"quotes\"",
		"tab\tand\nnewline",
		`back\slash`,
	} {
		if got := unquote(quote(s)); got != s {
			t.Errorf("unquote(quote(%q)) = %q", s, got)
		}
	}
}
