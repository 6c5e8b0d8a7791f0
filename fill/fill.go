// Package fill walks a parsed catalog and fills in missing translations
// through a translation client. The catalog is mutated in place; the
// caller decides when to write it out.
package fill

import (
	"context"
	"strings"

	"github.com/localehub/potool/pofile"
)

// Translator produces a translation for one source text. The provider
// client implements it; tests use a fake.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Options controls a fill run.
type Options struct {
	// Translator performs the per-entry translation.
	Translator Translator
	// DryRun counts entries without calling the translator.
	DryRun bool
	// OnProgress is called after each entry that needed translation.
	OnProgress func(done, total int)
	// OnLog emits informational messages.
	OnLog func(format string, args ...any)
	// OnError emits per-entry failure messages.
	OnError func(format string, args ...any)
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	} else if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

// Pending returns the entries the run would translate: untranslated,
// non-obsolete entries, excluding the header.
func Pending(catalog *pofile.Catalog) []*pofile.Entry {
	var pending []*pofile.Entry
	for _, e := range catalog.Entries {
		if e.NeedsTranslation() {
			pending = append(pending, e)
		}
	}
	return pending
}

// Run translates every entry of the catalog that needs it and writes the
// results back into the entries. Returns the number of entries filled.
// A translator that degrades to the source text still counts as filled —
// the entry is recorded so the run is reproducible from cache.
//
// Multi-line sources are sent as one newline-joined string; the
// translation's own newlines come back as separate catalog lines through
// the serializer's multi-line quoting.
func Run(ctx context.Context, catalog *pofile.Catalog, opts Options) (int, error) {
	pending := Pending(catalog)
	if len(pending) == 0 {
		opts.log("nothing to translate")
		return 0, nil
	}
	if opts.DryRun {
		opts.log("%d entries need translation", len(pending))
		return 0, nil
	}

	filled := 0
	for i, e := range pending {
		if ctx.Err() != nil {
			return filled, ctx.Err()
		}

		source := e.MsgID
		translated, err := opts.Translator.Translate(ctx, source)
		if err != nil {
			return filled, err
		}
		if translated == "" {
			opts.logError("empty translation for %q, skipping", preview(source))
			continue
		}

		e.MsgStr = translated
		filled++
		opts.log("  %q -> %q", preview(source), preview(translated))
		if opts.OnProgress != nil {
			opts.OnProgress(i+1, len(pending))
		}
	}
	return filled, nil
}

// preview shortens a string for progress output.
func preview(s string) string {
	s = strings.ReplaceAll(s, "\n", "\\n")
	if len(s) > 40 {
		return s[:37] + "..."
	}
	return s
}
