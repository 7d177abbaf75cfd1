// Package markers scans documentation text for snapshot-backed and
// help-backed marker regions, replacing or checking the fenced content
// they enclose.
//
// Marker syntax:
//
//	<!-- README:snapshot:tests/snapshots/list.snap -->
//	```bash
//	$ tool list
//	... replaced content ...
//	```
//	<!-- README:end -->
//
//	<!-- README:help:tool --help -->
//	prose kept verbatim
//	```
//	... replaced content ...
//	```
//	prose kept verbatim
//	<!-- README:end -->
package markers

import (
	"errors"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/fulmenhq/readmesync/pkg/helpcmd"
	"github.com/fulmenhq/readmesync/pkg/normalize"
	"github.com/fulmenhq/readmesync/pkg/snapshot"
)

// Dialect names the marker flavor a region was matched by.
type Dialect string

const (
	DialectSnapshot Dialect = "snapshot"
	DialectHelp     Dialect = "help"
)

// Outcome is the per-region status reported after an update or check pass.
type Outcome string

const (
	OutcomeUpdated     Outcome = "updated"
	OutcomeOK          Outcome = "ok"
	OutcomeNeedsReview Outcome = "needs review"
	OutcomeNotFound    Outcome = "NOT FOUND"
	OutcomeError       Outcome = "ERROR"
	// OutcomeSkipped marks help regions during check passes; their
	// commands are not re-executed for staleness checking.
	OutcomeSkipped Outcome = "skipped"
)

// Result records the outcome for one marker region.
type Result struct {
	Dialect    Dialect
	Identifier string // snapshot path or command line
	Outcome    Outcome
	Detail     string // cause for NOT FOUND / ERROR
	Stale      bool   // counts toward a non-zero check exit
	Current    string // stored payload (check mode, trimmed)
	Fresh      string // freshly resolved payload (check mode, trimmed)
	pos        int    // byte offset of the region, for document ordering
}

// Engine matches marker regions and resolves their fresh content. The
// matchers are compiled per instance; there is no package-level state.
type Engine struct {
	root string
	norm *normalize.Normalizer
	snap *snapshot.Extractor
	help *helpcmd.Runner

	// Update form: fence language tag required, optional "$ " echo line
	// captured separately so it survives replacement untouched.
	snapshotRegion *regexp.Regexp
	// Check form: language tag optional, echo line skipped unanchored.
	snapshotCheck *regexp.Regexp
	// Help form: prose, one untagged fence, prose.
	helpRegion *regexp.Regexp
}

// NewEngine returns an Engine resolving snapshot paths and running help
// commands relative to the project root.
func NewEngine(root string, norm *normalize.Normalizer) *Engine {
	return &Engine{
		root: root,
		norm: norm,
		snap: snapshot.NewExtractor(root, norm),
		help: helpcmd.NewRunner(root, norm),
		snapshotRegion: regexp.MustCompile(
			"(<!-- README:snapshot:([^\\s]+) -->)\n" +
				"```(\\w+)\n" +
				"(\\$ [^\n]+\n)?" +
				"(?s:(.*?))" +
				"```\n" +
				"(<!-- README:end -->)"),
		snapshotCheck: regexp.MustCompile(
			"<!-- README:snapshot:([^\\s]+) -->\n" +
				"```\\w*\n" +
				"(?:\\$ [^\n]+\n)?" +
				"(?s:(.*?))" +
				"```\n" +
				"<!-- README:end -->"),
		helpRegion: regexp.MustCompile(
			"(<!-- README:help:([^\n]+) -->)\n" +
				"(?s:(.*?))" +
				"```\n" +
				"(?s:(.*?))" +
				"```\n" +
				"(?s:(.*?))" +
				"(<!-- README:end -->)"),
	}
}

// Update replaces the fenced payload of every matched region with freshly
// resolved content and returns the new document text plus per-region
// results in document order. Regions whose resolution fails are left
// byte-identical. Both dialects are matched in a single pass each; a
// replacement never affects how other regions match.
func (e *Engine) Update(doc string) (string, []Result) {
	var results []Result

	doc = e.replaceAll(doc, e.snapshotRegion, func(m []string, pos int) (string, bool) {
		startMarker, snapPath, lang, echo, endMarker := m[1], m[2], m[3], m[4], m[6]

		fresh, err := e.snap.Resolve(snapPath)
		if err != nil {
			results = append(results, snapshotFailure(snapPath, e.root, err, pos))
			return "", false
		}
		fresh = e.norm.Placeholders(fresh)
		results = append(results, Result{
			Dialect: DialectSnapshot, Identifier: snapPath, Outcome: OutcomeUpdated, pos: pos,
		})
		return startMarker + "\n```" + lang + "\n" + echo + fresh + "\n```\n" + endMarker, true
	})

	doc = e.replaceAll(doc, e.helpRegion, func(m []string, pos int) (string, bool) {
		startMarker, command, before, after, endMarker := m[1], m[2], m[3], m[5], m[6]

		fresh, err := e.help.Capture(command)
		if err != nil {
			results = append(results, Result{
				Dialect: DialectHelp, Identifier: command, Outcome: OutcomeError,
				Detail: err.Error(), Stale: true, pos: pos,
			})
			return "", false
		}
		results = append(results, Result{
			Dialect: DialectHelp, Identifier: command, Outcome: OutcomeUpdated, pos: pos,
		})
		return startMarker + "\n" + before + "```\n" + fresh + "\n```\n" + after + endMarker, true
	})

	sort.SliceStable(results, func(i, j int) bool { return results[i].pos < results[j].pos })
	return doc, results
}

// Check compares each snapshot region's stored payload against freshly
// resolved content, after trimming incidental surrounding whitespace.
// Help regions are listed but never re-executed. Results are in document
// order.
func (e *Engine) Check(doc string) []Result {
	var results []Result

	for _, idx := range e.snapshotCheck.FindAllStringSubmatchIndex(doc, -1) {
		snapPath := doc[idx[2]:idx[3]]
		current := strings.TrimSpace(doc[idx[4]:idx[5]])

		fresh, err := e.snap.Resolve(snapPath)
		if err != nil {
			results = append(results, snapshotFailure(snapPath, e.root, err, idx[0]))
			continue
		}
		fresh = strings.TrimSpace(e.norm.Placeholders(fresh))

		r := Result{
			Dialect: DialectSnapshot, Identifier: snapPath,
			Current: current, Fresh: fresh, pos: idx[0],
		}
		if fresh != current {
			r.Outcome = OutcomeNeedsReview
			r.Stale = true
		} else {
			r.Outcome = OutcomeOK
		}
		results = append(results, r)
	}

	for _, idx := range e.helpRegion.FindAllStringSubmatchIndex(doc, -1) {
		command := doc[idx[4]:idx[5]]
		results = append(results, Result{
			Dialect: DialectHelp, Identifier: command, Outcome: OutcomeSkipped, pos: idx[0],
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].pos < results[j].pos })
	return results
}

// replaceAll splices replacements into doc for every match of re. The
// callback receives the submatch texts and the match offset; returning
// ok=false keeps the original region bytes.
func (e *Engine) replaceAll(doc string, re *regexp.Regexp, repl func(m []string, pos int) (string, bool)) string {
	matches := re.FindAllStringSubmatchIndex(doc, -1)
	if len(matches) == 0 {
		return doc
	}

	var b strings.Builder
	b.Grow(len(doc))
	last := 0
	for _, idx := range matches {
		groups := make([]string, 0, len(idx)/2)
		for g := 0; g < len(idx); g += 2 {
			if idx[g] < 0 {
				groups = append(groups, "")
			} else {
				groups = append(groups, doc[idx[g]:idx[g+1]])
			}
		}
		b.WriteString(doc[last:idx[0]])
		if out, ok := repl(groups, idx[0]); ok {
			b.WriteString(out)
		} else {
			b.WriteString(doc[idx[0]:idx[1]])
		}
		last = idx[1]
	}
	b.WriteString(doc[last:])
	return b.String()
}

func snapshotFailure(snapPath, root string, err error, pos int) Result {
	r := Result{Dialect: DialectSnapshot, Identifier: snapPath, Stale: true, pos: pos}
	if errors.Is(err, snapshot.ErrNotFound) {
		r.Outcome = OutcomeNotFound
		r.Detail = filepath.Join(root, snapPath)
	} else {
		r.Outcome = OutcomeError
		r.Detail = err.Error()
	}
	return r
}
