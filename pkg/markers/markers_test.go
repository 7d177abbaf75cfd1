package markers

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulmenhq/readmesync/pkg/normalize"
)

const fence = "```"

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	root := t.TempDir()
	return NewEngine(root, normalize.New()), root
}

func writeSnapshot(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func snapshotRegion(path, lang, echo, body string) string {
	s := "<!-- README:snapshot:" + path + " -->\n" + fence + lang + "\n"
	if echo != "" {
		s += echo + "\n"
	}
	return s + body + "\n" + fence + "\n<!-- README:end -->"
}

func TestUpdateSnapshotRegion(t *testing.T) {
	e, root := newTestEngine(t)
	writeSnapshot(t, root, "snaps/list.snap",
		"---\nsource: tests/cli.rs\n---\n----- stdout -----\ncommit [SHA] created\n----- stderr -----\n")

	doc := "# Tool\n\nIntro.\n\n" +
		snapshotRegion("snaps/list.snap", "bash", "$ tool list", "old stale content") +
		"\n\nOutro.\n"

	updated, results := e.Update(doc)

	require.Len(t, results, 1)
	assert.Equal(t, DialectSnapshot, results[0].Dialect)
	assert.Equal(t, "snaps/list.snap", results[0].Identifier)
	assert.Equal(t, OutcomeUpdated, results[0].Outcome)

	expected := "# Tool\n\nIntro.\n\n" +
		snapshotRegion("snaps/list.snap", "bash", "$ tool list", "commit a1b2c3d created") +
		"\n\nOutro.\n"
	assert.Equal(t, expected, updated)
}

func TestUpdatePreservesEchoLineByteForByte(t *testing.T) {
	e, root := newTestEngine(t)
	writeSnapshot(t, root, "s.snap", "fresh payload\n")

	doc := snapshotRegion("s.snap", "console", "$ tool --verbose run   ", "old")
	updated, _ := e.Update(doc)
	assert.Contains(t, updated, "$ tool --verbose run   \n")
	assert.Contains(t, updated, "fresh payload")
}

func TestUpdateRegionWithoutEchoLine(t *testing.T) {
	e, root := newTestEngine(t)
	writeSnapshot(t, root, "s.snap", "payload")

	doc := snapshotRegion("s.snap", "text", "", "old")
	updated, results := e.Update(doc)
	require.Len(t, results, 1)
	assert.Equal(t, OutcomeUpdated, results[0].Outcome)
	assert.Equal(t, snapshotRegion("s.snap", "text", "", "payload"), updated)
}

func TestUpdateMissingSnapshotLeavesRegionUntouched(t *testing.T) {
	e, _ := newTestEngine(t)

	doc := snapshotRegion("snaps/absent.snap", "bash", "$ tool run", "current content")
	updated, results := e.Update(doc)

	assert.Equal(t, doc, updated)
	require.Len(t, results, 1)
	assert.Equal(t, OutcomeNotFound, results[0].Outcome)
	assert.Contains(t, results[0].Detail, "absent.snap")
}

func TestUpdateIsolationAcrossRegions(t *testing.T) {
	// A missing artifact in one region must not stop the other region
	// from updating.
	e, root := newTestEngine(t)
	writeSnapshot(t, root, "good.snap", "good content\n")

	doc := snapshotRegion("missing.snap", "bash", "", "old a") + "\n\n" +
		snapshotRegion("good.snap", "bash", "", "old b")

	updated, results := e.Update(doc)
	require.Len(t, results, 2)
	assert.Equal(t, OutcomeNotFound, results[0].Outcome)
	assert.Equal(t, OutcomeUpdated, results[1].Outcome)

	assert.Contains(t, updated, "old a")
	assert.Contains(t, updated, "good content")
	assert.NotContains(t, updated, "old b")
}

func TestUpdateHelpRegion(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on unix echo")
	}
	e, _ := newTestEngine(t)

	doc := "<!-- README:help:echo usage synopsis -->\n" +
		"Run it like this:\n" +
		fence + "\n" +
		"stale help text\n" +
		fence + "\n" +
		"See the manual for details.\n" +
		"<!-- README:end -->\n"

	updated, results := e.Update(doc)
	require.Len(t, results, 1)
	assert.Equal(t, DialectHelp, results[0].Dialect)
	assert.Equal(t, "echo usage synopsis", results[0].Identifier)
	assert.Equal(t, OutcomeUpdated, results[0].Outcome)

	expected := "<!-- README:help:echo usage synopsis -->\n" +
		"Run it like this:\n" +
		fence + "\n" +
		"usage synopsis\n" +
		fence + "\n" +
		"See the manual for details.\n" +
		"<!-- README:end -->\n"
	assert.Equal(t, expected, updated)
}

func TestUpdateHelpCommandFailure(t *testing.T) {
	e, _ := newTestEngine(t)

	doc := "<!-- README:help:no-such-binary-qq --help -->\n" +
		"Prose.\n" + fence + "\n" + "old\n" + fence + "\n" + "More.\n" +
		"<!-- README:end -->\n"

	updated, results := e.Update(doc)
	assert.Equal(t, doc, updated)
	require.Len(t, results, 1)
	assert.Equal(t, OutcomeError, results[0].Outcome)
}

func TestUpdateIdempotent(t *testing.T) {
	e, root := newTestEngine(t)
	writeSnapshot(t, root, "s.snap",
		"---\nsource: t\n---\n----- stdout -----\nline one\nline two\n----- stderr -----\n")

	doc := snapshotRegion("s.snap", "bash", "$ tool", "old")
	once, _ := e.Update(doc)
	twice, results := e.Update(once)

	assert.Equal(t, once, twice)
	require.Len(t, results, 1)
	assert.Equal(t, OutcomeUpdated, results[0].Outcome)
}

func TestUpdateUnterminatedRegionSkipped(t *testing.T) {
	e, root := newTestEngine(t)
	writeSnapshot(t, root, "s.snap", "fresh\n")

	doc := "<!-- README:snapshot:s.snap -->\n" + fence + "bash\nold\n" + fence + "\nno end marker here\n"
	updated, results := e.Update(doc)
	assert.Equal(t, doc, updated)
	assert.Empty(t, results)
}

func TestUpdateResultsInDocumentOrder(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on unix echo")
	}
	e, root := newTestEngine(t)
	writeSnapshot(t, root, "s.snap", "snap content\n")

	doc := "<!-- README:help:echo first -->\np\n" + fence + "\nx\n" + fence + "\nq\n<!-- README:end -->\n\n" +
		snapshotRegion("s.snap", "bash", "", "old")

	_, results := e.Update(doc)
	require.Len(t, results, 2)
	assert.Equal(t, DialectHelp, results[0].Dialect)
	assert.Equal(t, DialectSnapshot, results[1].Dialect)
}

func TestCheckOutcomes(t *testing.T) {
	e, root := newTestEngine(t)
	writeSnapshot(t, root, "fresh.snap", "current content\n")
	writeSnapshot(t, root, "drifted.snap", "new content\n")

	doc := snapshotRegion("fresh.snap", "bash", "$ tool", "current content") + "\n\n" +
		snapshotRegion("drifted.snap", "bash", "$ tool", "old content") + "\n\n" +
		snapshotRegion("gone.snap", "bash", "$ tool", "whatever")

	results := e.Check(doc)
	require.Len(t, results, 3)

	assert.Equal(t, OutcomeOK, results[0].Outcome)
	assert.False(t, results[0].Stale)

	assert.Equal(t, OutcomeNeedsReview, results[1].Outcome)
	assert.True(t, results[1].Stale)
	assert.Equal(t, "old content", results[1].Current)
	assert.Equal(t, "new content", results[1].Fresh)

	assert.Equal(t, OutcomeNotFound, results[2].Outcome)
	assert.True(t, results[2].Stale)
}

func TestCheckTrimsIncidentalWhitespace(t *testing.T) {
	e, root := newTestEngine(t)
	writeSnapshot(t, root, "s.snap", "content\n\n")

	doc := snapshotRegion("s.snap", "bash", "", "content")
	results := e.Check(doc)
	require.Len(t, results, 1)
	assert.Equal(t, OutcomeOK, results[0].Outcome)
}

func TestCheckSkipsHelpRegions(t *testing.T) {
	e, _ := newTestEngine(t)

	doc := "<!-- README:help:tool --help -->\np\n" + fence + "\nx\n" + fence + "\nq\n<!-- README:end -->\n"
	results := e.Check(doc)
	require.Len(t, results, 1)
	assert.Equal(t, DialectHelp, results[0].Dialect)
	assert.Equal(t, OutcomeSkipped, results[0].Outcome)
	assert.False(t, results[0].Stale)
}

func TestCheckMatchesRegionWithoutLanguageTag(t *testing.T) {
	e, root := newTestEngine(t)
	writeSnapshot(t, root, "s.snap", "content\n")

	doc := "<!-- README:snapshot:s.snap -->\n" + fence + "\ncontent\n" + fence + "\n<!-- README:end -->"
	results := e.Check(doc)
	require.Len(t, results, 1)
	assert.Equal(t, OutcomeOK, results[0].Outcome)
}

func TestUpdateNormalizesEmbeddedPlaceholders(t *testing.T) {
	e, root := newTestEngine(t)
	writeSnapshot(t, root, "s.snap",
		"----- stdout -----\nSwitched to [TMPDIR]/test-repo.feature-x/sub at [SHA]\n----- stderr -----\n")

	doc := snapshotRegion("s.snap", "bash", "", "old")
	updated, _ := e.Update(doc)
	assert.True(t, strings.Contains(updated, "Switched to ../repo.feature-x/sub at a1b2c3d"), "got: %s", updated)
}
