// Package normalize rewrites captured command output into stable,
// human-readable text suitable for embedding in documentation.
package normalize

import (
	"regexp"

	"github.com/charmbracelet/x/ansi"
)

// Default display values for test placeholders.
const (
	DefaultHash     = "a1b2c3d"
	DefaultRepoPath = "../repo"
)

// Normalizer strips terminal control sequences and rewrites test
// placeholders into realistic display values. The zero value is not
// usable; construct with New or NewWithValues.
type Normalizer struct {
	hash string
	repo string

	// Literal bracket notation ([0m, [1;32m, ...) as stored in snapshot
	// files that were captured without the ESC byte. Anchored on the
	// trailing 'm' so ordinary bracketed text like [SHA] survives.
	literalColor *regexp.Regexp

	shaToken  *regexp.Regexp
	hashToken *regexp.Regexp
	repoToken *regexp.Regexp

	// [TMPDIR]/test-repo.<suffix> with the suffix ending at the next
	// path separator or whitespace.
	tmpdirPath *regexp.Regexp
	// The same shape under real temp roots (macOS /var/folders, /tmp,
	// /private/tmp) for snapshots captured without placeholder rewriting.
	tempRootPath *regexp.Regexp
}

// New returns a Normalizer using the default placeholder values.
func New() *Normalizer {
	return NewWithValues(DefaultHash, DefaultRepoPath)
}

// NewWithValues returns a Normalizer that substitutes hash for [SHA]/[HASH]
// tokens and repo for the [REPO] token.
func NewWithValues(hash, repo string) *Normalizer {
	return &Normalizer{
		hash:         hash,
		repo:         repo,
		literalColor: regexp.MustCompile(`\[[0-9;]*m`),
		shaToken:     regexp.MustCompile(`\[SHA\]`),
		hashToken:    regexp.MustCompile(`\[HASH\]`),
		repoToken:    regexp.MustCompile(`\[REPO\]`),
		tmpdirPath:   regexp.MustCompile(`\[TMPDIR\]/test-repo\.([^/\s]+)`),
		tempRootPath: regexp.MustCompile(`/(?:var/folders|tmp|private/tmp)[^/\s]*/[^/\s]*/test-repo\.([^/\s]+)`),
	}
}

// StripControlSequences removes terminal color codes in both forms a
// snapshot may store: real escape sequences and the literal bracket
// notation left behind when the ESC byte was dropped at capture time.
func (n *Normalizer) StripControlSequences(text string) string {
	text = ansi.Strip(text)
	return n.literalColor.ReplaceAllString(text, "")
}

// Placeholders rewrites test placeholders into stable display values:
// [SHA] and [HASH] become a fixed short hash, temp-dir test-repo paths
// become relative ../repo.<suffix> paths, and [REPO] becomes a relative
// repository path. Rules are order-sensitive and purely textual; trailing
// path separators belonging to surrounding content are preserved.
func (n *Normalizer) Placeholders(text string) string {
	text = n.shaToken.ReplaceAllString(text, n.hash)
	text = n.hashToken.ReplaceAllString(text, n.hash)
	text = n.tmpdirPath.ReplaceAllString(text, `../repo.${1}`)
	text = n.tempRootPath.ReplaceAllString(text, `../repo.${1}`)
	text = n.repoToken.ReplaceAllString(text, n.repo)
	return text
}

// Apply runs the full rule set: control-sequence stripping first, then
// placeholder substitution. The order matters; placeholders are plain
// bracketed text and must not be consumed by the color rules.
func (n *Normalizer) Apply(text string) string {
	return n.Placeholders(n.StripControlSequences(text))
}
