// Package snapshot extracts the canonical payload from snapshot artifact
// files: front matter is stripped, and for artifacts that capture a
// command's stdout/stderr streams exactly one stream is selected.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/fulmenhq/readmesync/pkg/logger"
	"github.com/fulmenhq/readmesync/pkg/normalize"
	"github.com/fulmenhq/readmesync/pkg/safeio"
)

// ErrNotFound indicates the referenced artifact does not exist on disk.
var ErrNotFound = errors.New("snapshot not found")

const (
	yamlFence = "---"
	tomlFence = "+++"

	stdoutLabel = "----- stdout -----"
	stderrLabel = "----- stderr -----"
)

// Metadata is the front-matter block some snapshot tools prefix to the
// captured content. Decoded on a best-effort basis for diagnostics only;
// a block that fails to decode is still stripped.
type Metadata struct {
	Source      string `yaml:"source" toml:"source"`
	Expression  string `yaml:"expression" toml:"expression"`
	Description string `yaml:"description" toml:"description"`
}

// Extractor turns raw artifact files into normalized payload text. All
// artifact paths are resolved relative to the project root and must stay
// contained within it.
type Extractor struct {
	root string
	norm *normalize.Normalizer

	stdoutSection *regexp.Regexp
	stderrSection *regexp.Regexp
}

// NewExtractor returns an Extractor rooted at the given project directory.
func NewExtractor(root string, norm *normalize.Normalizer) *Extractor {
	return &Extractor{
		root:          root,
		norm:          norm,
		stdoutSection: regexp.MustCompile(`(?s)----- stdout -----\n(.*?)----- stderr -----`),
		stderrSection: regexp.MustCompile(`(?s)----- stderr -----\n(.*?)(?:\z|----- )`),
	}
}

// Resolve reads the artifact at relPath and returns its extracted,
// control-sequence-stripped payload. A missing file reports ErrNotFound;
// any other read failure is wrapped with the artifact path.
func (e *Extractor) Resolve(relPath string) (string, error) {
	data, err := safeio.ReadFileContained(e.root, filepath.Join(e.root, relPath))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, relPath)
		}
		return "", fmt.Errorf("read snapshot %s: %w", relPath, err)
	}
	return e.Extract(string(data)), nil
}

// Extract strips front matter, selects the canonical stream payload, and
// removes control sequences. Malformed front matter and absent stream
// labels are not errors; the text passes through unchanged.
func (e *Extractor) Extract(raw string) string {
	content := e.stripFrontMatter(raw)
	content = e.selectStream(content)
	return e.norm.StripControlSequences(content)
}

// stripFrontMatter removes a leading front-matter block delimited by ---
// (YAML) or +++ (TOML). The text is split on the first two fence
// occurrences; with fewer than two the block is treated as absent.
func (e *Extractor) stripFrontMatter(content string) string {
	var fence string
	switch {
	case strings.HasPrefix(content, yamlFence):
		fence = yamlFence
	case strings.HasPrefix(content, tomlFence):
		fence = tomlFence
	default:
		return content
	}

	parts := strings.SplitN(content, fence, 3)
	if len(parts) < 3 {
		return content
	}

	var meta Metadata
	var decodeErr error
	if fence == yamlFence {
		decodeErr = yaml.Unmarshal([]byte(parts[1]), &meta)
	} else {
		decodeErr = toml.Unmarshal([]byte(parts[1]), &meta)
	}
	if decodeErr != nil {
		logger.Debug("snapshot front matter did not decode", logger.Err(decodeErr))
	} else if meta.Source != "" {
		logger.Debug("snapshot front matter", logger.String("source", meta.Source))
	}

	return strings.TrimSpace(parts[2])
}

// selectStream picks exactly one stream payload from an artifact that
// labels captured stdout and stderr sections. Stdout wins when non-empty
// after trailing-whitespace trim; the streams are never concatenated
// since they are not temporally ordered relative to each other.
func (e *Extractor) selectStream(content string) string {
	if !strings.Contains(content, stdoutLabel) {
		return content
	}

	var stdout, stderr string
	if m := e.stdoutSection.FindStringSubmatch(content); m != nil {
		stdout = strings.TrimRight(m[1], " \t\n\r")
	}
	if m := e.stderrSection.FindStringSubmatch(content); m != nil {
		stderr = strings.TrimRight(m[1], " \t\n\r")
	}

	if stdout != "" {
		return stdout
	}
	return stderr
}
