package changelog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/monover/monover/domain"
)

const (
	fileName          = "CHANGELOG.md"
	unreleasedHeading = "## [Unreleased]"
	h2Prefix          = "## ["
)

// sectionForType maps conventional commit types onto Keep-a-Changelog
// section headings.
//
//nolint:gochecknoglobals // lookup table
var sectionForType = map[string]string{
	"feat":   "Added",
	"fix":    "Fixed",
	"perf":   "Changed",
	"revert": "Changed",
}

// sectionOrder fixes the heading order inside a release section.
//
//nolint:gochecknoglobals // lookup table
var sectionOrder = []string{"Added", "Changed", "Fixed", "Other"}

// Writer maintains one Keep-a-Changelog formatted CHANGELOG.md per module.
type Writer struct{}

// NewWriter creates a changelog writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write inserts a release section for the given change into the module's
// CHANGELOG.md, right below the "## [Unreleased]" heading. The file is
// created with a standard preamble when absent.
func (w *Writer) Write(
	change domain.ProcessedChange,
	commits []domain.ClassifiedCommit,
	date time.Time,
) error {
	path := filepath.Join(change.Module.Path, fileName)

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		content = []byte(preamble(change.Module.Name))
	} else if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	section := releaseSection(change, commits, date)
	updated := insertReleaseSection(string(content), section)

	if writeErr := os.WriteFile(path, []byte(updated), 0o644); writeErr != nil {
		return fmt.Errorf("failed to write %s: %w", path, writeErr)
	}

	logger.Debugf("[changelog] %s: added section for %s", change.Module.ID, change.ToVersion)
	return nil
}

// preamble is the header of a freshly created changelog.
func preamble(moduleName string) string {
	return fmt.Sprintf(`# Changelog

All notable changes to %s will be documented in this file.

%s
`, moduleName, unreleasedHeading)
}

// releaseSection renders the lines of one release section, commits grouped
// by Keep-a-Changelog heading.
func releaseSection(
	change domain.ProcessedChange,
	commits []domain.ClassifiedCommit,
	date time.Time,
) []string {
	lines := []string{
		"",
		fmt.Sprintf("## [%s] - %s", change.ToVersion, date.UTC().Format("2006-01-02")),
	}

	if change.Reason == domain.ReasonCascade {
		lines = append(lines, "", "- Updated internal dependencies.")
		return lines
	}

	grouped := make(map[string][]string)
	for _, c := range commits {
		section, ok := sectionForType[c.Type]
		if !ok {
			section = "Other"
		}
		bullet := "- " + c.Subject
		if c.Scope != "" {
			bullet = fmt.Sprintf("- **%s**: %s", c.Scope, c.Subject)
		}
		if c.Breaking {
			bullet += " (BREAKING)"
		}
		grouped[section] = append(grouped[section], bullet)
	}

	for _, section := range sectionOrder {
		bullets := grouped[section]
		if len(bullets) == 0 {
			continue
		}
		sort.Strings(bullets)
		lines = append(lines, "", "### "+section, "")
		lines = append(lines, bullets...)
	}

	return lines
}

// insertReleaseSection splices the section below the "## [Unreleased]"
// heading, or before the first release heading when the file has no
// Unreleased section, or at the end otherwise.
func insertReleaseSection(content string, section []string) string {
	lines := strings.Split(content, "\n")

	at := len(lines)
	if idx := findUnreleasedIndex(lines); idx >= 0 {
		at = idx + 1
	} else if idx := findFirstH2Index(lines); idx >= 0 {
		at = idx
	}

	result := make([]string, 0, len(lines)+len(section))
	result = append(result, lines[:at]...)
	result = append(result, section...)
	result = append(result, lines[at:]...)
	return strings.Join(result, "\n")
}

// findUnreleasedIndex returns the line index of the "## [Unreleased]"
// heading, or -1 if not found.
func findUnreleasedIndex(lines []string) int {
	for i, line := range lines {
		if strings.TrimSpace(line) == unreleasedHeading {
			return i
		}
	}
	return -1
}

// findFirstH2Index returns the line index of the first "## [" heading, or
// -1 if not found.
func findFirstH2Index(lines []string) int {
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), h2Prefix) {
			return i
		}
	}
	return -1
}
