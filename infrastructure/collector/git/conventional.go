package git

import (
	"regexp"
	"strings"

	"github.com/monover/monover/domain"
)

// conventionalPattern matches "type(scope)!: description" subjects. Scope
// and the breaking marker are optional.
var conventionalPattern = regexp.MustCompile(`^([a-zA-Z]+)(?:\(([^)]*)\))?(!)?:\s+(.+)$`)

// ParseConventional classifies one commit message. Unparsable subjects are
// never an error: they classify as type "unknown" and resolve through the
// configured fallback bump kind.
func ParseConventional(hash, message string) domain.ClassifiedCommit {
	subject, body, _ := strings.Cut(message, "\n")
	subject = strings.TrimSpace(subject)

	commit := domain.ClassifiedCommit{
		Hash:    hash,
		Type:    domain.UnknownCommitType,
		Subject: subject,
	}

	if m := conventionalPattern.FindStringSubmatch(subject); m != nil {
		commit.Type = strings.ToLower(m[1])
		commit.Scope = m[2]
		commit.Subject = m[4]
		commit.Breaking = m[3] == "!"
	}

	if hasBreakingFooter(body) {
		commit.Breaking = true
	}

	return commit
}

// hasBreakingFooter reports whether the commit body carries a
// BREAKING CHANGE footer.
func hasBreakingFooter(body string) bool {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "BREAKING CHANGE:") ||
			strings.HasPrefix(trimmed, "BREAKING-CHANGE:") {
			return true
		}
	}
	return false
}
