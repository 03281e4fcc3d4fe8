// Package rules loads sanitization rules from an optional project-local
// rules file and guarantees the built-in redaction rule is always present.
package rules

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/chainlink-tools/safe-fetch/src/config"
)

// Rule is a single regex pattern and its replacement text.
type Rule struct {
	Pattern     string
	Replacement string
}

// RuleSet is an ordered list of rules. Order is significant: rules apply
// sequentially, each consuming the previous rule's output.
type RuleSet []Rule

// Builtin is the always-active redaction rule for the known hijack trigger.
// It is appended to every loaded rule set unless the rules file already
// defines a rule with the identical pattern text.
var Builtin = Rule{
	Pattern:     `ANTHROPIC_MAGIC_STRING_TRIGGER_REFUSAL_[0-9A-Z]+`,
	Replacement: `[REDACTED_TRIGGER]`,
}

// delimiter separates pattern from replacement in the rules file.
const delimiter = "|||"

// Store locates and loads the external rules file. The configuration root
// is resolved once at construction; Load re-reads the file on every call so
// rule edits take effect without a restart.
type Store struct {
	path   string // absolute path to the rules file, "" if no root was found
	logger zerolog.Logger
}

// NewStore resolves the rules file location from cfg. If cfg.Root is set it
// is used directly; otherwise the marker directory is discovered by walking
// up from the working directory.
func NewStore(cfg config.RulesConfig, logger zerolog.Logger) *Store {
	s := &Store{logger: logger.With().Str("area", "rules").Logger()}

	root := cfg.Root
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			s.logger.Warn().Err(err).Msg("cannot determine working directory, using built-in rules only")
			return s
		}
		found, ok := FindMarkerDir(cwd, cfg.MarkerDir, cfg.MaxAscent)
		if !ok {
			s.logger.Debug().Str("marker", cfg.MarkerDir).Msg("no marker directory found, using built-in rules only")
			return s
		}
		root = found
	}

	s.path = filepath.Join(root, filepath.FromSlash(cfg.File))
	return s
}

// FindMarkerDir walks upward from start looking for a directory named marker,
// checking at most maxAscent levels. Returns the marker directory path.
func FindMarkerDir(start, marker string, maxAscent int) (string, bool) {
	dir := start
	for i := 0; i < maxAscent; i++ {
		candidate := filepath.Join(dir, marker)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// Load reads the rules file and returns the resulting rule set. Any failure
// is non-fatal: parse problems skip the offending line, I/O problems fall
// back to whatever was collected. The built-in rule is always appended unless
// already present, so the result is never empty.
func (s *Store) Load() RuleSet {
	var rs RuleSet

	if s.path != "" {
		rs = s.readFile()
	}

	for _, r := range rs {
		if r.Pattern == Builtin.Pattern {
			return rs
		}
	}
	return append(rs, Builtin)
}

func (s *Store) readFile() RuleSet {
	f, err := os.Open(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("error loading rules file")
		}
		return nil
	}
	defer f.Close()

	var rs RuleSet
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, delimiter)
		if len(parts) != 2 {
			continue
		}
		rs = append(rs, Rule{
			Pattern:     strings.TrimSpace(parts[0]),
			Replacement: strings.TrimSpace(parts[1]),
		})
	}
	if err := sc.Err(); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("error reading rules file")
	}

	return rs
}
