// Package rules loads the scoring and timer configuration (game_rules.yaml).
package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"svw.info/tiles/internal/domain"
)

var validate = validator.New()

// FileLoader reads a rule set from a YAML file on every Load call.
type FileLoader struct {
	Path string
}

// NewFileLoader returns a loader for path.
func NewFileLoader(path string) *FileLoader { return &FileLoader{Path: path} }

// Load reads and parses the rules file.
func (l *FileLoader) Load() (domain.RuleSet, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return domain.RuleSet{}, fmt.Errorf("%w: read rules file: %w", domain.ErrConfigLoad, err)
	}
	rs, err := Parse(data)
	if err != nil {
		return domain.RuleSet{}, fmt.Errorf("%w: %s: %w", domain.ErrConfigLoad, l.Path, err)
	}
	return rs, nil
}

// Parse decodes a YAML rule set and validates it. Letters are upper-cased;
// two keys naming the same letter (a and A) are an error. Keys the rule set
// does not know about are ignored.
func Parse(data []byte) (domain.RuleSet, error) {
	var rs domain.RuleSet
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&rs); err != nil && !errors.Is(err, io.EOF) {
		return domain.RuleSet{}, fmt.Errorf("parse rules: %w", err)
	}
	if len(rs.LetterValues) > 0 {
		norm := make(map[string]int, len(rs.LetterValues))
		for k, v := range rs.LetterValues {
			letter := strings.ToUpper(strings.TrimSpace(k))
			if _, dup := norm[letter]; dup {
				return domain.RuleSet{}, fmt.Errorf("letter %q is listed more than once", letter)
			}
			norm[letter] = v
		}
		rs.LetterValues = norm
	}
	if err := validate.Struct(rs); err != nil {
		return domain.RuleSet{}, fmt.Errorf("invalid rules: %w", err)
	}
	return rs, nil
}
