// Package words loads the common word list and groups it by length.
package words

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"svw.info/tiles/internal/domain"
)

// List is a word list grouped by length, file order preserved per bucket.
type List struct {
	byLen map[int][]string
	total int
}

// Load reads a newline-delimited word file.
func Load(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open word list: %w", domain.ErrConfigLoad, err)
	}
	defer f.Close()
	l, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%w: read word list %s: %w", domain.ErrConfigLoad, path, err)
	}
	return l, nil
}

// Read parses words from r: trimmed, upper-cased, blank lines skipped.
func Read(r io.Reader) (*List, error) {
	var ws []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		ws = append(ws, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return FromWords(ws), nil
}

// FromWords builds a List from raw words.
func FromWords(raw []string) *List {
	l := &List{byLen: make(map[int][]string)}
	for _, w := range raw {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		n := utf8.RuneCountInString(w)
		l.byLen[n] = append(l.byLen[n], w)
		l.total++
	}
	return l
}

// Bucket returns the words of exactly length letters.
func (l *List) Bucket(length int) []string { return l.byLen[length] }

// Len is the number of words loaded.
func (l *List) Len() int { return l.total }
