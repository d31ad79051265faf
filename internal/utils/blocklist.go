package utils

import (
	"bufio"
	"os"
	"strings"
)

// Blocklist holds terms used to hide catalog results by title
type Blocklist struct {
	terms []string
}

// NewBlocklist builds a blocklist from in-memory terms
func NewBlocklist(terms ...string) *Blocklist {
	b := &Blocklist{}
	for _, term := range terms {
		if term = strings.TrimSpace(term); term != "" {
			b.terms = append(b.terms, strings.ToLower(term))
		}
	}
	return b
}

// LoadBlocklist loads blocklist terms from a file, one per line, # for comments
func LoadBlocklist(path string) (*Blocklist, error) {
	// If file doesn't exist, return empty blocklist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Blocklist{}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var terms []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		term := strings.TrimSpace(scanner.Text())
		if term != "" && !strings.HasPrefix(term, "#") {
			terms = append(terms, term)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return NewBlocklist(terms...), nil
}

// Len returns the number of terms
func (b *Blocklist) Len() int {
	if b == nil {
		return 0
	}
	return len(b.terms)
}

// IsBlocked checks if a title matches any term
// Returns (isBlocked, matchedTerm)
func (b *Blocklist) IsBlocked(title string) (bool, string) {
	if b == nil {
		return false, ""
	}
	titleLower := strings.ToLower(title)

	for _, term := range b.terms {
		if strings.Contains(titleLower, term) {
			return true, term
		}
	}

	return false, ""
}
