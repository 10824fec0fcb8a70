// Package moderate screens user-authored text against a configurable list
// of banned patterns before it is forwarded to the content backend.
package moderate

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

type Rule struct {
	Name       string   `json:"name"`
	Pattern    string   `json:"pattern"`
	Exceptions []string `json:"exceptions"`

	re *regexp.Regexp
}

type Filter struct {
	rules []Rule
}

// New returns a filter with no rules; Blocked is false for everything
// until rules are loaded.
func New() *Filter {
	return &Filter{}
}

// LoadFromJSON loads rules from a JSON file and compiles their patterns.
func (f *Filter) LoadFromJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return err
	}

	for i := range rules {
		if err := compileRule(&rules[i]); err != nil {
			return err
		}
	}

	f.rules = rules
	return nil
}

// AddRule compiles and appends a single rule.
func (f *Filter) AddRule(r Rule) error {
	if err := compileRule(&r); err != nil {
		return err
	}
	f.rules = append(f.rules, r)

	return nil
}

func compileRule(r *Rule) error {
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return fmt.Errorf("failed to compile pattern %q: %w", r.Pattern, err)
	}
	r.re = re

	return nil
}

func (f *Filter) Enabled() bool {
	return len(f.rules) > 0
}

func normalize(text string) string {
	return strings.TrimSpace(strings.ToLower(text))
}

// Blocked scans text word by word against every rule. A match that appears
// in the rule's exception list does not count.
func (f *Filter) Blocked(text string) bool {
	words := strings.Fields(normalize(text))

	for _, w := range words {
		for _, rule := range f.rules {
			match := rule.re.FindString(w)
			if match == "" {
				continue
			}

			isException := false
			for _, exc := range rule.Exceptions {
				if exc == match {
					isException = true
					break
				}
			}

			if !isException {
				return true
			}
		}
	}

	return false
}
