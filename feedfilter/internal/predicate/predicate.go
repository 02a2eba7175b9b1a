// Package predicate holds the feed item classifiers. Each predicate is a
// pure function over extracted facts; a Set evaluates the ones whose
// toggle is on and ORs the verdicts.
package predicate

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hazyhaar/leanbrew/feedfilter/verdict"
)

// Func classifies one item. true means "remove".
type Func func(verdict.Facts) bool

// Defaults.
const (
	DefaultMaxOneLiner = 70
	DefaultMaxAge      = 24 * time.Hour
)

// OneLiner fires on short, single-line, media-free posts: fewer than
// maxLen characters, no newline, no media. All three are required.
func OneLiner(maxLen int) Func {
	if maxLen <= 0 {
		maxLen = DefaultMaxOneLiner
	}
	return func(f verdict.Facts) bool {
		return utf8.RuneCountInString(f.Text) < maxLen &&
			!strings.Contains(f.Text, "\n") &&
			!f.HasMedia
	}
}

// OldPost fires when the post was published more than maxAge before now.
// Undated posts never fire.
func OldPost(now func() time.Time, maxAge time.Duration) Func {
	if now == nil {
		now = time.Now
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return func(f verdict.Facts) bool {
		if !f.Dated() {
			return false
		}
		return now().Sub(f.PublishedAt) > maxAge
	}
}

// Ad is the promoted-content hook. No detection is wired yet.
func Ad(verdict.Facts) bool { return false }

// AIReply is the generated-reply hook. No detection is wired yet.
func AIReply(verdict.Facts) bool { return false }

// Term is the blocked-term hook. The toggle exists but no term list is
// configured anywhere, so it never fires.
func Term(verdict.Facts) bool { return false }

// Rule binds a predicate to the category whose toggle enables it.
type Rule struct {
	Category verdict.Category
	Match    Func
}

// Set is an ordered list of rules.
type Set struct {
	rules []Rule
}

// Options tunes the default rule set.
type Options struct {
	MaxOneLiner int
	MaxAge      time.Duration
	Now         func() time.Time
}

// NewSet returns the five rules, one per toggle.
func NewSet(opts Options) *Set {
	return &Set{rules: []Rule{
		{Category: verdict.CategoryOneLiner, Match: OneLiner(opts.MaxOneLiner)},
		{Category: verdict.CategoryOldPost, Match: OldPost(opts.Now, opts.MaxAge)},
		{Category: verdict.CategoryAd, Match: Ad},
		{Category: verdict.CategoryAIReply, Match: AIReply},
		{Category: verdict.CategoryTerm, Match: Term},
	}}
}

// Replace swaps the predicate bound to c. Unknown categories are appended.
func (s *Set) Replace(c verdict.Category, fn Func) {
	for i := range s.rules {
		if s.rules[i].Category == c {
			s.rules[i].Match = fn
			return
		}
	}
	s.rules = append(s.rules, Rule{Category: c, Match: fn})
}

// Evaluate runs every enabled rule and returns the categories that fired.
// A disabled rule is never evaluated. The item should be removed iff the
// result is non-empty.
func (s *Set) Evaluate(f verdict.Facts, t verdict.Toggles) []verdict.Category {
	var fired []verdict.Category
	for _, r := range s.rules {
		if !t.Enabled(r.Category) {
			continue
		}
		if r.Match(f) {
			fired = append(fired, r.Category)
		}
	}
	return fired
}
