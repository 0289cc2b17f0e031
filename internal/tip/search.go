package tip

import (
	"fmt"
	"regexp"
	"strings"
)

// Component selects which part of a tip a search pattern is applied to.
type Component int

// Components a search can target.
const (
	ComponentAll Component = iota
	ComponentSubject
	ComponentTags
	ComponentContent
)

func (c Component) String() string {
	switch c {
	case ComponentSubject:
		return "subject"
	case ComponentTags:
		return "tags"
	case ComponentContent:
		return "content"
	default:
		return "all"
	}
}

// ParseComponent accepts subject, tag, tags, data, content and all
// (case-insensitive). An empty string means all.
func ParseComponent(raw string) (Component, error) {
	switch strings.ToLower(raw) {
	case "", "all":
		return ComponentAll, nil
	case "subject":
		return ComponentSubject, nil
	case "tag", "tags":
		return ComponentTags, nil
	case "data", "content":
		return ComponentContent, nil
	}

	return ComponentAll, fmt.Errorf("%w: %s", ErrUnknownComponent, raw)
}

// ContentReader returns the content of a tip. Content search reads every
// candidate's content file through it.
type ContentReader interface {
	ReadContent(ref string) (string, error)
}

// Search returns the tips in c matching pattern in the selected component,
// in collection order. The pattern is a regular expression and is compiled
// once per call.
//
// Tags are matched against their quoted rendering (see [Metadata.QuotedTags]),
// so an anchored pattern has to account for the quotes: `^"kitchen"$`.
//
// ComponentAll tries subject, then content, then tags, and stops at the first
// hit. No matches is not an error.
func Search(c *Collection, pattern string, component Component, content ContentReader) ([]Tip, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, pattern, err)
	}

	var matches []Tip

	for _, t := range c.Tips {
		hit, matchErr := match(re, t, component, content)
		if matchErr != nil {
			return nil, matchErr
		}

		if hit {
			matches = append(matches, t)
		}
	}

	return matches, nil
}

func match(re *regexp.Regexp, t Tip, component Component, content ContentReader) (bool, error) {
	switch component {
	case ComponentSubject:
		return re.MatchString(t.Metadata.Subject), nil

	case ComponentTags:
		for _, tag := range t.Metadata.QuotedTags() {
			if re.MatchString(tag) {
				return true, nil
			}
		}

		return false, nil

	case ComponentContent:
		text, err := content.ReadContent(t.ContentRef)
		if err != nil {
			return false, fmt.Errorf("search tip %d: %w", t.Metadata.ID, err)
		}

		return re.MatchString(text), nil

	default:
		for _, part := range []Component{ComponentSubject, ComponentContent, ComponentTags} {
			hit, err := match(re, t, part, content)
			if err != nil || hit {
				return hit, err
			}
		}

		return false, nil
	}
}
