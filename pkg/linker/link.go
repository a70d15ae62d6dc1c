package linker

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/deployrev/pkg/errors"
	"github.com/arthur-debert/deployrev/pkg/paths"
)

// Link maps a source, relative to shared/ unless absolute, to a target path
// relative to the release
type Link struct {
	Source string `yaml:"source" koanf:"source"`
	Target string `yaml:"target" koanf:"target"`
}

// String renders the link in its "source:target" configuration form
func (l Link) String() string {
	return l.Source + ":" + l.Target
}

// MarshalText implements encoding.TextMarshaler
func (l Link) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using ParseLink
func (l *Link) UnmarshalText(text []byte) error {
	parsed, err := ParseLink(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLink parses the "source:target" form. A bare name links shared/<name>
// to the same relative path in the release.
func ParseLink(s string) (Link, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Link{}, errors.New(errors.ErrInvalidInput, "empty link mapping")
	}

	source, target, found := strings.Cut(s, ":")
	if !found {
		target = source
	}
	link := Link{Source: strings.TrimSpace(source), Target: strings.TrimSpace(target)}

	if err := link.Validate(); err != nil {
		return Link{}, err
	}
	return link, nil
}

// ParseLinks parses each entry with ParseLink
func ParseLinks(entries []string) ([]Link, error) {
	links := make([]Link, 0, len(entries))
	for _, entry := range entries {
		link, err := ParseLink(entry)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, nil
}

// Validate checks that source is set and target stays inside the release
func (l Link) Validate() error {
	if l.Source == "" {
		return errors.Newf(errors.ErrInvalidInput, "link %q has no source", l.String())
	}
	if err := paths.ValidatePath(l.Source); err != nil {
		return err
	}
	if err := paths.ValidateRelativeTarget(l.Target); err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, fmt.Sprintf("invalid link %q", l.String()))
	}
	return nil
}
