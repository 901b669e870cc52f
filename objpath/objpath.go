// Package objpath parses and formats TDMS object paths: the quoted,
// slash-separated identifiers that name the File, Group, and Channel
// objects in a segment's meta-data region.
package objpath

import (
	"strings"
	"unicode/utf8"

	"github.com/arloliu/gotdms/errs"
)

// Kind distinguishes the three levels of the TDMS object hierarchy.
type Kind int

const (
	KindRoot Kind = iota
	KindGroup
	KindChannel
)

// Path is a parsed TDMS object path. Group and Channel hold the
// unescaped (raw) names; use Format to recover the on-disk form.
type Path struct {
	Kind    Kind
	Group   string
	Channel string
}

// Root is the path of the file's root object, "/".
var Root = Path{Kind: KindRoot}

// NewGroup builds a group path for the given raw group name.
func NewGroup(group string) Path {
	return Path{Kind: KindGroup, Group: group}
}

// NewChannel builds a channel path for the given raw group and channel names.
func NewChannel(group, channel string) Path {
	return Path{Kind: KindChannel, Group: group, Channel: channel}
}

// Format renders p in the on-disk quoted form: "/", "/'G'", or "/'G'/'C'",
// with every literal single quote in a name doubled.
func Format(p Path) string {
	switch p.Kind {
	case KindRoot:
		return "/"
	case KindGroup:
		var b strings.Builder
		b.WriteString("/'")
		escapeInto(&b, p.Group)
		b.WriteByte('\'')

		return b.String()
	case KindChannel:
		var b strings.Builder
		b.WriteString("/'")
		escapeInto(&b, p.Group)
		b.WriteString("'/'")
		escapeInto(&b, p.Channel)
		b.WriteByte('\'')

		return b.String()
	default:
		return "/"
	}
}

func escapeInto(b *strings.Builder, name string) {
	for _, r := range name {
		b.WriteRune(r)
		if r == '\'' {
			b.WriteByte('\'')
		}
	}
}

// Parse parses the on-disk quoted form of a path back into a Path.
func Parse(s string) (Path, error) {
	if s == "/" {
		return Root, nil
	}

	if len(s) < 3 || s[0] != '/' || s[1] != '\'' {
		return Path{}, errs.ErrMalformedPath
	}

	segments, err := splitQuoted(s[1:])
	if err != nil {
		return Path{}, err
	}

	switch len(segments) {
	case 1:
		return NewGroup(segments[0]), nil
	case 2:
		return NewChannel(segments[0], segments[1]), nil
	default:
		return Path{}, errs.ErrMalformedPath
	}
}

// splitQuoted splits a string of one or more "'name'" segments, joined by
// "/" between segments, into their unescaped names. s must start with a
// leading quote (the leading "/" of the full path already consumed).
func splitQuoted(s string) ([]string, error) {
	var segments []string

	for len(s) > 0 {
		if s[0] != '\'' {
			return nil, errs.ErrMalformedPath
		}
		s = s[1:]

		var b strings.Builder
		closed := false

		for len(s) > 0 {
			if s[0] == '\'' {
				if len(s) >= 2 && s[1] == '\'' {
					b.WriteByte('\'')
					s = s[2:]

					continue
				}

				s = s[1:]
				closed = true

				break
			}

			r, size := utf8.DecodeRuneInString(s)
			b.WriteRune(r)
			s = s[size:]
		}

		if !closed {
			return nil, errs.ErrMalformedPath
		}

		segments = append(segments, b.String())

		if len(s) == 0 {
			break
		}

		if len(s) < 1 || s[0] != '/' {
			return nil, errs.ErrMalformedPath
		}

		s = s[1:]
	}

	return segments, nil
}
