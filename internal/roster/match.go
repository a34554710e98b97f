package roster

import (
	"github.com/rs/zerolog"

	"github.com/pubsync/pubsync/internal/record"
)

// Matcher resolves publication authors to roster usernames, by ORCID
// first and fuzzy name comparison second.
type Matcher struct {
	people []Person
	log    zerolog.Logger
}

// NewMatcher returns a Matcher over people.
func NewMatcher(people []Person, log zerolog.Logger) *Matcher {
	return &Matcher{people: people, log: log}
}

// Username returns the roster username for author, or "" when nobody
// matches. Consortium attributions never match.
func (m *Matcher) Username(author record.Author) string {
	orcid := m.authorORCID(author)
	if orcid != "" {
		var usernames []string
		for _, p := range m.people {
			if p.ORCID == orcid {
				usernames = append(usernames, p.Username)
			}
		}
		if len(usernames) > 0 {
			if len(usernames) > 1 {
				m.log.Warn().Str("orcid", orcid).Strs("usernames", usernames).
					Msg("multiple roster entries share one ORCID")
			}
			return usernames[0]
		}
	}

	if author.Family == "" {
		return ""
	}
	var usernames []string
	for _, p := range m.people {
		// When both sides carry an ORCID and they did not match above,
		// the names agreeing is coincidence, not identity.
		if orcid != "" && p.ORCID != "" {
			continue
		}
		if samePerson(p.Family, p.Given, author.Family, author.Given) {
			usernames = append(usernames, p.Username)
		}
	}
	if len(usernames) == 0 {
		return ""
	}
	if len(usernames) > 1 {
		m.log.Warn().Str("family", author.Family).Str("given", author.Given).
			Strs("usernames", usernames).Msg("multiple roster entries match author name")
	}
	return usernames[0]
}

// authorORCID normalizes the registry-supplied ORCID, falling back to
// name matching when it is malformed.
func (m *Matcher) authorORCID(author record.Author) string {
	if author.ORCID == "" {
		return ""
	}
	orcid, err := SanitizeORCID(author.ORCID)
	if err != nil {
		m.log.Warn().Str("orcid", author.ORCID).Msg("ignoring malformed author ORCID")
		return ""
	}
	return orcid
}
