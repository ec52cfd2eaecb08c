package templatestore

import (
	"cmp"
	"slices"

	"golang.org/x/text/language"
)

// candidate is a translation considered for a lookup.
type candidate struct {
	channel  string
	language string
	body     string
	status   Status
}

// pick selects the best active candidate for channel and lang.
//
// Candidates of the requested channel win over DefaultChannel ones. Within the
// channel the language is matched with BCP 47 rules; without a match the
// fallback language is used, then the first language in lexical order.
func pick(candidates []candidate, channel, lang, fallback string) (candidate, bool) {
	if channel == "" {
		channel = DefaultChannel
	}

	var scoped []candidate
	for _, want := range []string{channel, DefaultChannel} {
		for _, c := range candidates {
			if c.status == StatusActive && cmp.Or(c.channel, DefaultChannel) == want {
				scoped = append(scoped, c)
			}
		}
		if len(scoped) > 0 {
			break
		}
	}
	if len(scoped) == 0 {
		return candidate{}, false
	}
	if len(scoped) == 1 {
		return scoped[0], true
	}

	// The matcher falls back to its first tag, so the fallback language goes first.
	slices.SortStableFunc(scoped, func(a, b candidate) int {
		switch {
		case a.language == fallback && b.language != fallback:
			return -1
		case b.language == fallback && a.language != fallback:
			return 1
		}
		return cmp.Compare(a.language, b.language)
	})

	tags := make([]language.Tag, len(scoped))
	for i, c := range scoped {
		tags[i] = parseTag(c.language)
	}

	requested := parseTag(lang)
	if requested == language.Und {
		return scoped[0], true
	}

	_, idx, conf := language.NewMatcher(tags).Match(requested)
	if conf == language.No || idx < 0 || idx >= len(scoped) {
		return scoped[0], true
	}
	return scoped[idx], true
}

func parseTag(s string) language.Tag {
	if s == "" {
		return language.Und
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und
	}
	return tag
}
