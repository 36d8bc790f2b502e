package listing

import (
	"time"

	"github.com/simp-lee/classifieds/internal/domain"
)

// DefaultPromotedEvery is the number of regular listings shown between two
// promoted ones.
const DefaultPromotedEvery = 5

// Rank orders listings for the home feed. Promoted listings are taken out of
// the regular stream and one is placed after every `every` regular listings;
// those left over when the regular stream runs out are appended at the end.
// Relative order inside both groups is preserved and nothing is dropped.
func Rank(listings []domain.Listing, now time.Time, every int) []domain.Listing {
	if every <= 0 {
		every = DefaultPromotedEvery
	}

	var promoted, regular []domain.Listing
	for _, l := range listings {
		if l.IsPromoted(now) {
			promoted = append(promoted, l)
		} else {
			regular = append(regular, l)
		}
	}

	out := make([]domain.Listing, 0, len(listings))
	next := 0
	for i, l := range regular {
		out = append(out, l)
		if (i+1)%every == 0 && next < len(promoted) {
			out = append(out, promoted[next])
			next++
		}
	}
	return append(out, promoted[next:]...)
}
