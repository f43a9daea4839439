package semantic

import "strings"

// QualityOf returns the quality the client gives to a concrete media type.
// The most specific matching range decides: "type/subtype" over "type/*" over "*/*".
// Types no range matches get quality 0.
func (a *Accept) QualityOf(mime string) int {
	best, bestRank := 0, -1
	for _, mr := range a.ranges {
		rank := matchRank(mr.Type, mime)
		if rank > bestRank {
			best, bestRank = mr.Quality, rank
		}
	}
	return best
}

// matchRank reports how specifically pattern matches mime, or -1.
func matchRank(pattern, mime string) int {
	if pattern == "*/*" || pattern == "*" {
		return 0
	}

	ptype, psub, _ := strings.Cut(pattern, "/")
	mtype, msub, _ := strings.Cut(mime, "/")
	if !strings.EqualFold(ptype, mtype) {
		return -1
	}
	if psub == "*" {
		return 1
	}
	if strings.EqualFold(psub, msub) {
		return 2
	}
	return -1
}

// Negotiate picks the supported type the client prefers.
// Ties go to the earlier entry of supported.
// Without Accept entries, or if nothing supported is acceptable, fallback is returned.
func (a *Accept) Negotiate(supported []string, fallback string) string {
	if a.Count() == 0 {
		return fallback
	}

	chosen, chosenQuality := fallback, 0
	for _, mime := range supported {
		if q := a.QualityOf(mime); q > chosenQuality {
			chosen, chosenQuality = mime, q
		}
	}
	return chosen
}
