package practice

import (
	"regexp"
	"sort"
)

// Duration buckets (ladders). Ranks are independent per bucket.
const (
	BucketOneHour = 1
	BucketTwoHour = 2
)

// MaxRank is the number of preference ranks per ladder.
const MaxRank = 3

// SlotCatalog maps known slot codes to their duration bucket. Populated from
// the event's slot definitions at load time; codes resolve here first.
type SlotCatalog map[string]int

// DefaultCatalog returns the venue's standing weekend slot timetable, used
// when an event defines no slots of its own.
func DefaultCatalog() SlotCatalog {
	return SlotCatalog{
		"SAT1_0800_0900": BucketOneHour,
		"SAT1_0900_1000": BucketOneHour,
		"SAT1_1000_1100": BucketOneHour,
		"SUN1_0800_0900": BucketOneHour,
		"SUN1_0900_1000": BucketOneHour,
		"SUN1_1000_1100": BucketOneHour,
		"SAT2_0800_1000": BucketTwoHour,
		"SAT2_1000_1200": BucketTwoHour,
		"SAT2_1400_1600": BucketTwoHour,
		"SUN2_0800_1000": BucketTwoHour,
		"SUN2_1000_1200": BucketTwoHour,
		"SUN2_1400_1600": BucketTwoHour,
	}
}

// codePattern matches the slot naming convention <DAY><duration>_<from>_<to>,
// e.g. SAT2_0800_1000. It is only consulted when a code is missing from the
// catalog; codes that match neither are rejected. The convention itself is
// not validated anywhere upstream, so catalog entries are authoritative.
var codePattern = regexp.MustCompile(`^[A-Z]+([12])_[0-9]{4}_[0-9]{4}$`)

// BucketForCode resolves the duration bucket of a slot code.
// PRE: code is non-empty
// POST: Returns BucketOneHour or BucketTwoHour, or ErrUnknownSlotCode
func BucketForCode(catalog SlotCatalog, code string) (int, error) {
	if code == "" {
		return 0, ErrEmptySlotCode
	}
	if b, ok := catalog[code]; ok {
		if b == BucketOneHour || b == BucketTwoHour {
			return b, nil
		}
		return 0, ErrUnknownSlotCode
	}
	m := codePattern.FindStringSubmatch(code)
	if m == nil {
		return 0, ErrUnknownSlotCode
	}
	if m[1] == "2" {
		return BucketTwoHour, nil
	}
	return BucketOneHour, nil
}

// RankSelection is one selector's raw value: a ladder position plus the
// chosen slot code ("" means no selection).
type RankSelection struct {
	Rank     int
	Bucket   int
	SlotCode string
}

// BuildRankSet assembles the candidate rank set from all selector values,
// ignoring empty selections and resolving each code's bucket.
// PRE: selections covers every selector's current value
// POST: Returns the candidate set sorted by (bucket, rank), or the first
// resolution error
func BuildRankSet(catalog SlotCatalog, selections []RankSelection) ([]SlotRank, error) {
	var set []SlotRank
	for _, sel := range selections {
		if sel.SlotCode == "" {
			continue
		}
		if sel.Rank < 1 || sel.Rank > MaxRank {
			return nil, ErrInvalidRank
		}
		bucket, err := BucketForCode(catalog, sel.SlotCode)
		if err != nil {
			return nil, err
		}
		if sel.Bucket != 0 && sel.Bucket != bucket {
			// Selector ladder disagrees with the code's own duration.
			return nil, ErrUnknownSlotCode
		}
		set = append(set, SlotRank{Rank: sel.Rank, Bucket: bucket, SlotCode: sel.SlotCode})
	}
	sort.Slice(set, func(i, j int) bool {
		if set[i].Bucket != set[j].Bucket {
			return set[i].Bucket < set[j].Bucket
		}
		return set[i].Rank < set[j].Rank
	})
	return set, nil
}

// ValidateRankSet enforces the two rank invariants for one team: at most one
// entry per (rank, bucket) pair, and no slot code reused anywhere across the
// set. A violation means the whole edit is rejected; partial acceptance is
// never offered.
// PRE: every entry has a resolved bucket
// POST: Returns nil if the set is consistent
func ValidateRankSet(set []SlotRank) error {
	positions := make(map[[2]int]bool, len(set))
	codes := make(map[string]bool, len(set))
	for _, r := range set {
		if r.Rank < 1 || r.Rank > MaxRank {
			return ErrInvalidRank
		}
		if r.SlotCode == "" {
			return ErrEmptySlotCode
		}
		pos := [2]int{r.Bucket, r.Rank}
		if positions[pos] {
			return ErrDuplicateLadder
		}
		positions[pos] = true
		if codes[r.SlotCode] {
			return ErrDuplicateSlot
		}
		codes[r.SlotCode] = true
	}
	return nil
}

// TakenCodes returns the slot codes already held by the set, excluding the
// given (bucket, rank) position. Used to disable options a user could
// otherwise pick twice.
// INVARIANT: set is not mutated
func TakenCodes(set []SlotRank, bucket, rank int) map[string]bool {
	taken := make(map[string]bool, len(set))
	for _, r := range set {
		if r.Bucket == bucket && r.Rank == rank {
			continue
		}
		taken[r.SlotCode] = true
	}
	return taken
}
