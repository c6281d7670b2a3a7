package projections

import (
	"context"
	"sort"

	practiceStore "regatta/internal/adapters/storage/practice"
	"regatta/internal/domain/practice"
)

// GetRankBoardQuery carries query parameters.
type GetRankBoardQuery struct {
	TeamKey string
}

// GetRankBoardDeps holds dependencies for GetRankBoard.
type GetRankBoardDeps struct {
	PracticeStore practiceStore.Store
	Catalog       practice.SlotCatalog
}

// SlotOption is one selectable slot in a rank selector. Taken options stay
// visible but disabled, marked as already selected elsewhere.
type SlotOption struct {
	SlotCode string
	Selected bool
	Disabled bool
	Label    string
}

// RankSelector is one of the six selectors: a (ladder, rank) position with
// its option list.
type RankSelector struct {
	Bucket  int
	Rank    int
	Value   string
	Options []SlotOption
}

// GetRankBoardResult carries the full selector board for one team.
type GetRankBoardResult struct {
	Selectors []RankSelector
}

// QueryGetRankBoard builds the six rank selectors from the team's persisted
// ranks and the slot catalog. A slot code held by any other selector is
// rendered disabled with an "(already selected)" marker so it cannot be
// picked twice.
// POST: exactly MaxRank selectors per ladder, in (bucket, rank) order
func QueryGetRankBoard(ctx context.Context, query GetRankBoardQuery, deps GetRankBoardDeps) (GetRankBoardResult, error) {
	ranks, err := deps.PracticeStore.ReadRanks(ctx, query.TeamKey)
	if err != nil {
		return GetRankBoardResult{}, err
	}

	value := make(map[[2]int]string, len(ranks))
	for _, r := range ranks {
		value[[2]int{r.Bucket, r.Rank}] = r.SlotCode
	}

	codesByBucket := make(map[int][]string)
	for code, bucket := range deps.Catalog {
		codesByBucket[bucket] = append(codesByBucket[bucket], code)
	}
	for _, codes := range codesByBucket {
		sort.Strings(codes)
	}

	var result GetRankBoardResult
	for _, bucket := range []int{practice.BucketTwoHour, practice.BucketOneHour} {
		for rank := 1; rank <= practice.MaxRank; rank++ {
			sel := RankSelector{
				Bucket: bucket,
				Rank:   rank,
				Value:  value[[2]int{bucket, rank}],
			}
			taken := practice.TakenCodes(ranks, bucket, rank)
			for _, code := range codesByBucket[bucket] {
				opt := SlotOption{SlotCode: code, Label: code}
				if code == sel.Value {
					opt.Selected = true
				} else if taken[code] {
					opt.Disabled = true
					opt.Label = code + " (already selected)"
				}
				sel.Options = append(sel.Options, opt)
			}
			result.Selectors = append(result.Selectors, sel)
		}
	}
	return result, nil
}
