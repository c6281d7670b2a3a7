package practice_test

import (
	"testing"

	"regatta/internal/domain/practice"
)

// TestBucketForCode tests catalog lookup and the naming-convention fallback.
func TestBucketForCode(t *testing.T) {
	catalog := practice.SlotCatalog{
		"SAT2_0800_1000": practice.BucketTwoHour,
		"SUN1_0900_1000": practice.BucketOneHour,
		"ODDBALL":        practice.BucketTwoHour, // catalog entries need not match the convention
	}

	tests := []struct {
		name    string
		code    string
		want    int
		wantErr error
	}{
		{name: "catalog two hour", code: "SAT2_0800_1000", want: practice.BucketTwoHour},
		{name: "catalog one hour", code: "SUN1_0900_1000", want: practice.BucketOneHour},
		{name: "catalog overrides convention", code: "ODDBALL", want: practice.BucketTwoHour},
		{name: "convention fallback one hour", code: "FRI1_1700_1800", want: practice.BucketOneHour},
		{name: "convention fallback two hour", code: "FRI2_1700_1900", want: practice.BucketTwoHour},
		{name: "empty code", code: "", wantErr: practice.ErrEmptySlotCode},
		{name: "unknown shape", code: "friday evening", wantErr: practice.ErrUnknownSlotCode},
		{name: "digit out of range", code: "FRI3_1700_2000", wantErr: practice.ErrUnknownSlotCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := practice.BucketForCode(catalog, tt.code)
			if err != tt.wantErr {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("bucket = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestBuildRankSet tests assembly and ordering of the candidate set.
func TestBuildRankSet(t *testing.T) {
	catalog := practice.DefaultCatalog()
	selections := []practice.RankSelection{
		{Rank: 2, Bucket: practice.BucketTwoHour, SlotCode: "SUN2_1000_1200"},
		{Rank: 1, Bucket: practice.BucketOneHour, SlotCode: "SAT1_0800_0900"},
		{Rank: 3, Bucket: practice.BucketTwoHour, SlotCode: ""},
		{Rank: 1, Bucket: practice.BucketTwoHour, SlotCode: "SAT2_0800_1000"},
	}

	set, err := practice.BuildRankSet(catalog, selections)
	if err != nil {
		t.Fatalf("BuildRankSet: %v", err)
	}
	if len(set) != 3 {
		t.Fatalf("set = %+v, want 3 entries", set)
	}
	// Sorted by (bucket, rank)
	want := []practice.SlotRank{
		{Rank: 1, Bucket: practice.BucketOneHour, SlotCode: "SAT1_0800_0900"},
		{Rank: 1, Bucket: practice.BucketTwoHour, SlotCode: "SAT2_0800_1000"},
		{Rank: 2, Bucket: practice.BucketTwoHour, SlotCode: "SUN2_1000_1200"},
	}
	for i := range want {
		if set[i] != want[i] {
			t.Errorf("set[%d] = %+v, want %+v", i, set[i], want[i])
		}
	}
}

// TestBuildRankSet_Errors tests rejection of malformed selections.
func TestBuildRankSet_Errors(t *testing.T) {
	catalog := practice.DefaultCatalog()

	if _, err := practice.BuildRankSet(catalog, []practice.RankSelection{
		{Rank: 4, SlotCode: "SAT1_0800_0900"},
	}); err != practice.ErrInvalidRank {
		t.Errorf("rank 4 = %v, want ErrInvalidRank", err)
	}

	if _, err := practice.BuildRankSet(catalog, []practice.RankSelection{
		{Rank: 1, SlotCode: "not a slot"},
	}); err != practice.ErrUnknownSlotCode {
		t.Errorf("unknown code = %v, want ErrUnknownSlotCode", err)
	}

	// Selector ladder disagrees with the code's duration digit
	if _, err := practice.BuildRankSet(catalog, []practice.RankSelection{
		{Rank: 1, Bucket: practice.BucketOneHour, SlotCode: "SAT2_0800_1000"},
	}); err != practice.ErrUnknownSlotCode {
		t.Errorf("bucket mismatch = %v, want ErrUnknownSlotCode", err)
	}
}

// TestValidateRankSet tests the uniqueness invariants.
func TestValidateRankSet(t *testing.T) {
	tests := []struct {
		name    string
		set     []practice.SlotRank
		wantErr error
	}{
		{name: "empty set", set: nil},
		{
			name: "full consistent board",
			set: []practice.SlotRank{
				{Rank: 1, Bucket: practice.BucketOneHour, SlotCode: "SAT1_0800_0900"},
				{Rank: 2, Bucket: practice.BucketOneHour, SlotCode: "SAT1_0900_1000"},
				{Rank: 1, Bucket: practice.BucketTwoHour, SlotCode: "SAT2_0800_1000"},
			},
		},
		{
			name: "same rank in both ladders is fine",
			set: []practice.SlotRank{
				{Rank: 1, Bucket: practice.BucketOneHour, SlotCode: "SAT1_0800_0900"},
				{Rank: 1, Bucket: practice.BucketTwoHour, SlotCode: "SAT2_0800_1000"},
			},
		},
		{
			name: "rank repeated within a ladder",
			set: []practice.SlotRank{
				{Rank: 1, Bucket: practice.BucketTwoHour, SlotCode: "SAT2_0800_1000"},
				{Rank: 1, Bucket: practice.BucketTwoHour, SlotCode: "SUN2_0800_1000"},
			},
			wantErr: practice.ErrDuplicateLadder,
		},
		{
			name: "slot code reused across ladders",
			set: []practice.SlotRank{
				{Rank: 1, Bucket: practice.BucketOneHour, SlotCode: "SAT2_0800_1000"},
				{Rank: 1, Bucket: practice.BucketTwoHour, SlotCode: "SAT2_0800_1000"},
			},
			wantErr: practice.ErrDuplicateSlot,
		},
		{
			name:    "rank out of range",
			set:     []practice.SlotRank{{Rank: 0, Bucket: practice.BucketOneHour, SlotCode: "SAT1_0800_0900"}},
			wantErr: practice.ErrInvalidRank,
		},
		{
			name:    "empty slot code",
			set:     []practice.SlotRank{{Rank: 1, Bucket: practice.BucketOneHour}},
			wantErr: practice.ErrEmptySlotCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := practice.ValidateRankSet(tt.set); err != tt.wantErr {
				t.Errorf("ValidateRankSet() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestTakenCodes tests the disable set for one selector position.
func TestTakenCodes(t *testing.T) {
	set := []practice.SlotRank{
		{Rank: 1, Bucket: practice.BucketTwoHour, SlotCode: "SAT2_0800_1000"},
		{Rank: 2, Bucket: practice.BucketTwoHour, SlotCode: "SUN2_0800_1000"},
		{Rank: 1, Bucket: practice.BucketOneHour, SlotCode: "SAT1_0800_0900"},
	}

	taken := practice.TakenCodes(set, practice.BucketTwoHour, 1)
	if taken["SAT2_0800_1000"] {
		t.Error("a selector's own code should not be marked taken")
	}
	if !taken["SUN2_0800_1000"] || !taken["SAT1_0800_0900"] {
		t.Errorf("taken = %v, want the other two codes", taken)
	}
}
