package types

import (
	"sort"
	"testing"
)

func TestAmountDecompose(t *testing.T) {
	tests := []struct {
		amount Amount
		want   []Amount
	}{
		{0, nil},
		{5, []Amount{5}},
		{10, []Amount{10}},
		{123, []Amount{3, 20, 100}},
		{1000000, []Amount{1000000}},
		{9999, []Amount{9, 90, 900, 9000}},
	}

	for _, test := range tests {
		got := test.amount.Decompose()
		if len(got) != len(test.want) {
			t.Fatalf("Decompose(%d) = %v, want %v", test.amount, got, test.want)
		}
		for i := range got {
			if got[i] != test.want[i] {
				t.Fatalf("Decompose(%d) = %v, want %v", test.amount, got, test.want)
			}
		}

		var sum Amount
		for _, term := range got {
			sum += term
		}
		if sum != test.amount {
			t.Fatalf("Decompose(%d) terms sum to %d", test.amount, sum)
		}
	}
}

func TestAmountDecomposeDigitsInRange(t *testing.T) {
	for _, term := range Amount(987654321).Decompose() {
		digit := term
		for digit >= 10 {
			digit /= 10
		}
		if digit < 1 || digit > 9 {
			t.Fatalf("decomposed term %d has leading digit %d, want 1-9", term, digit)
		}
	}
}

func TestBucketByDenomination(t *testing.T) {
	amounts := []Amount{10, 20, 10, 30, 20, 10}
	buckets := BucketByDenomination(amounts)

	if len(buckets[10]) != 3 {
		t.Fatalf("bucket[10] = %v, want 3 members", buckets[10])
	}
	if len(buckets[20]) != 2 {
		t.Fatalf("bucket[20] = %v, want 2 members", buckets[20])
	}
	if len(buckets[30]) != 1 {
		t.Fatalf("bucket[30] = %v, want 1 member", buckets[30])
	}

	gotIndexes := append([]int{}, buckets[10]...)
	sort.Ints(gotIndexes)
	want := []int{0, 2, 5}
	for i, idx := range gotIndexes {
		if idx != want[i] {
			t.Fatalf("bucket[10] indexes = %v, want %v", gotIndexes, want)
		}
	}
}
