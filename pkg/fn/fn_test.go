package fn

import (
	"strconv"
	"testing"
)

func TestMap(t *testing.T) {
	got := Map([]int{1, 2, 3}, strconv.Itoa)
	if len(got) != 3 || got[0] != "1" || got[2] != "3" {
		t.Errorf("Map: %v", got)
	}
}

func TestMap_Empty(t *testing.T) {
	got := Map([]int{}, strconv.Itoa)
	if got == nil || len(got) != 0 {
		t.Errorf("Map on empty input should return empty non-nil slice: %v", got)
	}
}

func TestFilterMap(t *testing.T) {
	got := FilterMap([]string{"1", "x", "3"}, func(s string) (int, bool) {
		n, err := strconv.Atoi(s)
		return n, err == nil
	})
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("FilterMap: %v", got)
	}
}
