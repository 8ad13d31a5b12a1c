package search

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func TestBuildFilter(t *testing.T) {
	if got := BuildFilter(""); got != "is_public = true" {
		t.Fatalf("unexpected filter %q", got)
	}
	if got := BuildFilter("workshop"); got != `is_public = true AND categories = "workshop"` {
		t.Fatalf("unexpected filter %q", got)
	}
}

func TestSortRules(t *testing.T) {
	cases := map[string][]string{
		"":         {"created_at:desc"},
		"newest":   {"created_at:desc"},
		"popular":  {"views:desc"},
		"deadline": {"deadline:asc"},
	}
	for in, want := range cases {
		if got := SortRules(in); !reflect.DeepEqual(got, want) {
			t.Fatalf("%q: got %v, want %v", in, got, want)
		}
	}
}

func TestDecodeHits(t *testing.T) {
	id := uuid.New()
	raw := []byte(`{"hits":[{"id":"` + id.String() + `"},{"id":"bogus"}],"estimatedTotalHits":7}`)
	res, err := decodeHits(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Total != 7 || len(res.IDs) != 1 || res.IDs[0] != id {
		t.Fatalf("unexpected result %+v", res)
	}
}
