package document

import (
	"reflect"
	"testing"
	"time"
)

func TestIndex_FromIndexed(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	doc := Document{
		ID:             "doc1",
		Type:           TypeImage,
		Source:         SourceAIGenerated,
		Title:          "Red sports car",
		Tags:           []string{"car", "red"},
		Collections:    []string{"summer"},
		VisionKeywords: []string{"vehicle"},
		SearchText:     "Red sports car car red vehicle",
		CreatedAt:      created,
	}

	ix := Index(doc)
	if ix.Content != doc.SearchText {
		t.Errorf("Content = %q", ix.Content)
	}
	if ix.Fields[FieldTags] != "car,red" {
		t.Errorf("tags field = %q", ix.Fields[FieldTags])
	}
	if ix.Fields[FieldCreatedAt] != "1714564800000" {
		t.Errorf("created_at field = %q", ix.Fields[FieldCreatedAt])
	}

	back := FromIndexed(ix)
	if !reflect.DeepEqual(back, doc) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, doc)
	}
}

func TestJoinSet(t *testing.T) {
	got := JoinSet([]string{" a ", "b,c", "a", ""})
	if got != "a,b c" {
		t.Errorf("JoinSet = %q, want %q", got, "a,b c")
	}
	if JoinSet(nil) != "" {
		t.Error("JoinSet(nil) should be empty")
	}
}

func TestSplitSet(t *testing.T) {
	if SplitSet("") != nil {
		t.Error("SplitSet(\"\") should be nil")
	}
	got := SplitSet("a, b,,c")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitSet = %v, want %v", got, want)
	}
}
