package document

import "testing"

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"image", TypeImage},
		{" VIDEO ", TypeVideo},
		{"audio", TypeOther},
		{"", TypeOther},
	}
	for _, tc := range tests {
		if got := ParseType(tc.in); got != tc.want {
			t.Errorf("ParseType(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseSource(t *testing.T) {
	if s, err := ParseSource("AI-Generated"); err != nil || s != SourceAIGenerated {
		t.Fatalf("expected ai-generated, got %q (%v)", s, err)
	}
	if s, err := ParseSource(""); err != nil || s != SourceUpload {
		t.Fatalf("expected default upload, got %q (%v)", s, err)
	}
	if _, err := ParseSource("stolen"); err == nil {
		t.Fatal("expected error for unknown source")
	}
}

func TestValidate(t *testing.T) {
	ok := Document{ID: "img_001", Type: TypeImage, Source: SourceUpload}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := []Document{
		{ID: "", Type: TypeImage},
		{ID: "has space", Type: TypeImage},
		{ID: "x", Type: "audio"},
		{ID: "x", Type: TypeVideo, Source: "stolen"},
	}
	for _, d := range bad {
		if err := d.Validate(); err == nil {
			t.Errorf("expected validation error for %+v", d)
		}
	}
}
