package models

import "testing"

// TestContentIsPublished verifies that IsPublished returns true only for
// the "published" status.
func TestContentIsPublished(t *testing.T) {
	tests := []struct {
		name   string
		status ContentStatus
		want   bool
	}{
		{name: "published", status: ContentStatusPublished, want: true},
		{name: "draft", status: ContentStatusDraft, want: false},
		{name: "empty status", status: ContentStatus(""), want: false},
		{name: "uppercase PUBLISHED", status: ContentStatus("PUBLISHED"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Content{Status: tt.status}
			if got := c.IsPublished(); got != tt.want {
				t.Errorf("Content{Status: %q}.IsPublished() = %v, want %v",
					tt.status, got, tt.want)
			}
		})
	}
}

func TestContentIsArticle(t *testing.T) {
	if !(&Content{Type: ContentTypeArticle}).IsArticle() {
		t.Error("article content should report IsArticle")
	}
	if (&Content{Type: ContentTypePage}).IsArticle() {
		t.Error("page content should not report IsArticle")
	}
}
