package assistant

import (
	"context"
	"strings"
	"testing"
)

func TestSynthesizeFallback_RescuesTurnWithResults(t *testing.T) {
	searcher := &fakeSearcher{result: searchResultWithHits(3)}
	svc := &Service{dispatcher: newDispatcher(searcher, nil)}

	classification := &Classification{
		Intent:       IntentResourceSearch,
		NeedsSearch:  true,
		Query:        "install floating shelves",
		ResourceType: "tutorial",
		ContentType:  "video",
	}

	fb := svc.synthesizeFallback(context.Background(), classification, "show me videos", testProfile())

	if fb == nil {
		t.Fatal("synthesizeFallback() returned nil")
	}
	if len(fb.resources) != 3 {
		t.Errorf("resources = %d, want 3", len(fb.resources))
	}
	if fb.optimization == nil {
		t.Error("optimization not carried over")
	}
	if !strings.Contains(fb.text, "3") {
		t.Errorf("text does not mention the count: %q", fb.text)
	}
	// category-level only: the specific hits live in the resources
	if strings.Contains(fb.text, "Tiling tutorial") || strings.Contains(fb.text, "example.com") {
		t.Errorf("text enumerates individual results: %q", fb.text)
	}
	if searcher.lastReq.Query != "install floating shelves" {
		t.Errorf("searched %q, want the classified query", searcher.lastReq.Query)
	}
}

func TestSynthesizeFallback_QueryFallsBackToMessage(t *testing.T) {
	searcher := &fakeSearcher{result: searchResultWithHits(1)}
	svc := &Service{dispatcher: newDispatcher(searcher, nil)}

	classification := &Classification{Intent: IntentResourceSearch, NeedsSearch: true}

	svc.synthesizeFallback(context.Background(), classification, "deck staining tips", testProfile())

	if searcher.lastReq.Query != "deck staining tips" {
		t.Errorf("searched %q, want the raw message", searcher.lastReq.Query)
	}
}

func TestSynthesizeFallback_ZeroHitsReturnsNil(t *testing.T) {
	searcher := &fakeSearcher{result: searchResultWithHits(0)}
	svc := &Service{dispatcher: newDispatcher(searcher, nil)}

	classification := &Classification{Intent: IntentResourceSearch, NeedsSearch: true, Query: "q"}

	if fb := svc.synthesizeFallback(context.Background(), classification, "q", testProfile()); fb != nil {
		t.Errorf("synthesizeFallback() = %+v, want nil when nothing was found", fb)
	}
}

func TestSynthesizeFallback_NoSearcherReturnsNil(t *testing.T) {
	svc := &Service{dispatcher: newDispatcher(nil, nil)}

	if fb := svc.synthesizeFallback(context.Background(), defaultClassification(), "help", testProfile()); fb != nil {
		t.Errorf("synthesizeFallback() = %+v, want nil without a searcher", fb)
	}
}

func TestSearchFoundText(t *testing.T) {
	tests := []struct {
		name           string
		count          int
		classification *Classification
		wantContains   []string
	}{
		{
			name:           "video tutorials",
			count:          4,
			classification: &Classification{ResourceType: "tutorial", ContentType: "video"},
			wantContains:   []string{"4", "video tutorials"},
		},
		{
			name:           "single hit",
			count:          1,
			classification: &Classification{ResourceType: "tutorial"},
			wantContains:   []string{"tutorial"},
		},
		{
			name:           "generic resources",
			count:          2,
			classification: &Classification{},
			wantContains:   []string{"2", "resources"},
		},
		{
			name:         "nil classification",
			count:        2,
			wantContains: []string{"2", "resources"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := searchFoundText(tt.count, tt.classification)
			for _, want := range tt.wantContains {
				if !strings.Contains(text, want) {
					t.Errorf("searchFoundText() = %q, missing %q", text, want)
				}
			}
		})
	}
}
