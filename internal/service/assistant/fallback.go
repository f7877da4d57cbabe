package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/hearthside/hearthside-ai/internal/service/search"
)

// fallbackAnswer is the synthesized stand-in for an empty model response.
type fallbackAnswer struct {
	text         string
	resources    []search.Resource
	optimization *search.Optimization
}

// synthesizeFallback tries to rescue a turn the loop produced no text for by
// running the search itself. It only answers when the search actually found
// something; it never manufactures content it cannot back with resources, so
// a nil return leaves the loop's (empty) text in place. The text describes
// what was found at the category level; the resources carry the specifics.
func (s *Service) synthesizeFallback(ctx context.Context, classification *Classification, message string, profile *ProjectProfile) *fallbackAnswer {
	if s.dispatcher == nil || s.dispatcher.searcher == nil {
		return nil
	}

	query := message
	if classification != nil && strings.TrimSpace(classification.Query) != "" {
		query = classification.Query
	}

	req := &search.Request{
		Query:   query,
		Context: searchContext(profile),
	}
	if classification != nil {
		req.ResourceType = classification.ResourceType
		req.ContentType = classification.ContentType
	}

	result := s.dispatcher.searcher.Search(ctx, req)
	if len(result.Resources) == 0 {
		return nil
	}

	return &fallbackAnswer{
		text:         searchFoundText(len(result.Resources), classification),
		resources:    result.Resources,
		optimization: result.Optimization,
	}
}

// searchFoundText describes the results at the category level.
func searchFoundText(count int, classification *Classification) string {
	noun := "resources"
	qualifier := ""
	if classification != nil {
		switch classification.ResourceType {
		case "tutorial":
			noun = "tutorials"
		case "inspiration":
			noun = "inspiration ideas"
		case "materials":
			noun = "material resources"
		}
		switch classification.ContentType {
		case "video":
			qualifier = "video "
		case "visual":
			qualifier = "visual "
		}
	}

	if count == 1 {
		return fmt.Sprintf("I found a %s%s that looks like a great fit for your project. Take a look below!", qualifier, strings.TrimSuffix(noun, "s"))
	}
	return fmt.Sprintf("I found %d %s%s that should help with your project. Take a look below!", count, qualifier, noun)
}
