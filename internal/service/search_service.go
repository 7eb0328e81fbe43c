package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"qna-chat-be/internal/entity"
	"qna-chat-be/internal/pkg/logger"
	"qna-chat-be/internal/repository/contract"
	"qna-chat-be/pkg/embedding"
	"qna-chat-be/pkg/retrieval"

	gocache "github.com/patrickmn/go-cache"
)

// SearchService is the retrieval collaborator: it embeds the query, runs a
// similarity search over the passage index and ranks the hits. Identical
// queries within the TTL are served from cache without touching the
// embedding provider.
type SearchService struct {
	embedder  embedding.Provider
	passages  contract.PassageRepository
	cache     *gocache.Cache
	topK      int
	threshold float64
	locale    string
	logger    logger.ILogger
}

var _ retrieval.Searcher = &SearchService{}

func NewSearchService(
	embedder embedding.Provider,
	passages contract.PassageRepository,
	topK int,
	threshold float64,
	cacheTTL time.Duration,
	locale string,
	log logger.ILogger,
) *SearchService {
	return &SearchService{
		embedder:  embedder,
		passages:  passages,
		cache:     gocache.New(cacheTTL, 2*cacheTTL),
		topK:      topK,
		threshold: threshold,
		locale:    locale,
		logger:    log,
	}
}

func (s *SearchService) Search(ctx context.Context, query string) ([]entity.Passage, error) {
	key := s.locale + "\x00" + strings.ToLower(strings.TrimSpace(query))
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]entity.Passage), nil
	}

	vec, err := s.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}

	scored, err := s.passages.SearchSimilarWithScore(ctx, embedding.Normalize(vec), s.topK, s.locale, s.threshold)
	if err != nil {
		return nil, err
	}

	passages := make([]entity.Passage, len(scored))
	for i, sp := range scored {
		p := sp.Passage
		p.Score = sp.Similarity
		p.WeightedScore = weightScore(sp.Similarity, p.HeadingPath)
		passages[i] = p
	}
	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].WeightedScore > passages[j].WeightedScore
	})

	s.cache.Set(key, passages, gocache.DefaultExpiration)
	s.logger.Debug("SearchService", "similarity search done", map[string]interface{}{
		"hits":  len(passages),
		"query": query,
	})
	return passages, nil
}

// weightScore dampens deeply nested passages slightly: a hit in a top-level
// section outranks an equally similar hit buried four headings deep.
func weightScore(similarity float64, headingPath string) float64 {
	if headingPath == "" {
		return similarity
	}
	depth := strings.Count(headingPath, ">") + 1
	weight := 1.0 - 0.02*float64(depth)
	if weight < 0.9 {
		weight = 0.9
	}
	return similarity * weight
}
