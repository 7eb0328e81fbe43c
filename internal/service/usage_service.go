package service

import (
	"context"
	"fmt"
	"time"

	"qna-chat-be/internal/dto"
	"qna-chat-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

type IUsageService interface {
	// CheckAndConsume counts one question against the client's daily quota.
	// Returns *dto.LimitExceededError once the quota is spent.
	CheckAndConsume(ctx context.Context, clientId string) error
}

// usageService enforces the per-client daily question quota with a Redis
// counter that expires at midnight UTC. Redis being down fails open: quota
// enforcement is not worth refusing every question.
type usageService struct {
	rdb    *redis.Client
	limit  int
	logger logger.ILogger
}

func NewUsageService(rdb *redis.Client, limit int, log logger.ILogger) IUsageService {
	return &usageService{
		rdb:    rdb,
		limit:  limit,
		logger: log,
	}
}

func (s *usageService) CheckAndConsume(ctx context.Context, clientId string) error {
	if s.limit <= 0 {
		return nil
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("quota:questions:%s:%s", clientId, now.Format("2006-01-02"))
	midnight := now.Truncate(24 * time.Hour).Add(24 * time.Hour)

	used, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		s.logger.Warn("UsageService", "quota check skipped, redis unavailable", map[string]interface{}{"error": err.Error()})
		return nil
	}
	if used == 1 {
		s.rdb.ExpireAt(ctx, key, midnight)
	}

	if int(used) > s.limit {
		return &dto.LimitExceededError{
			Limit:      s.limit,
			Used:       int(used) - 1,
			ResetAfter: midnight,
		}
	}
	return nil
}
