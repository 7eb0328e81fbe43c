package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"

	"qna-chat-be/internal/dto"
	"qna-chat-be/internal/entity"
	"qna-chat-be/internal/repository/contract"
	"qna-chat-be/internal/repository/specification"
	"qna-chat-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IIngestService interface {
	// Enqueue pushes passages onto the ingest queue and returns how many
	// were accepted.
	Enqueue(ctx context.Context, passages []dto.IngestPassageRequest) (int, error)
	// Consume starts the background ingest worker.
	Consume(ctx context.Context) error
	ListPassages(ctx context.Context, locale string) ([]dto.PassageResponse, error)
}

// ingestService embeds and indexes published content chunks. Content is
// digest-addressed: an unchanged chunk is never re-embedded, a changed one
// replaces whatever lived at the same exact path.
type ingestService struct {
	publisher IPublisherService
	pubSub    *gochannel.GoChannel
	topicName string
	passages  contract.PassageRepository
	embedder  embedding.Provider
}

func NewIngestService(
	publisher IPublisherService,
	pubSub *gochannel.GoChannel,
	topicName string,
	passages contract.PassageRepository,
	embedder embedding.Provider,
) IIngestService {
	return &ingestService{
		publisher: publisher,
		pubSub:    pubSub,
		topicName: topicName,
		passages:  passages,
		embedder:  embedder,
	}
}

func (s *ingestService) Enqueue(ctx context.Context, passages []dto.IngestPassageRequest) (int, error) {
	queued := 0
	for _, p := range passages {
		payload, err := json.Marshal(dto.IngestPassageMessage{Passage: p})
		if err != nil {
			return queued, err
		}
		if err := s.publisher.Publish(ctx, payload); err != nil {
			return queued, err
		}
		queued++
	}
	return queued, nil
}

func (s *ingestService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *ingestService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IngestPassageMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal ingest message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	req := payload.Passage
	digest := passageDigest(req)

	count, err := s.passages.Count(ctx, specification.ByDigest{Digest: digest})
	if err != nil {
		log.Printf("[ERROR] Failed to check digest %s: %v", digest, err)
		msg.Nack()
		return
	}
	if count > 0 {
		// Unchanged chunk, nothing to do.
		msg.Ack()
		return
	}

	vec, err := s.embedder.Generate(ctx, req.Title+"\n"+req.Content, embedding.TaskRetrievalDocument)
	if err != nil {
		log.Printf("[ERROR] Failed to embed passage %s: %v", req.ExactPath, err)
		msg.Nack()
		return
	}

	passage := &entity.Passage{
		Digest:      digest,
		Locale:      req.Locale,
		Title:       req.Title,
		Description: req.Description,
		HeadingPath: req.HeadingPath,
		BasePath:    req.BasePath,
		ExactPath:   req.ExactPath,
		Content:     req.Content,
	}
	if err := s.passages.Create(ctx, passage, embedding.Normalize(vec)); err != nil {
		log.Printf("[ERROR] Failed to store passage %s: %v", req.ExactPath, err)
		msg.Nack()
		return
	}

	log.Printf("[INFO] Passage indexed: %s (%s)", req.ExactPath, digest[:8])
	msg.Ack()
}

func (s *ingestService) ListPassages(ctx context.Context, locale string) ([]dto.PassageResponse, error) {
	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if locale != "" {
		specs = append(specs, specification.ByLocale{Locale: locale})
	}
	passages, err := s.passages.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	res := make([]dto.PassageResponse, len(passages))
	for i, p := range passages {
		res[i] = dto.PassageResponse{
			Id:        p.Id,
			Digest:    p.Digest,
			Locale:    p.Locale,
			Title:     p.Title,
			ExactPath: p.ExactPath,
		}
	}
	return res, nil
}

// passageDigest hashes the identifying and textual fields. Any change to the
// locale, location or content yields a new digest.
func passageDigest(p dto.IngestPassageRequest) string {
	h := sha256.New()
	for _, part := range []string{p.Locale, p.ExactPath, p.HeadingPath, p.Title, p.Content} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
