package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/alphago/canvas-api/internal/dto"
	"github.com/alphago/canvas-api/internal/models"
	"github.com/alphago/canvas-api/internal/observability"
	"github.com/alphago/canvas-api/internal/repository"
)

const announcementBufferSize = 16

// ErrAnnouncementNotFound indicates the requested announcement does not exist.
var ErrAnnouncementNotFound = errors.New("announcement not found")

// ErrAnnouncementEmpty indicates the body was empty after sanitization.
var ErrAnnouncementEmpty = errors.New("announcement body empty after sanitization")

// AnnouncementService posts course announcements and streams them to
// subscribed course members via SSE. Redis pub/sub and NATS fan the events out
// across nodes.
type AnnouncementService interface {
	Publish(ctx context.Context, authorID uint, payload dto.AnnouncementCreateRequest) (dto.AnnouncementResponse, error)
	ListByCourse(ctx context.Context, courseID uint, limit, offset int) ([]dto.AnnouncementResponse, error)
	Delete(ctx context.Context, id uint) error
	Subscribe(courseID uint) (<-chan dto.AnnouncementResponse, func())
	Start(ctx context.Context)
}

type announcementService struct {
	repo        repository.AnnouncementRepository
	courses     repository.CourseRepository
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	titlePolicy *bluemonday.Policy
	bodyPolicy  *bluemonday.Policy
	broker      *announcementBroker
	nodeID      string
}

type announcementEvent struct {
	Source       string                   `json:"source"`
	Announcement dto.AnnouncementResponse `json:"announcement"`
	SentAt       time.Time                `json:"sent_at"`
}

type announcementBroker struct {
	mu          sync.RWMutex
	subscribers map[uint]map[chan dto.AnnouncementResponse]struct{}
}

// NewAnnouncementService constructs an announcement service. redisClient and
// natsConn may be nil; fanout is then in-process only.
func NewAnnouncementService(repo repository.AnnouncementRepository, courses repository.CourseRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, validate *validator.Validate, logger zerolog.Logger) AnnouncementService {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":announcements"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".announcements"
	}

	return &announcementService{
		repo:        repo,
		courses:     courses,
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		validator:   validate,
		logger:      logger.With().Str("component", "announcement_service").Logger(),
		tracer:      otel.Tracer("github.com/alphago/canvas-api/internal/service/announcement"),
		titlePolicy: bluemonday.StrictPolicy(),
		bodyPolicy:  bluemonday.UGCPolicy(),
		broker: &announcementBroker{
			subscribers: make(map[uint]map[chan dto.AnnouncementResponse]struct{}),
		},
		nodeID: uuid.NewString(),
	}
}

func (s *announcementService) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *announcementService) Publish(ctx context.Context, authorID uint, payload dto.AnnouncementCreateRequest) (dto.AnnouncementResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AnnouncementResponse{}, err
	}

	if _, err := s.courses.GetByID(ctx, payload.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AnnouncementResponse{}, ErrCourseNotFound
		}
		return dto.AnnouncementResponse{}, err
	}

	cleanTitle := strings.TrimSpace(s.titlePolicy.Sanitize(payload.Title))
	cleanBody := strings.TrimSpace(s.bodyPolicy.Sanitize(payload.Body))
	if cleanTitle == "" || cleanBody == "" {
		return dto.AnnouncementResponse{}, ErrAnnouncementEmpty
	}

	attrs := []attribute.KeyValue{
		attribute.Int64("announcement.course_id", int64(payload.CourseID)),
		attribute.Int64("announcement.author_id", int64(authorID)),
	}

	spanCtx, span := s.tracer.Start(ctx, "announcements.publish", trace.WithAttributes(attrs...))
	defer span.End()

	model := models.Announcement{
		CourseID: payload.CourseID,
		AuthorID: authorID,
		Title:    cleanTitle,
		Body:     cleanBody,
	}

	if err := s.repo.Create(spanCtx, &model); err != nil {
		span.RecordError(err)
		return dto.AnnouncementResponse{}, err
	}

	response := dto.NewAnnouncementResponse(model)
	s.broker.broadcast(response.CourseID, response)
	if err := s.publish(spanCtx, response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish announcement to broker")
	}

	observability.AnnouncementsPublishedTotal().WithLabelValues(strconv.FormatUint(uint64(response.CourseID), 10)).Inc()

	return response, nil
}

func (s *announcementService) ListByCourse(ctx context.Context, courseID uint, limit, offset int) ([]dto.AnnouncementResponse, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	announcements, err := s.repo.ListByCourse(ctx, courseID, limit, offset)
	if err != nil {
		return nil, err
	}

	return dto.NewAnnouncementResponseSlice(announcements), nil
}

func (s *announcementService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAnnouncementNotFound
		}
		return err
	}

	s.logger.Info().Uint("announcement_id", id).Msg("announcement deleted")
	return nil
}

func (s *announcementService) Subscribe(courseID uint) (<-chan dto.AnnouncementResponse, func()) {
	channel := make(chan dto.AnnouncementResponse, announcementBufferSize)

	s.broker.subscribe(courseID, channel)
	observability.SSEClientsActive().Inc()

	cleanup := func() {
		s.broker.unsubscribe(courseID, channel)
		observability.SSEClientsActive().Dec()
	}

	return channel, cleanup
}

func (s *announcementService) publish(ctx context.Context, announcement dto.AnnouncementResponse) error {
	event := announcementEvent{
		Source:       s.nodeID,
		Announcement: announcement,
		SentAt:       time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *announcementService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("announcement redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *announcementService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "canvas-announcements", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats announcements subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain announcement nats subscription")
		}
	}()
}

func (s *announcementService) handleEvent(payload []byte) {
	var event announcementEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid announcement event payload")
		return
	}

	if event.Source == s.nodeID {
		return
	}

	s.broker.broadcast(event.Announcement.CourseID, event.Announcement)
}

func (b *announcementBroker) subscribe(courseID uint, ch chan dto.AnnouncementResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscribers[courseID]; !exists {
		b.subscribers[courseID] = make(map[chan dto.AnnouncementResponse]struct{})
	}
	b.subscribers[courseID][ch] = struct{}{}
}

func (b *announcementBroker) unsubscribe(courseID uint, ch chan dto.AnnouncementResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subscribers, ok := b.subscribers[courseID]; ok {
		delete(subscribers, ch)
		close(ch)
		if len(subscribers) == 0 {
			delete(b.subscribers, courseID)
		}
	}
}

func (b *announcementBroker) broadcast(courseID uint, announcement dto.AnnouncementResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subscribers := b.subscribers[courseID]
	for ch := range subscribers {
		select {
		case ch <- announcement:
		default:
		}
	}
}
