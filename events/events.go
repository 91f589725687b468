package events

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventType 이벤트 타입을 정의하는 열거형
type EventType string

const (
	SentimentRunCompleted       EventType = "sentiment.run_completed"
	SentimentAggregateCompleted EventType = "sentiment.aggregate_completed"
)

// BaseEvent 모든 이벤트의 기본 구조
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"` // "worker", "api" 등
	Version   string    `json:"version"`
}

// GetType 이벤트 타입을 반환
func (e BaseEvent) GetType() EventType {
	return e.Type
}

// NewBase 는 공통 필드가 채워진 BaseEvent 를 생성한다.
func NewBase(t EventType, source string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Source:    source,
		Version:   "1.0",
	}
}

// SentimentRunCompletedEvent 소스별 감성 분석 run 저장이 완료되었을 때 발행되는 이벤트
type SentimentRunCompletedEvent struct {
	BaseEvent
	SubjectID primitive.ObjectID `json:"subject_id"`
	RunID     primitive.ObjectID `json:"run_id"`
	SourceTag string             `json:"source_tag"`
	Score     float64            `json:"score"`
	Label     string             `json:"label"`
}

// SentimentAggregateCompletedEvent 집계 저장이 완료되었을 때 발행되는 이벤트
type SentimentAggregateCompletedEvent struct {
	BaseEvent
	SubjectID   primitive.ObjectID `json:"subject_id"`
	AggregateID primitive.ObjectID `json:"aggregate_id"`
	FinalScore  float64            `json:"final_score"`
	FinalLabel  string             `json:"final_label"`
	SourceCount int                `json:"source_count"`
}
