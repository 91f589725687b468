package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
)

// 발행 토픽. 구독 측(알림, 디렉터리 갱신)은 별도 서비스다.
const TopicSentiment = "tool-pulse.sentiment"

// Event는 Kafka 메시지의 페이로드로 사용되는 구조체입니다.
type Event struct {
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

// NewEvent는 임의의 페이로드를 직렬화하여 Event 를 생성합니다.
func NewEvent(id string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("이벤트 마샬링 실패: %w", err)
	}
	return Event{ID: id, Payload: data}, nil
}

// Publisher 인터페이스는 이벤트 발행의 추상화를 정의합니다.
// 파이프라인은 발행만 하며, 소비는 이 코어의 범위 밖입니다.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close()
}
