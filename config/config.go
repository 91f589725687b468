package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Mongo     MongoConfig     `yaml:"mongo"`
	LLM       LLMConfig       `yaml:"llm"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Subjects  []SubjectConfig `yaml:"subjects"`
}

// SubjectConfig 는 실행 대상 도구 목록의 한 항목이다.
type SubjectConfig struct {
	Name         string `yaml:"name"`
	Slug         string `yaml:"slug"`
	SearchPhrase string `yaml:"search_phrase"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type MongoConfig struct {
	// URI는 MONGO_URI 환경변수가 우선한다. yaml 값은 로컬 기본값 용도.
	URI    string `yaml:"uri"`
	DBName string `yaml:"db_name"`
}

// LLMConfig 는 요약용 LLM 설정이다.
// FallbackModel 은 1차 호출 실패 시 정확히 한 번만 시도한다.
type LLMConfig struct {
	Provider      string `yaml:"provider"`
	Model         string `yaml:"model"`
	FallbackModel string `yaml:"fallback_model"`
}

// SentimentConfig 는 감성 파이프라인 전역 튜닝 값이다.
// 실행 도중에는 변경되지 않는다 (실행 시작 시 1회 로드).
type SentimentConfig struct {
	// LookbackMonths 는 각 수집기가 수집 범위를 정할 때 사용하는 조회 기간(월)이다.
	LookbackMonths int `yaml:"lookback_months"`

	// RerunDays 는 동일 subject 재실행 주기(일)이다. 0 이하면 항상 실행한다.
	RerunDays int `yaml:"rerun_days"`

	Forum  ForumSourceConfig  `yaml:"forum"`
	Social SocialSourceConfig `yaml:"social"`
	Video  VideoSourceConfig  `yaml:"video"`
}

type ForumSourceConfig struct {
	Enabled bool `yaml:"enabled"`

	// AnswersURL 은 포럼의 질문/답변 페이지 주소다.
	AnswersURL string `yaml:"answers_url"`

	// AnswerTimeoutSec 은 질문 제출 후 유효한 답변을 기다리는 최대 시간(초)이다.
	AnswerTimeoutSec int `yaml:"answer_timeout_sec"`
}

type SocialSourceConfig struct {
	Enabled bool `yaml:"enabled"`

	// BaseURL 은 OpenAI 호환 대화형 검색 API 의 엔드포인트다.
	BaseURL string `yaml:"base_url"`

	// Models 는 순서대로 시도하는 모델 체인이다. 첫 성공에서 중단한다.
	Models []string `yaml:"models"`
}

type VideoSourceConfig struct {
	Enabled bool `yaml:"enabled"`

	// MaxVideos 는 검색 결과에서 사용할 상위 영상 수다.
	MaxVideos int `yaml:"max_videos"`

	// MaxCommentsPerVideo 는 영상당 수집할 댓글 상한이다.
	MaxCommentsPerVideo int `yaml:"max_comments_per_video"`
}

type KafkaConfig struct {
	Enabled bool `yaml:"enabled"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	var c AppConfig
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		panic(err)
	}
	applyDefaults(&c)
	config = &c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func applyDefaults(c *AppConfig) {
	if c.Sentiment.LookbackMonths <= 0 {
		c.Sentiment.LookbackMonths = 6
	}
	if c.Sentiment.Forum.AnswerTimeoutSec <= 0 {
		c.Sentiment.Forum.AnswerTimeoutSec = 90
	}
	if c.Sentiment.Video.MaxVideos <= 0 {
		c.Sentiment.Video.MaxVideos = 5
	}
	if c.Sentiment.Video.MaxCommentsPerVideo <= 0 {
		c.Sentiment.Video.MaxCommentsPerVideo = 50
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "google"
	}
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
