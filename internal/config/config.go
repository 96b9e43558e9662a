package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/elvenpost/chronicle/internal/logger"
)

// Topic is one configured chronicle section: a label, the keyword
// vocabulary the summarizer scores against, and an ordered feed list.
type Topic struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Feeds    []string `yaml:"feeds"`
}

type topicsFile struct {
	Topics []Topic `yaml:"topics"`
}

type Config struct {
	// SMTP settings
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromAddress  string
	Recipient    string

	// Schedule settings
	DigestTime  string // HH:MM, 24-hour
	Timezone    string
	SendOnStart bool

	// Pipeline settings
	TopicsConfigPath    string
	Topics              []Topic
	TopicQuota          int // articles kept per topic
	EntriesPerFeed      int // feed entries consumed per source
	SentencesPerSummary int
	MinSentenceLength   int

	// Fetch settings
	RequestTimeout   time.Duration
	FetchConcurrency int
	ArticleDelay     time.Duration
	RetryAttempts    int
	RetryDelay       time.Duration

	// SMTPTimeout bounds one delivery attempt; a silent SMTP server must
	// never hang a run.
	SMTPTimeout time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		SMTPHost:            "smtp.gmail.com",
		SMTPPort:            587,
		DigestTime:          "05:00",
		Timezone:            "UTC",
		TopicsConfigPath:    "configs/topics.yaml",
		TopicQuota:          4,
		EntriesPerFeed:      3,
		SentencesPerSummary: 5,
		MinSentenceLength:   20,
		RequestTimeout:      10 * time.Second,
		FetchConcurrency:    6,
		ArticleDelay:        time.Second,
		RetryAttempts:       3,
		RetryDelay:          2 * time.Second,
		SMTPTimeout:         30 * time.Second,
	}

	// Load from environment
	cfg.SMTPHost = getEnvOrDefault("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPPort = getEnvIntOrDefault("SMTP_PORT", cfg.SMTPPort)
	cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.FromAddress = getEnvOrDefault("FROM_ADDRESS", cfg.SMTPUsername)
	cfg.Recipient = os.Getenv("DIGEST_RECIPIENT")

	cfg.DigestTime = getEnvOrDefault("DIGEST_TIME", cfg.DigestTime)
	cfg.Timezone = getEnvOrDefault("DIGEST_TIMEZONE", cfg.Timezone)
	if os.Getenv("SEND_ON_START") == "true" {
		cfg.SendOnStart = true
	}

	cfg.TopicsConfigPath = getEnvOrDefault("TOPICS_CONFIG_PATH", cfg.TopicsConfigPath)
	cfg.TopicQuota = getEnvIntOrDefault("TOPIC_QUOTA", cfg.TopicQuota)
	cfg.EntriesPerFeed = getEnvIntOrDefault("ENTRIES_PER_FEED", cfg.EntriesPerFeed)
	cfg.SentencesPerSummary = getEnvIntOrDefault("SENTENCES_PER_SUMMARY", cfg.SentencesPerSummary)
	cfg.FetchConcurrency = getEnvIntOrDefault("FETCH_CONCURRENCY", cfg.FetchConcurrency)

	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("SMTP_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.SMTPTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("ARTICLE_DELAY_MS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.ArticleDelay = time.Duration(val) * time.Millisecond
		}
	}

	topics, err := LoadTopics(cfg.TopicsConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading topics config: %w", err)
	}
	cfg.Topics = topics

	return cfg, cfg.Validate()
}

// LoadTopics reads the topic definitions from a YAML file. Feed URLs that do
// not parse are skipped with a warning rather than failing the whole load.
func LoadTopics(path string) ([]Topic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tf topicsFile
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&tf); err != nil {
		return nil, err
	}

	for i := range tf.Topics {
		tf.Topics[i].Feeds = validFeedURLs(tf.Topics[i].Name, tf.Topics[i].Feeds)
	}
	return tf.Topics, nil
}

func validFeedURLs(topic string, feeds []string) []string {
	valid := make([]string, 0, len(feeds))
	for _, raw := range feeds {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			if logger.Logger != nil {
				logger.Warn("skipping malformed feed URL", "topic", topic, "url", raw)
			}
			continue
		}
		valid = append(valid, raw)
	}
	return valid
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.SMTPUsername == "" {
		return fmt.Errorf("SMTP_USERNAME is required")
	}
	if c.SMTPPassword == "" {
		return fmt.Errorf("SMTP_PASSWORD is required")
	}
	if c.Recipient == "" {
		return fmt.Errorf("DIGEST_RECIPIENT is required")
	}
	if err := ValidateTime(c.DigestTime); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if len(c.Topics) == 0 {
		return fmt.Errorf("no topics configured in %s", c.TopicsConfigPath)
	}
	return nil
}

// ValidateTime checks that a schedule time is in HH:MM 24-hour format.
func ValidateTime(t string) error {
	if len(t) != 5 || t[2] != ':' {
		return fmt.Errorf("invalid time format %q: must be HH:MM", t)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if t[i] < '0' || t[i] > '9' {
			return fmt.Errorf("invalid time format %q: must be HH:MM", t)
		}
	}

	hour := int(t[0]-'0')*10 + int(t[1]-'0')
	minute := int(t[3]-'0')*10 + int(t[4]-'0')

	if hour > 23 {
		return fmt.Errorf("invalid time %q: hour must be 0-23", t)
	}
	if minute > 59 {
		return fmt.Errorf("invalid time %q: minute must be 0-59", t)
	}
	return nil
}
