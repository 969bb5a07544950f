package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// Config is the full run configuration. Every tolerance and bucket edge is
// explicit here; nothing in the pipeline reads ambient state.
type Config struct {
	Environment string `yaml:"environment" default:"dev"`

	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`

	Data struct {
		TradesFile   string `yaml:"trades_file"`
		L2Dir        string `yaml:"l2_dir"`
		PriceLogFile string `yaml:"pricelog_file"`
	} `yaml:"data"`

	Analysis struct {
		WindowDurationSecs float64   `yaml:"window_duration_secs" default:"900"`
		TimingOffsetSecs   float64   `yaml:"timing_offset_secs" default:"-1"`
		GapToleranceSecs   float64   `yaml:"gap_tolerance_secs" default:"5"`
		MinDurationSecs    float64   `yaml:"min_duration_secs" default:"850"`
		MinSnapshotCount   int       `yaml:"min_snapshot_count" default:"10"`
		VanishedTolerance  float64   `yaml:"vanished_tolerance" default:"0.8"`
		SoleOrderBand      float64   `yaml:"sole_order_band" default:"0.05"`
		ImbalanceEdges     []float64 `yaml:"imbalance_bucket_edges"`
		TimeEdges          []float64 `yaml:"time_bucket_edges"`
		OffsetSweepSecs    []float64 `yaml:"offset_sweep_secs"`
		Workers            int       `yaml:"workers" default:"4"`
	} `yaml:"analysis"`

	Server struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`

	Backend struct {
		Type      string `yaml:"type" default:"none"` // none, kafka, clickhouse
		BatchSize int    `yaml:"batch_size" default:"2000"`
	} `yaml:"backend"`

	Kafka struct {
		Brokers      []string      `yaml:"brokers"`
		FillsTopic   string        `yaml:"fills_topic" default:"makerlens.fills"`
		SummaryTopic string        `yaml:"summary_topic" default:"makerlens.summaries"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		BatchSize    int           `yaml:"batch_size" default:"100"`
	} `yaml:"kafka"`

	ClickHouse struct {
		Host        string        `yaml:"host"`
		Port        int           `yaml:"port" default:"9000"`
		Database    string        `yaml:"database" default:"makerlens"`
		User        string        `yaml:"user" default:"default"`
		Password    string        `yaml:"password"`
		DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout time.Duration `yaml:"read_timeout" default:"10s"`
	} `yaml:"clickhouse"`

	Cache struct {
		RedisEnabled bool          `yaml:"redis_enabled"`
		RedisHost    string        `yaml:"redis_host" default:"localhost"`
		RedisPort    int           `yaml:"redis_port" default:"6379"`
		RedisDB      int           `yaml:"redis_db"`
		TTL          time.Duration `yaml:"ttl" default:"30s"`
	} `yaml:"cache"`
}

// Load reads, defaults, and validates a YAML configuration file. Any
// configuration error aborts before a single window is processed.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyBucketDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment
// variables, matching how the gatherer side is deployed.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if v := os.Getenv("TRADES_FILE"); v != "" {
		c.Data.TradesFile = v
	}
	if v := os.Getenv("L2_DATA_DIR"); v != "" {
		c.Data.L2Dir = v
	}
	if v := os.Getenv("PRICE_LOG"); v != "" {
		c.Data.PriceLogFile = v
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyBucketDefaults() {
	if len(c.Analysis.ImbalanceEdges) == 0 {
		c.Analysis.ImbalanceEdges = []float64{0.05, 0.10, 0.15, 0.20, 0.30, 0.50}
	}
	if len(c.Analysis.TimeEdges) == 0 {
		c.Analysis.TimeEdges = []float64{0.1, 0.25, 0.5, 0.75, 0.9}
	}
	if len(c.Analysis.OffsetSweepSecs) == 0 {
		c.Analysis.OffsetSweepSecs = []float64{-3, -2, -1, 0, 1, 2, 3}
	}
}

// Validate fails fast on anything that would make the run non-deterministic
// or nonsensical.
func (c *Config) Validate() error {
	a := &c.Analysis
	if a.WindowDurationSecs <= 0 {
		return fmt.Errorf("analysis.window_duration_secs must be positive")
	}
	if a.GapToleranceSecs <= 0 {
		return fmt.Errorf("analysis.gap_tolerance_secs must be positive")
	}
	if a.MinDurationSecs <= 0 || a.MinDurationSecs > a.WindowDurationSecs {
		return fmt.Errorf("analysis.min_duration_secs must be in (0, window_duration]")
	}
	if a.MinSnapshotCount <= 0 {
		return fmt.Errorf("analysis.min_snapshot_count must be positive")
	}
	if a.VanishedTolerance <= 0 || a.VanishedTolerance > 1 {
		return fmt.Errorf("analysis.vanished_tolerance must be in (0, 1]")
	}
	if a.SoleOrderBand <= 0 || a.SoleOrderBand >= 1 {
		return fmt.Errorf("analysis.sole_order_band must be in (0, 1)")
	}
	if a.Workers <= 0 {
		return fmt.Errorf("analysis.workers must be positive")
	}
	if err := validateEdges("analysis.imbalance_bucket_edges", a.ImbalanceEdges); err != nil {
		return err
	}
	if err := validateEdges("analysis.time_bucket_edges", a.TimeEdges); err != nil {
		return err
	}

	switch c.Backend.Type {
	case "none", "kafka", "clickhouse":
	default:
		return fmt.Errorf("backend.type must be 'none', 'kafka' or 'clickhouse', got %q", c.Backend.Type)
	}
	if c.Backend.Type == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required for kafka backend")
	}
	if c.Backend.Type == "clickhouse" && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host required for clickhouse backend")
	}
	return nil
}

func validateEdges(name string, edges []float64) error {
	if len(edges) == 0 {
		return fmt.Errorf("%s must not be empty", name)
	}
	if !sort.Float64sAreSorted(edges) {
		return fmt.Errorf("%s must be strictly increasing", name)
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] == edges[i-1] {
			return fmt.Errorf("%s must be strictly increasing", name)
		}
	}
	for _, e := range edges {
		if e <= 0 {
			return fmt.Errorf("%s must contain positive values", name)
		}
	}
	return nil
}
