package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectDir   string `json:"project_dir"`
	ResultsDir   string `json:"results_dir"`
	DataDir      string `json:"data_dir"`
	DataCacheDir string `json:"data_cache_dir"`

	LLMProvider    string `json:"llm_provider"`
	DeepThinkLLM   string `json:"deep_think_llm"`
	QuickThinkLLM  string `json:"quick_think_llm"`
	EmbeddingModel string `json:"embedding_model"`
	BackendURL     string `json:"backend_url"`
	LLMAPIKey      string `json:"-"`

	MemoryWindow  int  `json:"memory_window"`
	MaxRecurLimit int  `json:"max_recursion_limit"`
	OnlineTools   bool `json:"online_tools"`
	CacheEnabled  bool `json:"cache_enabled"`
	Debug         bool `json:"debug"`

	// External data API keys
	FinnhubAPIKey   string `json:"-"`
	FredAPIKey      string `json:"-"`
	TavilyAPIKey    string `json:"-"`
	RedditClientID  string `json:"-"`
	RedditSecret    string `json:"-"`
	RedditUserAgent string `json:"reddit_user_agent"`

	TwitterBearerToken string `json:"-"`
	TwitterListID      string `json:"twitter_list_id"`

	// Relational memory (PostgreSQL)
	PostgresHost     string `json:"postgres_host"`
	PostgresPort     string `json:"postgres_port"`
	PostgresUser     string `json:"postgres_user"`
	PostgresPassword string `json:"-"`
	PostgresDB       string `json:"postgres_db"`

	// Long-term memory (Chroma vector database)
	ChromaURL        string `json:"chroma_url"`
	VectorCollection string `json:"vector_collection"`

	// Short-term memory (Redis sessions)
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"-"`
	RedisDB       int    `json:"redis_db"`

	// HTTP API
	ListenAddr string `json:"listen_addr"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := DefaultConfigWithRoot(currentDir)

	// Load environment variables from .env file
	_ = godotenv.Load()

	// Override with environment variables if they exist
	cfg.loadFromEnv()

	return cfg
}

// DefaultConfigWithRoot builds a config rooted at the given directory without
// consulting the environment.
func DefaultConfigWithRoot(root string) *Config {
	return &Config{
		ProjectDir:   root,
		ResultsDir:   filepath.Join(root, "results"),
		DataDir:      filepath.Join(root, "data"),
		DataCacheDir: filepath.Join(root, "data", "cache"),

		LLMProvider:    "deepseek",
		DeepThinkLLM:   "deepseek-reasoner",
		QuickThinkLLM:  "deepseek-chat",
		EmbeddingModel: "text-embedding-ada-002",
		BackendURL:     "https://api.deepseek.com/v1",

		MemoryWindow:  10,
		MaxRecurLimit: 128,
		OnlineTools:   true,
		CacheEnabled:  true,

		RedditUserAgent: "aletheia:v0.1.0 (by /u/aletheia_bot)",

		PostgresHost: "localhost",
		PostgresPort: "5432",
		PostgresUser: "postgres",
		PostgresDB:   "aletheia",

		ChromaURL:        "http://localhost:8000",
		VectorCollection: "aletheia_memory",

		RedisAddr: "",
		RedisDB:   0,

		ListenAddr: ":8501",
	}
}

func (c *Config) loadFromEnv() {
	c.applyEnv(os.Getenv)
}

// applyEnv overlays every recognized key from the lookup onto the
// config. Empty lookups leave the current value in place.
func (c *Config) applyEnv(get func(string) string) {
	if val := get("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := get("RESULTS_DIR"); val != "" {
		c.ResultsDir = val
	}
	if val := get("DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := get("DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}

	if val := get("LLM_PROVIDER"); val != "" {
		c.LLMProvider = val
	}
	if val := get("DEEP_THINK_LLM"); val != "" {
		c.DeepThinkLLM = val
	}
	if val := get("QUICK_THINK_LLM"); val != "" {
		c.QuickThinkLLM = val
	}
	if val := get("EMBEDDING_MODEL"); val != "" {
		c.EmbeddingModel = val
	}
	if val := get("BACKEND_URL"); val != "" {
		c.BackendURL = val
	}
	if val := get("LLM_API_KEY"); val != "" {
		c.LLMAPIKey = val
	} else if val := get("DEEPSEEK_API_KEY"); val != "" {
		c.LLMAPIKey = val
	}

	if val := get("MEMORY_WINDOW"); val != "" {
		if v, err := strconv.Atoi(val); err == nil && v > 0 {
			c.MemoryWindow = v
		}
	}
	if val := get("MAX_RECURSION_LIMIT"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxRecurLimit = v
		}
	}
	if val := get("ONLINE_TOOLS"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.OnlineTools = enabled
		}
	}
	if val := get("CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = enabled
		}
	}
	if val := get("ALETHEIA_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}

	if val := get("FINNHUB_API_KEY"); val != "" {
		c.FinnhubAPIKey = val
	}
	if val := get("FRED_API_KEY"); val != "" {
		c.FredAPIKey = val
	}
	if val := get("TAVILY_API_KEY"); val != "" {
		c.TavilyAPIKey = val
	}
	if val := get("REDDIT_CLIENT_ID"); val != "" {
		c.RedditClientID = val
	}
	if val := get("REDDIT_CLIENT_SECRET"); val != "" {
		c.RedditSecret = val
	}
	if val := get("REDDIT_USER_AGENT"); val != "" {
		c.RedditUserAgent = val
	}
	if val := get("TWITTER_BEARER_TOKEN"); val != "" {
		c.TwitterBearerToken = val
	}
	if val := get("TWITTER_LIST_ID"); val != "" {
		c.TwitterListID = val
	}

	if val := get("POSTGRES_HOST"); val != "" {
		c.PostgresHost = val
	}
	if val := get("POSTGRES_PORT"); val != "" {
		c.PostgresPort = val
	}
	if val := get("POSTGRES_USER"); val != "" {
		c.PostgresUser = val
	}
	if val := get("POSTGRES_PASSWORD"); val != "" {
		c.PostgresPassword = val
	}
	if val := get("POSTGRES_DB"); val != "" {
		c.PostgresDB = val
	}

	if val := get("CHROMA_URL"); val != "" {
		c.ChromaURL = val
	}
	if val := get("VECTOR_COLLECTION"); val != "" {
		c.VectorCollection = val
	}

	if val := get("REDIS_ADDR"); val != "" {
		c.RedisAddr = val
	}
	if val := get("REDIS_PASSWORD"); val != "" {
		c.RedisPassword = val
	}
	if val := get("REDIS_DB"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.RedisDB = v
		}
	}

	if val := get("LISTEN_ADDR"); val != "" {
		c.ListenAddr = val
	}
}

// PostgresDSN assembles the connection string expected by lib/pq.
func (c *Config) PostgresDSN() string {
	parts := []string{
		"host=" + c.PostgresHost,
		"port=" + c.PostgresPort,
		"user=" + c.PostgresUser,
		"dbname=" + c.PostgresDB,
		"sslmode=disable",
	}
	if c.PostgresPassword != "" {
		parts = append(parts, "password="+c.PostgresPassword)
	}
	return strings.Join(parts, " ")
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if strings.TrimSpace(c.DataCacheDir) == "" {
		return fmt.Errorf("data_cache_dir must not be empty")
	}
	if c.MemoryWindow <= 0 {
		return fmt.Errorf("memory_window must be positive, got %d", c.MemoryWindow)
	}
	if c.MaxRecurLimit <= 0 {
		return fmt.Errorf("max_recursion_limit must be positive, got %d", c.MaxRecurLimit)
	}
	return nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ProjectDir, c.ResultsDir, c.DataDir, c.DataCacheDir}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
