package config

const (
	defaultConfigPath  = "~/.config/mediaextract/config.toml"
	projectConfigName  = "mediaextract.toml"
	defaultBind        = "127.0.0.1:8080"
	defaultLockPath    = "~/.local/share/mediaextract/mediaextract.lock"
	defaultMaxUploadMB = 10
	defaultShutdown    = 5

	defaultOCRBaseURL = "https://vision.googleapis.com/v1/images:annotate"
	defaultOCRTimeout = 20

	defaultLLMBaseURL       = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel         = "google/gemma-3n-e4b-it:free"
	defaultLLMTitle         = "Media Extractor"
	defaultLLMTimeout       = 60
	defaultLLMRetryAttempts = 3

	defaultTMDBBaseURL  = "https://api.themoviedb.org/3"
	defaultTMDBLanguage = "en-US"
	defaultTMDBTimeout  = 10

	defaultWikipediaBaseURL       = "https://en.wikipedia.org/w/api.php"
	defaultWikipediaMaxCandidates = 5
	defaultWikipediaUserAgent     = "mediaextract/dev"
	defaultWikipediaTimeout       = 10

	defaultBooksBaseURL    = "https://www.googleapis.com/books/v1/volumes"
	defaultBooksMaxResults = 5
	defaultBooksTimeout    = 10

	defaultConcurrency      = 4
	defaultCandidateTimeout = 45
	defaultMaxCandidates    = 20

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Bind:                   defaultBind,
			MaxUploadMB:            defaultMaxUploadMB,
			LockPath:               defaultLockPath,
			ShutdownTimeoutSeconds: defaultShutdown,
		},
		OCR: OCR{
			BaseURL:        defaultOCRBaseURL,
			TimeoutSeconds: defaultOCRTimeout,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeout,
			RetryAttempts:  defaultLLMRetryAttempts,
		},
		TMDB: TMDB{
			BaseURL:        defaultTMDBBaseURL,
			Language:       defaultTMDBLanguage,
			TimeoutSeconds: defaultTMDBTimeout,
		},
		Wikipedia: Wikipedia{
			BaseURL:        defaultWikipediaBaseURL,
			MaxCandidates:  defaultWikipediaMaxCandidates,
			UserAgent:      defaultWikipediaUserAgent,
			TimeoutSeconds: defaultWikipediaTimeout,
		},
		Books: Books{
			BaseURL:        defaultBooksBaseURL,
			MaxResults:     defaultBooksMaxResults,
			TimeoutSeconds: defaultBooksTimeout,
		},
		Pipeline: Pipeline{
			Concurrency:             defaultConcurrency,
			CandidateTimeoutSeconds: defaultCandidateTimeout,
			MaxCandidates:           defaultMaxCandidates,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
