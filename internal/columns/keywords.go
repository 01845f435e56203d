package columns

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// keywordConfig allows deployments to extend the header keyword sets used
// by the deterministic fallback, e.g. for localized spreadsheets.
type keywordConfig struct {
	ColumnKeywords struct {
		Question      []string `yaml:"question"`
		Answer        []string `yaml:"answer"`
		Documentation []string `yaml:"documentation"`
	} `yaml:"column_keywords"`
}

var (
	mu          sync.RWMutex
	loaded      *keywordConfig
	initialized bool
	logger      = zap.NewNop()
)

// SetLogger installs the process logger for keyword config load events.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l != nil {
		logger = l
	}
}

var defaultPaths = []string{
	os.Getenv("COLUMNS_CONFIG_PATH"),
	"/app/config/columns.yaml",
	"./config/columns.yaml",
}

func loadLocked() {
	cfg := &keywordConfig{}
	for _, p := range defaultPaths {
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		var tmp keywordConfig
		if err := yaml.Unmarshal(data, &tmp); err != nil {
			logger.Warn("Failed to unmarshal column keyword config",
				zap.String("path", p),
				zap.Error(err),
			)
			continue
		}
		cfg = &tmp
		logger.Info("Loaded column keyword configuration", zap.String("path", p))
		break
	}
	if len(cfg.ColumnKeywords.Question) == 0 && len(cfg.ColumnKeywords.Answer) == 0 && len(cfg.ColumnKeywords.Documentation) == 0 {
		if path, ok := findUpConfig(); ok {
			if data, err := os.ReadFile(path); err == nil {
				var tmp keywordConfig
				if err := yaml.Unmarshal(data, &tmp); err == nil {
					cfg = &tmp
					logger.Info("Loaded column keyword configuration", zap.String("path", path))
				}
			}
		}
	}

	// Built-in defaults apply wherever the file is silent.
	if len(cfg.ColumnKeywords.Question) == 0 {
		cfg.ColumnKeywords.Question = []string{"question"}
	}
	if len(cfg.ColumnKeywords.Answer) == 0 {
		cfg.ColumnKeywords.Answer = []string{"answer", "response"}
	}
	if len(cfg.ColumnKeywords.Documentation) == 0 {
		cfg.ColumnKeywords.Documentation = []string{"doc", "link", "reference"}
	}

	loaded = cfg
	initialized = true
}

func findUpConfig() (string, bool) {
	wd, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for i := 0; i < 6; i++ {
		cand := filepath.Join(wd, "config", "columns.yaml")
		if _, err := os.Stat(cand); err == nil {
			return cand, true
		}
		wd = filepath.Dir(wd)
	}
	return "", false
}

func keywords() *keywordConfig {
	mu.RLock()
	if initialized {
		defer mu.RUnlock()
		return loaded
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if !initialized {
		loadLocked()
	}
	return loaded
}

// Reload re-reads the keyword configuration, for config hot reload.
func Reload() {
	mu.Lock()
	defer mu.Unlock()
	initialized = false
	loadLocked()
}
