package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-core-fx/config"
)

type http struct {
	Address     string   `koanf:"address"`
	ProxyHeader string   `koanf:"proxy_header"`
	Proxies     []string `koanf:"proxies"`
}

type storageConfig struct {
	DataDir  string `koanf:"data_dir"`
	InMemory bool   `koanf:"in_memory"`
}

type repositoryConfig struct {
	Path           string `koanf:"path"`
	InitIfMissing  bool   `koanf:"init_if_missing"`
	IgnoreTemplate string `koanf:"ignore_template"`
}

type gitConfig struct {
	Binary           string        `koanf:"binary"`
	Timeout          time.Duration `koanf:"timeout"`
	IgnoredDirs      []string      `koanf:"ignored_dirs"`
	DivergenceWindow int           `koanf:"divergence_window"`
	DiffContext      int           `koanf:"diff_context"`
	LockPath         string        `koanf:"lock_path"`
	LockTimeout      time.Duration `koanf:"lock_timeout"`
	MergeMessage     string        `koanf:"merge_message"`
}

type watcherConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Debounce time.Duration `koanf:"debounce"`
}

type tasksConfig struct {
	Retention time.Duration `koanf:"retention"`
}

type Config struct {
	HTTP http `koanf:"http"`

	Storage    storageConfig    `koanf:"storage"`
	Repository repositoryConfig `koanf:"repository"`
	Git        gitConfig        `koanf:"git"`
	Watcher    watcherConfig    `koanf:"watcher"`
	Tasks      tasksConfig      `koanf:"tasks"`
}

const defaultIgnoreTemplate = `# Dependencies
node_modules/
venv/
env/
.venv/
__pycache__/
*.pyc
*.pyo
*.pyd

# Build output
dist/
build/
*.egg-info/
.next/
.nuxt/
target/

# IDEs
.idea/
.vscode/
*.swp
*.swo

# OS
.DS_Store
Thumbs.db
*.log

# Environment
.env
.env.local
`

func Default() Config {
	//nolint:exhaustruct,mnd //default values
	return Config{
		HTTP: http{
			Address:     "127.0.0.1:3000",
			ProxyHeader: "X-Forwarded-For",
			Proxies:     []string{},
		},

		Storage: storageConfig{
			DataDir: "./data",
		},

		Repository: repositoryConfig{
			Path:           ".",
			InitIfMissing:  false,
			IgnoreTemplate: defaultIgnoreTemplate,
		},

		Git: gitConfig{
			Binary:           "git",
			Timeout:          2 * time.Minute,
			DivergenceWindow: 50,
			DiffContext:      3,
			LockTimeout:      10 * time.Second,
		},

		Watcher: watcherConfig{
			Enabled:  true,
			Debounce: 300 * time.Millisecond,
		},

		Tasks: tasksConfig{
			Retention: time.Hour,
		},
	}
}

func New() (Config, error) {
	cfg := Default()

	options := []config.Option{}
	if yamlPath := os.Getenv("CONFIG_PATH"); yamlPath != "" {
		options = append(options, config.WithLocalYAML(yamlPath))
	}

	if err := config.Load(&cfg, options...); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}
