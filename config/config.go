package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"movie-recap/internal/appdirs"
	"movie-recap/log"
	apperrors "movie-recap/pkg/errors"
)

type App struct {
	WorkDir     string   `toml:"work_dir"`
	Proxy       string   `toml:"proxy"`
	LogLevel    string   `toml:"log_level"`
	FfmpegPath  string   `toml:"ffmpeg_path"`
	FfprobePath string   `toml:"ffprobe_path"`
	ParsedProxy *url.URL `toml:"-"`
}

type Server struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type Llm struct {
	BaseUrl string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

type ElevenLabs struct {
	ApiKey  string `toml:"api_key"`
	VoiceId string `toml:"voice_id"`
	ModelId string `toml:"model_id"`
}

type OpenaiTts struct {
	BaseUrl string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	Voice   string `toml:"voice"`
}

type Tts struct {
	Provider   string     `toml:"provider"`
	ElevenLabs ElevenLabs `toml:"elevenlabs"`
	Openai     OpenaiTts  `toml:"openai"`
}

type Pipeline struct {
	MinClips       int     `toml:"min_clips"`
	MaxClips       int     `toml:"max_clips"`
	MaxSpeedup     float64 `toml:"max_speedup"`
	ScriptMinBytes int64   `toml:"script_min_bytes"`
	ClearScratch   bool    `toml:"clear_scratch"`
	Vertical       bool    `toml:"vertical"`
	Seed           int64   `toml:"seed"`
}

type Bgm struct {
	NarrationGain   float64 `toml:"narration_gain"`
	BgmGain         float64 `toml:"bgm_gain"`
	StartOffset     float64 `toml:"start_offset"`
	MinTrackSeconds float64 `toml:"min_track_seconds"`
	MaxParts        int     `toml:"max_parts"`
}

type Queue struct {
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

type Storage struct {
	Enabled bool `toml:"enabled"`
}

type Config struct {
	App      App      `toml:"app"`
	Server   Server   `toml:"server"`
	Llm      Llm      `toml:"llm"`
	Tts      Tts      `toml:"tts"`
	Pipeline Pipeline `toml:"pipeline"`
	Bgm      Bgm      `toml:"bgm"`
	Queue    Queue    `toml:"queue"`
	Storage  Storage  `toml:"storage"`
}

var Conf = defaultConfig()

var resolveConfigPath = func() (string, error) {
	dirs, err := appdirs.Resolve()
	if err != nil {
		return "", err
	}
	return dirs.ConfigFile, nil
}

func defaultConfig() Config {
	return Config{
		App: App{
			WorkDir:  ".",
			LogLevel: "info",
		},
		Server: Server{
			Host: "127.0.0.1",
			Port: 8899,
		},
		Llm: Llm{
			Model: "gpt-5.2",
		},
		Tts: Tts{
			Provider: "elevenlabs",
			ElevenLabs: ElevenLabs{
				VoiceId: "JBFqnCBsd6RMkjVDRZzb",
				ModelId: "eleven_multilingual_v2",
			},
			Openai: OpenaiTts{
				Model: "tts-1",
				Voice: "onyx",
			},
		},
		Pipeline: Pipeline{
			MinClips:       20,
			MaxClips:       30,
			MaxSpeedup:     1.75,
			ScriptMinBytes: 200,
			ClearScratch:   true,
			Vertical:       true,
		},
		Bgm: Bgm{
			NarrationGain:   2.5,
			BgmGain:         0.1,
			StartOffset:     40,
			MinTrackSeconds: 60,
			MaxParts:        200,
		},
		Queue: Queue{
			RedisAddr: "127.0.0.1:6379",
		},
		Storage: Storage{
			Enabled: true,
		},
	}
}

func ResolveConfigPath() (string, error) {
	return resolveConfigPath()
}

// LoadOrCreateConfig reads the config file, writing the defaults first when
// it does not exist yet.
func LoadOrCreateConfig() (bool, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return false, err
	}

	if _, err = os.Stat(path); errors.Is(err, os.ErrNotExist) {
		Conf = defaultConfig()
		if err = SaveConfig(); err != nil {
			return false, err
		}
		log.GetLogger().Info("default config written", zap.String("path", path))
		return true, nil
	} else if err != nil {
		return false, err
	}

	loaded := defaultConfig()
	if _, err = toml.DecodeFile(path, &loaded); err != nil {
		return false, apperrors.Wrap(apperrors.CodeConfigInvalid, "config file is not valid toml", err)
	}
	Conf = loaded
	return false, nil
}

// LoadConfig loads .env, the config file and environment overrides.
func LoadConfig() error {
	// .env is optional
	_ = godotenv.Load()

	if _, err := LoadOrCreateConfig(); err != nil {
		return err
	}
	applyEnvOverrides(&Conf)
	return nil
}

func applyEnvOverrides(c *Config) {
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	override(&c.Llm.ApiKey, "OPENAI_API_KEY")
	override(&c.Llm.BaseUrl, "OPENAI_BASE_URL")
	override(&c.Tts.ElevenLabs.ApiKey, "ELEVENLABS_API_KEY")
	override(&c.Tts.ElevenLabs.VoiceId, "ELEVENLABS_VOICE_ID")
	override(&c.Tts.ElevenLabs.ModelId, "ELEVENLABS_MODEL_ID")
	override(&c.Tts.Openai.ApiKey, "OPENAI_TTS_API_KEY")
	override(&c.Queue.RedisAddr, "REDIS_ADDR")
}

func SaveConfig() error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err = toml.NewEncoder(&buf).Encode(Conf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// CheckConfig validates credentials and numeric ranges. A failure here is an
// unrecoverable setup error.
func CheckConfig() error {
	c := &Conf

	if c.App.Proxy != "" {
		parsed, err := url.Parse(c.App.Proxy)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeConfigInvalid, "app.proxy is not a valid url", err)
		}
		c.App.ParsedProxy = parsed
	}

	if strings.TrimSpace(c.Llm.ApiKey) == "" {
		return apperrors.WrapWithDetail(apperrors.CodeMissingCredential, "missing LLM api key", "set llm.api_key or OPENAI_API_KEY", nil)
	}

	switch c.Tts.Provider {
	case "elevenlabs", "":
		c.Tts.Provider = "elevenlabs"
		if strings.TrimSpace(c.Tts.ElevenLabs.ApiKey) == "" {
			return apperrors.WrapWithDetail(apperrors.CodeMissingCredential, "missing ElevenLabs api key", "set tts.elevenlabs.api_key or ELEVENLABS_API_KEY", nil)
		}
	case "openai":
		if c.Tts.Openai.ApiKey == "" {
			c.Tts.Openai.ApiKey = c.Llm.ApiKey
		}
		if c.Tts.Openai.BaseUrl == "" {
			c.Tts.Openai.BaseUrl = c.Llm.BaseUrl
		}
	default:
		return apperrors.New(apperrors.CodeConfigInvalid, fmt.Sprintf("unsupported tts provider %q", c.Tts.Provider))
	}

	if c.Pipeline.MinClips <= 0 || c.Pipeline.MaxClips < c.Pipeline.MinClips {
		return apperrors.New(apperrors.CodeConfigInvalid, fmt.Sprintf("invalid clip range %d-%d", c.Pipeline.MinClips, c.Pipeline.MaxClips))
	}
	if c.Pipeline.MaxSpeedup <= 0 {
		return apperrors.New(apperrors.CodeConfigInvalid, "pipeline.max_speedup must be positive")
	}
	if c.Bgm.MaxParts <= 0 {
		c.Bgm.MaxParts = 200
	}
	return nil
}
