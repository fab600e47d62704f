package cmd

import (
	"errors"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const app = "interview-partner"

// Config is the full configuration surface. Everything except the API
// credential has a working default.
type Config struct {
	Gemini    *GeminiConfig    `mapstructure:"gemini"`
	Interview *InterviewConfig `mapstructure:"interview"`
	Storage   *StorageConfig   `mapstructure:"storage"`
	Voice     *VoiceConfig     `mapstructure:"voice"`
}

type GeminiConfig struct {
	APIKey        string  `mapstructure:"api-key"`
	APIKeyFile    string  `mapstructure:"api-key-file"`
	Model         string  `mapstructure:"model"`
	FeedbackModel string  `mapstructure:"feedback-model"`
	Temperature   float32 `mapstructure:"temperature"`
	MaxTokens     int32   `mapstructure:"max-tokens"`
}

type InterviewConfig struct {
	MinQuestions int `mapstructure:"min-questions"`
	MaxQuestions int `mapstructure:"max-questions"`
}

type StorageConfig struct {
	SessionsDir   string `mapstructure:"sessions-dir"`
	AudioCacheDir string `mapstructure:"audio-cache-dir"`
}

type VoiceConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Language string `mapstructure:"language"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "interview-partner is a cli for practicing mock job interviews against a language model",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interview-partner.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// A local .env may carry GEMINI_API_KEY.
	_ = godotenv.Load()

	if err := viper.BindEnv("gemini.api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}
	if err := viper.BindEnv("gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	viper.SetDefault("gemini.model", "gemini-2.5-flash")
	viper.SetDefault("gemini.feedback-model", "gemini-2.5-pro")
	viper.SetDefault("gemini.temperature", 0.7)
	viper.SetDefault("gemini.max-tokens", 2048)
	viper.SetDefault("interview.min-questions", 5)
	viper.SetDefault("interview.max-questions", 7)
	viper.SetDefault("storage.sessions-dir", "data/interviews")
	viper.SetDefault("storage.audio-cache-dir", "data/audio_cache")
	viper.SetDefault("voice.enabled", false)
	viper.SetDefault("voice.language", "en")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
		viper.SetConfigType("yaml")
	}

	// The config file is optional; defaults plus the environment are enough
	// to run. An explicitly requested file must still parse.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
