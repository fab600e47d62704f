package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ashevtsov/interview-partner/internal/ai/gemini"
	"github.com/ashevtsov/interview-partner/internal/feedback"
	"github.com/ashevtsov/interview-partner/internal/interview"
	"github.com/ashevtsov/interview-partner/internal/logger"
	"github.com/ashevtsov/interview-partner/internal/secrets"
	"github.com/ashevtsov/interview-partner/internal/session"
	"github.com/ashevtsov/interview-partner/internal/voice"
)

const (
	inputModeText  = "text"
	inputModeVoice = "voice"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a mock interview session",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("role", "", "interview role (sales, engineer, retail, behavioral)")
	runCmd.Flags().String("persona", "", "candidate persona (normal, confused, efficient, chatty, edge)")
	runCmd.Flags().String("mode", "", "input mode (text, voice)")
}

// run drives one full interview: setup, turn loop, feedback, persistence.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	if config == nil || config.Gemini == nil {
		zlog.Fatal("config is required")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: config.Gemini.APIKey,
		File:  config.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		zlog.Fatal(
			"loading gemini api key",
			zap.Error(err),
			zap.String("hint", "create a .env file with GEMINI_API_KEY=your_api_key_here or set gemini.api-key-file in the configuration file"),
		)
	}

	zlog.Info("starting the interview-partner", zap.String("version", version))

	client, err := gemini.NewClient(ctx, apiKey, gemini.Config{
		Model:         config.Gemini.Model,
		FeedbackModel: config.Gemini.FeedbackModel,
		Temperature:   config.Gemini.Temperature,
		MaxTokens:     config.Gemini.MaxTokens,
	}, logger.WithCommonFields(zlog, "gemini", config.Gemini.Model))
	if err != nil {
		zlog.Fatal("creating gemini client", zap.Error(err))
	}

	role, err := selectRole(cmd)
	if err != nil {
		zlog.Fatal("selecting role", zap.Error(err))
	}

	persona, err := selectPersona(cmd)
	if err != nil {
		zlog.Fatal("selecting persona", zap.Error(err))
	}

	inputMode, err := selectInputMode(cmd)
	if err != nil {
		zlog.Fatal("selecting input mode", zap.Error(err))
	}

	sessionID := session.NewSessionID(time.Now())
	start := time.Now()
	slog := logger.WithSessionFields(zlog, sessionID, string(role))

	maxQuestions := interview.DefaultMaxQuestions
	if config.Interview != nil && config.Interview.MaxQuestions > 0 {
		maxQuestions = config.Interview.MaxQuestions
	}

	controller, err := interview.New(ctx, role, client, slog,
		interview.WithMaxQuestions(maxQuestions),
	)
	if err != nil {
		slog.Fatal("starting interview", zap.Error(err))
	}

	speaker := prepareSpeaker(config, slog)
	transcriber := prepareTranscriber(config, inputMode, slog)

	fmt.Printf("\nMock interview for %s (persona: %s). Press Ctrl+C to abort.\n\n", role.Label(), persona)

	sayInterviewer(ctx, controller.StartInterview(ctx), speaker)

	for !controller.IsComplete() {
		answer, err := readAnswer(ctx, inputMode, transcriber)
		if err != nil {
			slog.Info("exiting", zap.String("reason", "input closed"))
			return
		}

		transformed := interview.ApplyPersona(answer, persona)
		sayInterviewer(ctx, controller.ProcessAnswer(ctx, transformed), speaker)
	}

	fmt.Println("\nInterview complete. Generating feedback...")

	analyzer := feedback.NewAnalyzer(client, slog, 0)
	result := analyzer.AnalyzeInterview(ctx, string(role), controller.TranscriptText())

	record := &session.Record{
		SessionID:       sessionID,
		Role:            role,
		Persona:         persona,
		InputMode:       inputMode,
		TimestampStart:  start.Format(time.RFC3339),
		DurationSeconds: int(time.Since(start).Seconds()),
		Messages:        controller.Transcript(),
		Feedback:        result,
	}

	saveRecord(config, record, slog)
	printFeedback(result)
}

func saveRecord(config *Config, record *session.Record, zlog *zap.Logger) {
	dir := "data/interviews"
	if config.Storage != nil && config.Storage.SessionsDir != "" {
		dir = config.Storage.SessionsDir
	}

	store, err := session.NewStore(dir, zlog)
	if err != nil {
		zlog.Warn("session store unavailable, proceeding without persistence", zap.Error(err))
		return
	}

	path, err := store.Save(record)
	if err != nil {
		zlog.Warn("saving session failed, proceeding without persistence", zap.Error(err))
		return
	}

	zlog.Info("session saved", zap.String("path", path))
}

// prepareSpeaker returns nil when voice output is disabled or unavailable.
// Audio is strictly best-effort.
func prepareSpeaker(config *Config, zlog *zap.Logger) *voice.Speaker {
	if config.Voice == nil || !config.Voice.Enabled {
		return nil
	}

	cacheDir := "data/audio_cache"
	if config.Storage != nil && config.Storage.AudioCacheDir != "" {
		cacheDir = config.Storage.AudioCacheDir
	}

	speaker, err := voice.NewSpeaker(voice.NewTranslateSynthesizer(config.Voice.Language), cacheDir, zlog)
	if err != nil {
		zlog.Warn("voice output unavailable", zap.Error(err))
		return nil
	}

	return speaker
}

func prepareTranscriber(config *Config, inputMode string, zlog *zap.Logger) *voice.Transcriber {
	if inputMode != inputModeVoice {
		return nil
	}

	language := "en-US"
	if config.Voice != nil && config.Voice.Language != "" && config.Voice.Language != "en" {
		language = config.Voice.Language
	}

	return voice.NewTranscriber(voice.NewWebSpeechRecognizer(language, ""), zlog, 0)
}

func sayInterviewer(ctx context.Context, text string, speaker *voice.Speaker) {
	fmt.Printf("Interviewer: %s\n", text)

	if speaker == nil {
		return
	}

	if path, err := speaker.ToSpeech(ctx, text); err == nil {
		fmt.Printf("  [audio: %s]\n", path)
	}
}

// readAnswer collects one candidate answer. In voice mode the candidate
// supplies a recorded audio file; recognition failures fall back to typing.
func readAnswer(ctx context.Context, inputMode string, transcriber *voice.Transcriber) (string, error) {
	if inputMode == inputModeVoice && transcriber.Available() {
		pathPrompt := promptui.Prompt{Label: "Audio file (empty to type instead)"}
		path, err := pathPrompt.Run()
		if err != nil {
			return "", err
		}

		if path = strings.TrimSpace(path); path != "" {
			text, err := transcriber.TranscribeFile(ctx, path)
			if err == nil && text != "" {
				fmt.Printf("You (recognized): %s\n", text)
				return text, nil
			}
			fmt.Println("Could not recognize the recording, please type your answer.")
		}
	}

	answerPrompt := promptui.Prompt{Label: "You"}
	answer, err := answerPrompt.Run()
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(answer) == "" {
		return "", errors.New("empty answer")
	}

	return answer, nil
}

func selectRole(cmd *cobra.Command) (session.Role, error) {
	if flag := cmd.Flag("role"); flag != nil && flag.Value.String() != "" {
		role := session.Role(flag.Value.String())
		if !role.Valid() {
			return "", fmt.Errorf("invalid role: %s", role)
		}
		return role, nil
	}

	roles := session.Roles()
	labels := make([]string, 0, len(roles))
	for _, role := range roles {
		labels = append(labels, role.Label())
	}

	prompt := promptui.Select{Label: "Choose an interview role", Items: labels}
	idx, _, err := prompt.Run()
	if err != nil {
		return "", err
	}

	return roles[idx], nil
}

func selectPersona(cmd *cobra.Command) (session.Persona, error) {
	if flag := cmd.Flag("persona"); flag != nil && flag.Value.String() != "" {
		persona := session.Persona(flag.Value.String())
		if !persona.Valid() {
			return "", fmt.Errorf("invalid persona: %s", persona)
		}
		return persona, nil
	}

	personas := session.Personas()
	labels := make([]string, 0, len(personas))
	for _, persona := range personas {
		labels = append(labels, fmt.Sprintf("%s - %s", persona, persona.Description()))
	}

	prompt := promptui.Select{Label: "Choose a candidate persona", Items: labels}
	idx, _, err := prompt.Run()
	if err != nil {
		return "", err
	}

	return personas[idx], nil
}

func selectInputMode(cmd *cobra.Command) (string, error) {
	if flag := cmd.Flag("mode"); flag != nil && flag.Value.String() != "" {
		mode := flag.Value.String()
		if mode != inputModeText && mode != inputModeVoice {
			return "", fmt.Errorf("invalid input mode: %s", mode)
		}
		return mode, nil
	}

	prompt := promptui.Select{Label: "Choose an input mode", Items: []string{inputModeText, inputModeVoice}}
	_, mode, err := prompt.Run()
	if err != nil {
		return "", err
	}

	return mode, nil
}

func printFeedback(result *feedback.Record) {
	fmt.Println("\n===== Feedback =====")
	fmt.Printf("Overall score: %d/10\n\n", result.OverallScore)
	fmt.Printf("  Communication:   %d/10\n", result.Scores.Communication)
	fmt.Printf("  Content quality: %d/10\n", result.Scores.ContentQuality)
	fmt.Printf("  Structure:       %d/10\n", result.Scores.Structure)
	fmt.Printf("  Confidence:      %d/10\n", result.Scores.Confidence)
	fmt.Printf("  Role fit:        %d/10\n", result.Scores.RoleFit)

	fmt.Println("\nStrengths:")
	for _, s := range result.Strengths {
		fmt.Printf("  - %s\n", s)
	}

	fmt.Println("\nImprovements:")
	for _, s := range result.Improvements {
		fmt.Printf("  - %s\n", s)
	}

	fmt.Printf("\nBest answer: %s\n", result.BestAnswer)
	fmt.Printf("Needs work:  %s\n", result.NeedsWork)
	fmt.Printf("\nSummary: %s\n", result.Summary)
}
