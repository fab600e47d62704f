package cmd

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ashevtsov/interview-partner/internal/logger"
	"github.com/ashevtsov/interview-partner/internal/session"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved interview sessions and aggregate statistics",
	Run: func(cmd *cobra.Command, _ []string) {
		history(cmd)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "maximum number of sessions to list")
}

func history(cmd *cobra.Command) {
	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	dir := "data/interviews"
	if config != nil && config.Storage != nil && config.Storage.SessionsDir != "" {
		dir = config.Storage.SessionsDir
	}

	store, err := session.NewStore(dir, zlog)
	if err != nil {
		zlog.Fatal("opening session store", zap.Error(err))
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		limit = 20
	}

	summaries := store.List(limit)
	if len(summaries) == 0 {
		fmt.Println("No saved sessions yet.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SESSION\tROLE\tPERSONA\tQUESTIONS\tSCORE\tDURATION")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d/10\t%ds\n",
			s.SessionID, s.Role, s.Persona, s.QuestionCount, s.OverallScore, s.DurationSeconds)
	}
	w.Flush()

	stats := store.Stats()
	fmt.Printf("\nTotal interviews: %d\n", stats.TotalInterviews)
	fmt.Printf("Average score:    %.2f\n", stats.AverageScore)
	fmt.Println("By role:")
	for role, count := range stats.RolesDistribution {
		fmt.Printf("  %-12s %d\n", role, count)
	}
	if stats.LatestInterview != nil {
		fmt.Printf("Latest session:   %s (%s)\n", stats.LatestInterview.SessionID, stats.LatestInterview.Role)
	}
}
