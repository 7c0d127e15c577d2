package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/petrarca/code-pattern-analyzer/internal/history"
	"github.com/spf13/cobra"
)

var (
	historyUser   string
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or clear the per-user suggestion history",
	Long: `Suggestions shown through "analyze --user" are remembered for 30 days so
repeated runs only surface new advice. These commands list or reset that record.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the suggestions remembered for a user",
	Run:   runHistoryList,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every suggestion remembered for a user",
	Run:   runHistoryClear,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)

	historyCmd.PersistentFlags().StringVarP(&historyUser, "user", "u", "", "User id")
	historyCmd.PersistentFlags().StringVar(&settings.HistoryDB, "history-db", settings.HistoryDB, "Suggestion history database (default: user cache dir)")
	_ = historyCmd.MarkPersistentFlagRequired("user")
	setupFormatFlag(historyListCmd, &historyFormat, settings.OutputFormat)
}

// defaultHistoryPath places the database in the user cache directory
func defaultHistoryPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pattern-analyzer", "history.db"), nil
}

// openHistory opens the configured store; without a usable path the history
// only lives for this process
func openHistory(logger *slog.Logger) (history.Store, func()) {
	path := settings.HistoryDB
	if path == "" {
		var err error
		if path, err = defaultHistoryPath(); err != nil {
			logger.Warn("No history location, using in-memory history", "error", err)
			return history.NewMemoryStore(nil), func() {}
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.Warn("Cannot create history directory, using in-memory history", "path", path, "error", err)
		return history.NewMemoryStore(nil), func() {}
	}

	store, err := history.NewBoltStore(path, nil)
	if err != nil {
		logger.Warn("Cannot open history database, using in-memory history", "path", path, "error", err)
		return history.NewMemoryStore(nil), func() {}
	}
	logger.Debug("Opened suggestion history", "path", path)
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close history database", "path", path, "error", err)
		}
	}
}

// HistoryOutput lists the remembered suggestions of a user
type HistoryOutput struct {
	User    string          `json:"user" yaml:"user"`
	Entries []history.Entry `json:"entries" yaml:"entries"`
}

func (o *HistoryOutput) ToJSON() interface{} {
	return o
}

func (o *HistoryOutput) ToText(w io.Writer, s Styles) {
	if len(o.Entries) == 0 {
		fmt.Fprintf(w, "No suggestions remembered for %s\n", o.User)
		return
	}
	for _, e := range o.Entries {
		fmt.Fprintf(w, "%s  %s %s: %s\n",
			s.Dim(e.Timestamp.Local().Format(time.DateTime)),
			s.Severity(e.Suggestion.Severity), e.Suggestion.Type, e.Suggestion.Message)
	}
	fmt.Fprintf(w, "\nTotal: %d suggestions\n", len(o.Entries))
}

func runHistoryList(cmd *cobra.Command, args []string) {
	logger := configureLogging(cmd)
	store, closeStore := openHistory(logger)
	defer closeStore()

	entries, err := store.History(historyUser)
	exitOnError(logger, "Failed to read suggestion history", err)
	if entries == nil {
		entries = []history.Entry{}
	}
	exitOnError(logger, "Failed to write output", Output(&HistoryOutput{User: historyUser, Entries: entries}, historyFormat))
}

func runHistoryClear(cmd *cobra.Command, args []string) {
	logger := configureLogging(cmd)
	store, closeStore := openHistory(logger)
	defer closeStore()

	exitOnError(logger, "Failed to clear suggestion history", store.Clear(historyUser))
	fmt.Fprintf(os.Stderr, "Cleared suggestion history of %s\n", historyUser)
}
