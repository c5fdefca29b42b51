package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/pathfinder/internal/chat"
	"github.com/spigell/pathfinder/internal/jobsearch"
	"github.com/spigell/pathfinder/internal/logger"
	"github.com/spigell/pathfinder/internal/render"
	"github.com/spigell/pathfinder/internal/upload"
)

const (
	CommandUpload  = "/upload"
	CommandHistory = "/history"
	CommandNew     = "/new"
	CommandHelp    = "/help"
	CommandQuit    = "/quit"
	PromptBack     = "back"
)

const helpText = `Commands:
  /upload <path>   send your resume (PDF only)
  /history [id]    show the results of a previous search
  /new             start a new search
  /quit            exit`

var errExit = errors.New("exit requested")

// pickHistory lets the user choose one of the previous searches.
var pickHistory = func(records []jobsearch.HistoryRecord) (int, bool, error) {
	items := make([]string, 0, len(records)+1)
	for _, record := range records {
		items = append(items, render.HistoryLabel(record))
	}

	historyPrompt := promptui.Select{
		Label: "Choose a previous search and press ENTER",
		Items: append(items, PromptBack),
	}

	idx, _, err := historyPrompt.Run()
	if err != nil {
		return 0, false, err
	}
	if idx >= len(records) {
		return 0, false, nil
	}

	return records[idx].ID, true, nil
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a conversation with the job search assistant",
	Run: func(cmd *cobra.Command, _ []string) {
		runChat(cmd)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().Bool("check", false, "exit if the backend does not answer the health check")
	chatCmd.Flags().StringP("watch-dir", "w", "", "a folder to watch for dropped resumes. Default is unset.")
	chatCmd.Flags().StringP("locale", "l", "", "country to search jobs in (default is USA)")

	viper.BindPFlag("watch-dir", chatCmd.Flags().Lookup("watch-dir"))
	viper.BindPFlag("locale", chatCmd.Flags().Lookup("locale"))
}

// conversation is the part of the controller the prompt loop drives.
type conversation interface {
	Submit(text string) error
	Upload(ctx context.Context, doc *jobsearch.Document) error
	OpenHistory(ctx context.Context, id int) error
	Reset(ctx context.Context) error
	History() []jobsearch.HistoryRecord
}

func runChat(cmd *cobra.Command) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// stdout belongs to the conversation.
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), "stderr")
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		config = &Config{}
	}

	logger.Info("starting the pathfinder", zap.String("version", version))

	client := newClient(config, logger)

	if err := client.Ping(ctx); err != nil {
		if cmd.Flag("check").Value.String() == "true" {
			logger.Fatal("backend is not available", zap.String("api_url", client.APIURL), zap.Error(err))
		}
		logger.Warn("backend health check failed", zap.String("api_url", client.APIURL), zap.Error(err))
	}

	greeter, err := newGreeter(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("skipping AI greeting", zap.Error(err))
	}

	terminal := render.NewTerminal(os.Stdout)
	if config.WatchDir != "" {
		terminal.UploadHint = fmt.Sprintf("Drop it into %s or type %s <path> (PDF only).", config.WatchDir, CommandUpload)
	}

	controller := chat.New(chat.Deps{
		Gateway:   client,
		Greeter:   greeter,
		Presenter: terminal,
		Logger:    logger,
	}, config.Locale)

	if config.WatchDir != "" {
		stop, err := watchUploads(ctx, controller, config.WatchDir, os.Stdout, logger)
		if err != nil {
			logger.Fatal("watching the drop folder", zap.String("dir", config.WatchDir), zap.Error(err))
		}
		defer stop()
	}

	if err := controller.Start(ctx); err != nil {
		logger.Fatal("starting the conversation", zap.Error(err))
	}

	render.History(os.Stdout, controller.History())
	fmt.Fprintln(os.Stdout, helpText)

	input := promptui.Prompt{Label: ">"}
	for {
		line, err := input.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				logger.Info("exiting", zap.String("reason", "input closed"))
				return
			}
			logger.Fatal("reading input", zap.Error(err))
		}

		if err := handleInput(ctx, controller, line, os.Stdout, logger); err != nil {
			if errors.Is(err, errExit) {
				logger.Info("exiting", zap.String("reason", "quit requested"))
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// handleInput dispatches a line typed by the user. Only errExit and
// unexpected failures are returned; expected refusals are explained on out.
func handleInput(ctx context.Context, c conversation, line string, out io.Writer, logger *zap.Logger) error {
	line = strings.TrimSpace(line)
	command, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch command {
	case CommandQuit, "/exit":
		return errExit
	case CommandHelp:
		fmt.Fprintln(out, helpText)
		return nil
	case CommandNew:
		return explain(out, c.Reset(ctx))
	case CommandUpload:
		path := rest
		if _, err := os.Stat(path); err != nil {
			var ok bool
			if path, ok = upload.First(strings.Fields(rest)); !ok {
				fmt.Fprintf(out, "Usage: %s <path>\n", CommandUpload)
				return nil
			}
		}
		return uploadFile(ctx, c, path, out, logger)
	case CommandHistory:
		return openHistory(ctx, c, rest, out)
	default:
		return explain(out, c.Submit(line))
	}
}

func uploadFile(ctx context.Context, c conversation, path string, out io.Writer, logger *zap.Logger) error {
	doc, err := upload.Open(path)
	if err != nil {
		logger.Debug("cannot open the resume", zap.String("path", path), zap.Error(err))
		fmt.Fprintf(out, "Cannot read %s: %s\n", path, err)
		return nil
	}

	return explain(out, c.Upload(ctx, doc))
}

func openHistory(ctx context.Context, c conversation, arg string, out io.Writer) error {
	records := c.History()

	var id int
	if arg != "" {
		parsed, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
		if err != nil {
			fmt.Fprintf(out, "Usage: %s [id]\n", CommandHistory)
			return nil
		}
		id = parsed
	} else {
		if len(records) == 0 {
			render.History(out, records)
			return nil
		}

		picked, ok, err := pickHistory(records)
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}
		if !ok {
			return nil
		}
		id = picked
	}

	return explain(out, c.OpenHistory(ctx, id))
}

// explain turns controller refusals into a line for the user.
func explain(out io.Writer, err error) error {
	switch {
	case err == nil, errors.Is(err, chat.ErrEmptyInput):
		return nil
	case errors.Is(err, chat.ErrBusy):
		fmt.Fprintln(out, "Still working on your previous request, please wait.")
	case errors.Is(err, chat.ErrUnexpectedUpload):
		fmt.Fprintf(out, "I'm not expecting a resume right now. Type %s to start over.\n", CommandNew)
	case errors.Is(err, chat.ErrUnsupportedDocument):
		fmt.Fprintln(out, "Only PDF files are supported.")
	case errors.Is(err, chat.ErrUnknownHistoryRecord):
		fmt.Fprintln(out, "There is no such search in the history.")
	default:
		return err
	}

	return nil
}

func newClient(config *Config, logger *zap.Logger) *jobsearch.Client {
	client := jobsearch.New(logger, config.APIURL)

	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}
	if config.Timeout > 0 {
		client.HTTPClient.Timeout = config.Timeout
	}

	return client
}
