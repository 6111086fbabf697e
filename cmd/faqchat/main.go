// Command faqchat serves the FAQ chat API and ships the operator tools
// around it: index ingestion, a pipeline query loop and a terminal client.
package main

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/faq-chat-backend/internal/config"
	"github.com/tbourn/faq-chat-backend/internal/sysutil"
)

const serviceName = "faq-chat-backend"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "faqchat",
		Short:         "FAQ chat backend and tools",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := sysutil.FirstNonEmpty(os.Getenv("LOG_LEVEL"), "info")
			pretty := strings.EqualFold(os.Getenv("LOG_PRETTY"), "true")
			sysutil.SetupLogger(os.Stderr, level, pretty, serviceName)
		},
	}
	root.AddCommand(newServeCmd(), newIngestCmd(), newAskCmd(), newChatCmd())
	return root
}

// loadConfig reads the environment and re-applies the validated log settings.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	sysutil.SetupLogger(os.Stderr, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)
	return cfg, nil
}
