package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gonkalabs/piiview/internal/config"
	"github.com/gonkalabs/piiview/internal/detector"
	"github.com/gonkalabs/piiview/internal/logging"
	"github.com/gonkalabs/piiview/internal/session"
	"github.com/gonkalabs/piiview/internal/signer"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath  string
	detectorURL string
	logLevel    string

	cfg       *config.Cfg
	logCloser io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "piiview",
		Short: "Inspect PII detections from a Presidio-style detection service",
		Long: `piiview sends text or PDF documents to a PII detection service and shows
the detected entities as highlighted text, a table, or JSON.

Examples:
  piiview analyze --text "Contact John at john@x.com"
  echo "PAN: ABCDE1234F" | piiview analyze --view table
  piiview pdf report.pdf --csv-out entities.csv
  piiview mask --file letter.txt
  piiview serve`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logCloser != nil {
				_ = a.logCloser.Close()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.detectorURL, "detector-url", "", "detection service URL(s), comma separated (overrides PII_DETECTOR_URL)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")

	root.AddCommand(
		newServeCmd(a),
		newAnalyzeCmd(a),
		newPDFCmd(a),
		newMaskCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.detectorURL != "" {
		if err := os.Setenv("PII_DETECTOR_URL", a.detectorURL); err != nil {
			return err
		}
	}
	if a.logLevel != "" {
		if err := os.Setenv("LOG_LEVEL", a.logLevel); err != nil {
			return err
		}
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logCloser = logging.Setup(cfg.LogLevel, cfg.LogFile)
	slog.Debug("config loaded", "detectors", cfg.DetectorURLs, "threshold", cfg.Threshold, "command", cmd.Name())
	return nil
}

func (a *app) controller() *session.Controller {
	return session.NewController(detector.New(a.cfg.DetectorURLs, a.cfg.Timeout), a.cfg.Threshold)
}

// signer returns nil when no export signing key is configured.
func (a *app) signer() (*signer.Signer, error) {
	if a.cfg.ExportSigningKey == "" {
		return nil, nil
	}
	s, err := signer.New(a.cfg.ExportSigningKey)
	if err != nil {
		return nil, fmt.Errorf("export signing key: %w", err)
	}
	return s, nil
}
