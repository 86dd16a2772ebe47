package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagPresenter = flag.String("presenter", "", "Presenter id (letters and digits)")
	flagPasscode  = flag.String("passcode", "", "Upload passcode")
	flagEndpoint  = flag.String("endpoint", "", "Upload endpoint URL")
	flagLogFile   = flag.String("log", "", "Log file path")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagPresenter != "" {
		cfg.Upload.PresenterID = *flagPresenter
	}
	if *flagPasscode != "" {
		cfg.Upload.Passcode = *flagPasscode
	}
	if *flagEndpoint != "" {
		cfg.Upload.Endpoint = *flagEndpoint
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
