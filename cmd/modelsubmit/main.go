package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/YashubuStudio/Vconf-webgl-glTF/internal/config"
	"github.com/YashubuStudio/Vconf-webgl-glTF/internal/logger"
	"github.com/YashubuStudio/Vconf-webgl-glTF/session"
	"github.com/YashubuStudio/Vconf-webgl-glTF/upload"
	"go.uber.org/zap"
)

var (
	submit    = flag.Bool("submit", false, "upload the model when it passes validation")
	snapshots = flag.String("snapshots", "", "write the three captured views to this directory")
	watch     = flag.Bool("watch", false, "re-validate whenever the model file changes")
	list      = flag.Bool("list", false, "list submitted folders")
	regen     = flag.Bool("regenerate", false, "rebuild the server indexes before listing")
	folder    = flag.String("folder", "", "list the files of one submitted folder")
	download  = flag.String("download", "", "download the model of -folder into this directory")
	saveConf  = flag.String("saveconfig", "", "write the effective config to this path and exit")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] model.glb|model.gltf|model.zip\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -list [-regenerate] | -folder NAME [-download DIR]\n", os.Args[0])
		flag.PrintDefaults()
	}
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(2)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		logger.Sync()
		os.Exit(1)
	}
}

var errRejected = errors.New("model rejected")

func run(ctx context.Context, cfg *config.Config) error {
	if *saveConf != "" {
		return cfg.SaveTo(*saveConf)
	}

	client := upload.NewClient(cfg.Upload.Endpoint, cfg.Upload.RegenerateURL, cfg.Upload.UploadsBase, cfg.Upload.Timeout)
	if *list || *folder != "" {
		return browse(ctx, client)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		return errors.New("no model file given")
	}
	input := flag.Arg(0)

	ctrl := session.New(session.Options{
		Limits:   cfg.Limits,
		Surfaces: session.PreviewFactory(cfg.Preview),
		Uploader: client,
	})
	defer ctrl.Close()

	if *watch {
		return watchFile(ctx, ctrl, input)
	}

	report, err := ctrl.LoadFile(input)
	if err != nil {
		return err
	}
	printReport(os.Stdout, input, report)
	if !report.Accepted {
		return errRejected
	}

	if *snapshots != "" {
		if err := writeSnapshots(ctx, ctrl, *snapshots); err != nil {
			return err
		}
	}
	if *submit {
		res, err := ctrl.Submit(ctx, cfg.Upload.PresenterID, cfg.Upload.Passcode)
		fmt.Println(ctrl.Status())
		if err != nil {
			return err
		}
		logger.Info("submitted", zap.String("folder", res.FolderID))
	}
	return nil
}
