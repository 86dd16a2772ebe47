package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/YashubuStudio/Vconf-webgl-glTF/internal/logger"
	"github.com/YashubuStudio/Vconf-webgl-glTF/upload"
	"go.uber.org/zap"
)

func browse(ctx context.Context, client *upload.Client) error {
	if *folder == "" {
		var folders []string
		var err error
		if *regen {
			folders, err = client.Regenerate(ctx)
		} else {
			folders, err = client.Folders(ctx)
		}
		if err != nil {
			return err
		}
		for _, f := range folders {
			fmt.Println(f)
		}
		return nil
	}

	if *download != "" {
		return downloadModel(ctx, client, *folder, *download)
	}
	files, err := client.Files(ctx, *folder)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Println(f)
	}
	return nil
}

func downloadModel(ctx context.Context, client *upload.Client, folder, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	name, err := client.DownloadModel(ctx, folder, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	dest := filepath.Join(dir, filepath.Base(name))
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return err
	}
	logger.Info("downloaded", zap.String("folder", folder), zap.String("path", dest))
	fmt.Println(dest)
	return nil
}
