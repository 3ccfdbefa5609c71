package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		slog.Error("placemap failed", slog.Any("error", err))
		os.Exit(1)
	}
}
