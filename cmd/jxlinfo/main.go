// Command jxlinfo prints a JPEG XL file's features (dimensions, bit
// depth, alpha, animation) without decoding any frame's pixel data.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/gojxl/jxl"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Logging configuration: every run's diagnostic log goes to a rotated
// file rather than stderr, so a batch run over many files doesn't
// interleave their log lines with the feature report on stdout.
const (
	logPath      = "jxlinfo.log"
	logMaxSizeMB = 10
	logMaxBackup = 3
	logMaxAgeDays = 28
)

func main() {
	verbose := flag.Bool("v", false, "enable debug-level logging to "+logPath)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: jxlinfo <file.jxl>")
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAgeDays,
	}
	logger := slog.New(slog.NewJSONHandler(fileLog, &slog.HandlerOptions{Level: level}))

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		logger.Error("open failed", "path", flag.Arg(0), "err", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer f.Close()

	feat, err := jxl.GetFeatures(f)
	if err != nil {
		logger.Error("GetFeatures failed", "path", flag.Arg(0), "err", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Info("parsed file header", "path", flag.Arg(0), "width", feat.Width, "height", feat.Height)

	fmt.Printf("width:              %d\n", feat.Width)
	fmt.Printf("height:             %d\n", feat.Height)
	fmt.Printf("bits_per_sample:    %d\n", feat.BitsPerSample)
	fmt.Printf("has_alpha:          %t\n", feat.HasAlpha)
	fmt.Printf("num_extra_channels: %d\n", feat.NumExtraChannels)
	fmt.Printf("lossless:           %t\n", feat.Lossless)
	fmt.Printf("has_animation:      %t\n", feat.HasAnimation)
	if feat.HasAnimation {
		fmt.Printf("loop_count:         %d\n", feat.LoopCount)
	}
}
