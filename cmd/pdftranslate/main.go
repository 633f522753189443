// Command pdftranslate translates the text content of a PDF document
// while preserving its layout. It produces two files next to each other:
// <name>-mono.pdf with the translation in place of the original text, and
// <name>-dual.pdf interleaving original and translated pages.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pdf-translator/internal/config"
	"pdf-translator/internal/logger"
	"pdf-translator/internal/tool"
)

func main() {
	var (
		langIn     = flag.String("from", "", "source language code (default from config, \"auto\" to detect)")
		langOut    = flag.String("to", "", "target language code (default from config)")
		outputDir  = flag.String("out", "", "output directory (default: workspace root)")
		configPath = flag.String("config", "", "config file path")
		listLangs  = flag.Bool("languages", false, "list supported languages and exit")
		verbose    = flag.Bool("v", false, "verbose logging to stderr")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <file.pdf>\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *listLangs {
		for _, lang := range tool.ListSupportedLanguages() {
			fmt.Printf("%-8s %s\n", lang.Code, lang.Name)
		}
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	// A .env next to the binary is a convenient place for OPENAI_API_KEY
	// and friends; absence is fine.
	_ = godotenv.Load()

	logCfg := logger.DefaultConfig()
	logCfg.EnableConsole = *verbose
	if *verbose {
		logCfg.Level = logger.LevelDebug
	}
	if err := logger.Init(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "cannot initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	if err := run(*configPath, flag.Arg(0), *langIn, *langOut, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, file, langIn, langOut, outputDir string) error {
	cfg, err := config.NewManager(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Load(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t, err := tool.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer t.Close()

	result, err := t.TranslatePDF(ctx, tool.Request{
		File:      file,
		LangIn:    langIn,
		LangOut:   langOut,
		OutputDir: outputDir,
	}, func(done, total int) {
		fmt.Printf("\rtranslating... %d/%d pages", done, total)
		if done == total {
			fmt.Println()
		}
	})
	if err != nil {
		return err
	}

	fmt.Printf("mono: %s\n", result.MonoPath)
	fmt.Printf("dual: %s\n", result.DualPath)
	if result.Fallbacks > 0 {
		fmt.Printf("note: %d of %d units kept their original text (translation unavailable)\n",
			result.Fallbacks, result.TotalUnits)
	}
	return nil
}
