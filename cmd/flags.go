package main

import (
	"fmt"
	"os"
	"path/filepath"

	"git.ruekov.eu/ruakij/chat-relay/cmd/api/config"
	"github.com/spf13/pflag"
)

func init() {
	pflag.CommandLine.SortFlags = false
	config.RegisterFlags(pflag.CommandLine)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "\nRelay chat conversations to an OpenRouter model and stream the answer back.\nFlags override the matching environment variables.\n\n %s [flags]\n\n", filepath.Base(os.Args[0]))
		pflag.PrintDefaults()
	}

	pflag.Parse()
}
