package main

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/ravenhall/waggle/internal/wagglehook"
)

func main() {
	opts := wagglehook.NewOptions()
	opts.AddFlags(pflag.CommandLine)
	pflag.Parse()

	os.Exit(wagglehook.Run(opts, os.Stdin, os.Stdout, os.Stderr))
}
