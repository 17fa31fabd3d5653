package main

import (
	"math/rand"
	"os"
	"time"

	"github.com/ravenhall/waggle/internal/wagglectl/cmd"
)

func main() {
	rand.New(rand.NewSource(time.Now().UnixNano()))

	command := cmd.NewDefaultWaggleCtlCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}
