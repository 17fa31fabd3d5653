package main

import (
	"math/rand"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/ravenhall/waggle/internal/waggled"
)

func main() {
	rand.New(rand.NewSource(time.Now().UTC().UnixNano()))

	command := waggled.NewWaggledCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}
