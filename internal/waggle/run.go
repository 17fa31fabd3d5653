package waggle

import (
	"github.com/ravenhall/waggle/internal/waggle/config"
)

func Run(cfg *config.Config) error {
	server, err := createDaemonServer(cfg)
	if err != nil {
		return err
	}

	return server.PrepareRun().Run()
}
