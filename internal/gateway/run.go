package gateway

import "github.com/kiosk404/hivegate/internal/gateway/config"

// Run boots the gateway daemon and blocks until it shuts down.
func Run(cfg *config.Config) error {
	server, err := createAPIServer(cfg)
	if err != nil {
		return err
	}
	return server.PrepareRun().Run()
}
