package commands

import (
	"fmt"

	"maxcdc/pkg/client"

	"github.com/spf13/viper"
)

// newRemoteClient 连接 remote.addr (--remote / MAXCDC_REMOTE_ADDR)
func newRemoteClient() (*client.Client, error) {
	addr := viper.GetString("remote.addr")
	if addr == "" {
		return nil, fmt.Errorf("no remote configured (use --remote)")
	}
	return client.New(addr)
}
