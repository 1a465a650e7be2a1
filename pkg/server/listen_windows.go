package server

import (
	"net"

	winio "github.com/Microsoft/go-winio"
)

// listenNamedPipe serves on \\.\pipe\<name> for collectors started by a
// local desktop process.
func listenNamedPipe(name string) (net.Listener, error) {
	return winio.ListenPipe(name, &winio.PipeConfig{MessageMode: false})
}
