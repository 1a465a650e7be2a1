//go:build !windows

package server

import (
	"fmt"
	"net"
	"runtime"
)

// listenNamedPipe is only available on Windows; use unix:// elsewhere.
func listenNamedPipe(name string) (net.Listener, error) {
	return nil, fmt.Errorf("cannot listen on pipe %q: named pipes not supported on %s", name, runtime.GOOS)
}
