package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// maxSocketPath is the usable length of sockaddr_un.sun_path on Linux.
const maxSocketPath = len(unix.RawSockaddrUnix{}.Path) - 1

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSocketPath verifies the socket path fits in a unix socket address.
func CheckSocketPath(path string) Result {
	const name = "Socket path"
	if path == "" {
		return Result{Name: name, Detail: "missing socket path"}
	}
	if len(path) > maxSocketPath {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %d bytes exceeds the %d byte limit)", path, len(path), maxSocketPath)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckSocketFree verifies no live daemon is already listening on path. A
// leftover socket file nobody answers on passes; the server replaces it.
func CheckSocketFree(ctx context.Context, path string) Result {
	const name = "Socket availability"

	info, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return Result{Name: name, Passed: true, Detail: "no existing socket"}
	}
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("stat %s: %v", path, err)}
	}
	if info.Mode()&os.ModeSocket == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s exists and is not a socket", path)}
	}

	dialCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "unix", path)
	if err != nil {
		return Result{Name: name, Passed: true, Detail: "stale socket will be replaced"}
	}
	_ = conn.Close()
	return Result{Name: name, Detail: fmt.Sprintf("a daemon is already listening on %s", path)}
}
