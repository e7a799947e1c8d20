// Package open hands a resolved stream or download location to the system handler or to a named player.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Start launches the handler for target without waiting for it. An empty app means the system default.
func Start(target, app string) error {
	name, args, err := Command(runtime.GOOS, target, app)
	if err != nil {
		return err
	}
	return exec.Command(name, args...).Start()
}

// Command is the program and arguments that open target on goos.
func Command(goos, target, app string) (string, []string, error) {
	switch goos {
	case "windows":
		if app != "" {
			// start treats & as a command separator.
			return "cmd", []string{"/C", "start", "", app, strings.ReplaceAll(target, "&", "^&")}, nil
		}
		return filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe"), []string{"url.dll,FileProtocolHandler", target}, nil
	case "darwin":
		if app != "" {
			return "open", []string{"-a", app, target}, nil
		}
		return "open", []string{target}, nil
	case "linux", "freebsd", "openbsd":
		if app != "" {
			return app, []string{target}, nil
		}
		return "xdg-open", []string{target}, nil
	case "android":
		return "termux-open", []string{target}, nil
	default:
		return "", nil, fmt.Errorf("unsupported OS: %s", goos)
	}
}
