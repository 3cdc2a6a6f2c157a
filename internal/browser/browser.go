package browser

import (
	"os/exec"
	"runtime"
)

// Open launches the default browser for a URL. The caller should print the
// URL as well, since headless environments have nothing to launch.
func Open(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
