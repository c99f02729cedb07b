package platform

import (
	"errors"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
)

// Platform is the operating system the binary is running on.
type Platform string

const (
	MacOS   Platform = "darwin"
	Linux   Platform = "linux"
	Unknown Platform = "unknown"
)

// ErrUnsupportedPlatform is returned by GetInfo on anything but macOS or Linux.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// Info describes the current user's environment as far as duplicate
// removal cares: where configuration lives and which trees must never be
// scanned for deletion.
type Info struct {
	OS             Platform
	HomeDir        string
	Username       string
	ConfigDir      string
	ProtectedPaths []string
}

// Detect returns the current platform.
func Detect() Platform {
	switch runtime.GOOS {
	case "darwin":
		return MacOS
	case "linux":
		return Linux
	}
	return Unknown
}

// GetInfo resolves Info for the current user.
func GetInfo() (*Info, error) {
	u, err := user.Current()
	if err != nil {
		return nil, err
	}
	return infoFor(Detect(), u.HomeDir, u.Username)
}

func infoFor(p Platform, home, username string) (*Info, error) {
	info := &Info{OS: p, HomeDir: home, Username: username}

	var system, personal []string
	switch p {
	case Linux:
		info.ConfigDir = filepath.Join(home, ".config")
		system = []string{"/home", "/opt", "/run", "/srv", "/var/lib", "/var/db"}
		personal = []string{".config", ".local/share", ".ssh", ".gnupg"}
	case MacOS:
		info.ConfigDir = filepath.Join(home, "Library", "Application Support")
		system = []string{"/private/etc", "/private/var/db", "/Users"}
		personal = []string{"Library/Application Support", "Library/Preferences", "Library/Keychains", ".ssh"}
	default:
		return nil, ErrUnsupportedPlatform
	}

	info.ProtectedPaths = append(info.ProtectedPaths, system...)
	for _, rel := range personal {
		info.ProtectedPaths = append(info.ProtectedPaths, filepath.Join(home, rel))
	}
	return info, nil
}

// GetUserConfigDir returns the directory holding per-user configuration.
// XDG_CONFIG_HOME wins on every platform when set.
func GetUserConfigDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}
