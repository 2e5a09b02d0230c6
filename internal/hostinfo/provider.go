package hostinfo

import (
	"fmt"
	"os"
	"os/user"
	"runtime"
)

// Provider supplies host-environment facts used by getUserInfo and
// getAppVersion replies. The bridge core consumes the interface so tests can
// substitute a fixture.
type Provider interface {
	UserName() string
	Device() string
	OSVersion() string
	AppVersion() string
}

// System reads host facts from the running process environment.
type System struct {
	appVersion string

	// resolved once at construction; these lookups can be slow on some
	// platforms and the answers do not change while the process runs
	userName string
	device   string
	osVer    string
}

// NewSystem creates a provider for the current host. appVersion is injected
// from the build.
func NewSystem(appVersion string) *System {
	s := &System{
		appVersion: appVersion,
		userName:   "unknown",
		device:     "unknown",
		osVer:      fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	if u, err := user.Current(); err == nil {
		if u.Name != "" {
			s.userName = u.Name
		} else if u.Username != "" {
			s.userName = u.Username
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		s.device = host
	}
	return s
}

func (s *System) UserName() string   { return s.userName }
func (s *System) Device() string     { return s.device }
func (s *System) OSVersion() string  { return s.osVer }
func (s *System) AppVersion() string { return s.appVersion }

// Static is a fixed-value provider for tests and embedding hosts that know
// their own metadata.
type Static struct {
	Name    string
	Model   string
	OS      string
	Version string
}

func (s Static) UserName() string   { return s.Name }
func (s Static) Device() string     { return s.Model }
func (s Static) OSVersion() string  { return s.OS }
func (s Static) AppVersion() string { return s.Version }
