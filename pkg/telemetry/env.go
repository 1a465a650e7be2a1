package telemetry

import (
	"cmp"
	"os"
	"strings"

	"github.com/bsidebar/insights/pkg/httpclient"
)

// Environment describes the host for the daily snapshot.
type Environment interface {
	Version() string
	UserAgent() string
	Language() string
}

// SystemEnvironment reads the host environment. Empty fields fall back to
// the process defaults.
type SystemEnvironment struct {
	AppVersion string
	Agent      string
	Lang       string
}

func (e SystemEnvironment) Version() string {
	return cmp.Or(e.AppVersion, "unknown")
}

func (e SystemEnvironment) UserAgent() string {
	return cmp.Or(e.Agent, httpclient.UserAgent)
}

// Language returns the UI language, e.g. "en" for LANG=en_US.UTF-8.
func (e SystemEnvironment) Language() string {
	lang := cmp.Or(e.Lang, os.Getenv("LANG"), "en")
	lang, _, _ = strings.Cut(lang, ".")
	lang, _, _ = strings.Cut(lang, "_")
	lang, _, _ = strings.Cut(lang, "-")
	if lang == "" || lang == "C" || lang == "POSIX" {
		return "en"
	}
	return lang
}
