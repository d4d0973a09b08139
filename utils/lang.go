package utils

import (
	"path"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"
)

var (
	bundle     *i18n.Bundle
	bundleOnce sync.Once
)

// InitI18NBundle loads the message files. Called from main before any worker
// goroutine starts.
func InitI18NBundle() {
	bundle = i18n.NewBundle(language.German)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)
	bundle.MustLoadMessageFile(path.Join(viper.GetString("i18n.dir"), "de.yaml"))
	bundle.MustLoadMessageFile(path.Join(viper.GetString("i18n.dir"), "en.yaml"))
}

// NewLocalizer is safe without InitI18NBundle: concurrent callers share one
// empty bundle and message lookups fall back to the hardcoded subjects.
func NewLocalizer(lang string) *i18n.Localizer {
	bundleOnce.Do(func() {
		if bundle == nil {
			bundle = i18n.NewBundle(language.German)
		}
	})
	return i18n.NewLocalizer(bundle, lang)
}
