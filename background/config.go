package background

import (
	"time"

	"github.com/spf13/viper"
)

// Sweep and matching defaults. All of them are plain configuration, never
// baked into component logic.
const (
	defaultSweepInterval         = 3 * time.Minute
	defaultSweepMinAge           = 20 * time.Minute
	defaultSweepBatchSize        = 3
	defaultSweepCandidateCap     = 30
	defaultBroadcastCandidateCap = 15
	defaultReportThreshold       = 2
	defaultGeoRadiusMeters       = 30000
)

const (
	StrategyPostalCode = "postalcode"
	StrategyGeoRadius  = "georadius"
)

// Config carries everything the notification subsystem needs. It is built
// once at process start from viper and handed down; components never consult
// viper themselves.
type Config struct {
	SweepInterval         time.Duration
	SweepMinAge           time.Duration
	SweepBatchSize        int64
	SweepCandidateCap     int
	BroadcastCandidateCap int
	BroadcastOnCreate     bool
	ReportThreshold       int

	Strategy        string
	GeoRadiusMeters int

	MailFrom     string
	MailFromName string
	SiteURL      string
}

// LoadConfig reads the notification configuration from viper exactly once.
func LoadConfig() Config {
	c := Config{
		SweepInterval:         viper.GetDuration("notification.sweep.interval"),
		SweepMinAge:           viper.GetDuration("notification.sweep.minage"),
		SweepBatchSize:        viper.GetInt64("notification.sweep.batchsize"),
		SweepCandidateCap:     viper.GetInt("notification.sweep.candidatecap"),
		BroadcastCandidateCap: viper.GetInt("notification.broadcast.candidatecap"),
		BroadcastOnCreate:     viper.GetBool("notification.broadcast.oncreate"),
		ReportThreshold:       viper.GetInt("notification.report.threshold"),
		Strategy:              viper.GetString("notification.strategy"),
		GeoRadiusMeters:       viper.GetInt("notification.georadius.meters"),
		MailFrom:              viper.GetString("mail.from"),
		MailFromName:          viper.GetString("mail.fromname"),
		SiteURL:               viper.GetString("site.url"),
	}

	if c.SweepInterval == 0 {
		c.SweepInterval = defaultSweepInterval
	}
	if c.SweepMinAge == 0 {
		c.SweepMinAge = defaultSweepMinAge
	}
	if c.SweepBatchSize == 0 {
		c.SweepBatchSize = defaultSweepBatchSize
	}
	if c.SweepCandidateCap == 0 {
		c.SweepCandidateCap = defaultSweepCandidateCap
	}
	if c.BroadcastCandidateCap == 0 {
		c.BroadcastCandidateCap = defaultBroadcastCandidateCap
	}
	if c.ReportThreshold == 0 {
		c.ReportThreshold = defaultReportThreshold
	}
	if c.Strategy == "" {
		c.Strategy = StrategyPostalCode
	}
	if c.GeoRadiusMeters == 0 {
		c.GeoRadiusMeters = defaultGeoRadiusMeters
	}
	if c.SiteURL == "" {
		c.SiteURL = "https://www.quarantaenehelden.org"
	}

	return c
}
