// Package mains works out which mains frequency to look for when measuring
// hum in a calibration recording.
package mains

import (
	"log/slog"
	"strings"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"
)

// Supported mains frequencies in Hz.
const (
	Hz50 = 50.0
	Hz60 = 60.0
)

// Source records how a frequency was chosen.
type Source string

const (
	SourceConfig   Source = "config"
	SourceTimezone Source = "timezone"
	SourceFallback Source = "fallback"
	SourceDisabled Source = "disabled"
)

// Detection is the hum frequency used for a run.
type Detection struct {
	Hz       float64
	Source   Source
	Timezone string
	Country  string
}

// Enabled reports whether hum should be measured.
func (d Detection) Enabled() bool {
	return d.Hz > 0
}

// Resolve honours a configured frequency when set. nil means detect from
// the local timezone and 0 disables hum measurement.
func Resolve(configured *float64) Detection {
	if configured != nil {
		if *configured <= 0 {
			return Detection{Source: SourceDisabled}
		}
		return Detection{Hz: *configured, Source: SourceConfig}
	}
	return Detect()
}

// Detect guesses the mains frequency from the system timezone, falling
// back to 50 Hz.
func Detect() Detection {
	zone, err := tzlocal.RuntimeTZ()
	if err != nil {
		slog.Debug("timezone lookup failed", "component", "mains", "error", err)
		return Detection{Hz: Hz50, Source: SourceFallback}
	}
	return ForTimezone(zone)
}

// ForTimezone maps an IANA timezone to its country's mains frequency.
func ForTimezone(zone string) Detection {
	d := Detection{Hz: Hz50, Source: SourceFallback, Timezone: zone}
	if zone == "" || zone == "UTC" || zone == "GMT" || strings.HasPrefix(zone, "Etc/") {
		return d
	}

	countries, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return d
	}
	country, err := countries.GetCountry(zone)
	if err != nil {
		return d
	}

	d.Country = country
	d.Source = SourceTimezone
	if sixtyHertz[country] {
		d.Hz = Hz60
	}
	return d
}

// Japan is split between 50 and 60 Hz; it is left on 50 Hz with the
// Tokyo grid. Brazil is mixed but mostly 60 Hz.
var sixtyHertz = toSet(
	"American Samoa", "Bahamas", "Barbados", "Belize", "Brazil", "Canada",
	"Cayman Islands", "Colombia", "Costa Rica", "Cuba", "Dominican Republic",
	"Ecuador", "El Salvador", "Guam", "Guatemala", "Guyana", "Haiti",
	"Honduras", "Jamaica", "Marshall Islands", "Mexico", "Micronesia",
	"Nicaragua", "Palau", "Panama", "Peru", "Philippines", "Puerto Rico",
	"Saudi Arabia", "South Korea", "Suriname", "Taiwan", "Trinidad and Tobago",
	"U.S. Virgin Islands", "United States", "Venezuela",
)

func toSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
