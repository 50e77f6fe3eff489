// Package locale holds the portal's user-facing strings and the medium
// date/time style used for audit timestamps. Hindi (India) is the default;
// US English is the only other supported locale.
package locale

import (
	"fmt"
	"time"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en_US"
	"github.com/go-playground/locales/hi_IN"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Default is the portal locale when none is configured or matched.
var Default = language.MustParse("hi-IN")

var supported = []language.Tag{Default, language.AmericanEnglish}

var matcher = language.NewMatcher(supported)

// Message keys.
const (
	VerificationFailed = "verification_failed"
	EmergencyFailed    = "emergency_failed"
	GeoTaggingSuccess  = "geotagging_success"
	CoordinatesLabel   = "coordinates_label"
	AuditIDLabel       = "audit_id_label"
	LocationMandatory  = "location_mandatory"
	AuditLogTitle      = "audit_log_title"
	BackToDashboard    = "back_to_dashboard"
)

func init() {
	hi := map[string]string{
		VerificationFailed: "अधिकार क्षेत्र सत्यापन विफल। पुनः प्रयास करें।",
		EmergencyFailed:    "सत्यापन विफल। कृपया स्थान अनुमति सुनिश्चित करें।",
		GeoTaggingSuccess:  "जियो-टैगिंग सफल",
		CoordinatesLabel:   "निर्देशांक",
		AuditIDLabel:       "ऑडिट आईडी",
		LocationMandatory:  "* ऑडिट ट्रेल के लिए स्थान अनिवार्य है",
		AuditLogTitle:      "जियो-टैगिंग ऑडिट लॉग्स",
		BackToDashboard:    "वापस जाएं",
	}
	en := map[string]string{
		VerificationFailed: "Jurisdiction verification failed. Please try again.",
		EmergencyFailed:    "Verification failed. Please make sure location permission is granted.",
		GeoTaggingSuccess:  "Geo-tagging successful",
		CoordinatesLabel:   "Coordinates",
		AuditIDLabel:       "Audit ID",
		LocationMandatory:  "* Location is mandatory for the audit trail",
		AuditLogTitle:      "Geo-Tagging Audit Logs",
		BackToDashboard:    "Back to Dashboard",
	}
	for key, msg := range hi {
		if err := message.SetString(Default, key, msg); err != nil {
			panic(fmt.Sprintf("locale: register %s: %v", key, err))
		}
	}
	for key, msg := range en {
		if err := message.SetString(language.AmericanEnglish, key, msg); err != nil {
			panic(fmt.Sprintf("locale: register %s: %v", key, err))
		}
	}
}

// Match resolves a BCP 47 string to the closest supported locale. Unparseable
// or unknown input yields Default.
func Match(s string) language.Tag {
	if s == "" {
		return Default
	}
	tag, err := language.Parse(s)
	if err != nil {
		return Default
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Default
	}
	return supported[idx]
}

// Text returns the localized string for key.
func Text(tag language.Tag, key string) string {
	return message.NewPrinter(tag).Sprintf(key)
}

// Formatter renders a capture time for the audit log.
type Formatter func(time.Time) string

var translators = map[language.Tag]func() locales.Translator{
	Default:                  hi_IN.New,
	language.AmericanEnglish: en_US.New,
}

// MediumDateTime returns a Formatter producing the locale's medium date and
// medium time style, e.g. "15 अक्तू॰ 2026, 3:04:05 pm" for hi-IN.
func MediumDateTime(tag language.Tag) Formatter {
	newTranslator, ok := translators[Match(tag.String())]
	if !ok {
		newTranslator = translators[Default]
	}
	trans := newTranslator()
	return func(t time.Time) string {
		return trans.FmtDateMedium(t) + ", " + trans.FmtTimeMedium(t)
	}
}
