package classifier

import (
	"regexp"
	"strings"
)

// Entity keys produced by ExtractEntities.
const (
	EntityCropType = "crop_type"
	EntityDateRef  = "date_reference"
	EntityFarmName = "farm_name"
)

// cropPatterns matches each canonical crop against its known English and
// Hindi names. Ordered so the first hit wins.
var cropPatterns = []struct {
	crop    string
	pattern *regexp.Regexp
}{
	{"wheat", regexp.MustCompile(`\b(wheat|gehun)\b`)},
	{"rice", regexp.MustCompile(`\b(rice|dhan|paddy)\b`)},
	{"corn", regexp.MustCompile(`\b(corn|maize|makka)\b`)},
	{"cotton", regexp.MustCompile(`\b(cotton|kapas)\b`)},
}

// dateRefPatterns maps fixed date phrases to relative-offset tokens.
var dateRefPatterns = []struct {
	token   string
	pattern *regexp.Regexp
}{
	{"0d", regexp.MustCompile(`\btoday\b`)},
	{"-1d", regexp.MustCompile(`\byesterday\b`)},
	{"-7d", regexp.MustCompile(`\blast\s+week\b`)},
}

var farmNamePattern = regexp.MustCompile(`(?:farm|field)\s+(\w+)`)

// ExtractEntities pulls the recognized entities out of a farmer message.
// A missing entity simply omits its key; the function never fails.
func ExtractEntities(message string) map[string]string {
	lower := strings.ToLower(message)
	entities := make(map[string]string)

	for _, cp := range cropPatterns {
		if cp.pattern.MatchString(lower) {
			entities[EntityCropType] = cp.crop
			break
		}
	}

	for _, dp := range dateRefPatterns {
		if dp.pattern.MatchString(lower) {
			entities[EntityDateRef] = dp.token
			break
		}
	}

	if m := farmNamePattern.FindStringSubmatch(lower); m != nil {
		entities[EntityFarmName] = m[1]
	}

	return entities
}
