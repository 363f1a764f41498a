package service

// Status labels derived by the classifier. Consumers render these
// directly into dashboard tables, so the strings are part of the API.
const (
	StatusExpired     = "Already Expired"
	StatusNearExpired = "Near Expired"
	StatusShortage    = "Shortage"
	StatusOverStock   = "Over Stock"
	StatusNormal      = "Normal"
)

// Business unit codes
const (
	UnitRawHose      = "raw-hose"
	UnitAfterWashing = "after-washing"
	UnitRVI          = "rvi"
	UnitMolded       = "molded"
	UnitBTR          = "btr"
)

// UnitPolicy captures how one business unit classifies stock. The five
// units share a single classifier; everything that differs between
// them lives here as data, never as per-unit code.
//
// The boundary conventions are deliberately not unified: the
// expiry-tracking units treat stock equal to the minimum as shortage
// (inclusive), the others do not (exclusive). Both behaviors are
// observed on the existing dashboards and changing either changes the
// counts.
type UnitPolicy struct {
	UnitCode string

	// TracksExpiry enables the expired / near-expired rules. Units
	// without it classify on stock levels alone.
	TracksExpiry bool

	// ShortageInclusive: true means stock <= min is shortage,
	// false means stock < min.
	ShortageInclusive bool

	// OverstockInclusive: true means stock >= max is overstock,
	// false means stock > max.
	OverstockInclusive bool

	// NearExpiryBand returns the width in days of the near-expiry
	// band for a given expiry window.
	NearExpiryBand func(expiryWindowDays int) int
}

// defaultNearExpiryBand is the band rule in production: short windows
// get a one-day band, everything else three days. The switch at three
// days is an inherited business rule of unknown origin; do not change
// it without product sign-off.
func defaultNearExpiryBand(expiryWindowDays int) int {
	if expiryWindowDays <= 3 {
		return 1
	}
	return 3
}

// policies is the unit registry. raw-hose, after-washing and rvi track
// expiry and use the inclusive shortage boundary; molded and btr have
// no expiry concept and use exclusive boundaries.
var policies = map[string]UnitPolicy{
	UnitRawHose: {
		UnitCode:          UnitRawHose,
		TracksExpiry:      true,
		ShortageInclusive: true,
		NearExpiryBand:    defaultNearExpiryBand,
	},
	UnitAfterWashing: {
		UnitCode:          UnitAfterWashing,
		TracksExpiry:      true,
		ShortageInclusive: true,
		NearExpiryBand:    defaultNearExpiryBand,
	},
	UnitRVI: {
		UnitCode:          UnitRVI,
		TracksExpiry:      true,
		ShortageInclusive: true,
		NearExpiryBand:    defaultNearExpiryBand,
	},
	UnitMolded: {
		UnitCode: UnitMolded,
	},
	UnitBTR: {
		UnitCode: UnitBTR,
	},
}

// PolicyFor returns the policy for a unit code
func PolicyFor(unitCode string) (UnitPolicy, bool) {
	p, ok := policies[unitCode]
	return p, ok
}

// KnownUnit reports whether a unit code is registered
func KnownUnit(unitCode string) bool {
	_, ok := policies[unitCode]
	return ok
}

// UnitCodes returns all registered unit codes
func UnitCodes() []string {
	codes := make([]string, 0, len(policies))
	for code := range policies {
		codes = append(codes, code)
	}
	return codes
}
