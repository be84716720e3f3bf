package media

// Rating classifies a target bitrate relative to what its resolution needs.
type Rating int

const (
	RatingGood      Rating = iota // Within the usual range for the resolution.
	RatingHigh                    // Larger than needed, but plausible.
	RatingExcessive               // Wasted bits for this resolution.
)

func (r Rating) String() string {
	switch r {
	case RatingGood:
		return "good"
	case RatingHigh:
		return "high"
	case RatingExcessive:
		return "excessive"
	default:
		return "unknown"
	}
}

// ratingTier holds the inclusive good/high ceilings (kb/s) for one preset.
type ratingTier struct {
	res  Resolution
	good int
	high int
}

var ratingTiers = []ratingTier{
	{Resolution{640, 480}, 1000, 1500},
	{Resolution{1280, 720}, 3000, 5000},
	{Resolution{1920, 1080}, 6000, 10000},
	{Resolution{2560, 1440}, 10000, 16000},
}

// Resolutions outside the tier table (3840x2160 and anything unknown) use
// the 4K ceilings.
const (
	fallbackGood = 20000
	fallbackHigh = 30000
)

// Rate classifies kbps for the target resolution.
func Rate(res Resolution, kbps int) Rating {
	good, high := fallbackGood, fallbackHigh
	for _, t := range ratingTiers {
		if t.res == res {
			good, high = t.good, t.high
			break
		}
	}
	switch {
	case kbps <= good:
		return RatingGood
	case kbps <= high:
		return RatingHigh
	default:
		return RatingExcessive
	}
}
