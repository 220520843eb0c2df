package gateway

import (
	"fmt"
	"strings"
)

// Platform identifies a publishing target with its own content strategy.
type Platform string

const (
	PlatformYouTube   Platform = "YouTube"
	PlatformInstagram Platform = "Instagram"
	PlatformTwitter   Platform = "Twitter"
	PlatformPinterest Platform = "Pinterest"
)

// Platforms lists the supported publishing targets in display order.
var Platforms = []Platform{PlatformYouTube, PlatformInstagram, PlatformTwitter, PlatformPinterest}

// platformStrategy captures how copy should be shaped for one platform.
type platformStrategy struct {
	Tone        string
	HookStyle   string
	Description string
}

// platformStrategies is the fixed strategy table consulted when building the
// SEO prompt. One entry per supported platform.
var platformStrategies = map[Platform]platformStrategy{
	PlatformYouTube: {
		Tone:        "authoritative but conversational, optimized for search and suggested feeds",
		HookStyle:   "curiosity-gap openers that promise a payoff within the first 15 seconds",
		Description: "a keyword-rich description of 2-3 paragraphs; the first 150 characters must stand alone above the fold",
	},
	PlatformInstagram: {
		Tone:        "casual, visual-first, personality-led",
		HookStyle:   "relatable or aspirational first lines that stop the scroll before the fold",
		Description: "a short caption of 1-2 punchy paragraphs with line breaks for scannability",
	},
	PlatformTwitter: {
		Tone:        "sharp, opinionated, thread-friendly",
		HookStyle:   "bold claims or contrarian takes that invite replies and quote posts",
		Description: "a single tweet-length description under 280 characters",
	},
	PlatformPinterest: {
		Tone:        "helpful, evergreen, how-to oriented",
		HookStyle:   "benefit-led openers that promise a concrete outcome or idea to save",
		Description: "a 2-3 sentence description front-loaded with search terms pinners actually type",
	},
}

// ParsePlatform maps user input to a supported Platform, case-insensitively.
func ParsePlatform(s string) (Platform, error) {
	for _, p := range Platforms {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q (supported: YouTube, Instagram, Twitter, Pinterest)", s)
}
