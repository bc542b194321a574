// Package seed creates and populates the item catalog with sample data.
package seed

import "github.com/mulefish/search-toy/internal/models"

// Catalog returns the sample hype-text records the database is seeded with.
// Order matters: items are inserted in this order so their IDs ascend with it.
func Catalog() []*models.Item {
	return []*models.Item{
		{
			Name:        "Indica Reverie",
			Description: "Indica drapes the evening in velvet calm, melting every muscle into the couch while citrus-lavender terpenes lull your mind toward cinematic dreams and whispery conversations that feel like bonus tracks from a favorite album. The buzz lingers like a weighted blanket, turning every flicker of candlelight into a widescreen spectacle and inviting deep breaths of hush.",
			Category:    "Indica",
			Metadata:    map[string]interface{}{"number": 1, "something": "something else"},
		},
		{
			Name:        "Sativa Voltage",
			Description: "Sativa fires up neon-focus swagger, a sunrise surge that sends your thoughts sprinting across skyline billboards with laser-sharp wit and unstoppable creative flow. Each inhale feels like cracking open a can of inspiration, launching brainstorming sessions, rooftop hangouts, and fearless to-do list takedowns with equal amounts of gleam.",
			Category:    "Sativa",
			Metadata:    map[string]interface{}{"number": 2, "something": "something else"},
		},
		{
			Name:        "Hybrid Flux",
			Description: "Hybrid splices the genetics of hustle and hush, letting you toggle between brainstorm brilliance and after-hours bliss with a single smooth inhale. It's the Swiss Army buzz—boardroom presentable one minute, fire-pit stories the next—keeping your vibe cruising on adaptive cruise control no matter how the day rearranges itself.",
			Category:    "Hybrid",
			Metadata:    map[string]interface{}{"number": 3, "something": "something else"},
		},
		{
			Name:        "Wax Prism",
			Description: "Wax condenses flavor galaxies into molten gold, snapping onto your rig with terpene fireworks that crackle like a headline festival drop. One pull paints your palate with citrus candy, pine forest, and backstage-pass confidence, leaving a shimmering trail of dense clouds that shout premium without saying a word.",
			Category:    "Wax",
			Metadata:    map[string]interface{}{"number": 4, "something": "something else"},
		},
		{
			Name:        "Pre-Roll Ember",
			Description: "Pre-rolls roll out concierge convenience, artisan-packed cones that spark evenly and unfurl luxury smoke trails wherever the night takes you. Slide a tube into your pocket and you're packing a mobile lounge—perfectly ground flower, slow-burning papers, and a vibe that says you paid attention to the finer details.",
			Category:    "Pre-roll",
			Metadata:    map[string]interface{}{"number": 50, "something": "something else"},
		},
		{
			Name:        "Gummy Aurora",
			Description: "Gummys glow with technicolor delight, micro-dosed jewels that melt beneath the tongue and glide you through a syrupy spectrum of euphoria. Each bite is a postcard from Candyland—precision-dosed, terpene-kissed, and ready to turn playlists, painting sessions, or spa-night rituals into a silky-smooth adventure.",
			Category:    "Gummys",
			Metadata:    map[string]interface{}{"number": 66, "something": "something else"},
		},
		{
			Name:        "Pre-Rolls Duo",
			Description: "Pre-rolls pair up in twin packs for co-op adventures, sharing boutique flower that burns clean, smells like a terpene boutique, and keeps the vibe synchronized from first spark to final ash. Whether you're matching cones with a friend or saving one for later, each wrap feels like a pocket-sized house party.",
			Category:    "Pre-rolls",
			Metadata:    map[string]interface{}{"number": 77.77, "something": "something else"},
		},
	}
}
