// Package e2e drives the HTTP API against a generated catalog larger than
// the sample seed data.
package e2e

import (
	"fmt"

	"github.com/mulefish/search-toy/internal/models"
)

// E2EItem is a catalog entry in the e2e corpus.
type E2EItem struct {
	Name        string
	Category    string
	Description string
	// Signature is a word that appears in this item's description and in no
	// other, so keyword queries can assert the right item comes back.
	Signature string
}

// SemanticCase is a semantic query with the item that must rank first.
// Queries use the item's exact embedding text, so any deterministic embedder
// must score it at similarity 1.
type SemanticCase struct {
	Query        string
	ExpectedName string
	Description  string
}

// KeywordCase is a keyword query built from one item's signature word.
type KeywordCase struct {
	Query        string
	ExpectedName string
	Description  string
}

// Corpus holds catalog items and query test cases for e2e tests.
type Corpus struct {
	Items         []E2EItem
	SemanticCases []SemanticCase
	KeywordCases  []KeywordCase
	TotalItems    int
}

// BuildCorpus returns a corpus of 60 catalog items with varied content plus
// semantic and keyword query test cases.
func BuildCorpus() *Corpus {
	items := buildItems(60)
	return &Corpus{
		Items:         items,
		SemanticCases: buildSemanticCases(items),
		KeywordCases:  buildKeywordCases(items),
		TotalItems:    len(items),
	}
}

func buildItems(n int) []E2EItem {
	products := []E2EItem{
		{"Midnight Cascade", "Indica", "A heavy evening indica with a slow cedarfall finish. Expect deep couch weight and quiet.", "cedarfall"},
		{"Solar Crescendo", "Sativa", "Bright daytime sativa cut with notes of yuzunectar. Builds focus without the jitters.", "yuzunectar"},
		{"Twilight Marble", "Hybrid", "A balanced hybrid swirled like rivermarble. Smooth on the inhale, settled on the exhale.", "rivermarble"},
		{"Amber Lattice", "Wax", "Concentrate pressed into an amber honeylattice. Small dabs carry a long, warm arc.", "honeylattice"},
		{"Ember Scroll", "Pre-roll", "A slow-burning pre-roll wrapped tight as a smokescroll. One is plenty for a long walk.", "smokescroll"},
		{"Orchard Static", "Gummys", "Chewy gummies with a pearcrackle center. Low dose, easy to pace, easy to share.", "pearcrackle"},
		{"Velour Tide", "Indica", "Soft indica that rolls in like a plumvelour wave. Dims the lights on a racing mind.", "plumvelour"},
		{"Citrus Semaphore", "Sativa", "Zesty sativa signaling with limeflare brightness. Good for errands and loud playlists.", "limeflare"},
		{"Quiet Alloy", "Hybrid", "Even-keeled hybrid forged from a mintalloy cross. Steady body, clear head.", "mintalloy"},
		{"Glass Meridian", "Wax", "Clear stable shatter scored along a resinmeridian. Breaks clean, melts cleaner.", "resinmeridian"},
		{"Lantern Row", "Pre-roll", "A five-pack of thin pre-rolls lined up like wicklanterns. Short sessions, no waste.", "wicklanterns"},
		{"Juniper Confetti", "Gummys", "Tart gummies dusted with berryconfetti sugar. A party in a resealable pouch.", "berryconfetti"},
		{"Moss Pendulum", "Indica", "Earthy indica that swings you down like a fernpendulum. Best after dinner.", "fernpendulum"},
		{"Comet Verge", "Sativa", "Racy sativa right on the starverge of too much. Seasoned users only.", "starverge"},
		{"Harbor Prism", "Hybrid", "Coastal hybrid refracting a saltprism of flavors. Mellow, social, unhurried.", "saltprism"},
		{"Topaz Ledger", "Wax", "Budder whipped into a goldledger of trichomes. Rich terpene entries on every page.", "goldledger"},
		{"Cinder Postcard", "Pre-roll", "A single postcard-flat pre-roll with an ashnote finish. Travels well.", "ashnote"},
		{"Meadow Circuit", "Gummys", "Herbal gummies running a clovercircuit of calm. Ten milligrams, evenly split.", "clovercircuit"},
		{"Violet Anchor", "Indica", "Deep purple indica that sets a grapeanchor in still water. Sleep follows.", "grapeanchor"},
		{"Decibel Grove", "Sativa", "Loud tropical sativa grown in a mangogrove canopy. Turns chores into a set list.", "mangogrove"},
		{"Parallel Dusk", "Hybrid", "Twin-phenotype hybrid meeting at a duskline horizon. Neither up nor down, just level.", "duskline"},
		{"Crystal Ballast", "Wax", "Dense diamond sauce weighted with a terpballast pour. Heavy hitter, steady keel.", "terpballast"},
		{"Sparrow Dispatch", "Pre-roll", "A quick half-gram dispatch with a pinefeather draw. For the brief and the busy.", "pinefeather"},
		{"Nectar Semibreve", "Gummys", "Slow-release gummies holding one long honeysemibreve of ease. Patience rewarded.", "honeysemibreve"},
		{"Umber Quilt", "Indica", "Blanketing indica stitched from a cocoaquilt of old-school genetics. Warm and familiar.", "cocoaquilt"},
		{"Apex Runway", "Sativa", "Fast-onset sativa cleared for a citrusrunway takeoff. Morning use, seatbelts on.", "citrusrunway"},
		{"Ferris Lagoon", "Hybrid", "Playful hybrid circling a melonlagoon of flavor. Light enough for beginners.", "melonlagoon"},
		{"Onyx Parallax", "Wax", "Black-label rosin with a noirparallax shimmer. Cold-cured, full spectrum.", "noirparallax"},
		{"Tinder Manifest", "Pre-roll", "An infused pre-roll listed on the kiefmanifest. Burns slow, lands hard.", "kiefmanifest"},
		{"Drift Confection", "Gummys", "Pillowy gummies folded from a marshdrift base. Dessert first, then the drift.", "marshdrift"},
		{"Cellar Hymn", "Indica", "Cave-cured indica humming an oakhymn through the jar. Old roots, deep rest.", "oakhymn"},
		{"Pollen Derby", "Sativa", "Sprinting sativa fresh off the springderby line. Social fuel for long afternoons.", "springderby"},
		{"Gable Mosaic", "Hybrid", "House-blend hybrid tiled into a spicemosaic. Different note every visit.", "spicemosaic"},
		{"Quartz Pennant", "Wax", "THCA crystals flying a frostpennant banner. Near-flavorless, purely functional.", "frostpennant"},
		{"Bramble Courier", "Pre-roll", "A rugged outdoor pre-roll sent by thorncourier. Campfire approved.", "thorncourier"},
		{"Saffron Metronome", "Gummys", "Precisely dosed gummies ticking a spicemetronome beat. Same result, every time.", "spicemetronome"},
		{"Harvest Undertow", "Indica", "Late-season indica pulling a grainundertow beneath the surface. Respect the current.", "grainundertow"},
		{"Zephyr Billboard", "Sativa", "Airy sativa advertising a breezebillboard of light effects. All lift, no weight.", "breezebillboard"},
		{"Copper Interlude", "Hybrid", "Short-acting hybrid scored as a rustinterlude between tasks. An hour, no more.", "rustinterlude"},
		{"Basalt Chandelier", "Wax", "Volcanic live resin hung with a lavachandelier of terpenes. Dark, bright, both.", "lavachandelier"},
	}

	out := make([]E2EItem, 0, n)
	for i := 0; i < n && i < len(products); i++ {
		out = append(out, products[i])
	}
	// Past the table, repeat entries as numbered batches. Names and
	// descriptions stay unique; batches carry no signature word, so keyword
	// cases only come from the first run of the table.
	for len(out) < n {
		i := len(out)
		p := products[i%len(products)]
		p.Description = fmt.Sprintf("A later harvest of %s. Same profile, numbered batch %d.", p.Name, i+1)
		p.Name = fmt.Sprintf("%s Batch %d", p.Name, i+1)
		p.Signature = ""
		out = append(out, p)
	}
	return out
}

// buildSemanticCases targets every third item with its exact embedding text.
func buildSemanticCases(items []E2EItem) []SemanticCase {
	var cases []SemanticCase
	for i := 0; i < len(items); i += 3 {
		it := items[i]
		cases = append(cases, SemanticCase{
			Query:        embeddingTextOf(it),
			ExpectedName: it.Name,
			Description:  fmt.Sprintf("exact text of %q ranks it first", it.Name),
		})
	}
	return cases
}

// buildKeywordCases targets every fourth single-signature item.
func buildKeywordCases(items []E2EItem) []KeywordCase {
	var cases []KeywordCase
	for i := 0; i < len(items); i += 4 {
		it := items[i]
		if it.Signature == "" {
			continue
		}
		cases = append(cases, KeywordCase{
			Query:        it.Signature,
			ExpectedName: it.Name,
			Description:  fmt.Sprintf("signature %q finds %q", it.Signature, it.Name),
		})
	}
	return cases
}

// embeddingTextOf mirrors models.Item.EmbeddingText for a corpus entry.
func embeddingTextOf(it E2EItem) string {
	return it.Name + ". " + it.Description
}

// ToItems converts corpus entries to catalog items for storage.
func (c *Corpus) ToItems() []*models.Item {
	out := make([]*models.Item, len(c.Items))
	for i := range c.Items {
		e := &c.Items[i]
		out[i] = &models.Item{
			Name:        e.Name,
			Category:    e.Category,
			Description: e.Description,
		}
	}
	return out
}
