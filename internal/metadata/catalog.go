package metadata

import "fmt"

// Badge is one milestone achievement. Artwork and pinned metadata are published
// per year as an Edition.
type Badge struct {
	Key       string
	Name      string
	Unit      string
	Milestone int
	Icon      string
}

type Edition struct {
	ImageURL    string
	MetadataURL string
}

const artworkYear = 2025

var badges = []Badge{
	{Key: "getting_started", Name: "Getting Started NFT", Unit: "GS", Milestone: 10, Icon: "🌱"},
	{Key: "monthly_warrior", Name: "Monthly Warrior NFT", Unit: "MW", Milestone: 30, Icon: "💪"},
	{Key: "consistency_champion", Name: "Consistency Champion NFT", Unit: "CC", Milestone: 60, Icon: "👟"},
	{Key: "quarterly_master", Name: "Quarterly Master NFT", Unit: "QM", Milestone: 90, Icon: "🍃"},
	{Key: "half_year_hero", Name: "Half-Year Hero NFT", Unit: "HH", Milestone: 180, Icon: "💪"},
	{Key: "annual_legend", Name: "Annual Legend NFT", Unit: "AL", Milestone: 365, Icon: "⭐"},
}

const ipfsArtwork = "ipfs://bafybeihmv5ec4bimu5yld5wfadc7a6yurlbkpnimiv7uq3ti54eejrwkze/"

var editions = map[string]map[int]Edition{
	"getting_started": {2025: {
		ImageURL:    ipfsArtwork + "10DaysGetStartedPOC.png",
		MetadataURL: "ipfs://Qme2MicDHUYcAMcNpkfLrrewaprUo6ig33R46kv3r6rZqB",
	}},
	"monthly_warrior": {2025: {
		ImageURL:    ipfsArtwork + "30DaysMonthlyWarriorPOC.png",
		MetadataURL: "ipfs://QmdRP2f8eNYjwRzzhU8rJHwkWqWcWQHrZmD5LNFseAaxsb",
	}},
	"consistency_champion": {2025: {
		ImageURL:    ipfsArtwork + "60DaysConsistencyPOC.png",
		MetadataURL: "ipfs://QmYhDW5DoMH3TnkywzjAVHQcf84kPwD1FKK35KxVtMrsKe",
	}},
	"quarterly_master": {2025: {
		ImageURL:    ipfsArtwork + "90DaysQuarterPOC.png",
		MetadataURL: "ipfs://QmPxzPm4QUJFmHhseazh2s5bSrnJThS8r187N5yjoynUMe",
	}},
	"half_year_hero": {2025: {
		ImageURL:    ipfsArtwork + "180DaysHalfYearPOC.png",
		MetadataURL: "ipfs://QmZ6GpvnmyywhXX12DUQ6EvQnsWsCnrGWSrme8pCUUph9y",
	}},
	"annual_legend": {2025: {
		ImageURL:    ipfsArtwork + "365DaysAnnualLegendPOC.png",
		MetadataURL: "ipfs://Qmd9Ek8McWPsmp3hVQc1SnnpVUNyk15n5WUG4xaiy3PruQ",
	}},
}

var yearThemes = map[int]string{
	2025: "blue",
	2026: "blue",
	2027: "magenta",
	2028: "orange",
	2029: "yellow",
	2030: "teal",
}

func BadgeFor(milestone int) (Badge, bool) {
	for _, b := range badges {
		if b.Milestone == milestone {
			return b, true
		}
	}
	return Badge{}, false
}

// SplitMilestones separates milestones that have a badge from those that do not.
func SplitMilestones(milestones []int) (known, unknown []int) {
	for _, m := range milestones {
		if _, ok := BadgeFor(m); ok {
			known = append(known, m)
		} else {
			unknown = append(unknown, m)
		}
	}
	return known, unknown
}

// Edition returns the published artwork for year, if any.
func (b Badge) Edition(year int) (Edition, bool) {
	e, ok := editions[b.Key][year]
	return e, ok
}

// Artwork is the image used for year, falling back to the original artwork.
func (b Badge) Artwork(year int) string {
	if e, ok := b.Edition(year); ok && e.ImageURL != "" {
		return e.ImageURL
	}
	return editions[b.Key][artworkYear].ImageURL
}

func (b Badge) Description(year int) string {
	return fmt.Sprintf("Achievement badge for completing a %d-day wellness streak in CareBox Pack - %d", b.Milestone, year)
}

func (b Badge) AssetName(year int) string {
	return fmt.Sprintf("%s %d", b.Name, year)
}

func (b Badge) UnitName(year int) string {
	return fmt.Sprintf("%s-%d", b.Unit, year)
}

// Colour is the theme for year; unknown years keep the default blue.
func Colour(year int) string {
	if c, ok := yearThemes[year]; ok {
		return c
	}
	return "blue"
}
