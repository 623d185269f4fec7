package metadata

import (
	"fmt"
	"strings"
)

const application = "CareBox Pack"

// ARC3 is the token metadata document referenced by a badge's asset URL.
type ARC3 struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Attributes  []Attribute `json:"attributes,omitempty"`
	Properties  Properties  `json:"properties"`
}

type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

type Properties struct {
	Application string `json:"application,omitempty"`
	Type        string `json:"type,omitempty"`
	Milestone   int    `json:"milestone,omitempty"`
	Year        int    `json:"year,omitempty"`
	ColourTheme string `json:"colour_theme,omitempty"`
}

func GenerateMetadata(b Badge, year int) ARC3 {
	colour := Colour(year)
	return ARC3{
		Name:        b.AssetName(year),
		Description: b.Description(year),
		Image:       b.Artwork(year),
		Attributes: []Attribute{
			{TraitType: "Achievement Type", Value: strings.TrimSuffix(b.Name, " NFT")},
			{TraitType: "Streak Duration", Value: fmt.Sprintf("%d Days", b.Milestone)},
			{TraitType: "Year", Value: fmt.Sprint(year)},
			{TraitType: "Colour Theme", Value: strings.ToUpper(colour[:1]) + colour[1:]},
			{TraitType: "Category", Value: "Consistency"},
		},
		Properties: Properties{
			Application: application,
			Type:        "Achievement Badge",
			Milestone:   b.Milestone,
			Year:        year,
			ColourTheme: colour,
		},
	}
}

// genericMetadata describes an uploaded image that is not tied to a milestone.
func genericMetadata(imageURL string) ARC3 {
	return ARC3{
		Name:        "CareBox Pack Achievement NFT",
		Description: "Achievement badge NFT for wellness consistency milestones",
		Image:       imageURL,
	}
}
