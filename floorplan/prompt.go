package floorplan

import (
	"strings"

	"github.com/lithammer/dedent"
)

const (
	InteriorFeaturesKey = "interior_design_features"
	ExteriorFeaturesKey = "exterior_design_features"
)

var analysisPrompt = strings.TrimSpace(dedent.Dedent(`
	As an experienced real estate agent, analyze this floorplan to identify distinctive features that are clearly visible and confirmed from the floorplan only.

	What counts as a "distinctive feature":

	Unique Design Elements:
	- Special layout arrangements (e.g., "dual-level studio design")
	- Uncommon room combinations or connections
	- Premium design choices (e.g., "butler's pantry setup")
	- Luxury space planning (e.g., "ensuite master arrangement")

	Premium Facilities:
	- Luxury amenities (e.g., "heated indoor pool")
	- High-end additions (e.g., "wine cellar storage")
	- Entertainment spaces (e.g., "home theater setup")
	- Wellness facilities (e.g., "dedicated gym space")

	Practical Valuable Features:
	- Multiple car accommodation (e.g., "triple car garage")
	- Storage solutions (e.g., "walk-in pantry system")
	- Utility setups (e.g., "separate laundry room")
	- Service areas (e.g., "mud room entrance")

	Outdoor Features and Amenities:
	- Pool and spa facilities
	- Outdoor living spaces (e.g., "covered deck area")
	- Garden features (e.g., "landscaped courtyard")
	- Outdoor entertainment

	Features that consumers value:
	- Garage and its size (e.g., "4 car garage space")
	- Swimming pool (e.g., "pool design")
	- Outdoor entertainment areas (e.g., "multiple deck zones")

	Examples of good feature descriptions:

	Interior:
	✓ "Dual-level workspace design"
	✓ "Butler's pantry integration"
	✓ "Triple bathroom configuration"
	✓ "Walk-in robe system"
	✓ "Open-plan living arrangement"

	Exterior:
	✓ "Double car garage setup"
	✓ "Multi-level deck system"
	✓ "Pool entertainment zone"
	✓ "Covered entry design"

	Examples of poor descriptions:
	× "Kitchen"
	× "Large bedroom"
	× "Nice view"

	Strict analysis rules:
	- Classify every feature as either interior or exterior
	- Each feature must describe a unique aspect
	- Features must highlight distinctive elements
	- Include both design and facility features
	- Quantify where relevant (e.g., "double", "triple")
	- Use 2-4 words for each description
	- No duplicate features
	- List minimum 5 features per category
	- Must be clearly marked in plan
	- Rank the features in each category by uniqueness, most unique first

	Respond in this JSON format:
	{
	    "interior_design_features": [
	        "feature 1",
	        "feature 2"
	    ],
	    "exterior_design_features": [
	        "feature 1",
	        "feature 2"
	    ]
	}

	Use only these two keys. If the floorplan shows no exterior features, omit "exterior_design_features" entirely.

	Respond ONLY with the JSON object, no markdown or other text.
`))

// BuildPrompt returns the instruction sent to the model with every floor plan.
func BuildPrompt() string {
	return analysisPrompt
}
