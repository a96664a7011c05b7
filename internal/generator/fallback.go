package generator

import "github.com/julianstephens/genie/internal/models"

// Fallback returns the built-in sample plan. It needs no network access and
// is used both for "view sample" and when generation fails.
func Fallback() models.StartupPlan {
	return models.StartupPlan{
		RefinedIdea: "A hyper-local delivery ecosystem that utilizes existing neighborhood networks to deliver fresh groceries and essentials in under 15 minutes.",
		TargetUsers: []models.TargetUser{
			{UserType: "Urban Professionals", PainPoint: "High time-poverty leading to poor nutrition and reliance on expensive takeout."},
			{UserType: "Eco-conscious Families", PainPoint: "Wanting local produce without the logistics of visiting multiple markets."},
		},
		MVPFeatures: models.MVPFeatures{
			MustHave: []string{
				"Real-time Inventory Sync",
				"Dynamic Neighborhood Courier App",
				"Contactless Micro-Drop Zones",
				"Predictive Reordering Algorithm",
			},
			Optional: []string{
				"Subscription-based 'Infinite' tier",
				"Community Garden Integration",
			},
		},
		Monetization: []models.MonetizationModel{
			{ModelName: "Logistics-as-a-Service", Description: "Taking a 15% fulfillment fee from local vendors per transaction."},
			{ModelName: "Premium Subscription", Description: "Monthly $19.99 for unlimited 15-min deliveries and zero markup."},
		},
		PitchSummary: "Our platform bridges the gap between local quality and modern convenience. By empowering neighborhood networks to fulfill demand, we create a sustainable, high-velocity commerce engine that beats traditional big-box delivery on speed, freshness, and community impact.",
		SWOT: models.SWOTAnalysis{
			Strengths:     []string{"Ultra-low latency delivery", "Localized trust", "Low overhead"},
			Weaknesses:    []string{"Scale limitations", "Courier dependability"},
			Opportunities: []string{"Urban density growth", "Partnerships with local farmers"},
			Threats:       []string{"Gig economy regulations", "Established player price wars"},
		},
		Competitors: []models.Competitor{
			{
				Name:              "Instacart",
				MarketPosition:    "High-Volume Market Aggregator",
				KeyDifferentiator: "Massive retailer partnership network and established trust with major chains.",
				StrategicGap:      "Generic logistics and high markups. We win on the 15-minute promise and hyper-local vendor focus that Instacart's 'big-box' infrastructure cannot support.",
			},
			{
				Name:              "Getir",
				MarketPosition:    "Venture-Backed Speed Specialist",
				KeyDifferentiator: "Proprietary dark-store network optimized for rapid pick-and-pack operations.",
				StrategicGap:      "Getir relies on expensive owned-inventory dark stores. Our 'Neighborhood Network' model leverages existing vendor infrastructure, ensuring lower burn and better community ties.",
			},
			{
				Name:              "DoorDash DashMart",
				MarketPosition:    "Eco-System Expansion Leader",
				KeyDifferentiator: "Existing user-base from meal delivery allows for seamless cross-selling into convenience.",
				StrategicGap:      "Lacks the specialized 'fresh/local' grocery identity. Customers view them as a food app; we are a community-first infrastructure for local quality produce.",
			},
		},
		FounderNote: "Great concept! As an Aspiring Entrepreneur, this model balances operational complexity with high community value. Focus on the micro-logistics first.",
	}
}

// SampleIdea is the idea text shown alongside the sample plan.
const SampleIdea = "Neighbourhood grocery delivery in under 15 minutes using local vendors and couriers."
