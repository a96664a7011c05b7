package constants

// Quote is shown on the dashboard.
type Quote struct {
	Text     string
	Author   string
	Category string
}

var Quotes = []Quote{
	{"The secret to getting ahead is getting started.", "Mark Twain", "Momentum"},
	{"Don't find customers for your products, find products for your customers.", "Seth Godin", "Market Fit"},
	{"Ideas are easy. Implementation is hard.", "Guy Kawasaki", "Execution"},
	{"If you're not embarrassed by the first version of your product, you've launched too late.", "Reid Hoffman", "Lean"},
	{"Make every detail perfect and limit the number of details to perfect.", "Jack Dorsey", "Focus"},
	{"Your most unhappy customers are your greatest source of learning.", "Bill Gates", "Feedback"},
	{"The best way to predict the future is to create it.", "Peter Drucker", "Vision"},
	{"Innovation distinguishes between a leader and a follower.", "Steve Jobs", "Innovation"},
	{"Complexity is your enemy. Any fool can make something complicated. It is hard to keep things simple.", "Richard Branson", "Simplicity"},
	{"The value of an idea lies in the using of it.", "Thomas Edison", "Utility"},
	{"Timing, perseverance, and ten years of trying will eventually make you look like an overnight success.", "Biz Stone", "Persistence"},
	{"Move fast and break things. Unless you are breaking stuff, you are not moving fast enough.", "Mark Zuckerberg", "Speed"},
	{"Be so good they can't ignore you.", "Steve Martin", "Excellence"},
	{"Always deliver more than expected.", "Larry Page", "Value"},
	{"Stay hungry, stay foolish.", "Steve Jobs", "Mindset"},
	{"A brand for a company is like a reputation for a person. You earn reputation by trying to do hard things well.", "Jeff Bezos", "Brand"},
	{"Don't be afraid to give up the good to go for the great.", "John D. Rockefeller", "Ambition"},
	{"Chase the vision, not the money; the money will end up following you.", "Tony Hsieh", "Vision"},
	{"If you can dream it, you can do it.", "Walt Disney", "Belief"},
	{"Everything is figureoutable.", "Marie Forleo", "Problem Solving"},
}

// Loading screen copy, rotated on LoadingMessageTick and LoadingInsightTick.
var (
	LoadingMessages = []string{
		"Quantifying advantages...",
		"Drafting personas...",
		"Structuring milestones...",
		"Optimizing economics...",
		"Finalizing roadmap...",
		"Activating engine...",
	}
	LoadingInsights = []string{
		"Execution is everything.",
		"Do the right things early.",
		"Momentum is your most precious resource.",
		"Solve specific pain points.",
		"AI accelerates validation loops.",
		"Simple products win fast.",
	}
)
