package config

// Constants defining default values for application configuration
const (
	DefaultDBPath  = "./leadwatch.db"
	DefaultDataDir = "./data"

	DefaultServerPort = 8080
	DefaultServerHost = "" // Empty string means all interfaces

	DefaultInterval       = 0  // Minutes between pipeline runs, 0 for one-shot
	DefaultMinRunInterval = 60 // Minimum minutes between runs before skipping

	DefaultSubreddits = "SaaS,Blogging,SEO,contentmarketing,marketing,startups,SmallBusiness,Entrepreneur,webdev,programming"
	DefaultSortModes  = "hot,new"

	DefaultLogLevel = "info"
)
