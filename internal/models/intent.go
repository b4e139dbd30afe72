package models

// Intent is the classified communicative purpose of a thread.
type Intent string

const (
	IntentDiscovery  Intent = "DISCOVERY"
	IntentComparison Intent = "COMPARISON"
	IntentShowcase   Intent = "SHOWCASE"
	IntentQuestion   Intent = "QUESTION"
	IntentGeneral    Intent = "GENERAL"
)
