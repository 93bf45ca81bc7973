package email

const (
	subjectLeadAssigned   = "A new lead is waiting for you"
	subjectLeadRevealed   = "A contractor will be in touch"
	subjectLeadMatched    = "Your lead confirmed contact"
	subjectCreditsGranted = "Your credits have been added"
)
