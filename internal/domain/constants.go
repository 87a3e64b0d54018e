package domain

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

const (
	InvestmentStatusActive    = "ACTIVE"
	InvestmentStatusCompleted = "COMPLETED"
)

const (
	PlanStatusActive   = "Active"
	PlanStatusInactive = "Inactive"
)

const (
	TxTypeROI      = "ROI"
	TxTypeReferral = "REFERRAL"
)

const (
	TxStatusCompleted = "COMPLETED"
)

const (
	RunModeScheduled = "SCHEDULED"
	RunModeManual    = "MANUAL"
)

const (
	RunStatusCompleted = "COMPLETED"
	RunStatusSkipped   = "SKIPPED"
	RunStatusFatal     = "FATAL"
)

const (
	NotifKindROI      = "ROI"
	NotifKindReferral = "REFERRAL"
)

// DateLayout is the ISO date key used for credit days and run markers.
const DateLayout = "2006-01-02"
