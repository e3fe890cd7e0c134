package models

// UserRole константы ролей пользователей
const (
	RoleUser       = "user"
	RoleTechnician = "technician"
	RoleCompany    = "company"
	RoleAdmin      = "admin"
)

// BookingStatus константы статусов бронирований
const (
	BookingStatusPending    = "pending"
	BookingStatusAccepted   = "accepted"
	BookingStatusInProgress = "in_progress"
	BookingStatusCompleted  = "completed"
	BookingStatusCancelled  = "cancelled"
	BookingStatusDisputed   = "disputed"
)

// DisputeStatus константы статусов споров
const (
	DisputeStatusOpen        = "open"
	DisputeStatusUnderReview = "under_review"
	DisputeStatusArbitration = "arbitration"
	DisputeStatusResolved    = "resolved"
	DisputeStatusDismissed   = "dismissed"
)

// TechnicianTier уровни опыта техников
const (
	TierBeginner     = "beginner"
	TierIntermediate = "intermediate"
	TierAdvanced     = "advanced"
	TierPro          = "pro"
)

// ValidRoles список валидных ролей
var ValidRoles = map[string]struct{}{
	RoleUser:       {},
	RoleTechnician: {},
	RoleCompany:    {},
	RoleAdmin:      {},
}

// ValidBookingStatuses список валидных статусов бронирований
var ValidBookingStatuses = map[string]struct{}{
	BookingStatusPending:    {},
	BookingStatusAccepted:   {},
	BookingStatusInProgress: {},
	BookingStatusCompleted:  {},
	BookingStatusCancelled:  {},
	BookingStatusDisputed:   {},
}

// ValidDisputeStatuses список валидных статусов споров
var ValidDisputeStatuses = map[string]struct{}{
	DisputeStatusOpen:        {},
	DisputeStatusUnderReview: {},
	DisputeStatusArbitration: {},
	DisputeStatusResolved:    {},
	DisputeStatusDismissed:   {},
}

// ValidTiers список валидных уровней техников
var ValidTiers = map[string]struct{}{
	TierBeginner:     {},
	TierIntermediate: {},
	TierAdvanced:     {},
	TierPro:          {},
}

// AdminDisputeTargets статусы, в которые администратор может перевести спор.
var AdminDisputeTargets = map[string]struct{}{
	DisputeStatusUnderReview: {},
	DisputeStatusArbitration: {},
	DisputeStatusResolved:    {},
	DisputeStatusDismissed:   {},
}

// TerminalBookingStatuses статусы, из которых бронирование нельзя отменить.
var TerminalBookingStatuses = map[string]struct{}{
	BookingStatusCompleted: {},
	BookingStatusCancelled: {},
}
