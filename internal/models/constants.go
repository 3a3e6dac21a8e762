package models

// Роли пользователей
const (
	RoleCustomer = "customer"
	RoleWorker   = "worker"
)

// JobStatus константы статусов заказов
const (
	JobStatusOpen       = "open"
	JobStatusAccepted   = "accepted"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusCancelled  = "cancelled"
)

// ResponseType типы откликов исполнителей
const (
	ResponseTypeAccept = "accept"
	ResponseTypeQuote  = "quote"
)

// ResponseStatus константы статусов откликов
const (
	ResponseStatusPending   = "pending"
	ResponseStatusAccepted  = "accepted"
	ResponseStatusRejected  = "rejected"
	ResponseStatusWithdrawn = "withdrawn"
)

// AssignmentStatus константы статусов назначений
const (
	AssignmentStatusAssigned  = "assigned"
	AssignmentStatusStarted   = "started"
	AssignmentStatusCompleted = "completed"
	AssignmentStatusCancelled = "cancelled"
)

// TransactionType типы финансовых транзакций
const (
	TransactionTypePayment     = "payment"
	TransactionTypeRefund      = "refund"
	TransactionTypeBonus       = "bonus"
	TransactionTypePenalty     = "penalty"
	TransactionTypePlatformFee = "platform_fee"
)

// TransactionStatus константы статусов транзакций
const (
	TransactionStatusPending    = "pending"
	TransactionStatusProcessing = "processing"
	TransactionStatusCompleted  = "completed"
	TransactionStatusFailed     = "failed"
	TransactionStatusCancelled  = "cancelled"
)

// RatingType направления оценок
const (
	RatingTypeCustomerToWorker = "customer_to_worker"
	RatingTypeWorkerToCustomer = "worker_to_customer"
)

// Urgency уровни срочности заказа
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
	UrgencyUrgent = "urgent"
)

// ValidJobStatuses список валидных статусов заказов
var ValidJobStatuses = map[string]struct{}{
	JobStatusOpen:       {},
	JobStatusAccepted:   {},
	JobStatusInProgress: {},
	JobStatusCompleted:  {},
	JobStatusCancelled:  {},
}

// ValidResponseTypes список валидных типов откликов
var ValidResponseTypes = map[string]struct{}{
	ResponseTypeAccept: {},
	ResponseTypeQuote:  {},
}

// ValidResponseStatuses список валидных статусов откликов
var ValidResponseStatuses = map[string]struct{}{
	ResponseStatusPending:   {},
	ResponseStatusAccepted:  {},
	ResponseStatusRejected:  {},
	ResponseStatusWithdrawn: {},
}

// ValidAssignmentStatuses список валидных статусов назначений
var ValidAssignmentStatuses = map[string]struct{}{
	AssignmentStatusAssigned:  {},
	AssignmentStatusStarted:   {},
	AssignmentStatusCompleted: {},
	AssignmentStatusCancelled: {},
}

// ValidTransactionTypes список валидных типов транзакций
var ValidTransactionTypes = map[string]struct{}{
	TransactionTypePayment:     {},
	TransactionTypeRefund:      {},
	TransactionTypeBonus:       {},
	TransactionTypePenalty:     {},
	TransactionTypePlatformFee: {},
}

// ValidRatingTypes список валидных направлений оценок
var ValidRatingTypes = map[string]struct{}{
	RatingTypeCustomerToWorker: {},
	RatingTypeWorkerToCustomer: {},
}

// ValidUrgencies список валидных уровней срочности
var ValidUrgencies = map[string]struct{}{
	UrgencyLow:    {},
	UrgencyMedium: {},
	UrgencyHigh:   {},
	UrgencyUrgent: {},
}

// ValidCategories закрытый список категорий бытовых услуг.
// Неизвестные значения отклоняются на границе, а не сохраняются как есть.
var ValidCategories = map[string]struct{}{
	"cleaning":     {},
	"plumbing":     {},
	"electrical":   {},
	"carpentry":    {},
	"repair":       {},
	"painting":     {},
	"gardening":    {},
	"cooking":      {},
	"babysitting":  {},
	"elderly_care": {},
	"pet_care":     {},
	"laundry":      {},
	"tutoring":     {},
	"delivery":     {},
	"moving":       {},
	"other":        {},
}
