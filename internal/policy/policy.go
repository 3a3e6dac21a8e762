// Package policy содержит чистые проверки прав доступа: кто и над чем может
// выполнять операцию. Здесь только роль и владение; проверки статусов сущностей
// остаются в сервисах и дают другую ошибку (InvalidState, а не PermissionDenied),
// чтобы вызывающая сторона могла показать корректное сообщение.
package policy

import (
	"github.com/maslovdev/jobmarket-backend/internal/models"
)

// CanCreateJob: заказы создают только заказчики.
func CanCreateJob(actor models.Actor) bool {
	return actor.IsCustomer()
}

// CanUpdateJob: заказ меняет только его владелец.
func CanUpdateJob(actor models.Actor, job *models.Job) bool {
	return actor.IsCustomer() && job.CustomerID == actor.ID
}

// CanDeleteJob: заказ удаляет только его владелец.
func CanDeleteJob(actor models.Actor, job *models.Job) bool {
	return actor.IsCustomer() && job.CustomerID == actor.ID
}

// CanViewJobResponses: отклики видит владелец заказа и сами исполнители
// (каждый — только свой отклик, это фильтруется уровнем выше).
func CanViewJobResponses(actor models.Actor, job *models.Job) bool {
	return actor.IsWorker() || job.CustomerID == actor.ID
}

// CanRespondToJob: откликаются только исполнители и не на собственные заказы.
func CanRespondToJob(actor models.Actor, job *models.Job) bool {
	return actor.IsWorker() && job.CustomerID != actor.ID
}

// CanMutateResponse: отклик меняет (или отзывает) только его автор.
func CanMutateResponse(actor models.Actor, response *models.JobResponse) bool {
	return actor.IsWorker() && response.WorkerID == actor.ID
}

// CanAcceptResponse: отклик принимает только владелец заказа.
func CanAcceptResponse(actor models.Actor, job *models.Job) bool {
	return actor.IsCustomer() && job.CustomerID == actor.ID
}

// CanTransitionJob: допустимость перехода по ролям из таблицы переходов.
// Отмена — только владелец; старт и завершение — владелец либо назначенный
// исполнитель.
func CanTransitionJob(actor models.Actor, newStatus string, job *models.Job, assignment *models.Assignment) bool {
	isOwner := actor.IsCustomer() && job.CustomerID == actor.ID
	isAssignee := actor.IsWorker() && assignment != nil && assignment.WorkerID == actor.ID

	switch newStatus {
	case models.JobStatusCancelled:
		return isOwner
	case models.JobStatusInProgress, models.JobStatusCompleted:
		return isOwner || isAssignee
	default:
		return false
	}
}

// IsAssignmentParticipant: участники назначения — заказчик заказа и исполнитель.
func IsAssignmentParticipant(actor models.Actor, job *models.Job, assignment *models.Assignment) bool {
	return job.CustomerID == actor.ID || assignment.WorkerID == actor.ID
}

// CanViewEarnings: заработок видит только сам исполнитель.
func CanViewEarnings(actor models.Actor) bool {
	return actor.IsWorker()
}
