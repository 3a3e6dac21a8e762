package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/maslovdev/jobmarket-backend/internal/models"
	"github.com/maslovdev/jobmarket-backend/internal/pkg/apperror"
	"github.com/maslovdev/jobmarket-backend/internal/policy"
	"github.com/maslovdev/jobmarket-backend/internal/repository"
	"github.com/maslovdev/jobmarket-backend/internal/validation"
)

// AssignmentStore описывает взаимодействие сервиса с хранилищем назначений.
type AssignmentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	GetByJobID(ctx context.Context, jobID uuid.UUID) (*models.Assignment, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.Assignment, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Assignment, error)
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error
}

// JobStoreForAssignment — чтение заказа для проверки участия.
type JobStoreForAssignment interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

type AssignmentService struct {
	assignments AssignmentStore
	jobs        JobStoreForAssignment
	timeout     time.Duration
}

func NewAssignmentService(assignments AssignmentStore, jobs JobStoreForAssignment, timeout time.Duration) *AssignmentService {
	return &AssignmentService{assignments: assignments, jobs: jobs, timeout: timeout}
}

// GetAssignment возвращает назначение его участнику.
func (s *AssignmentService) GetAssignment(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Assignment, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAssignmentNotFound) {
			return nil, apperror.ErrAssignmentNotFound
		}
		return nil, storeError(err, "не удалось получить назначение")
	}

	job, err := s.jobs.GetByID(ctx, assignment.JobID)
	if err != nil {
		return nil, storeError(err, "не удалось получить заказ")
	}
	if !policy.IsAssignmentParticipant(actor, job, assignment) {
		return nil, apperror.ErrPermissionDenied
	}
	return assignment, nil
}

// GetJobAssignment возвращает назначение заказа, nil если его ещё нет.
func (s *AssignmentService) GetJobAssignment(ctx context.Context, actor models.Actor, jobID uuid.UUID) (*models.Assignment, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, storeError(err, "не удалось получить заказ")
	}

	assignment, err := s.assignments.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, storeError(err, "не удалось получить назначение")
	}
	if assignment == nil {
		return nil, apperror.ErrAssignmentNotFound
	}
	if !policy.IsAssignmentParticipant(actor, job, assignment) {
		return nil, apperror.ErrPermissionDenied
	}
	return assignment, nil
}

// ListMyAssignments возвращает назначения пользователя в его роли.
func (s *AssignmentService) ListMyAssignments(ctx context.Context, actor models.Actor, limit, offset int) ([]models.Assignment, error) {
	limit = normalizeLimit(limit)
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	var (
		assignments []models.Assignment
		err         error
	)
	if actor.IsWorker() {
		assignments, err = s.assignments.ListByWorker(ctx, actor.ID, limit, offset)
	} else {
		assignments, err = s.assignments.ListByCustomer(ctx, actor.ID, limit, offset)
	}
	if err != nil {
		return nil, storeError(err, "не удалось получить назначения")
	}
	return assignments, nil
}

// UpdateNotes обновляет заметки по назначению. Доступно обоим участникам.
func (s *AssignmentService) UpdateNotes(ctx context.Context, actor models.Actor, id uuid.UUID, notes string) (*models.Assignment, error) {
	if err := validation.ValidateLength("заметки", notes, 0, validation.MaxNotesLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	assignment, err := s.GetAssignment(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.assignments.UpdateNotes(ctx, id, notes); err != nil {
		return nil, storeError(err, "не удалось обновить заметки")
	}
	assignment.Notes = notes
	return assignment, nil
}
