package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workflow-service/internal/sequence"
)

// Set bundles all repositories bound to one query surface. A Set built
// inside WithinTx shares a single transaction, which is what keeps a
// sequence bump, the primary row and its audit rows atomic.
type Set struct {
	Departments        DepartmentRepository
	Categories         CategoryRepository
	Operators          OperatorRepository
	Tickets            TicketRepository
	Discussions        DiscussionRepository
	StatusHistory      StatusHistoryRepository
	Transfers          TransferRepository
	WorkflowSteps      WorkflowStepRepository
	Requests           ChangeRequestRepository
	RequestHistory     RequestHistoryRepository
	RequestComments    RequestCommentRepository
	RequestAttachments RequestAttachmentRepository
	Counters           sequence.CounterStore
}

// Store hands out repository sets, either pool-bound for plain reads or
// transaction-bound for lifecycle operations.
type Store interface {
	Repos() Set
	WithinTx(ctx context.Context, fn func(s Set) error) error
}

type pgStore struct {
	pool *pgxpool.Pool
	set  Set
}

// NewStore builds the postgres-backed store.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool, set: bindSet(pool)}
}

func bindSet(db DB) Set {
	return Set{
		Departments:        NewDepartmentRepository(db),
		Categories:         NewCategoryRepository(db),
		Operators:          NewOperatorRepository(db),
		Tickets:            NewTicketRepository(db),
		Discussions:        NewDiscussionRepository(db),
		StatusHistory:      NewStatusHistoryRepository(db),
		Transfers:          NewTransferRepository(db),
		WorkflowSteps:      NewWorkflowStepRepository(db),
		Requests:           NewChangeRequestRepository(db),
		RequestHistory:     NewRequestHistoryRepository(db),
		RequestComments:    NewRequestCommentRepository(db),
		RequestAttachments: NewRequestAttachmentRepository(db),
		Counters:           sequence.NewPGStore(db),
	}
}

func (s *pgStore) Repos() Set {
	return s.set
}

func (s *pgStore) WithinTx(ctx context.Context, fn func(s Set) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(bindSet(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
