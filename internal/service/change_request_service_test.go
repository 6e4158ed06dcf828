package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/workflow-service/internal/domain"
	apperrors "github.com/spec-kit/workflow-service/pkg/util/errorutil"
)

func newRequestFixture(t *testing.T) (*ChangeRequestService, *memStore, *domain.Department, *domain.Department, *domain.Operator) {
	t.Helper()
	store := newMemStore()
	from := store.addDepartment("Underwriting", 24)
	to := store.addDepartment("IT Support", 8)
	operator := store.addOperator("chen", &from.ID)
	svc := NewChangeRequestService(ChangeRequestDependencies{
		Store: store,
		Now:   fixedClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)),
	})
	return svc, store, from, to, operator
}

func createDraft(t *testing.T, svc *ChangeRequestService, from, to *domain.Department, operator *domain.Operator) *domain.ChangeRequest {
	t.Helper()
	cr, err := svc.Create(context.Background(), ChangeRequestCreateInput{
		Title:            "Raise retention limit",
		Description:      "Increase group life retention from 5M to 8M",
		FromDepartmentID: from.ID,
		ToDepartmentID:   to.ID,
		ChangeType:       domain.ChangeTypeNormal,
		Priority:         domain.RequestPriorityHigh,
		RequestedBy:      operator.ID,
	})
	require.NoError(t, err)
	return cr
}

func TestRequestCreateNumberAndAudit(t *testing.T) {
	svc, store, from, to, operator := newRequestFixture(t)

	cr := createDraft(t, svc, from, to, operator)
	assert.Equal(t, "CR-2025-00001", cr.RequestNumber)
	assert.Equal(t, domain.RequestStatusDraft, cr.Status)

	history, err := store.Repos().RequestHistory.ListByRequest(context.Background(), cr.ID, true)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ActionCreated, history[0].Action)
	require.NotNil(t, history[0].PerformedBy)
	assert.Equal(t, operator.ID, *history[0].PerformedBy)
}

func TestRequestNumberSequenceContinuous(t *testing.T) {
	svc, _, from, to, operator := newRequestFixture(t)

	for i := 1; i <= 3; i++ {
		cr, err := svc.Create(context.Background(), ChangeRequestCreateInput{
			Title:            "Change",
			Description:      "Body",
			FromDepartmentID: from.ID,
			ToDepartmentID:   to.ID,
			RequestedBy:      operator.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("CR-2025-%05d", i), cr.RequestNumber)
	}
}

func TestRequestHappyPathMilestones(t *testing.T) {
	svc, _, from, to, operator := newRequestFixture(t)
	reviewer := operator.ID
	cr := createDraft(t, svc, from, to, operator)

	cr, err := svc.Submit(context.Background(), cr.ID, operator.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusSubmitted, cr.Status)
	require.NotNil(t, cr.SubmittedAt)

	cr, err = svc.StartReview(context.Background(), cr.ID, reviewer)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusUnderReview, cr.Status)
	require.NotNil(t, cr.ReviewedAt)
	require.NotNil(t, cr.ReviewedBy)
	assert.Equal(t, reviewer, *cr.ReviewedBy)

	cr, err = svc.Approve(context.Background(), cr.ID, reviewer, "budget confirmed")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusApproved, cr.Status)
	require.NotNil(t, cr.ApprovedAt)
	require.NotNil(t, cr.ApprovedBy)
	assert.Equal(t, "budget confirmed", cr.ResponseNotes)

	cr, err = svc.StartWork(context.Background(), cr.ID, operator.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusInProgress, cr.Status)
	require.NotNil(t, cr.StartedAt)

	cr, err = svc.Complete(context.Background(), cr.ID, operator.ID, "limit raised, reinsurance treaty amended")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusCompleted, cr.Status)
	require.NotNil(t, cr.CompletedAt)
	require.NotNil(t, cr.CompletedBy)
	assert.Equal(t, "limit raised, reinsurance treaty amended", cr.ResolutionDetails)

	cr, err = svc.Close(context.Background(), cr.ID, operator.ID, "verified in production")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusClosed, cr.Status)
	require.NotNil(t, cr.ClosedAt)
	assert.Equal(t, "verified in production", cr.ClosureNotes)
}

func TestRequestGuardsRejectWrongSourceStatus(t *testing.T) {
	svc, _, from, to, operator := newRequestFixture(t)
	cr := createDraft(t, svc, from, to, operator)

	// Approve straight from DRAFT is not allowed.
	_, err := svc.Approve(context.Background(), cr.ID, operator.ID, "")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))

	// Neither is starting work.
	_, err = svc.StartWork(context.Background(), cr.ID, operator.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))

	// Close requires COMPLETED.
	_, err = svc.Close(context.Background(), cr.ID, operator.ID, "")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))

	// Submitting twice fails: the first moves it out of DRAFT.
	_, err = svc.Submit(context.Background(), cr.ID, operator.ID)
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), cr.ID, operator.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
}

func TestRequestRejectGuardAndSingleAuditRow(t *testing.T) {
	svc, store, from, to, operator := newRequestFixture(t)
	cr := createDraft(t, svc, from, to, operator)

	// A DRAFT has nothing to reject yet.
	_, err := svc.Reject(context.Background(), cr.ID, operator.ID, "too vague")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))

	_, err = svc.Submit(context.Background(), cr.ID, operator.ID)
	require.NoError(t, err)
	cr, err = svc.Reject(context.Background(), cr.ID, operator.ID, "too vague")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusRejected, cr.Status)

	history, err := store.Repos().RequestHistory.ListByRequest(context.Background(), cr.ID, true)
	require.NoError(t, err)
	rejected := 0
	for _, entry := range history {
		if entry.Action == domain.ActionRejected {
			rejected++
		}
	}
	assert.Equal(t, 1, rejected)
}

func TestRequestApproveDirectlyFromSubmitted(t *testing.T) {
	svc, _, from, to, operator := newRequestFixture(t)
	cr := createDraft(t, svc, from, to, operator)

	_, err := svc.Submit(context.Background(), cr.ID, operator.ID)
	require.NoError(t, err)

	// Review is optional; approval can come straight from SUBMITTED.
	cr, err = svc.Approve(context.Background(), cr.ID, operator.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusApproved, cr.Status)
}

func TestRequestRejectAndReopen(t *testing.T) {
	svc, _, from, to, operator := newRequestFixture(t)
	cr := createDraft(t, svc, from, to, operator)

	_, err := svc.Submit(context.Background(), cr.ID, operator.ID)
	require.NoError(t, err)
	cr, err = svc.Reject(context.Background(), cr.ID, operator.ID, "insufficient rollback plan")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusRejected, cr.Status)
	assert.Equal(t, "insufficient rollback plan", cr.ResponseNotes)

	cr, err = svc.Reopen(context.Background(), cr.ID, operator.ID, "rollback plan added")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusSubmitted, cr.Status)
}

func TestRequestMilestonesStampedOnce(t *testing.T) {
	svc, _, from, to, operator := newRequestFixture(t)
	cr := createDraft(t, svc, from, to, operator)

	cr, err := svc.Submit(context.Background(), cr.ID, operator.ID)
	require.NoError(t, err)
	firstSubmit := *cr.SubmittedAt

	_, err = svc.Reject(context.Background(), cr.ID, operator.ID, "not yet")
	require.NoError(t, err)
	_, err = svc.Reopen(context.Background(), cr.ID, operator.ID, "")
	require.NoError(t, err)

	// The second pass through SUBMITTED keeps the original stamp.
	detail, err := svc.Get(context.Background(), cr.ID, true)
	require.NoError(t, err)
	require.NotNil(t, detail.Request.SubmittedAt)
	assert.Equal(t, firstSubmit, *detail.Request.SubmittedAt)
}

func TestRequestOnHoldAndCancelGuards(t *testing.T) {
	svc, _, from, to, operator := newRequestFixture(t)
	cr := createDraft(t, svc, from, to, operator)

	held, err := svc.PutOnHold(context.Background(), cr.ID, operator.ID, "waiting on vendor")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusOnHold, held.Status)

	cancelled, err := svc.Cancel(context.Background(), cr.ID, operator.ID, "withdrawn")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusCancelled, cancelled.Status)

	// Terminal: neither hold nor cancel applies anymore.
	_, err = svc.PutOnHold(context.Background(), cr.ID, operator.ID, "")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
	_, err = svc.Cancel(context.Background(), cr.ID, operator.ID, "")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
}

func TestRequestUpdateWritesPerFieldHistory(t *testing.T) {
	svc, store, from, to, operator := newRequestFixture(t)
	cr := createDraft(t, svc, from, to, operator)

	newTitle := "Raise retention limit to 10M"
	critical := domain.RequestPriorityCritical
	_, err := svc.Update(context.Background(), cr.ID, ChangeRequestUpdateInput{
		Title:    &newTitle,
		Priority: &critical,
	}, operator.ID)
	require.NoError(t, err)

	history, err := store.Repos().RequestHistory.ListByRequest(context.Background(), cr.ID, true)
	require.NoError(t, err)
	// CREATED plus one entry per changed field.
	require.Len(t, history, 3)

	byField := map[string]domain.RequestHistory{}
	for _, entry := range history[1:] {
		assert.Equal(t, domain.ActionUpdated, entry.Action)
		byField[entry.FieldChanged] = entry
	}
	assert.Equal(t, "Raise retention limit", byField["title"].OldValue)
	assert.Equal(t, newTitle, byField["title"].NewValue)
	assert.Equal(t, string(domain.RequestPriorityHigh), byField["priority"].OldValue)
	assert.Equal(t, string(domain.RequestPriorityCritical), byField["priority"].NewValue)
}

func TestRequestUpdateNoChangesNoHistory(t *testing.T) {
	svc, store, from, to, operator := newRequestFixture(t)
	cr := createDraft(t, svc, from, to, operator)

	sameTitle := cr.Title
	_, err := svc.Update(context.Background(), cr.ID, ChangeRequestUpdateInput{Title: &sameTitle}, operator.ID)
	require.NoError(t, err)

	history, err := store.Repos().RequestHistory.ListByRequest(context.Background(), cr.ID, true)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRequestTransitionHistoryTrail(t *testing.T) {
	svc, store, from, to, operator := newRequestFixture(t)
	cr := createDraft(t, svc, from, to, operator)

	_, err := svc.Submit(context.Background(), cr.ID, operator.ID)
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), cr.ID, operator.ID, "")
	require.NoError(t, err)

	history, err := store.Repos().RequestHistory.ListByRequest(context.Background(), cr.ID, true)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, domain.ActionSubmitted, history[1].Action)
	assert.Equal(t, string(domain.RequestStatusDraft), history[1].OldValue)
	assert.Equal(t, string(domain.RequestStatusSubmitted), history[1].NewValue)
	assert.Equal(t, domain.ActionApproved, history[2].Action)
	assert.Equal(t, string(domain.RequestStatusSubmitted), history[2].OldValue)
	assert.Equal(t, string(domain.RequestStatusApproved), history[2].NewValue)
}

func TestRequestCommentsAndVisibility(t *testing.T) {
	svc, _, from, to, operator := newRequestFixture(t)
	cr := createDraft(t, svc, from, to, operator)

	_, err := svc.AddComment(context.Background(), cr.ID, CommentInput{
		OperatorID: operator.ID,
		Comment:    "Please attach the treaty draft",
	})
	require.NoError(t, err)
	_, err = svc.AddComment(context.Background(), cr.ID, CommentInput{
		OperatorID: operator.ID,
		Comment:    "Legal has concerns, keep internal",
		IsInternal: true,
	})
	require.NoError(t, err)

	detail, err := svc.Get(context.Background(), cr.ID, false)
	require.NoError(t, err)
	assert.Len(t, detail.Comments, 1)

	detail, err = svc.Get(context.Background(), cr.ID, true)
	require.NoError(t, err)
	assert.Len(t, detail.Comments, 2)
}

func TestRequestAssignRecordsHistory(t *testing.T) {
	svc, store, from, to, operator := newRequestFixture(t)
	cr := createDraft(t, svc, from, to, operator)
	assignee := store.addOperator("patel", &to.ID)

	cr, err := svc.Assign(context.Background(), cr.ID, &assignee.ID, operator.ID)
	require.NoError(t, err)
	require.NotNil(t, cr.AssignedTo)
	assert.Equal(t, assignee.ID, *cr.AssignedTo)

	history, err := store.Repos().RequestHistory.ListByRequest(context.Background(), cr.ID, true)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.ActionAssigned, history[1].Action)
	assert.Equal(t, "assigned_to", history[1].FieldChanged)
	assert.Equal(t, assignee.ID, history[1].NewValue)
}

func TestRequestGetByNumber(t *testing.T) {
	svc, _, from, to, operator := newRequestFixture(t)
	cr := createDraft(t, svc, from, to, operator)

	detail, err := svc.GetByNumber(context.Background(), cr.RequestNumber, false)
	require.NoError(t, err)
	assert.Equal(t, cr.ID, detail.Request.ID)
}
