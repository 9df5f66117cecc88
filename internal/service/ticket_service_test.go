package service

import (
	"context"
	"errors"
	"testing"

	"github.com/tsystem/tracker/internal/domain"
	"github.com/tsystem/tracker/pkg/errorutil"
)

func TestTicketCreate_DefaultsAndBaselineHistory(t *testing.T) {
	f := newFixture()
	project := f.seedProject(f.owner)
	ctx := context.Background()

	ticket, err := f.ticketService.Create(ctx, project.ID, TicketCreateInput{
		Name: "Fix importer",
		Type: domain.TicketTypeBug,
	}, f.owner)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.State != domain.TicketStateOpen || ticket.Priority != domain.TicketPriorityMed {
		t.Fatalf("expected open/med defaults, got %s/%s", ticket.State, ticket.Priority)
	}
	if ticket.CreatorID != f.owner.UserID {
		t.Fatalf("creator not recorded")
	}

	entries, err := f.ticketService.History(ctx, project.ID, ticket.ID, f.owner)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 baseline entry, got %d", len(entries))
	}
	baseline := entries[0]
	if baseline.OldState != nil || baseline.OldPriority != nil || baseline.OldAssigneeID != nil {
		t.Fatalf("baseline old values must be nil: %+v", baseline)
	}
	if baseline.NewState != domain.TicketStateOpen || baseline.NewPriority != domain.TicketPriorityMed {
		t.Fatalf("baseline new values wrong: %+v", baseline)
	}
	if baseline.ChangedByID != f.owner.UserID {
		t.Fatalf("baseline actor wrong")
	}
}

func TestTicketPatch_SingleFieldSnapshotsAllTracked(t *testing.T) {
	f := newFixture()
	project := f.seedProject(f.owner)
	ticket := f.seedTicket(project.ID, TicketCreateInput{
		Name:       "Harden gateway",
		Type:       domain.TicketTypeTask,
		AssigneeID: &f.assignee.ID,
	})
	ctx := context.Background()

	state := domain.TicketStateInProgress
	updated, err := f.ticketService.Patch(ctx, project.ID, ticket.ID, TicketPatchInput{State: &state}, f.owner)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if updated.State != domain.TicketStateInProgress {
		t.Fatalf("state not applied")
	}
	if updated.Priority != domain.TicketPriorityMed || updated.AssigneeID == nil {
		t.Fatalf("untouched fields must be preserved: %+v", updated)
	}

	entries, _ := f.ticketService.History(ctx, project.ID, ticket.ID, f.owner)
	if len(entries) != 2 {
		t.Fatalf("expected baseline + 1 change, got %d", len(entries))
	}
	change := entries[1]
	if change.OldState == nil || *change.OldState != domain.TicketStateOpen || change.NewState != domain.TicketStateInProgress {
		t.Fatalf("state transition wrong: %+v", change)
	}
	// unchanged fields are still snapshotted in the same entry
	if change.OldPriority == nil || *change.OldPriority != domain.TicketPriorityMed || change.NewPriority != domain.TicketPriorityMed {
		t.Fatalf("priority snapshot wrong: %+v", change)
	}
	if change.OldAssigneeID == nil || change.NewAssigneeID == nil || *change.OldAssigneeID != *change.NewAssigneeID {
		t.Fatalf("assignee snapshot wrong: %+v", change)
	}
}

func TestTicketPatch_NoOpAppendsNothing(t *testing.T) {
	f := newFixture()
	project := f.seedProject(f.owner)
	ticket := f.seedTicket(project.ID, TicketCreateInput{Name: "Migrate webhook", Type: domain.TicketTypeTask})
	ctx := context.Background()

	state := domain.TicketStateOpen
	priority := domain.TicketPriorityMed
	if _, err := f.ticketService.Patch(ctx, project.ID, ticket.ID, TicketPatchInput{State: &state, Priority: &priority}, f.owner); err != nil {
		t.Fatalf("patch: %v", err)
	}
	// renaming alone must not touch the ledger either
	name := "Migrate webhook v2"
	if _, err := f.ticketService.Patch(ctx, project.ID, ticket.ID, TicketPatchInput{Name: &name}, f.owner); err != nil {
		t.Fatalf("rename patch: %v", err)
	}

	entries, _ := f.ticketService.History(ctx, project.ID, ticket.ID, f.owner)
	if len(entries) != 1 {
		t.Fatalf("no-op mutations must not append history, got %d entries", len(entries))
	}
	got, _ := f.ticketService.Get(ctx, project.ID, ticket.ID, f.owner)
	if got.Name != name {
		t.Fatalf("rename must still persist")
	}
}

func TestTicketReplace_OverwritesEverything(t *testing.T) {
	f := newFixture()
	project := f.seedProject(f.owner)
	ticket := f.seedTicket(project.ID, TicketCreateInput{
		Name:       "Optimize resolver",
		Type:       domain.TicketTypeFeature,
		Priority:   domain.TicketPriorityHigh,
		AssigneeID: &f.assignee.ID,
	})
	ctx := context.Background()

	updated, err := f.ticketService.Replace(ctx, project.ID, ticket.ID, TicketReplaceInput{
		Name:        "Optimize resolver properly",
		Description: "rewrite",
		Type:        domain.TicketTypeTask,
		Priority:    domain.TicketPriorityLow,
		State:       domain.TicketStateDone,
		AssigneeID:  nil,
	}, f.owner)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if updated.AssigneeID != nil {
		t.Fatalf("replace must clear an omitted assignee")
	}
	if updated.Type != domain.TicketTypeTask || updated.Priority != domain.TicketPriorityLow || updated.State != domain.TicketStateDone {
		t.Fatalf("replace did not overwrite: %+v", updated)
	}

	entries, _ := f.ticketService.History(ctx, project.ID, ticket.ID, f.owner)
	if len(entries) != 2 {
		t.Fatalf("expected baseline + 1 change, got %d", len(entries))
	}
	change := entries[1]
	if change.OldAssigneeID == nil || change.NewAssigneeID != nil {
		t.Fatalf("assignee clearing not recorded: %+v", change)
	}
}

func TestTicketAssign(t *testing.T) {
	f := newFixture()
	project := f.seedProject(f.owner)
	ticket := f.seedTicket(project.ID, TicketCreateInput{Name: "Decouple exporter", Type: domain.TicketTypeTask})
	ctx := context.Background()

	updated, err := f.ticketService.Assign(ctx, project.ID, ticket.ID, &f.assignee.ID, f.owner)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if updated.AssigneeID == nil || *updated.AssigneeID != f.assignee.ID {
		t.Fatalf("assignment not applied")
	}

	// assigning the same user again is a no-op for the ledger
	if _, err := f.ticketService.Assign(ctx, project.ID, ticket.ID, &f.assignee.ID, f.owner); err != nil {
		t.Fatalf("re-assign: %v", err)
	}
	entries, _ := f.ticketService.History(ctx, project.ID, ticket.ID, f.owner)
	if len(entries) != 2 {
		t.Fatalf("expected baseline + 1 assignment, got %d", len(entries))
	}

	// nil clears
	cleared, err := f.ticketService.Assign(ctx, project.ID, ticket.ID, nil, f.owner)
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if cleared.AssigneeID != nil {
		t.Fatalf("unassign not applied")
	}
	entries, _ = f.ticketService.History(ctx, project.ID, ticket.ID, f.owner)
	if len(entries) != 3 {
		t.Fatalf("unassign must append, got %d entries", len(entries))
	}
}

func TestTicketAssign_UnknownUser(t *testing.T) {
	f := newFixture()
	project := f.seedProject(f.owner)
	ticket := f.seedTicket(project.ID, TicketCreateInput{Name: "Stabilize scheduler", Type: domain.TicketTypeBug})

	ghost := "user-9999"
	_, err := f.ticketService.Assign(context.Background(), project.ID, ticket.ID, &ghost, f.owner)
	wantCode(t, err, errorutil.CodeNotFound)

	entries, _ := f.ticketService.History(context.Background(), project.ID, ticket.ID, f.owner)
	if len(entries) != 1 {
		t.Fatalf("failed assign must not write history")
	}
}

func TestTicketOwnership(t *testing.T) {
	f := newFixture()
	project := f.seedProject(f.owner)
	ticket := f.seedTicket(project.ID, TicketCreateInput{Name: "Refactor pipeline", Type: domain.TicketTypeTask})
	ctx := context.Background()

	// unknown project is 404 before any ownership verdict
	_, err := f.ticketService.Get(ctx, "proj-9999", ticket.ID, f.owner)
	wantCode(t, err, errorutil.CodeNotFound)

	// someone else's project is 403
	state := domain.TicketStateDone
	_, err = f.ticketService.Patch(ctx, project.ID, ticket.ID, TicketPatchInput{State: &state}, f.stranger)
	wantCode(t, err, errorutil.CodeForbidden)

	// the forbidden attempt must leave no trace
	got, _ := f.ticketService.Get(ctx, project.ID, ticket.ID, f.owner)
	if got.State != domain.TicketStateOpen {
		t.Fatalf("forbidden patch must not mutate the ticket")
	}
	entries, _ := f.ticketService.History(ctx, project.ID, ticket.ID, f.owner)
	if len(entries) != 1 {
		t.Fatalf("forbidden patch must not write history")
	}
}

func TestTicketGet_WrongProjectIsNotFound(t *testing.T) {
	f := newFixture()
	project := f.seedProject(f.owner)
	other := f.seedProject(f.owner)
	ticket := f.seedTicket(project.ID, TicketCreateInput{Name: "Automate reporting", Type: domain.TicketTypeTask})

	_, err := f.ticketService.Get(context.Background(), other.ID, ticket.ID, f.owner)
	wantCode(t, err, errorutil.CodeNotFound)
}

func TestTicketValidation(t *testing.T) {
	f := newFixture()
	project := f.seedProject(f.owner)
	ctx := context.Background()

	cases := []struct {
		name  string
		input TicketCreateInput
	}{
		{"empty name", TicketCreateInput{Type: domain.TicketTypeBug}},
		{"blank name", TicketCreateInput{Name: "   ", Type: domain.TicketTypeBug}},
		{"bad type", TicketCreateInput{Name: "x", Type: "epic"}},
		{"bad priority", TicketCreateInput{Name: "x", Type: domain.TicketTypeBug, Priority: "urgent"}},
		{"bad state", TicketCreateInput{Name: "x", Type: domain.TicketTypeBug, State: "closed"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ticketService.Create(ctx, project.ID, tc.input, f.owner)
			wantCode(t, err, errorutil.CodeValidation)
		})
	}

	long := make([]byte, domain.TicketNameMaxLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := f.ticketService.Create(ctx, project.ID, TicketCreateInput{Name: string(long), Type: domain.TicketTypeBug}, f.owner)
	wantCode(t, err, errorutil.CodeValidation)
}

func TestTicketHistory_OrderedAscending(t *testing.T) {
	f := newFixture()
	project := f.seedProject(f.owner)
	ticket := f.seedTicket(project.ID, TicketCreateInput{Name: "Streamline billing", Type: domain.TicketTypeTask})
	ctx := context.Background()

	inProgress := domain.TicketStateInProgress
	done := domain.TicketStateDone
	high := domain.TicketPriorityHigh
	if _, err := f.ticketService.Patch(ctx, project.ID, ticket.ID, TicketPatchInput{State: &inProgress}, f.owner); err != nil {
		t.Fatalf("patch 1: %v", err)
	}
	if _, err := f.ticketService.Patch(ctx, project.ID, ticket.ID, TicketPatchInput{Priority: &high}, f.owner); err != nil {
		t.Fatalf("patch 2: %v", err)
	}
	if _, err := f.ticketService.Patch(ctx, project.ID, ticket.ID, TicketPatchInput{State: &done}, f.owner); err != nil {
		t.Fatalf("patch 3: %v", err)
	}

	entries, err := f.ticketService.History(ctx, project.ID, ticket.ID, f.owner)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	wantStates := []domain.TicketState{
		domain.TicketStateOpen,
		domain.TicketStateInProgress,
		domain.TicketStateInProgress,
		domain.TicketStateDone,
	}
	for i, entry := range entries {
		if entry.NewState != wantStates[i] {
			t.Fatalf("entry %d out of order: got %s want %s", i, entry.NewState, wantStates[i])
		}
		if i > 0 && entry.ChangedAt.Before(entries[i-1].ChangedAt) {
			t.Fatalf("entries not ascending by change time")
		}
	}
}

func TestTicketUpdate_RollsBackWhenHistoryFails(t *testing.T) {
	f := newFixture()
	project := f.seedProject(f.owner)
	ticket := f.seedTicket(project.ID, TicketCreateInput{Name: "Harden payments", Type: domain.TicketTypeBug})
	ctx := context.Background()

	f.store.failAppend = errors.New("append failed")
	state := domain.TicketStateDone
	_, err := f.ticketService.Patch(ctx, project.ID, ticket.ID, TicketPatchInput{State: &state}, f.owner)
	if err == nil {
		t.Fatalf("expected failure")
	}
	f.store.failAppend = nil

	got, _ := f.ticketService.Get(ctx, project.ID, ticket.ID, f.owner)
	if got.State != domain.TicketStateOpen {
		t.Fatalf("ticket update must roll back with the failed history append")
	}
}

func TestTicketCreate_RollsBackWhenBaselineFails(t *testing.T) {
	f := newFixture()
	project := f.seedProject(f.owner)
	ctx := context.Background()

	f.store.failAppend = errors.New("append failed")
	_, err := f.ticketService.Create(ctx, project.ID, TicketCreateInput{Name: "Doomed", Type: domain.TicketTypeBug}, f.owner)
	if err == nil {
		t.Fatalf("expected failure")
	}
	f.store.failAppend = nil

	tickets, _ := f.ticketService.List(ctx, project.ID, f.owner)
	if len(tickets) != 0 {
		t.Fatalf("ticket row must roll back with the failed baseline append")
	}
}

func TestTicketList_NewestFirst(t *testing.T) {
	f := newFixture()
	project := f.seedProject(f.owner)
	first := f.seedTicket(project.ID, TicketCreateInput{Name: "first", Type: domain.TicketTypeTask})
	second := f.seedTicket(project.ID, TicketCreateInput{Name: "second", Type: domain.TicketTypeTask})

	tickets, err := f.ticketService.List(context.Background(), project.ID, f.owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tickets) != 2 || tickets[0].ID != second.ID || tickets[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", tickets)
	}
}

func TestTicketListAssigned(t *testing.T) {
	f := newFixture()
	project := f.seedProject(f.owner)
	f.seedTicket(project.ID, TicketCreateInput{Name: "unassigned", Type: domain.TicketTypeTask})
	mine := f.seedTicket(project.ID, TicketCreateInput{Name: "mine", Type: domain.TicketTypeTask, AssigneeID: &f.assignee.ID})

	assigneePrincipal := domain.Principal{UserID: f.assignee.ID, Username: f.assignee.Username, Role: f.assignee.Role}
	tickets, err := f.ticketService.ListAssigned(context.Background(), assigneePrincipal)
	if err != nil {
		t.Fatalf("list assigned: %v", err)
	}
	if len(tickets) != 1 || tickets[0].ID != mine.ID {
		t.Fatalf("expected only the assigned ticket, got %+v", tickets)
	}
}

func TestTicketDelete_CascadesHistoryAndComments(t *testing.T) {
	f := newFixture()
	project := f.seedProject(f.owner)
	ticket := f.seedTicket(project.ID, TicketCreateInput{Name: "Short lived", Type: domain.TicketTypeTask})
	ctx := context.Background()

	if _, err := f.commentService.Add(ctx, project.ID, ticket.ID, "note", f.owner); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if err := f.ticketService.Delete(ctx, project.ID, ticket.ID, f.owner); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(f.store.history) != 0 || len(f.store.comments) != 0 {
		t.Fatalf("delete must cascade: %d history, %d comments left", len(f.store.history), len(f.store.comments))
	}
	_, err := f.ticketService.Get(ctx, project.ID, ticket.ID, f.owner)
	wantCode(t, err, errorutil.CodeNotFound)
}
