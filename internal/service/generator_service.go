package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tsystem/tracker/internal/domain"
	"github.com/tsystem/tracker/internal/random"
	"github.com/tsystem/tracker/pkg/errorutil"
)

// GeneratorService seeds the database with fake data for demos and load
// testing. It drives the real services rather than writing rows directly,
// so ownership rules hold and every ticket gets its history baseline.
type GeneratorService struct {
	auth     *AuthService
	projects *ProjectService
	tickets  *TicketService
	comments *CommentService
	rand     random.Rand
}

// NewGeneratorService constructs the service.
func NewGeneratorService(auth *AuthService, projects *ProjectService, tickets *TicketService, comments *CommentService, rand random.Rand) *GeneratorService {
	return &GeneratorService{
		auth:     auth,
		projects: projects,
		tickets:  tickets,
		comments: comments,
		rand:     rand,
	}
}

// GenerateInput sizes the generated fixture.
type GenerateInput struct {
	Users          int
	Projects       int
	TicketsPerUser int
}

// GenerateSummary reports how much was created.
type GenerateSummary struct {
	Users    int `json:"users"`
	Projects int `json:"projects"`
	Tickets  int `json:"tickets"`
	Comments int `json:"comments"`
}

var (
	firstNames = []string{"Alice", "Boris", "Clara", "Dmitri", "Elena", "Felix", "Greta", "Henrik", "Irina", "Jonas"}
	lastNames  = []string{"Keller", "Larsen", "Meier", "Novak", "Olsen", "Petrov", "Quint", "Richter", "Sokolov", "Tamm"}
	industries = []string{"Logistics", "Billing", "Analytics", "Onboarding", "Inventory", "Search", "Payments", "Reporting"}
	buzzwords  = []string{"Streamline", "Refactor", "Stabilize", "Migrate", "Automate", "Harden", "Optimize", "Decouple"}
	nouns      = []string{"pipeline", "importer", "scheduler", "dashboard", "gateway", "resolver", "exporter", "webhook"}
)

var ticketTypes = []domain.TicketType{domain.TicketTypeBug, domain.TicketTypeTask, domain.TicketTypeFeature}

var ticketPriorities = []domain.TicketPriority{domain.TicketPriorityLow, domain.TicketPriorityMed, domain.TicketPriorityHigh}

// Generate creates users (the first one owns everything), projects for
// the owner, tickets per user per project assigned to random non-owner
// users, and one comment per ticket.
func (g *GeneratorService) Generate(ctx context.Context, input GenerateInput) (*GenerateSummary, error) {
	if input.Users < 2 {
		return nil, errorutil.NewValidationError("users", "at least 2 users required: project owner plus assignees")
	}
	if input.Projects < 1 || input.TicketsPerUser < 1 {
		return nil, errorutil.NewValidationError("projects", "projects and tickets_per_user must be positive")
	}

	summary := &GenerateSummary{}

	users := make([]*domain.User, 0, input.Users)
	for i := 0; i < input.Users; i++ {
		user, err := g.createUser(ctx)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
		summary.Users++
	}

	owner := users[0]
	ownerPrincipal := domain.Principal{UserID: owner.ID, Username: owner.Username, Role: owner.Role}
	assignees := users[1:]

	for i := 0; i < input.Projects; i++ {
		project, err := g.projects.Create(ctx, ProjectCreateInput{
			Name:        "Project " + g.pick(industries),
			Description: fmt.Sprintf("Generated workspace for the %s team.", g.pick(industries)),
		}, ownerPrincipal)
		if err != nil {
			return nil, err
		}
		summary.Projects++

		for range users {
			for j := 0; j < input.TicketsPerUser; j++ {
				assignee := assignees[g.rand.Intn(len(assignees))]
				ticket, err := g.tickets.Create(ctx, project.ID, TicketCreateInput{
					Name:        g.pick(buzzwords) + " " + g.pick(nouns),
					Description: fmt.Sprintf("Auto-generated %s work item.", g.pick(nouns)),
					Type:        ticketTypes[g.rand.Intn(len(ticketTypes))],
					Priority:    ticketPriorities[g.rand.Intn(len(ticketPriorities))],
					State:       domain.TicketStateOpen,
					AssigneeID:  &assignee.ID,
				}, ownerPrincipal)
				if err != nil {
					return nil, err
				}
				summary.Tickets++

				if _, err := g.comments.Add(ctx, project.ID, ticket.ID,
					fmt.Sprintf("Kicking off the %s work.", g.pick(nouns)), ownerPrincipal); err != nil {
					return nil, err
				}
				summary.Comments++
			}
		}
	}
	return summary, nil
}

func (g *GeneratorService) createUser(ctx context.Context) (*domain.User, error) {
	first := g.pick(firstNames)
	last := g.pick(lastNames)
	handle := strings.ToLower(first + "." + last)
	// uuid suffix keeps usernames unique without retry loops
	suffix := uuid.NewString()[:8]
	user, _, _, err := g.auth.Register(ctx, RegisterInput{
		Username: fmt.Sprintf("%s.%s", handle, suffix),
		Email:    fmt.Sprintf("%s.%s@example.com", handle, suffix),
		Name:     first,
		Surname:  last,
		Password: "password",
	})
	return user, err
}

func (g *GeneratorService) pick(values []string) string {
	return values[g.rand.Intn(len(values))]
}
