package assignment

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core"
)

var (
	// errors
	ErrNotFound = errors.New("assignment not found")
)

type (
	Repository interface {
		GetAssignmentByID(ctx context.Context, id uuid.UUID) (Assignment, error)
		// FindAssignment locates the unique record matching the ownership triple
		// and type; ErrNotFound when absent.
		FindAssignment(ctx context.Context, classID, subject string, typ Type, dueDate time.Time) (Assignment, error)
		// FilterAssignments applies AND operation on available QueryFilter fields.
		FilterAssignments(ctx context.Context, filter QueryFilter) ([]Assignment, error)
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		UpdateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		DeleteAssignment(ctx context.Context, id uuid.UUID) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		logger  core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, logger: logger}
}

func (svc *Service) Get(ctx context.Context, id uuid.UUID) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Assignment, error) {
	filter.Clean()
	return svc.repo.FilterAssignments(ctx, filter)
}

func (svc *Service) Create(ctx context.Context, na NewAssignment) (Assignment, error) {
	now := time.Now().UTC()
	a := Assignment{
		ID:          uuid.New(),
		ClassID:     na.ClassID,
		Subject:     na.Subject,
		Type:        na.Type,
		Description: na.Description,
		DueDate:     core.DateOf(na.DueDate),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateAssignment(ctx, a)
}

func (svc *Service) Update(ctx context.Context, a Assignment) (Assignment, error) {
	a.DueDate = core.DateOf(a.DueDate)
	a.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAssignment(ctx, a)
}

func (svc *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return svc.repo.DeleteAssignment(ctx, id)
}

func (svc *Service) MarkCompleted(ctx context.Context, id uuid.UUID, done bool) (Assignment, error) {
	a, err := svc.repo.GetAssignmentByID(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	a.IsCompleted = done
	return svc.Update(ctx, a)
}

func (svc *Service) MarkCorrected(ctx context.Context, id uuid.UUID, done bool) (Assignment, error) {
	a, err := svc.repo.GetAssignmentByID(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	a.IsCorrected = done
	return svc.Update(ctx, a)
}

// InterroSet mirrors a raised interro flag into a quiz record: the matching
// (class, subject, quiz, date) assignment gets its description refreshed with
// IsCorrected preserved, or is created completed if absent.
func (svc *Service) InterroSet(ctx context.Context, classID, subject string, date time.Time, description string) error {
	date = core.DateOf(date)
	description = core.CleanString(description)

	a, err := svc.repo.FindAssignment(ctx, classID, subject, TypeQuiz, date)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		now := time.Now().UTC()
		_, err = svc.repo.CreateAssignment(ctx, Assignment{
			ID:          uuid.New(),
			ClassID:     classID,
			Subject:     subject,
			Type:        TypeQuiz,
			Description: description,
			DueDate:     date,
			IsCompleted: true,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		return err
	}

	a.Description = description
	a.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateAssignment(ctx, a)
	return err
}

// InterroCleared removes the quiz record the matching raised flag created.
// Absence is fine: the link is best effort.
func (svc *Service) InterroCleared(ctx context.Context, classID, subject string, date time.Time) error {
	a, err := svc.repo.FindAssignment(ctx, classID, subject, TypeQuiz, core.DateOf(date))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return svc.repo.DeleteAssignment(ctx, a.ID)
}

// SendDueReminders emails the teacher a digest of the assignments due within
// `horizon`, skipping completed ones.
func (svc *Service) SendDueReminders(ctx context.Context, horizon time.Duration) error {
	if svc.mailSvc == nil {
		return nil
	}
	teacher := core.Conf.TeacherEmail()
	if teacher.Address == "" {
		return nil
	}

	today := core.DateOf(time.Now())
	due, err := svc.repo.FilterAssignments(ctx, QueryFilter{From: today, To: today.Add(horizon)})
	if err != nil {
		return err
	}
	pending := make([]Assignment, 0, len(due))
	for _, a := range due {
		if !a.IsCompleted {
			pending = append(pending, a)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].DueDate.Before(pending[j].DueDate) })

	var body strings.Builder
	body.WriteString("Travail à venir :\n\n")
	for _, a := range pending {
		fmt.Fprintf(&body, "- %s | %s (%s) : %s\n", a.DueDate.Format("02/01/2006"), a.Subject, a.ClassID, a.Description)
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{teacher},
		Subject: "Échéances de la semaine",
		BodyStr: body.String(),
	})
	return nil
}
