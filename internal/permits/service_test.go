package permits

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agriportal/agriportal-backend/internal/mailer"
	"github.com/agriportal/agriportal-backend/pkg/db/models"
	"github.com/agriportal/agriportal-backend/pkg/enums"
	pkgerrors "github.com/agriportal/agriportal-backend/pkg/errors"
)

type stubRepo struct {
	rows    map[uuid.UUID]models.Permit
	updates int
}

func newStubRepo(permits ...models.Permit) *stubRepo {
	r := &stubRepo{rows: map[uuid.UUID]models.Permit{}}
	for _, p := range permits {
		r.rows[p.ID] = p
	}
	return r
}

func (s *stubRepo) Create(ctx context.Context, permit *models.Permit) (*models.Permit, error) {
	permit.ID = uuid.New()
	s.rows[permit.ID] = *permit
	return permit, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Permit, error) {
	p, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (s *stubRepo) List(ctx context.Context, q listQuery) ([]models.Permit, error) {
	return nil, nil
}

func (s *stubRepo) UpdateStatus(ctx context.Context, id uuid.UUID, expected, target enums.ApplicationStatus) (bool, error) {
	p := s.rows[id]
	if p.Status != expected {
		return false, nil
	}
	p.Status = target
	s.rows[id] = p
	s.updates++
	return true, nil
}

type stubMailer struct {
	calls  []models.Permit
	result mailer.Result
}

func (s *stubMailer) SendPermitDecision(ctx context.Context, p models.Permit) mailer.Result {
	s.calls = append(s.calls, p)
	return s.result
}

func validInput() SubmitInput {
	return SubmitInput{
		PermitType:        "transport",
		ApplicantName:     "Juan Dela Cruz",
		Email:             "Juan@Example.com",
		Address:           "Brgy. Poblacion",
		Municipality:      "santa cruz",
		NumberOfTrees:     3,
		VolumeCubicMeters: decimal.RequireFromString("2.5"),
		Destination:       "Lucena City",
	}
}

func pendingPermit() models.Permit {
	return models.Permit{
		ID:            uuid.New(),
		PermitType:    enums.PermitTypeCut,
		ApplicantName: "Juan Dela Cruz",
		Email:         "juan@example.com",
		Municipality:  enums.MunicipalityBoac,
		NumberOfTrees: 2,
		Status:        enums.ApplicationStatusPending,
	}
}

func TestSubmitNormalizesInput(t *testing.T) {
	repo := newStubRepo()
	svc, err := NewService(repo, &stubMailer{}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.Submit(context.Background(), validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.Municipality != string(enums.MunicipalitySantaCruz) {
		t.Fatalf("expected canonical municipality, got %q", dto.Municipality)
	}
	if dto.Email != "juan@example.com" || dto.Status != string(enums.ApplicationStatusPending) {
		t.Fatalf("unexpected permit %+v", dto)
	}
}

func TestSubmitValidation(t *testing.T) {
	svc, _ := NewService(newStubRepo(), &stubMailer{}, nil)
	cases := map[string]func(*SubmitInput){
		"unknown type":          func(in *SubmitInput) { in.PermitType = "burn" },
		"missing name":          func(in *SubmitInput) { in.ApplicantName = " " },
		"bad email":             func(in *SubmitInput) { in.Email = "nope" },
		"unknown municipality":  func(in *SubmitInput) { in.Municipality = "Manila" },
		"zero trees":            func(in *SubmitInput) { in.NumberOfTrees = 0 },
		"zero volume":           func(in *SubmitInput) { in.VolumeCubicMeters = decimal.Zero },
		"transport without dst": func(in *SubmitInput) { in.Destination = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			input := validInput()
			mutate(&input)
			_, err := svc.Submit(context.Background(), input)
			if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUpdateStatusSendsDecisionMail(t *testing.T) {
	permit := pendingPermit()
	repo := newStubRepo(permit)
	mail := &stubMailer{result: mailer.Result{Sent: true}}
	svc, _ := NewService(repo, mail, nil)

	res, err := svc.UpdateStatus(context.Background(), permit.ID, "Approved")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Changed || !res.EmailSent {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(mail.calls) != 1 || mail.calls[0].Status != enums.ApplicationStatusApproved {
		t.Fatalf("expected one approved mail, got %+v", mail.calls)
	}
}

func TestUpdateStatusMailFailureDoesNotFail(t *testing.T) {
	permit := pendingPermit()
	repo := newStubRepo(permit)
	mail := &stubMailer{result: mailer.Result{Err: errors.New("smtp down")}}
	svc, _ := NewService(repo, mail, nil)

	res, err := svc.UpdateStatus(context.Background(), permit.ID, "Rejected")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.EmailSent {
		t.Fatal("expected email_sent=false")
	}
	if repo.rows[permit.ID].Status != enums.ApplicationStatusRejected {
		t.Fatal("status should persist despite mail failure")
	}
}

func TestUpdateStatusPendingAndNoop(t *testing.T) {
	permit := pendingPermit()
	permit.Status = enums.ApplicationStatusApproved
	repo := newStubRepo(permit)
	mail := &stubMailer{}
	svc, _ := NewService(repo, mail, nil)

	if _, err := svc.UpdateStatus(context.Background(), permit.ID, "Approved"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.updates != 0 || len(mail.calls) != 0 {
		t.Fatal("same status must not write or mail")
	}

	res, err := svc.UpdateStatus(context.Background(), permit.ID, "Pending")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Changed || len(mail.calls) != 0 {
		t.Fatalf("revert to pending writes without mail, got %+v calls=%d", res, len(mail.calls))
	}
}

func TestUpdateStatusInvalid(t *testing.T) {
	permit := pendingPermit()
	repo := newStubRepo(permit)
	svc, _ := NewService(repo, &stubMailer{}, nil)

	_, err := svc.UpdateStatus(context.Background(), permit.ID, "approved!")
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.updates != 0 {
		t.Fatal("invalid status must not write")
	}

	_, err = svc.UpdateStatus(context.Background(), uuid.New(), "Approved")
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
