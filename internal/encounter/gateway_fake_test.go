package encounter

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

var _ Gateway = (*fakeGateway)(nil)

// fakeGateway records writes and lets tests replace any call.
type fakeGateway struct {
	mu sync.Mutex

	ListPatientsFunc       func(ctx context.Context) ([]PatientRef, error)
	ListDentistsFunc       func(ctx context.Context) ([]DentistRef, error)
	ListTreatmentsFunc     func(ctx context.Context) ([]CatalogItem, error)
	CreateAppointmentFunc  func(ctx context.Context, a NewAppointment) (uint64, error)
	CreatePaymentFunc      func(ctx context.Context, p NewPayment) error
	CreateHistoryEntryFunc func(ctx context.Context, h NewHistoryEntry) error
	GetAppointmentFunc     func(ctx context.Context, id uint64) (AppointmentRef, error)

	appointments []NewAppointment
	payments     []NewPayment
	history      []NewHistoryEntry
	catalogLoads int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		ListTreatmentsFunc: func(context.Context) ([]CatalogItem, error) {
			return []CatalogItem{
				{Name: "Cleaning", DefaultFee: decimal.RequireFromString("500")},
				{Name: "Fluoride", DefaultFee: decimal.RequireFromString("300")},
				{Name: "Extraction", DefaultFee: decimal.RequireFromString("1200.50")},
			}, nil
		},
	}
}

func (f *fakeGateway) ListPatients(ctx context.Context) ([]PatientRef, error) {
	if f.ListPatientsFunc != nil {
		return f.ListPatientsFunc(ctx)
	}
	return []PatientRef{{ID: 7, FirstName: "Maria", LastName: "Santos"}}, nil
}

func (f *fakeGateway) ListDentists(ctx context.Context) ([]DentistRef, error) {
	if f.ListDentistsFunc != nil {
		return f.ListDentistsFunc(ctx)
	}
	return []DentistRef{{ID: 3, DisplayName: "Dr. Reyes"}}, nil
}

func (f *fakeGateway) ListTreatments(ctx context.Context) ([]CatalogItem, error) {
	f.mu.Lock()
	f.catalogLoads++
	f.mu.Unlock()
	if f.ListTreatmentsFunc != nil {
		return f.ListTreatmentsFunc(ctx)
	}
	return nil, nil
}

func (f *fakeGateway) CreateAppointment(ctx context.Context, a NewAppointment) (uint64, error) {
	if f.CreateAppointmentFunc != nil {
		return f.CreateAppointmentFunc(ctx, a)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appointments = append(f.appointments, a)
	return uint64(100 + len(f.appointments)), nil
}

func (f *fakeGateway) CreatePayment(ctx context.Context, p NewPayment) error {
	if f.CreatePaymentFunc != nil {
		return f.CreatePaymentFunc(ctx, p)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments = append(f.payments, p)
	return nil
}

func (f *fakeGateway) CreateHistoryEntry(ctx context.Context, h NewHistoryEntry) error {
	if f.CreateHistoryEntryFunc != nil {
		return f.CreateHistoryEntryFunc(ctx, h)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, h)
	return nil
}

func (f *fakeGateway) GetAppointment(ctx context.Context, id uint64) (AppointmentRef, error) {
	if f.GetAppointmentFunc != nil {
		return f.GetAppointmentFunc(ctx, id)
	}
	return AppointmentRef{}, errors.New("not found")
}
