package seed

import (
	"context"
	"fmt"
	"strings"

	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/domain/repository"
	"clinic-scheduling/internal/infrastructure/database"
	"clinic-scheduling/internal/service"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var Specializations = []string{
	"Cardiology",
	"Dermatology",
	"General Practice",
	"Neurology",
	"Orthopedics",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
}

type Result struct {
	Doctors  int
	Patients int
}

// Seeder fills an empty database with demo doctors and patients.
type Seeder struct {
	tx           database.Transactor
	log          *logrus.Logger
	patientRepo  repository.PatientRepository
	doctorRepo   repository.DoctorRepository
	auditService service.AuditService
	faker        *gofakeit.Faker
}

func NewSeeder(
	tx database.Transactor,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	auditService service.AuditService,
	seed uint64,
) *Seeder {
	return &Seeder{
		tx:           tx,
		log:          log,
		patientRepo:  patientRepo,
		doctorRepo:   doctorRepo,
		auditService: auditService,
		faker:        gofakeit.New(seed),
	}
}

// Run creates the doctors and patients in one transaction. Every
// specialization gets at least one doctor when doctors >= len(Specializations).
func (s *Seeder) Run(ctx context.Context, doctors, patients int) (*Result, error) {
	result := &Result{}

	err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		for i := 0; i < doctors; i++ {
			doctor := &entity.Doctor{
				Name:           "Dr. " + s.faker.Name(),
				Specialization: Specializations[i%len(Specializations)],
				Email:          s.email("dr", i),
				Phone:          s.faker.Phone(),
				Qualification:  "MD",
				Experience:     s.faker.Number(1, 35),
				Available:      true,
			}
			if err := s.doctorRepo.Create(tx, doctor); err != nil {
				return fmt.Errorf("create doctor: %w", err)
			}
			if err := s.auditService.LogCreate(ctx, tx, entity.AuditActorSystem, entity.AuditActionDoctorCreate,
				entity.AuditEntityDoctor, doctor.ID, map[string]string{"specialization": doctor.Specialization}); err != nil {
				return fmt.Errorf("audit doctor: %w", err)
			}
			result.Doctors++
		}

		for i := 0; i < patients; i++ {
			patient := &entity.Patient{
				Name:    s.faker.Name(),
				Email:   s.email("patient", i),
				Phone:   s.faker.Phone(),
				Age:     s.faker.Number(1, 95),
				Gender:  s.faker.RandomString([]string{entity.GenderMale, entity.GenderFemale}),
				Address: s.faker.Street() + ", " + s.faker.City(),
			}
			if err := s.patientRepo.Create(tx, patient); err != nil {
				return fmt.Errorf("create patient: %w", err)
			}
			if err := s.auditService.LogCreate(ctx, tx, entity.AuditActorSystem, entity.AuditActionPatientRegister,
				entity.AuditEntityPatient, patient.ID, map[string]string{"email": patient.Email}); err != nil {
				return fmt.Errorf("audit patient: %w", err)
			}
			result.Patients++
		}
		return nil
	})
	if err != nil {
		s.log.Warnf("Failed to seed database: %+v", err)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"doctors":  result.Doctors,
		"patients": result.Patients,
	}).Info("Database seeded")
	return result, nil
}

// email keeps generated addresses unique across runs of the same seed.
func (s *Seeder) email(prefix string, i int) string {
	return fmt.Sprintf("%s.%s.%d@example.com", prefix, strings.ToLower(s.faker.Username()), i)
}
