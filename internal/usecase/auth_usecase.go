package usecase

import (
	"context"
	"strconv"
	"strings"

	"clinic-scheduling/internal/converter"
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/domain/repository"
	"clinic-scheduling/internal/infrastructure/cache"
	"clinic-scheduling/internal/infrastructure/database"
	"clinic-scheduling/internal/service"
	"clinic-scheduling/pkg/jwt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthUsecase interface {
	RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.SessionResponse, error)
	PatientLogin(ctx context.Context, req *dto.PatientLoginRequest) (*dto.TokenResponse, error)
	AdminLogin(ctx context.Context, req *dto.AdminLoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
}

type authUsecase struct {
	tx                database.Transactor
	log               *logrus.Logger
	patientRepo       repository.PatientRepository
	auditService      service.AuditService
	jwtService        *jwt.JWTService
	tokenStore        cache.TokenStore
	adminPasswordHash []byte
}

// NewAuthUsecase expects the bcrypt hash of the configured admin password.
func NewAuthUsecase(
	tx database.Transactor,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	auditService service.AuditService,
	jwtService *jwt.JWTService,
	tokenStore cache.TokenStore,
	adminPasswordHash []byte,
) AuthUsecase {
	return &authUsecase{
		tx:                tx,
		log:               log,
		patientRepo:       patientRepo,
		auditService:      auditService,
		jwtService:        jwtService,
		tokenStore:        tokenStore,
		adminPasswordHash: adminPasswordHash,
	}
}

func (u *authUsecase) RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.SessionResponse, error) {
	patient := &entity.Patient{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   strings.TrimSpace(req.Phone),
		Age:     req.Age,
		Gender:  req.Gender,
		Address: strings.TrimSpace(req.Address),
	}
	if err := validatePatient(patient); err != nil {
		return nil, err
	}

	err := u.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		if err := u.patientRepo.Create(tx, patient); err != nil {
			if isDuplicateKeyError(err, "email") {
				return ErrPatientEmailExists
			}
			u.log.Warnf("Failed to create patient: %+v", err)
			return storageError("create patient", err)
		}

		if err := u.auditService.LogCreate(ctx, tx, entity.PatientActor(patient.ID), entity.AuditActionPatientRegister,
			entity.AuditEntityPatient, patient.ID, converter.PatientToResponse(patient)); err != nil {
			return storageError("write audit log", err)
		}
		return nil
	})
	if err != nil {
		return nil, txError(u.log, "register patient", err)
	}

	token, err := u.issue(ctx, jwt.RolePatient, strconv.FormatInt(patient.ID, 10), patient.ID, patient.Email)
	if err != nil {
		return nil, err
	}

	return &dto.SessionResponse{
		Patient: *converter.PatientToResponse(patient),
		Token:   *token,
	}, nil
}

// PatientLogin opens a session for an existing patient identified by email.
func (u *authUsecase) PatientLogin(ctx context.Context, req *dto.PatientLoginRequest) (*dto.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	patient, err := u.patientRepo.FindByEmail(u.tx.Conn(ctx), email)
	if err != nil {
		u.log.Warnf("Failed to find patient by email: %+v", err)
		return nil, storageError("find patient", err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	token, err := u.issue(ctx, jwt.RolePatient, strconv.FormatInt(patient.ID, 10), patient.ID, patient.Email)
	if err != nil {
		return nil, err
	}

	u.audit(ctx, entity.PatientActor(patient.ID), entity.AuditActionPatientLogin)
	return token, nil
}

func (u *authUsecase) AdminLogin(ctx context.Context, req *dto.AdminLoginRequest) (*dto.TokenResponse, error) {
	if err := bcrypt.CompareHashAndPassword(u.adminPasswordHash, []byte(req.Password)); err != nil {
		u.log.Warn("Rejected admin login attempt")
		return nil, ErrInvalidCredentials
	}

	token, err := u.issue(ctx, jwt.RoleAdmin, string(jwt.RoleAdmin), 0, "")
	if err != nil {
		return nil, err
	}

	u.audit(ctx, entity.AuditActorAdmin, entity.AuditActionAdminLogin)
	return token, nil
}

func (u *authUsecase) Logout(ctx context.Context, claims *jwt.Claims) error {
	if err := u.tokenStore.Revoke(ctx, claims.Owner(), claims.TokenID); err != nil {
		u.log.Warnf("Failed to revoke access token: %+v", err)
		return storageError("revoke token", err)
	}

	actor := entity.AuditActorAdmin
	if claims.Role == jwt.RolePatient {
		actor = entity.PatientActor(claims.PatientID)
	}
	u.audit(ctx, actor, entity.AuditActionLogout)
	return nil
}

func (u *authUsecase) issue(ctx context.Context, role jwt.Role, subject string, patientID int64, email string) (*dto.TokenResponse, error) {
	accessToken, tokenID, err := u.jwtService.GenerateAccessToken(role, subject, patientID, email)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.Store(ctx, subject, tokenID, u.jwtService.GetAccessExpiry()); err != nil {
		u.log.Warnf("Failed to store access token in Redis: %+v", err)
		return nil, storageError("store token", err)
	}

	return &dto.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(u.jwtService.GetAccessExpiry().Seconds()),
		Role:        string(role),
	}, nil
}

// audit records session events outside any transaction; a failure here does
// not undo the login.
func (u *authUsecase) audit(ctx context.Context, actor, action string) {
	if err := u.auditService.LogEvent(ctx, u.tx.Conn(ctx), actor, action, nil); err != nil {
		u.log.Warnf("Failed to audit %s for %s: %+v", action, actor, err)
	}
}
