package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/MoNabawy-2003/al-safaa-hospital/internal/model"
	"github.com/MoNabawy-2003/al-safaa-hospital/internal/repository"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/auth"
	apperrors "github.com/MoNabawy-2003/al-safaa-hospital/pkg/errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrNoDoctorAvailable  = errors.New("no doctor available for assignment")
)

const bcryptCost = 12

type Service struct {
	users  repository.UserRepository
	jwtSvc auth.JWTService
	logger *zerolog.Logger
}

func NewService(users repository.UserRepository, jwtSvc auth.JWTService, logger *zerolog.Logger) *Service {
	return &Service{
		users:  users,
		jwtSvc: jwtSvc,
		logger: logger,
	}
}

// Register creates a patient account and assigns it to the doctor with the
// smallest roster.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	_, err := s.users.GetByUsername(ctx, req.Username)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	doctor, err := s.pickDoctor(ctx)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	patient := &model.User{
		ID:               uuid.New(),
		Name:             req.Name,
		Username:         req.Username,
		PasswordHash:     string(hash),
		Role:             model.RolePatient,
		Age:              req.Age,
		Gender:           req.Gender,
		CaseType:         req.CaseType,
		AssignedDoctorID: doctor.ID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.users.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	doctor.PatientIDs = append(doctor.PatientIDs, patient.ID)
	doctor.UpdatedAt = now
	if err := s.users.Update(ctx, doctor); err != nil {
		// The account exists; a roster update failure is logged, not fatal.
		s.logger.Error().Err(err).
			Str("doctor_id", doctor.ID.String()).
			Str("patient_id", patient.ID.String()).
			Msg("failed to add patient to doctor roster")
	}

	s.logger.Info().
		Str("patient_id", patient.ID.String()).
		Str("doctor_id", doctor.ID.String()).
		Msg("patient registered")

	return patient.Sanitized(), nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*model.TokenResponse, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwtSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &model.TokenResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        user.Sanitized(),
	}, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// GetDoctorPatients returns the sanitized roster of one doctor.
func (s *Service) GetDoctorPatients(ctx context.Context, doctorID uuid.UUID) ([]*model.User, error) {
	doctor, err := s.users.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if doctor.Role != model.RoleDoctor {
		return nil, apperrors.NotFound("doctor", nil)
	}

	roster := make(map[uuid.UUID]bool, len(doctor.PatientIDs))
	for _, id := range doctor.PatientIDs {
		roster[id] = true
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	patients := []*model.User{}
	for _, u := range users {
		if roster[u.ID] {
			patients = append(patients, u.Sanitized())
		}
	}
	return patients, nil
}

// pickDoctor chooses the doctor with the fewest assigned patients.
func (s *Service) pickDoctor(ctx context.Context) (*model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var best *model.User
	for _, u := range users {
		if u.Role != model.RoleDoctor {
			continue
		}
		if best == nil || len(u.PatientIDs) < len(best.PatientIDs) {
			best = u
		}
	}
	if best == nil {
		return nil, ErrNoDoctorAvailable
	}
	return best, nil
}
