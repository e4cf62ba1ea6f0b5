package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MoNabawy-2003/al-safaa-hospital/internal/model"
	apperrors "github.com/MoNabawy-2003/al-safaa-hospital/pkg/errors"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*model.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	c := *user
	f.users[user.ID] = &c
	return nil
}

func (f *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, apperrors.NotFound("user", nil)
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, apperrors.NotFound("user", nil)
}

func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return apperrors.NotFound("user", nil)
	}
	c := *user
	f.users[user.ID] = &c
	return nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]*model.User, error) {
	out := make([]*model.User, 0, len(f.users))
	for _, u := range f.users {
		c := *u
		out = append(out, &c)
	}
	return out, nil
}

type fakeJWT struct{}

func (fakeJWT) GenerateAccessToken(user *model.User) (string, time.Time, error) {
	return "token-" + user.ID.String(), time.Now().Add(time.Hour), nil
}

func (fakeJWT) ValidateToken(token string) (*model.TokenClaims, error) {
	return nil, nil
}

func addDoctor(repo *fakeUserRepo, name string, patients int) *model.User {
	doc := &model.User{
		ID:             uuid.New(),
		Name:           name,
		Username:       name,
		Role:           model.RoleDoctor,
		Specialization: "Cardiology",
	}
	for i := 0; i < patients; i++ {
		doc.PatientIDs = append(doc.PatientIDs, uuid.New())
	}
	repo.users[doc.ID] = doc
	return doc
}

func registerReq(username string) *model.RegisterRequest {
	return &model.RegisterRequest{
		Name:     "John Doe",
		Username: username,
		Password: "password123",
		Age:      45,
		Gender:   model.GenderMale,
		CaseType: model.CaseTypeCardiology,
	}
}

func newTestService(repo *fakeUserRepo) *Service {
	logger := zerolog.Nop()
	return NewService(repo, fakeJWT{}, &logger)
}

func TestRegister(t *testing.T) {
	repo := newFakeUserRepo()
	busy := addDoctor(repo, "dr-busy", 3)
	idle := addDoctor(repo, "dr-idle", 1)
	svc := newTestService(repo)

	user, err := svc.Register(context.Background(), registerReq("jdoe"))
	require.NoError(t, err)

	assert.Equal(t, model.RolePatient, user.Role)
	assert.Empty(t, user.PasswordHash, "responses never carry the hash")
	assert.Equal(t, idle.ID, user.AssignedDoctorID, "least loaded doctor gets the patient")

	stored := repo.users[user.ID]
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")))

	// Roster updated.
	assert.Contains(t, repo.users[idle.ID].PatientIDs, user.ID)
	assert.NotContains(t, repo.users[busy.ID].PatientIDs, user.ID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := newFakeUserRepo()
	addDoctor(repo, "dr", 0)
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), registerReq("jdoe"))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerReq("jdoe"))
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegisterWithoutDoctors(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), registerReq("jdoe"))
	assert.ErrorIs(t, err, ErrNoDoctorAvailable)
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	addDoctor(repo, "dr", 0)
	svc := newTestService(repo)
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerReq("jdoe"))
	require.NoError(t, err)

	tokens, err := svc.Login(ctx, "jdoe", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.Equal(t, registered.ID, tokens.User.ID)
	assert.Empty(t, tokens.User.PasswordHash)

	_, err = svc.Login(ctx, "jdoe", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetDoctorPatients(t *testing.T) {
	repo := newFakeUserRepo()
	doctor := addDoctor(repo, "dr", 0)
	svc := newTestService(repo)
	ctx := context.Background()

	first, err := svc.Register(ctx, registerReq("p1"))
	require.NoError(t, err)
	second, err := svc.Register(ctx, registerReq("p2"))
	require.NoError(t, err)

	patients, err := svc.GetDoctorPatients(ctx, doctor.ID)
	require.NoError(t, err)
	require.Len(t, patients, 2)

	ids := []uuid.UUID{patients[0].ID, patients[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
	for _, p := range patients {
		assert.Empty(t, p.PasswordHash)
	}

	// A patient id is not a doctor.
	_, err = svc.GetDoctorPatients(ctx, first.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
