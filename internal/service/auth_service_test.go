package service

import (
	"fmt"
	"testing"

	"hypermarket-pos/internal/model"
	"hypermarket-pos/internal/repository"
	"hypermarket-pos/internal/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type authFixture struct {
	db      *gorm.DB
	service AuthService
	branch  model.Branch
	user    model.User
}

func setupAuth(t *testing.T) *authFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Branch{}, &model.User{}, &model.Privilege{}, &model.Role{},
	))

	branch := model.Branch{Name: "North Store"}
	require.NoError(t, db.Create(&branch).Error)

	operate := model.Privilege{Code: "checkout:operate", Name: "Operate Checkout"}
	require.NoError(t, db.Create(&operate).Error)

	role := model.Role{Code: model.RoleCashier, Name: "Cashier"}
	require.NoError(t, db.Create(&role).Error)

	user := model.User{
		Email:      "jane@example.com",
		FullName:   "Jane Cashier",
		RoleID:     &role.ID,
		BranchID:   &branch.ID,
		IsActive:   true,
		Privileges: []model.Privilege{operate},
	}
	require.NoError(t, user.SetPassword("secret123"))
	require.NoError(t, db.Create(&user).Error)

	hub := ws.NewHub()
	go hub.Run()

	return &authFixture{
		db:      db,
		service: NewAuthService(repository.NewUserRepo(db), hub),
		branch:  branch,
		user:    user,
	}
}

func TestLoginReturnsBranchAssignment(t *testing.T) {
	f := setupAuth(t)

	resp, err := f.service.Login("jane@example.com", "secret123")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Contains(t, resp.Privileges, "checkout:operate")
	require.NotNil(t, resp.Branch)
	assert.Equal(t, "North Store", resp.Branch.Name)
	require.NotNil(t, resp.User.BranchID)
	assert.Equal(t, f.branch.ID, *resp.User.BranchID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := setupAuth(t)

	_, err := f.service.Login("jane@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.service.Login("nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	f := setupAuth(t)
	require.NoError(t, f.db.Model(&model.User{}).
		Where("id = ?", f.user.ID).
		Update("is_active", false).Error)

	_, err := f.service.Login("jane@example.com", "secret123")
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestSecondLoginInvalidatesFirstSession(t *testing.T) {
	f := setupAuth(t)

	first, err := f.service.Login("jane@example.com", "secret123")
	require.NoError(t, err)
	second, err := f.service.Login("jane@example.com", "secret123")
	require.NoError(t, err)

	// Single session: only the latest token survives validation
	_, err = f.service.ValidateToken(first.Token)
	assert.Error(t, err)

	validated, err := f.service.ValidateToken(second.Token)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", validated.User.Email)
	require.NotNil(t, validated.Branch)
	assert.Equal(t, "North Store", validated.Branch.Name)
}

func TestResetPassword(t *testing.T) {
	f := setupAuth(t)

	err := f.service.ResetPassword("jane@example.com", "wrong", "newpass123")
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = f.service.ResetPassword("nobody@example.com", "secret123", "newpass123")
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, f.service.ResetPassword("jane@example.com", "secret123", "newpass123"))

	_, err = f.service.Login("jane@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.service.Login("jane@example.com", "newpass123")
	assert.NoError(t, err)
}
