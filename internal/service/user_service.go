package service

import (
	"context"
	"time"

	"planora/internal/models"
	"planora/internal/observability"
	"planora/internal/repository"
	"planora/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// maxFailedLogins is the number of consecutive failed logins after which the
// account is locked.
const maxFailedLogins = 5

// UserService implements registration, login, and user administration.
type UserService struct {
	userRepo repository.UserRepository
}

// RegisterInput carries the fields for creating an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// CreateUserInput carries the fields an admin supplies when creating an
// account directly.
type CreateUserInput struct {
	Username    string
	Email       string
	Password    string
	Avatar      string
	Enabled     *bool
	Locked      *bool
	Authorities []string
}

// UpdateUserInput carries the admin-editable account fields. Nil fields are
// left untouched. A non-empty Password is re-hashed.
type UpdateUserInput struct {
	Username    *string
	Email       *string
	Password    *string
	Enabled     *bool
	Locked      *bool
	Avatar      *string
	Authorities []string
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register creates a new account with the default user role. Duplicate
// usernames and emails are rejected.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*UserDetail, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Username is already taken")
	}
	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Email is already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
		Enabled:  true,
		Roles:    []models.Role{{Name: models.RoleUser}},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserDetail(user), nil
}

// CreateUser creates an account on behalf of an admin. Unlike Register it
// accepts an explicit role set and enabled/locked state.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*UserDetail, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.Email != "" {
		if err := validation.ValidateEmail(in.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Username is already taken")
	}
	if in.Email != "" {
		if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, models.NewConflictError("Email is already registered")
		}
	}

	authorities := in.Authorities
	if len(authorities) == 0 {
		authorities = []string{models.RoleUser}
	}
	roles := make([]models.Role, 0, len(authorities))
	for _, name := range authorities {
		if name != models.RoleUser && name != models.RoleAdmin {
			return nil, models.NewValidationError("Unknown authority: " + name)
		}
		roles = append(roles, models.Role{Name: name})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
		Avatar:   in.Avatar,
		Enabled:  true,
		Roles:    roles,
	}
	if in.Enabled != nil {
		user.Enabled = *in.Enabled
	}
	if in.Locked != nil {
		user.Locked = *in.Locked
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserDetail(user), nil
}

// Login verifies the credentials and returns the account. Each failed
// attempt is counted; the account locks after the fifth. A successful login
// resets the counter and stamps the login time.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		observability.RecordLogin("failure")
		return nil, models.NewUnauthorizedError("Invalid username or password")
	}
	if user.Locked {
		observability.RecordLogin("locked")
		return nil, models.NewUnauthorizedError("Account is locked")
	}
	if !user.Enabled {
		observability.RecordLogin("disabled")
		return nil, models.NewUnauthorizedError("Account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= maxFailedLogins {
			user.Locked = true
		}
		if updateErr := s.userRepo.Update(ctx, user); updateErr != nil {
			return nil, updateErr
		}
		observability.RecordLogin("failure")
		if user.Locked {
			return nil, models.NewUnauthorizedError("Account is locked")
		}
		return nil, models.NewUnauthorizedError("Invalid username or password")
	}

	now := time.Now()
	user.FailedLoginAttempts = 0
	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	observability.RecordLogin("success")

	return user, nil
}

// ListUsers returns all accounts, paginated.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]UserDetail, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]UserDetail, 0, len(users))
	for i := range users {
		out = append(out, *toUserDetail(&users[i]))
	}
	return out, nil
}

// ListUserSummaries returns the compact user directory shown to any
// authenticated user, for picking assignees and participants.
func (s *UserService) ListUserSummaries(ctx context.Context, limit, offset int) ([]UserSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return toUserSummaries(users), nil
}

// GetUser returns the full account representation.
func (s *UserService) GetUser(ctx context.Context, id uint) (*UserDetail, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserDetail(user), nil
}

// UpdateUser applies admin edits to the account. Unlocking an account also
// resets its failed-login counter. Sending authorities replaces the whole
// set.
func (s *UserService) UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (*UserDetail, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Username != nil && *in.Username != user.Username {
		if err := validation.ValidateUsername(*in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if existing, err := s.userRepo.GetByUsername(ctx, *in.Username); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, models.NewConflictError("Username is already taken")
		}
		user.Username = *in.Username
	}
	if in.Email != nil {
		if err := validation.ValidateEmail(*in.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Email = *in.Email
	}
	if in.Password != nil && *in.Password != "" {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.Password = string(hashed)
	}
	if in.Enabled != nil {
		user.Enabled = *in.Enabled
	}
	if in.Locked != nil {
		user.Locked = *in.Locked
		if !user.Locked {
			user.FailedLoginAttempts = 0
		}
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}
	if in.Authorities != nil {
		roles := make([]models.Role, 0, len(in.Authorities))
		for _, name := range in.Authorities {
			if name != models.RoleUser && name != models.RoleAdmin {
				return nil, models.NewValidationError("Unknown authority: " + name)
			}
			roles = append(roles, models.Role{UserID: user.ID, Name: name})
		}
		user.Roles = roles
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// DeleteUser removes the account. Their assigned tasks survive unassigned.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}
