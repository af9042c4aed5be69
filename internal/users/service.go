package users

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/labelspy/labelspy-backend/pkg/errors"
	"github.com/labelspy/labelspy-backend/pkg/gemini"
)

// Service exposes the user-record operations the API composes.
type Service interface {
	GetOrCreateProfile(ctx context.Context, uid, email string) (*UserDTO, error)
	UpdateProfile(ctx context.Context, uid, email string, displayName *string) (*UserDTO, error)
	DeleteProfile(ctx context.Context, uid string) error
	TopIngredients(ctx context.Context, uid string, limit int) ([]TopIngredient, error)
	ScanHistory(ctx context.Context, uid string) ([]ScanSummary, error)
	RecordScan(ctx context.Context, uid string, result *gemini.AnalysisResult) error
}

type service struct {
	repo Repository
}

// NewService constructs the user service over the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo}, nil
}

// GetOrCreateProfile returns the stored record, creating it lazily on the
// first fetch for a verified identity.
func (s *service) GetOrCreateProfile(ctx context.Context, uid, email string) (*UserDTO, error) {
	user, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	return s.repo.CreateOrUpdate(ctx, NewProfile(uid, email))
}

// UpdateProfile upserts the record with the edited display name. Existing
// ingredient counts and scan history are carried over so a profile edit
// never resets accumulated statistics.
func (s *service) UpdateProfile(ctx context.Context, uid, email string, displayName *string) (*UserDTO, error) {
	user, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = NewProfile(uid, email)
	}
	user.Email = email
	if displayName != nil && strings.TrimSpace(*displayName) != "" {
		user.DisplayName = strings.TrimSpace(*displayName)
	} else if user.DisplayName == "" {
		user.DisplayName = displayNameFromEmail(email)
	}
	return s.repo.CreateOrUpdate(ctx, user)
}

func (s *service) DeleteProfile(ctx context.Context, uid string) error {
	return s.repo.Delete(ctx, uid)
}

// TopIngredients returns up to limit entries sorted by count descending,
// ties broken by name. A user with no record or no counts gets an empty
// list, not an error.
func (s *service) TopIngredients(ctx context.Context, uid string, limit int) ([]TopIngredient, error) {
	user, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user == nil || len(user.IngredientCounts) == 0 {
		return []TopIngredient{}, nil
	}
	return topIngredients(user.IngredientCounts, limit), nil
}

func (s *service) ScanHistory(ctx context.Context, uid string) ([]ScanSummary, error) {
	user, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user profile not found")
	}
	return user.ScanHistory, nil
}

// RecordScan associates one analysis result with the user: counts first,
// then the history entry. Both mutations run in their own single-document
// transaction.
func (s *service) RecordScan(ctx context.Context, uid string, result *gemini.AnalysisResult) error {
	if err := s.repo.IncrementIngredientCounts(ctx, uid, result); err != nil {
		return err
	}
	return s.repo.AddScanHistory(ctx, uid, result)
}
