package account

import (
	"context"
	"errors"
	"strings"

	"cv-builder/internal/cv"
	"cv-builder/internal/cvs"
	"cv-builder/internal/shared/telemetry"
)

// ErrClaimIncomplete reports a claim whose imported CVs could not be read back
// from the user's namespace. The guest data is left in place.
var ErrClaimIncomplete = errors.New("account: claimed CVs missing from user namespace")

type Service struct {
	CVs *cvs.Service
}

type ClaimResult struct {
	MigratedSavedCVs    int  `json:"migratedSavedCvs"`
	MigratedTrash       int  `json:"migratedTrash"`
	MigratedWorkingCopy bool `json:"migratedWorkingCopy"`
	// OverLimit is set when the claim left the user above their saved CV quota.
	// Further saves are rejected until CVs are deleted.
	OverLimit bool `json:"overLimit"`
}

func NewService(cvSvc *cvs.Service) *Service {
	return &Service{CVs: cvSvc}
}

// ClaimGuest moves a guest's saved CVs, recycle bin and working document to the
// signed-in user, then clears the guest namespace. The working document is only
// copied when the user has not started one. Calling it again is a no-op.
// The guest namespace is only cleared once every guest CV is readable from the
// user's namespace.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}
	if guestUserID == authedUserID {
		return ClaimResult{}, nil
	}

	guest := s.CVs.Workspace(guestUserID)
	user := s.CVs.Workspace(authedUserID)

	guestSaved := guest.Manager.GetAll(ctx)
	guestTrash := guest.Manager.GetTrash(ctx)

	var result ClaimResult
	var err error
	result.MigratedSavedCVs, result.MigratedTrash, err = user.Manager.Import(ctx, guestSaved, guestTrash)
	if err != nil {
		telemetry.Error("account.claim_failed", map[string]any{
			"user_id": authedUserID,
			"error":   err.Error(),
		})
		return ClaimResult{}, err
	}
	if missing := missingIDs(ctx, user, guestSaved, guestTrash); missing > 0 {
		telemetry.Error("account.claim_incomplete", map[string]any{
			"user_id": authedUserID,
			"missing": missing,
		})
		return ClaimResult{}, ErrClaimIncomplete
	}

	guestDoc := guest.Working.Get(ctx)
	if isBlank(user.Working.Get(ctx)) && !isBlank(guestDoc) {
		if err := user.Working.Replace(ctx, guestDoc); err != nil {
			return ClaimResult{}, err
		}
		result.MigratedWorkingCopy = true
	}

	if err := s.CVs.ClearAll(ctx, guestUserID); err != nil {
		return ClaimResult{}, err
	}
	if s.CVs.Tier != nil {
		result.OverLimit = user.Manager.Count(ctx) > s.CVs.Tier.MaxSavedCVs(ctx, authedUserID)
	}
	telemetry.Info("account.guest_claimed", map[string]any{
		"user_id":    authedUserID,
		"saved_cvs":  result.MigratedSavedCVs,
		"trash":      result.MigratedTrash,
		"working":    result.MigratedWorkingCopy,
		"over_limit": result.OverLimit,
	})
	return result, nil
}

// DeleteData removes every saved CV, recycle bin entry and the working document of userID.
func (s *Service) DeleteData(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("userID is required")
	}
	return s.CVs.ClearAll(ctx, userID)
}

// missingIDs counts guest CVs found in neither the saved list nor the recycle bin of ws.
func missingIDs(ctx context.Context, ws *cvs.Workspace, saved []cv.SavedCV, trash []cv.TrashedCV) int {
	present := make(map[string]struct{})
	for _, c := range ws.Manager.GetAll(ctx) {
		present[c.ID] = struct{}{}
	}
	for _, c := range ws.Manager.GetTrash(ctx) {
		present[c.ID] = struct{}{}
	}
	missing := 0
	for _, c := range saved {
		if _, ok := present[c.ID]; !ok && c.ID != "" {
			missing++
		}
	}
	for _, c := range trash {
		if _, ok := present[c.ID]; !ok && c.ID != "" {
			missing++
		}
	}
	return missing
}

func isBlank(d cv.Document) bool {
	return d.Personal == (cv.Personal{}) &&
		len(d.Experience) == 0 &&
		len(d.Education) == 0 &&
		len(d.Skills) == 0 &&
		len(d.References) == 0
}
