package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/orbjournal/orb-server/internal/domain"
	"github.com/orbjournal/orb-server/internal/service"
)

func (s *Server) registerOrbRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createOrb",
		Method:        http.MethodPost,
		Path:          "/api/v1/orbs",
		Summary:       "Create orb",
		Description:   "Creates the orb for a calendar day. Each user can have at most one orb per day.",
		Tags:          []string{"Orbs"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateOrb)

	huma.Register(s.api, huma.Operation{
		OperationID: "listOrbs",
		Method:      http.MethodGet,
		Path:        "/api/v1/orbs",
		Summary:     "List orbs by date range",
		Description: "Returns the user's orbs between startDate and endDate inclusive, oldest first",
		Tags:        []string{"Orbs"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListOrbs)

	huma.Register(s.api, huma.Operation{
		OperationID: "getOrbStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/orbs/stats",
		Summary:     "Get emotion statistics",
		Description: "Aggregates emotion totals over the user's orbs in a date range",
		Tags:        []string{"Orbs"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetOrbStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "getOrbByDate",
		Method:      http.MethodGet,
		Path:        "/api/v1/orbs/date/{date}",
		Summary:     "Get orb by date",
		Description: "Returns the orb for the given calendar day",
		Tags:        []string{"Orbs"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetOrbByDate)

	huma.Register(s.api, huma.Operation{
		OperationID: "getOrb",
		Method:      http.MethodGet,
		Path:        "/api/v1/orbs/{id}",
		Summary:     "Get orb",
		Description: "Returns an orb by ID",
		Tags:        []string{"Orbs"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetOrb)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateOrb",
		Method:      http.MethodPut,
		Path:        "/api/v1/orbs/{id}",
		Summary:     "Update orb",
		Description: "Updates an orb's emotions, note or animation seed. The day itself cannot change.",
		Tags:        []string{"Orbs"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateOrb)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteOrb",
		Method:        http.MethodDelete,
		Path:          "/api/v1/orbs/{id}",
		Summary:       "Delete orb",
		Description:   "Deletes an orb, freeing its day for a new one",
		Tags:          []string{"Orbs"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteOrb)
}

// === DTOs ===

// EmotionDTO is one weighted emotion in orb requests and responses.
type EmotionDTO struct {
	Type       string `json:"type,omitempty" doc:"Emotion name"`
	Percentage int    `json:"percentage,omitempty" doc:"Share of the mixture, 1-100"`
}

// OrbResponse contains orb data in API responses.
type OrbResponse struct {
	ID            string       `json:"id" doc:"Orb ID"`
	UserID        string       `json:"userId" doc:"Owning user ID"`
	Date          time.Time    `json:"date" doc:"Calendar day (UTC midnight)"`
	Emotions      []EmotionDTO `json:"emotions" doc:"Weighted emotion mixture"`
	Note          string       `json:"note,omitempty" doc:"Free-form note"`
	AnimationSeed *float64     `json:"animationSeed,omitempty" doc:"Client rendering seed"`
	IsLocked      bool         `json:"isLocked" doc:"Whether the orb is locked"`
	CreatedAt     time.Time    `json:"createdAt" doc:"Creation time"`
	UpdatedAt     time.Time    `json:"updatedAt" doc:"Last update time"`
}

// OrbOutput wraps the orb response for Huma.
type OrbOutput struct {
	Body OrbResponse
}

// CreateOrbRequest is the request body for creating an orb.
type CreateOrbRequest struct {
	Date          string       `json:"date,omitempty" doc:"Calendar day, YYYY-MM-DD or RFC 3339"`
	Emotions      []EmotionDTO `json:"emotions,omitempty" doc:"Weighted emotion mixture, percentages sum to 100"`
	Note          string       `json:"note,omitempty" doc:"Free-form note, up to 500 characters"`
	AnimationSeed *float64     `json:"animationSeed,omitempty" doc:"Client rendering seed"`
}

// CreateOrbInput wraps the create orb request for Huma.
type CreateOrbInput struct {
	Body CreateOrbRequest
}

// UpdateOrbRequest is the request body for updating an orb. All fields are
// optional but at least one must be present.
type UpdateOrbRequest struct {
	Emotions      []EmotionDTO `json:"emotions,omitempty" doc:"Replacement emotion mixture"`
	Note          *string      `json:"note,omitempty" doc:"Replacement note; empty string clears it"`
	AnimationSeed *float64     `json:"animationSeed,omitempty" doc:"Replacement rendering seed"`
}

// UpdateOrbInput wraps the update orb request for Huma.
type UpdateOrbInput struct {
	ID   string `path:"id" doc:"Orb ID"`
	Body UpdateOrbRequest
}

// GetOrbInput contains parameters for getting an orb by ID.
type GetOrbInput struct {
	ID string `path:"id" doc:"Orb ID"`
}

// GetOrbByDateInput contains parameters for getting an orb by date.
type GetOrbByDateInput struct {
	Date string `path:"date" doc:"Calendar day, YYYY-MM-DD or RFC 3339"`
}

// DeleteOrbInput contains parameters for deleting an orb.
type DeleteOrbInput struct {
	ID string `path:"id" doc:"Orb ID"`
}

// DateRangeInput contains the date range query parameters.
type DateRangeInput struct {
	StartDate string `query:"startDate" doc:"Range start, YYYY-MM-DD or RFC 3339"`
	EndDate   string `query:"endDate" doc:"Range end, YYYY-MM-DD or RFC 3339"`
}

// ListOrbsResponse contains a list of orbs.
type ListOrbsResponse struct {
	Orbs []OrbResponse `json:"orbs" doc:"Orbs in the range, oldest first"`
}

// ListOrbsOutput wraps the list orbs response for Huma.
type ListOrbsOutput struct {
	Body ListOrbsResponse
}

// EmotionStatDTO is one emotion's aggregate over a date range.
type EmotionStatDTO struct {
	Emotion         string `json:"emotion" doc:"Emotion name"`
	TotalPercentage int    `json:"totalPercentage" doc:"Sum of this emotion's percentages"`
	DaysCount       int    `json:"daysCount" doc:"Number of orbs carrying this emotion"`
}

// OrbStatsResponse contains aggregated emotion statistics.
type OrbStatsResponse struct {
	Stats []EmotionStatDTO `json:"stats" doc:"Per-emotion totals, largest first"`
}

// OrbStatsOutput wraps the stats response for Huma.
type OrbStatsOutput struct {
	Body OrbStatsResponse
}

// === Handlers ===

func (s *Server) handleCreateOrb(ctx context.Context, input *CreateOrbInput) (*OrbOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	orb, err := s.services.Orb.Create(ctx, userID, service.CreateOrbRequest{
		Date:          input.Body.Date,
		Emotions:      mapEmotionInputs(input.Body.Emotions),
		Note:          input.Body.Note,
		AnimationSeed: input.Body.AnimationSeed,
	})
	if err != nil {
		return nil, err
	}

	return &OrbOutput{Body: mapOrbResponse(orb)}, nil
}

func (s *Server) handleListOrbs(ctx context.Context, input *DateRangeInput) (*ListOrbsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	orbs, err := s.services.Orb.GetByRange(ctx, userID, input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	resp := make([]OrbResponse, len(orbs))
	for i, orb := range orbs {
		resp[i] = mapOrbResponse(orb)
	}

	return &ListOrbsOutput{Body: ListOrbsResponse{Orbs: resp}}, nil
}

func (s *Server) handleGetOrbStats(ctx context.Context, input *DateRangeInput) (*OrbStatsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Orb.GetStats(ctx, userID, input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	resp := make([]EmotionStatDTO, len(stats))
	for i, st := range stats {
		resp[i] = EmotionStatDTO{
			Emotion:         string(st.Emotion),
			TotalPercentage: st.TotalPercentage,
			DaysCount:       st.DaysCount,
		}
	}

	return &OrbStatsOutput{Body: OrbStatsResponse{Stats: resp}}, nil
}

func (s *Server) handleGetOrbByDate(ctx context.Context, input *GetOrbByDateInput) (*OrbOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	orb, err := s.services.Orb.GetByDate(ctx, userID, input.Date)
	if err != nil {
		return nil, err
	}

	return &OrbOutput{Body: mapOrbResponse(orb)}, nil
}

func (s *Server) handleGetOrb(ctx context.Context, input *GetOrbInput) (*OrbOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	orb, err := s.services.Orb.GetByID(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &OrbOutput{Body: mapOrbResponse(orb)}, nil
}

func (s *Server) handleUpdateOrb(ctx context.Context, input *UpdateOrbInput) (*OrbOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	orb, err := s.services.Orb.Update(ctx, userID, input.ID, service.UpdateOrbRequest{
		Emotions:      mapEmotionInputs(input.Body.Emotions),
		Note:          input.Body.Note,
		AnimationSeed: input.Body.AnimationSeed,
	})
	if err != nil {
		return nil, err
	}

	return &OrbOutput{Body: mapOrbResponse(orb)}, nil
}

func (s *Server) handleDeleteOrb(ctx context.Context, input *DeleteOrbInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Orb.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &struct{}{}, nil
}

// === Helpers ===

func mapEmotionInputs(emotions []EmotionDTO) []service.EmotionInput {
	if emotions == nil {
		return nil
	}
	inputs := make([]service.EmotionInput, len(emotions))
	for i, e := range emotions {
		inputs[i] = service.EmotionInput{
			Type:       e.Type,
			Percentage: e.Percentage,
		}
	}
	return inputs
}

func mapOrbResponse(orb *domain.Orb) OrbResponse {
	emotions := make([]EmotionDTO, len(orb.Emotions))
	for i, e := range orb.Emotions {
		emotions[i] = EmotionDTO{
			Type:       string(e.Type),
			Percentage: e.Percentage,
		}
	}

	return OrbResponse{
		ID:            orb.ID,
		UserID:        orb.UserID,
		Date:          orb.Date,
		Emotions:      emotions,
		Note:          orb.Note,
		AnimationSeed: orb.AnimationSeed,
		IsLocked:      orb.IsLocked,
		CreatedAt:     orb.CreatedAt,
		UpdatedAt:     orb.UpdatedAt,
	}
}
